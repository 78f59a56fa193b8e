// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/batchcopier/pkg/config"
)

// 📢 UserLogger prints one-off results for a person at a terminal
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📁 LogDirectoryCheck prints the outcome of checking one configured directory
func (u *UserLogger) LogDirectoryCheck(check config.DirectoryCheck) {
	msg := fmt.Sprintf("%-6s %s", check.Role, check.Path)
	if check.OK() {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "📁"}).Println(msg)
		u.log.Debug().Str("role", check.Role.String()).Str("dir", check.Path).Msg("directory ok")
		return
	}

	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
	pterm.Warning.Println(check.Err)
	u.log.Warn().Err(check.Err).Str("role", check.Role.String()).Str("dir", check.Path).Msg("directory check failed")
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
	u.log.Warn().Msg(description)
}

// 📊 LogCounters prints counter values as a table
func (u *UserLogger) LogCounters(values map[string]int64, names ...string) error {
	data := pterm.TableData{{"counter", "value"}}
	for _, name := range names {
		data = append(data, []string{name, fmt.Sprintf("%d", values[name])})
	}
	u.log.Debug().Interface("counters", values).Msg("counters")
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
