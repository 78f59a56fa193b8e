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

package config

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📁 Role identifies one of the configured directories
type Role int

const (
	RoleInput Role = iota
	RoleTarget
	RoleBackup
)

// String returns a string representation of Role
func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleTarget:
		return "target"
	case RoleBackup:
		return "backup"
	default:
		return "unknown"
	}
}

// ErrNotDirectory is reported for a configured path that is not a directory.
var ErrNotDirectory = errors.Base("not a directory")

// ✅ DirectoryCheck is the outcome of checking one configured directory
type DirectoryCheck struct {
	Role Role
	Path string
	Err  error // nil when Path exists and is a directory
}

// OK reports whether the directory is usable.
func (c DirectoryCheck) OK() bool {
	return c.Err == nil
}

// 🔍 CheckDirectories checks that input, target and backup exist and are
// directories. Problems are logged as warnings and returned; they are never
// fatal because a directory may appear later.
func (cfg *Config) CheckDirectories(ctx context.Context) []DirectoryCheck {
	logger := zerolog.Ctx(ctx)

	checks := []DirectoryCheck{
		{Role: RoleInput, Path: cfg.Input},
		{Role: RoleTarget, Path: cfg.Target},
		{Role: RoleBackup, Path: cfg.Backup},
	}
	for i := range checks {
		checks[i].Err = checkDirectory(checks[i].Path)
		if checks[i].Err != nil {
			logger.Warn().
				Err(checks[i].Err).
				Str("role", checks[i].Role.String()).
				Str("dir", checks[i].Path).
				Msg("does not exist or is no directory")
		}
	}
	return checks
}

func checkDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("checking directory: %w", err)
	}
	if !info.IsDir() {
		return errors.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return nil
}
