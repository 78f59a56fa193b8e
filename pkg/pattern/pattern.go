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

// Package pattern compiles the marker file naming rule and derives the
// companion payload naming rule from a matched marker.
package pattern

import (
	"path/filepath"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// PayloadExtension is the fixed extension of companion payload files.
const PayloadExtension = ".zip"

// ErrConfiguration marks an unusable marker pattern or configuration value.
var ErrConfiguration = errors.Base("configuration error")

// 🎯 Pattern is a regular expression that only matches whole file names
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// 🏭 Compile compiles expr as an anchored, full-name regular expression.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, errors.Errorf("%w: invalid marker pattern %q: %s", ErrConfiguration, expr, err.Error())
	}
	return &Pattern{source: expr, re: re}, nil
}

// 🔍 Matches reports whether the entire file name matches the pattern.
// Any directory component of name is ignored.
func (p *Pattern) Matches(name string) bool {
	return p.re.MatchString(filepath.Base(name))
}

// String returns the expression the pattern was compiled from.
func (p *Pattern) String() string {
	return p.source
}

// Matches compiles expr and reports whether name matches it in full.
func Matches(expr, name string) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Matches(name), nil
}

// 🔗 DeriveCompanionPattern builds the pattern matching every payload file of
// the batch announced by marker: `<base>(_[0-9]+)?\.zip` where base is the
// marker name with all extensions removed.
func DeriveCompanionPattern(marker string) *Pattern {
	base := StripAllExtensions(filepath.Base(marker))
	expr := regexp.QuoteMeta(base) + `(_[0-9]+)?` + regexp.QuoteMeta(PayloadExtension)
	return &Pattern{
		source: expr,
		re:     regexp.MustCompile(`^(?:` + expr + `)$`),
	}
}

// ✂️ StripAllExtensions removes trailing extensions until none is left,
// so "batch.001.ok" becomes "batch".
func StripAllExtensions(name string) string {
	for {
		idx := strings.LastIndexByte(name, '.')
		if idx == -1 {
			return name
		}
		name = name[:idx]
	}
}
