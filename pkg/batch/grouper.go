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

// Package batch groups marker files with the companion payloads they announce.
package batch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/batchcopier/pkg/pattern"
)

// 📦 Grouper resolves markers and the transfer units they announce
type Grouper struct {
	ignorePatterns []string
}

// 🏭 NewGrouper creates a grouper that skips any file whose name matches one
// of the given doublestar globs.
func NewGrouper(ignorePatterns []string) *Grouper {
	return &Grouper{ignorePatterns: ignorePatterns}
}

// 🔍 ListMarkers returns the files directly inside inputDir whose names match
// the marker pattern.
func (g *Grouper) ListMarkers(ctx context.Context, inputDir string, marker *pattern.Pattern) ([]string, error) {
	names, err := g.listFiles(ctx, inputDir)
	if err != nil {
		return nil, err
	}

	markers := make([]string, 0, len(names))
	for _, name := range names {
		if marker.Matches(name) {
			markers = append(markers, filepath.Join(inputDir, name))
		}
	}
	return markers, nil
}

// 📋 GroupFor returns the transfer unit of markerPath: every companion payload
// in inputDir followed by the marker itself. The directory is read once.
func (g *Grouper) GroupFor(ctx context.Context, markerPath, inputDir string) ([]string, error) {
	names, err := g.listFiles(ctx, inputDir)
	if err != nil {
		return nil, err
	}

	markerName := filepath.Base(markerPath)
	companion := pattern.DeriveCompanionPattern(markerName)

	unit := make([]string, 0, len(names)+1)
	for _, name := range names {
		if name == markerName {
			continue
		}
		if companion.Matches(name) {
			unit = append(unit, filepath.Join(inputDir, name))
		}
	}
	return append(unit, markerPath), nil
}

// listFiles returns the sorted names of the regular files in dir that are not ignored.
func (g *Grouper) listFiles(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IOFailure{Op: "list", Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if g.shouldIgnore(ctx, entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// 🙈 shouldIgnore checks the name against the ignore globs
func (g *Grouper) shouldIgnore(ctx context.Context, name string) bool {
	for _, glob := range g.ignorePatterns {
		matched, err := doublestar.Match(glob, name)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", glob).Str("file", name).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Trace().Str("file", name).Str("pattern", glob).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}

// ValidateIgnorePatterns checks that every glob is well formed.
func ValidateIgnorePatterns(globs []string) error {
	for _, glob := range globs {
		if !doublestar.ValidatePattern(glob) {
			return errors.Errorf("%w: invalid ignore pattern %q", pattern.ErrConfiguration, glob)
		}
	}
	return nil
}
