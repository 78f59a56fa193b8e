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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/batchcopier/pkg/batch"
	"github.com/walteh/batchcopier/pkg/operation"
	"github.com/walteh/batchcopier/pkg/pattern"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⏲️ Duration is a time.Duration written as a string such as "5s"
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return errors.Errorf("parsing duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// UnmarshalYAML parses a scalar duration node.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalText writes the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// 📚 Config represents the complete configuration
type Config struct {
	Input          string   `json:"input" yaml:"input"`                                         // Directory scanned for markers
	Target         string   `json:"target" yaml:"target"`                                       // Directory receiving completed batches
	Backup         string   `json:"backup" yaml:"backup"`                                       // Directory receiving a copy of every file
	Pattern        string   `json:"pattern" yaml:"pattern"`                                     // Full-match regular expression for marker names
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"` // Globs of file names never transferred
	InitialDelay   Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`     // Wait before the first cycle
	Interval       Duration `json:"interval,omitempty" yaml:"interval,omitempty"`               // Wait after each cycle
}

// 🎯 Read reads and parses the configuration file without validating it
func Read(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🎯 Load reads, parses and validates the configuration file
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := Read(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks required values, cleans paths, applies defaults and
// compiles the patterns. Pattern problems wrap pattern.ErrConfiguration.
// Directory existence is not checked here, see CheckDirectories.
func (cfg *Config) Validate() error {
	if cfg.Input == "" {
		return errors.Errorf("input is required")
	}
	if cfg.Target == "" {
		return errors.Errorf("target is required")
	}
	if cfg.Backup == "" {
		return errors.Errorf("backup is required")
	}
	if cfg.Pattern == "" {
		return errors.Errorf("%w: pattern is required", pattern.ErrConfiguration)
	}

	cfg.Input = filepath.Clean(cfg.Input)
	cfg.Target = filepath.Clean(cfg.Target)
	cfg.Backup = filepath.Clean(cfg.Backup)

	if cfg.InitialDelay.Duration < 0 || cfg.Interval.Duration < 0 {
		return errors.Errorf("%w: delays must not be negative", pattern.ErrConfiguration)
	}
	if cfg.InitialDelay.Duration == 0 {
		cfg.InitialDelay.Duration = operation.DefaultInitialDelay
	}
	if cfg.Interval.Duration == 0 {
		cfg.Interval.Duration = operation.DefaultInterval
	}

	if _, err := pattern.Compile(cfg.Pattern); err != nil {
		return err
	}
	if err := batch.ValidateIgnorePatterns(cfg.IgnorePatterns); err != nil {
		return err
	}

	return nil
}

// 🧩 MarkerPattern compiles the marker pattern
func (cfg *Config) MarkerPattern() (*pattern.Pattern, error) {
	return pattern.Compile(cfg.Pattern)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s [%s] -> %s (backup %s)", cfg.Input, cfg.Pattern, cfg.Target, cfg.Backup)
}

// MarshalZerologObject logs the resolved configuration.
func (cfg *Config) MarshalZerologObject(e *zerolog.Event) {
	e.Str("input", cfg.Input).
		Str("target", cfg.Target).
		Str("backup", cfg.Backup).
		Str("pattern", cfg.Pattern).
		Strs("ignore_patterns", cfg.IgnorePatterns).
		Dur("initial_delay", cfg.InitialDelay.Duration).
		Dur("interval", cfg.Interval.Duration)
}
