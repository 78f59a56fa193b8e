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

package opts

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/batchcopier/pkg/batch"
	"github.com/walteh/batchcopier/pkg/config"
	"github.com/walteh/batchcopier/pkg/metrics"
	"github.com/walteh/batchcopier/pkg/operation"
	"github.com/walteh/batchcopier/pkg/transfer"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// ConfigFile is optional when the flags supply every required value
	ConfigFile string
	Debug      bool
	JSONLogs   bool

	// Flags holds values given on the command line; set values win over the file
	Flags config.Config

	// Resolved by Resolve
	Config   *config.Config
	Counters *metrics.Counters
}

// 🎯 Resolve loads the config file, applies flag overrides and validates the result
func (o *RootOpts) Resolve(ctx context.Context) error {
	cfg := &config.Config{}
	if o.ConfigFile != "" {
		read, err := config.Read(ctx, o.ConfigFile)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}
		cfg = read
	}

	applyOverrides(cfg, &o.Flags)

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	zerolog.Ctx(ctx).Info().Object("config", cfg).Msg("copy process initialized")

	o.Config = cfg
	o.Counters = metrics.NewCounters()
	return nil
}

// 🏭 NewRunner wires a BatchRunner for the resolved configuration
func (o *RootOpts) NewRunner(observer operation.Observer) (*operation.BatchRunner, error) {
	if o.Config == nil {
		return nil, errors.Errorf("configuration is not resolved")
	}

	marker, err := o.Config.MarkerPattern()
	if err != nil {
		return nil, errors.Errorf("compiling marker pattern: %w", err)
	}

	return operation.New(operation.Options{
		InputDir:   o.Config.Input,
		BackupDir:  o.Config.Backup,
		TargetDir:  o.Config.Target,
		Marker:     marker,
		Grouper:    batch.NewGrouper(o.Config.IgnorePatterns),
		Transferor: transfer.New(),
		Counters:   o.Counters,
		Observer:   observer,
	})
}

// applyOverrides copies every flag value that was set onto cfg
func applyOverrides(cfg, flags *config.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *config.Duration, v time.Duration) {
		if v != 0 {
			dst.Duration = v
		}
	}

	setString(&cfg.Input, flags.Input)
	setString(&cfg.Target, flags.Target)
	setString(&cfg.Backup, flags.Backup)
	setString(&cfg.Pattern, flags.Pattern)
	setDuration(&cfg.InitialDelay, flags.InitialDelay.Duration)
	setDuration(&cfg.Interval, flags.Interval.Duration)
	if len(flags.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = flags.IgnorePatterns
	}
}
