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

package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/batchcopier/cmd/batchcopier/opts"
	"github.com/walteh/batchcopier/pkg/log"
	"github.com/walteh/batchcopier/pkg/metrics"
)

// NewOnceCmd creates a command running a single cycle
func NewOnceCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single cycle and exit",
		Long: `Once lists the markers a single time, transfers every batch
and prints the counters. It exits non-zero if any batch failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := opts.Resolve(ctx); err != nil {
				return err
			}
			opts.Config.CheckDirectories(ctx)

			runner, err := opts.NewRunner(log.FromContext(ctx))
			if err != nil {
				return errors.Errorf("creating runner: %w", err)
			}

			report := runner.RunCycle(ctx)

			user := log.NewUserLogger(ctx)
			if err := user.LogCounters(opts.Counters.Snapshot(), metrics.Executions, metrics.Failures, metrics.FilesProcessed); err != nil {
				return errors.Errorf("printing counters: %w", err)
			}

			if report.Err != nil {
				return errors.Errorf("running cycle: %w", report.Err)
			}
			if report.Failed > 0 {
				return errors.Errorf("%d batch(es) failed", report.Failed)
			}
			return nil
		},
	}

	return cmd
}
