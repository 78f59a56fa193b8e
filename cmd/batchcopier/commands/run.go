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
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/batchcopier/cmd/batchcopier/opts"
	"github.com/walteh/batchcopier/pkg/log"
	"github.com/walteh/batchcopier/pkg/metrics"
	"github.com/walteh/batchcopier/pkg/operation"
)

// NewRunCmd creates the long-running run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	var reportInterval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Move completed batches until stopped",
		Long: `Run polls the input directory on a fixed schedule.
Every cycle it will:
1. List the marker files matching the pattern
2. Copy each batch file to the backup directory
3. Move each batch file to the target directory, the marker last
Missing directories are reported but do not stop the process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := opts.Resolve(ctx); err != nil {
				return err
			}
			opts.Config.CheckDirectories(ctx)

			console := log.FromContext(ctx)
			runner, err := opts.NewRunner(console)
			if err != nil {
				return errors.Errorf("creating runner: %w", err)
			}

			scheduler := operation.NewScheduler(opts.Config.InitialDelay.Duration, opts.Config.Interval.Duration)
			console.Header("watching " + opts.Config.Input)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				err := scheduler.Run(gctx, func(ctx context.Context) {
					runner.RunCycle(ctx)
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			g.Go(func() error {
				reportCounters(gctx, opts.Counters, reportInterval)
				return nil
			})

			if err := g.Wait(); err != nil {
				return errors.Errorf("running scheduler: %w", err)
			}

			zerolog.Ctx(ctx).Info().Object("counters", opts.Counters).Msg("stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&reportInterval, "report-interval", time.Minute, "how often to log the counters (0 disables)")

	return cmd
}

// reportCounters logs the counters every interval until ctx is done
func reportCounters(ctx context.Context, counters *metrics.Counters, interval time.Duration) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			zerolog.Ctx(ctx).Info().Object("counters", counters).Msg("counters")
		}
	}
}
