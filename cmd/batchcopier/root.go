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

package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/batchcopier/cmd/batchcopier/commands"
	"github.com/walteh/batchcopier/cmd/batchcopier/opts"
	"github.com/walteh/batchcopier/pkg/log"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "batchcopier",
		Short: "Move completed file batches from an input directory to a target",
		Long: `batchcopier watches an input directory for marker files announcing a
completed batch. Each batch is copied to a backup directory and then moved to
the target directory, the marker file last.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(cmd.ErrOrStderr(), rootOpts)
			ctx := logger.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), logger))
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		commands.NewOnceCmd(rootOpts),
		commands.NewCheckCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .yml, .json or .hcl)")
	flags.BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	flags.BoolVar(&o.JSONLogs, "log-json", false, "write logs as JSON instead of console text")

	flags.StringVar(&o.Flags.Input, "input", "", "directory scanned for marker files")
	flags.StringVar(&o.Flags.Target, "target", "", "directory receiving completed batches")
	flags.StringVar(&o.Flags.Backup, "backup", "", "directory receiving a copy of every file")
	flags.StringVar(&o.Flags.Pattern, "pattern", "", "regular expression matching whole marker file names")
	flags.StringSliceVar(&o.Flags.IgnorePatterns, "ignore", nil, "glob of file names to skip (repeatable)")
	flags.DurationVar(&o.Flags.InitialDelay.Duration, "initial-delay", 0, "wait before the first cycle (default 10s)")
	flags.DurationVar(&o.Flags.Interval.Duration, "interval", 0, "wait after each cycle (default 5s)")
}

// setupLogging configures zerolog based on flags
func setupLogging(out io.Writer, o *opts.RootOpts) zerolog.Logger {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	if !o.JSONLogs {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
