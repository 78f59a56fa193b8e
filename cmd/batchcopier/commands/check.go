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
)

// NewCheckCmd creates a command validating the configuration and directories
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and directories",
		Long: `Check validates the configuration without moving any file.
It will:
1. Load the config file and flags
2. Compile the marker and ignore patterns
3. Verify that input, target and backup are existing directories`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := log.NewUserLogger(ctx)

			if err := opts.Resolve(ctx); err != nil {
				user.LogValidation(false, "Invalid configuration", err)
				return err
			}
			user.LogValidation(true, "Configuration is valid: "+opts.Config.String(), nil)

			failed := 0
			for _, check := range opts.Config.CheckDirectories(ctx) {
				user.LogDirectoryCheck(check)
				if !check.OK() {
					failed++
				}
			}
			if failed > 0 {
				return errors.Errorf("%d director(ies) unusable", failed)
			}
			return nil
		},
	}

	return cmd
}
