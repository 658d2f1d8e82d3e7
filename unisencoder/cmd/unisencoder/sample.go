// Copyright 2026 The unisencoder Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/periscope-ps/unisencoder/private/app/command"
	"github.com/periscope-ps/unisencoder/unisencoder/config"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "devel"

func newSample(pather command.Pather) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sample",
		Short:   "Display a sample configuration file",
		Example: fmt.Sprintf("  %[1]s sample > unisencoder.toml", pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			cfg.Sample(cmd.OutOrStdout(), nil, nil)
			return nil
		},
	}
	return cmd
}

func newVersion(pather command.Pather) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Show the unisencoder version information",
		Example: fmt.Sprintf("  %[1]s version", pather.CommandPath()),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "unisencoder information:\n")
			fmt.Fprintf(cmd.OutOrStdout(), "  Version:    %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Go version: %s\n", runtime.Version())
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, s := range info.Settings {
					if s.Key == "vcs.revision" {
						fmt.Fprintf(cmd.OutOrStdout(), "  Revision:   %s\n", s.Value)
					}
				}
			}
		},
	}
	return cmd
}
