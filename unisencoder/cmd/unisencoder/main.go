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

// unisencoder encodes GENI RSpec v3 and perfSONAR topologies into UNIS
// documents and uploads them to a UNIS service.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/private/app/command"
)

func main() {
	executable := filepath.Base(os.Args[0])
	cmd := newRoot(executable, viper.New())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRoot(use string, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: "Encode network topologies into UNIS documents",
		Args:  cobra.NoArgs,
		// Errors are printed in main. Commands turn off the usage message
		// once their arguments are validated.
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}
	cmd.PersistentFlags().String("config", "", "Configuration file (toml)")
	cmd.PersistentFlags().String("log.level", "", "Console log level (debug|info|error)")
	_ = v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log.console.level", cmd.PersistentFlags().Lookup("log.level"))
	v.SetEnvPrefix("UNISENCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := &appEnv{viper: v}
	cmd.AddCommand(
		newEncode(cmd, env),
		newDispatch(cmd, env),
		newSummary(cmd, env),
		newSample(cmd),
		newVersion(cmd),
		command.NewCompletion(cmd),
		command.NewGendocs(cmd),
	)
	return cmd
}
