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
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/private/app/command"
	"github.com/periscope-ps/unisencoder/private/dispatch"
)

func newDispatch(pather command.Pather, env *appEnv) *cobra.Command {
	var input inputFlags
	var flags struct {
		ledger string
	}
	cmd := &cobra.Command{
		Use:   "dispatch [flags] <file>...",
		Short: "Encode topology documents and upload them to UNIS",
		Example: fmt.Sprintf(`  %[1]s dispatch -t ps /var/lib/topologies/*.xml
  %[1]s dispatch -t rspec3 --slice-cred slice.cred --ledger /tmp/ledger.db manifest.xml`,
			pather.CommandPath()),
		Long: `'dispatch' encodes the given files and posts the documents to the
UNIS service configured in the [unis] section.

Successfully uploaded files are recorded in the ledger together with their
modification time. Files that did not change since their last upload are
skipped. Failed uploads are not retried.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := input.params()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if err := env.setup(); err != nil {
				return err
			}
			defer env.exportMetrics()
			enc, err := env.newEncoder(input.kind)
			if err != nil {
				return err
			}
			ledgerPath := env.cfg.Dispatch.Ledger
			if flags.ledger != "" {
				ledgerPath = flags.ledger
			}
			ledger, err := dispatch.NewSqliteLedger(cmd.Context(), ledgerPath)
			if err != nil {
				return err
			}
			defer ledger.Close()

			d := &dispatch.Dispatcher{
				Ledger: ledger,
				Uploader: &dispatch.Client{
					URL:      env.cfg.UNIS.URL,
					Endpoint: env.cfg.UNIS.Endpoint,
					HTTP:     &http.Client{Timeout: env.cfg.UNIS.Timeout.Duration},
				},
				Encode: func(ctx context.Context, path string) (unis.Object, error) {
					res, err := encodeFile(ctx, enc, path, params, nil)
					if err != nil {
						return nil, err
					}
					return res.Document, nil
				},
				Workers: env.cfg.Dispatch.Workers,
				Metrics: dispatch.NewMetrics(metrics.WithRegistry(env.registry)),
			}
			reports, err := d.Run(cmd.Context(), args)
			for _, r := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", r.Outcome, r.Path)
			}
			return err
		},
	}
	input.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("slice-urn", "slice-cred")
	cmd.Flags().StringVar(&flags.ledger, "ledger", "",
		"Ledger file, overrides dispatch.ledger of the configuration")
	return cmd
}
