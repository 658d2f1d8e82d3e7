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
	"os"

	"github.com/spf13/cobra"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/private/app/command"
)

func newEncode(pather command.Pather, env *appEnv) *cobra.Command {
	var input inputFlags
	var flags struct {
		output    string
		outputDir string
		format    string
		indent    int
	}
	cmd := &cobra.Command{
		Use:   "encode [flags] [file...]",
		Short: "Encode topology documents into UNIS JSON",
		Example: fmt.Sprintf(`  %[1]s encode -t rspec3 -m urn:publicid:IDN+example.net+authority+cm ad.xml
  %[1]s encode -t rspec3 --slice-urn urn:publicid:IDN+example.net+slice+exp1 manifest.xml
  %[1]s encode -t ps --output-dir out/ topo1.xml topo2.xml`, pather.CommandPath()),
		Long: `'encode' encodes GENI RSpec v3 (rspec3) or perfSONAR (ps) topology
documents into UNIS documents.

Without file arguments, the document is read from stdin. Several files are
encoded concurrently. Their documents are written to --output-dir, or one
after the other to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := argsOrStdin(args)
			if flags.output != "" && len(paths) > 1 {
				return serrors.New("--output requires a single input, use --output-dir")
			}
			if flags.output != "" && flags.outputDir != "" {
				return serrors.New("only one of --output and --output-dir allowed")
			}
			if flags.format != "json" && flags.format != "yaml" {
				return serrors.New("output format not supported", "format", flags.format)
			}
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
			indent := env.cfg.Encoder.Indent
			if cmd.Flags().Changed("indent") {
				indent = flags.indent
			}
			if flags.outputDir != "" {
				if err := os.MkdirAll(flags.outputDir, 0755); err != nil {
					return serrors.Wrap("creating output directory", err)
				}
			}

			results := encodeAll(cmd.Context(), enc, paths, params,
				env.cfg.Encoder.Workers, cmd.InOrStdin())
			var errs serrors.List
			for _, r := range results {
				if r.err != nil {
					errs = append(errs, r.err)
					continue
				}
				var err error
				switch {
				case flags.output != "":
					err = writeFile(flags.output, r.result.Document, flags.format, indent)
				case flags.outputDir != "":
					err = writeFile(outputPath(flags.outputDir, r.path, flags.format),
						r.result.Document, flags.format, indent)
				default:
					err = writeDocument(cmd.OutOrStdout(), r.result.Document, flags.format, indent)
				}
				if err != nil {
					errs = append(errs, serrors.Wrap("writing output", err, "file", r.path))
				}
			}
			return errs.ToError()
		},
	}
	input.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("slice-urn", "slice-cred")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "",
		"Directory the documents are written to, one file per input")
	cmd.Flags().StringVar(&flags.format, "format", "json", "Output format (json|yaml)")
	cmd.Flags().IntVar(&flags.indent, "indent", 2,
		"JSON indentation, overrides encoder.indent of the configuration")
	return cmd
}
