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
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/private/app/command"
)

func newSummary(pather command.Pather, env *appEnv) *cobra.Command {
	var input inputFlags
	var flags struct {
		diagnostics bool
		noColor     bool
	}
	cmd := &cobra.Command{
		Use:     "summary [flags] [file...]",
		Short:   "Summarize the encoding of topology documents",
		Example: fmt.Sprintf(`  %[1]s summary -t ps --diagnostics topo.xml`, pather.CommandPath()),
		Long: `'summary' encodes the given files and prints the number of encoded
primitives per collection, the unresolved references and the diagnostics.

With --diagnostics, every diagnostic is listed.`,
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
			results := encodeAll(cmd.Context(), enc, argsOrStdin(args), params,
				env.cfg.Encoder.Workers, cmd.InOrStdin())
			w := cmd.OutOrStdout()
			colored := !flags.noColor && isTerminal(w)
			renderSummary(w, results, colored)
			if flags.diagnostics {
				fmt.Fprintln(w)
				renderDiagnostics(w, results)
			}
			for _, r := range results {
				if r.err != nil {
					return fmt.Errorf("%d of %d files failed", failures(results), len(results))
				}
			}
			return nil
		},
	}
	input.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("slice-urn", "slice-cred")
	cmd.Flags().BoolVar(&flags.diagnostics, "diagnostics", false, "List every diagnostic")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func failures(results []encoded) int {
	var n int
	for _, r := range results {
		if r.err != nil {
			n++
		}
	}
	return n
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

func renderSummary(w io.Writer, results []encoded, colored bool) {
	noColor := color.New()
	good, warn, bad := noColor, noColor, noColor
	if colored {
		good = color.New(color.FgGreen)
		warn = color.New(color.FgYellow)
		bad = color.New(color.FgRed)
	}
	// Colors are set explicitly, they must not depend on the global setting.
	for _, c := range []*color.Color{good, warn, bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			rows = append(rows, []string{
				r.path, "", "", "", "", "", bad.Sprint("error: " + r.err.Error()),
			})
			continue
		}
		counts := unis.Count(r.result.Document)
		status := good.Sprint("ok")
		if n := len(r.result.Diagnostics); n > 0 {
			status = warn.Sprintf("%d diagnostics", n)
		}
		rows = append(rows, []string{
			r.path,
			strconv.Itoa(counts[unis.Domains]),
			strconv.Itoa(counts[unis.Nodes]),
			strconv.Itoa(counts[unis.Ports]),
			strconv.Itoa(counts[unis.Links]),
			strconv.Itoa(r.result.Unresolved),
			status,
		})
	}
	table := newTable(w, []string{"FILE", "DOMAINS", "NODES", "PORTS", "LINKS", "UNRESOLVED",
		"STATUS"})
	table.AppendBulk(rows)
	table.Render()
}

func renderDiagnostics(w io.Writer, results []encoded) {
	var rows [][]string
	for _, r := range results {
		if r.err != nil {
			continue
		}
		for _, d := range r.result.Diagnostics {
			rows = append(rows, []string{r.path, d.Kind, d.Element, d.Path, d.Detail})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No diagnostics.")
		return
	}
	table := newTable(w, []string{"FILE", "KIND", "ELEMENT", "PATH", "DETAIL"})
	table.AppendBulk(rows)
	table.Render()
}
