// Copyright 2023 Anapaya Systems
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

package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

// NewGendocs creates the hidden command that writes the markdown reference
// of the whole command tree.
func NewGendocs(pather Pather) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "gendocs <directory>",
		Short:   "Generate the markdown command reference",
		Example: fmt.Sprintf("  %[1]s gendocs doc/command", pather.CommandPath()),
		Args:    cobra.ExactArgs(1),
		Hidden:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Root().DisableAutoGenTag = true
			directory := args[0]
			if err := os.MkdirAll(directory, 0755); err != nil {
				return serrors.Wrap("creating directory", err, "directory", directory)
			}
			if err := GenMarkdown(cmd.Root(), directory); err != nil {
				return serrors.Wrap("generating documentation", err, "directory", directory)
			}
			return nil
		},
	}
	return cmd
}

// GenMarkdown writes one markdown file per available command of the tree
// rooted at root. Every page starts with a front matter carrying its title.
func GenMarkdown(root *cobra.Command, dir string) error {
	prepend := func(file string) string {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		return fmt.Sprintf("---\ntitle: %s\n---\n\n", strings.ReplaceAll(name, "_", " "))
	}
	link := func(name string) string {
		return strings.ToLower(name)
	}
	return doc.GenMarkdownTreeCustom(root, dir, prepend, link)
}
