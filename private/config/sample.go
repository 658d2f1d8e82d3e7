// Copyright 2019 Anapaya Systems
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

package config

import (
	"fmt"
	"io"
	"strings"
)

// CtxMap contains the context for sample generation.
type CtxMap map[string]string

// sampleIndent is the indentation of the keys of a table in the sample.
const sampleIndent = "    "

// WriteSample writes the samples of samplers to dst, in order. The sample of
// a TableSampler is written below its [path.name] header with its keys
// indented. It panics if writing fails.
func WriteSample(dst io.Writer, path Path, ctx CtxMap, samplers ...Sampler) {
	for _, sampler := range samplers {
		ts, ok := sampler.(TableSampler)
		if !ok {
			sampler.Sample(dst, path, ctx)
			continue
		}
		table := path.Extend(ts.ConfigName())
		var block strings.Builder
		ts.Sample(&block, table, ctx)
		WriteString(dst, "\n["+strings.Join(table, ".")+"]\n")
		WriteString(dst, indent(block.String()))
	}
}

// WriteString writes s to dst. It panics if writing fails.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("writing sample: %s", err))
	}
}

// indent indents the non-empty lines of block. Leading empty lines are
// dropped, the header is written directly above the first key.
func indent(block string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimLeft(block, "\n"), "\n") {
		if line != "" {
			b.WriteString(sampleIndent)
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
