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

package encoder

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

// Fields a query expression can filter on.
const (
	FieldURN      = unis.KeyURN
	FieldSliverID = "properties.geni.sliver_id"
	FieldClientID = "properties.geni.client_id"
)

// indexed collections keep their positional index in query expressions.
var indexed = map[string]bool{
	unis.Topologies: true,
	unis.Domains:    true,
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// QueryExpression returns the JSONPath expression selecting the output
// object of el whose field equals value. The path follows the ancestors of
// el: the root is elided, topologies and domains are addressed by index and
// consecutive non-indexed collections collapse into the innermost one,
// which carries the filter.
func QueryExpression(d *Dialect, el *source.Element, field, value string) (string, error) {
	path := el.Path()
	if len(path) < 2 {
		return "", serrors.JoinNoStack(ErrUnrecognizedKind, nil,
			"path", path.String(), "reason", "document root")
	}
	type seg struct {
		coll  string
		index string
	}
	var segs []seg
	for _, s := range path[1:] {
		coll, ok := d.Collections[s.Local]
		if !ok {
			return "", serrors.JoinNoStack(ErrUnrecognizedKind, nil,
				"kind", s.Local, "path", path.String())
		}
		if n := len(segs); n > 0 && !indexed[segs[n-1].coll] {
			segs = segs[:n-1]
		}
		idx := ""
		switch {
		case s.Index > 0:
			idx = "[" + strconv.Itoa(s.Index-1) + "]"
		case indexed[coll]:
			idx = "[0]"
		}
		segs = append(segs, seg{coll: coll, index: idx})
	}
	parts := make([]string, 0, len(segs))
	for i, s := range segs {
		if i == len(segs)-1 {
			parts = append(parts, s.coll)
			break
		}
		parts = append(parts, s.coll+s.index)
	}
	expr := CollectionQuery(strings.Join(parts, "."), field, value)
	if _, err := jp.ParseString(expr); err != nil {
		return "", serrors.Wrap("invalid query expression", err, "expr", expr)
	}
	return expr, nil
}

// CollectionQuery returns the query expression selecting the elements of
// the collection at path, relative to the document root, whose field equals
// value.
func CollectionQuery(path, field, value string) string {
	return "$." + path + "[?(@." + field + " == '" + quoteReplacer.Replace(value) + "')]"
}
