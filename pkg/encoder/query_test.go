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

package encoder_test

import (
	"testing"

	"github.com/ohler55/ojg/jp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

const queryDoc = `<net xmlns="urn:test:toy">
  <topology id="t">
    <domain id="d1">
      <node id="n1"><port id="p1"/></node>
    </domain>
    <domain id="d2">
      <node id="n2"/>
      <node id="n3"/>
    </domain>
  </topology>
  <port id="p2"/>
  <junk id="j"/>
</net>`

func queryDialect() *encoder.Dialect {
	return &encoder.Dialect{
		Name:  "query",
		Table: encoder.NewTable(),
		Collections: map[string]string{
			"topology": unis.Topologies,
			"domain":   unis.Domains,
			"node":     unis.Nodes,
			"port":     unis.Ports,
		},
	}
}

func TestQueryExpression(t *testing.T) {
	tree, err := source.ParseBytes([]byte(queryDoc))
	require.NoError(t, err)
	testCases := map[string]struct {
		ID        string
		Field     string
		Expected  string
		assertErr assert.ErrorAssertionFunc
	}{
		"topology": {
			ID:        "t",
			Expected:  "$.topologies[?(@.urn == 't')]",
			assertErr: assert.NoError,
		},
		"second domain": {
			ID:        "d2",
			Expected:  "$.topologies[0].domains[?(@.urn == 'd2')]",
			assertErr: assert.NoError,
		},
		"node in second domain": {
			ID:        "n3",
			Expected:  "$.topologies[0].domains[1].nodes[?(@.urn == 'n3')]",
			assertErr: assert.NoError,
		},
		"port skips its node": {
			ID:        "p1",
			Expected:  "$.topologies[0].domains[0].ports[?(@.urn == 'p1')]",
			assertErr: assert.NoError,
		},
		"top level port": {
			ID:        "p2",
			Field:     encoder.FieldClientID,
			Expected:  "$.ports[?(@.properties.geni.client_id == 'p2')]",
			assertErr: assert.NoError,
		},
		"unknown kind": {
			ID:        "j",
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			found := tree.Lookup("id", "", tc.ID)
			require.Len(t, found, 1)
			field := tc.Field
			if field == "" {
				field = encoder.FieldURN
			}
			got, err := encoder.QueryExpression(queryDialect(), found[0], field, tc.ID)
			tc.assertErr(t, err)
			if err != nil {
				assert.ErrorIs(t, err, encoder.ErrUnrecognizedKind)
				return
			}
			assert.Equal(t, tc.Expected, got)
		})
	}
}

func TestQueryExpressionRoot(t *testing.T) {
	tree, err := source.ParseBytes([]byte(queryDoc))
	require.NoError(t, err)
	_, err = encoder.QueryExpression(queryDialect(), tree.Root(), encoder.FieldURN, "x")
	assert.ErrorIs(t, err, encoder.ErrUnrecognizedKind)
}

// The expressions select the intended object when evaluated against a
// document of the corresponding shape.
func TestQueryExpressionEvaluates(t *testing.T) {
	tree, err := source.ParseBytes([]byte(queryDoc))
	require.NoError(t, err)
	n3 := map[string]any{"urn": "n3"}
	p1 := map[string]any{"urn": "p1"}
	doc := map[string]any{
		"topologies": []any{
			map[string]any{
				"urn": "t",
				"domains": []any{
					map[string]any{
						"urn":   "d1",
						"nodes": []any{map[string]any{"urn": "n1"}},
						"ports": []any{p1},
					},
					map[string]any{
						"urn":   "d2",
						"nodes": []any{map[string]any{"urn": "n2"}, n3},
					},
				},
			},
		},
	}
	for id, expected := range map[string]any{"n3": n3, "p1": p1} {
		el := tree.Lookup("id", "", id)
		require.Len(t, el, 1)
		expr, err := encoder.QueryExpression(queryDialect(), el[0], encoder.FieldURN, id)
		require.NoError(t, err)
		got := jp.MustParseString(expr).Get(doc)
		require.Len(t, got, 1, expr)
		assert.Equal(t, expected, got[0], expr)
	}
}
