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

package unis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periscope-ps/unisencoder/pkg/unis"
)

func TestSchema(t *testing.T) {
	assert.Equal(t, "http://unis.incntre.iu.edu/schema/20120709/node#",
		unis.DefaultVersion.Schema(unis.KindNode))
	assert.Equal(t, "http://unis.incntre.iu.edu/schema/20140214/link#",
		unis.Version20140214.Schema(unis.KindLink))
	assert.Equal(t, unis.DefaultVersion.Schema(unis.KindPort), unis.Version("").Schema(unis.KindPort))

	for _, v := range []unis.Version{unis.Version20120709, unis.Version20140214} {
		o := v.New(unis.KindDomain)
		assert.Equal(t, unis.KindDomain, unis.KindOf(o))
	}
	assert.Equal(t, unis.Kind(""), unis.KindOf(unis.Object{}))
	assert.Equal(t, unis.Kind(""), unis.KindOf(unis.Object{unis.KeySchema: "http://x/node#"}))
}

func TestParseVersion(t *testing.T) {
	testCases := map[string]struct {
		Input     string
		Expected  unis.Version
		assertErr assert.ErrorAssertionFunc
	}{
		"empty":   {Input: "", Expected: unis.DefaultVersion, assertErr: assert.NoError},
		"old":     {Input: "20120709", Expected: unis.Version20120709, assertErr: assert.NoError},
		"new":     {Input: " 20140214 ", Expected: unis.Version20140214, assertErr: assert.NoError},
		"unknown": {Input: "2011", assertErr: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			v, err := unis.ParseVersion(tc.Input)
			tc.assertErr(t, err)
			assert.Equal(t, tc.Expected, v)
		})
	}
}

func TestAppend(t *testing.T) {
	doc := unis.Object{}
	assert.Equal(t, 0, unis.Append(doc, unis.Nodes, unis.Object{"id": "a"}))
	assert.Equal(t, 1, unis.Append(doc, unis.Nodes, unis.Object{"id": "b"}))
	require.Len(t, unis.List(doc, unis.Nodes), 2)
	assert.Equal(t, "b", unis.List(doc, unis.Nodes)[1].(unis.Object)["id"])
	assert.Nil(t, unis.List(doc, unis.Links))

	assert.Equal(t, "#/nodes/1", unis.Pointer(unis.RootPointer, unis.Nodes, 1))
	assert.Equal(t, "#/domains/0/ports/3", unis.Pointer("#/domains/0", unis.Ports, 3))
}

func TestProps(t *testing.T) {
	o := unis.Object{}
	unis.Props(o, unis.NSGENI)["client_id"] = "pc1"
	unis.Props(o, unis.NSGENI)["sliver_id"] = "s1"
	unis.AddRelation(o, "over", "urn:a")
	unis.AppendHref(o, unis.Ports, "#/ports/0")

	assert.Equal(t, unis.Object{
		"properties": unis.Object{
			"geni": unis.Object{"client_id": "pc1", "sliver_id": "s1"},
		},
		"relations": unis.Object{
			"over": []any{unis.Object{"href": "urn:a", "rel": "full"}},
		},
		"ports": []any{unis.Object{"href": "#/ports/0", "rel": "full"}},
	}, o)
}

func TestEndpointsApply(t *testing.T) {
	directed := unis.Object{}
	unis.Endpoints{Directed: true, Source: "#/ports/0", Sink: "urn:x"}.Apply(directed)
	assert.Equal(t, unis.Object{
		"directed": true,
		"endpoints": unis.Object{
			"source": unis.Object{"href": "#/ports/0", "rel": "full"},
			"sink":   unis.Object{"href": "urn:x", "rel": "full"},
		},
	}, directed)

	undirected := unis.Object{}
	unis.Endpoints{Pair: []string{"a", "b"}}.Apply(undirected)
	assert.Equal(t, unis.Object{
		"directed": false,
		"endpoints": []any{
			unis.Object{"href": "a", "rel": "full"},
			unis.Object{"href": "b", "rel": "full"},
		},
	}, undirected)
}

func TestCount(t *testing.T) {
	v := unis.DefaultVersion
	doc := v.New(unis.KindTopology)
	domain := v.New(unis.KindDomain)
	node := v.New(unis.KindNode)
	unis.AppendHref(node, unis.Ports, "#/domains/0/ports/0")
	unis.Append(domain, unis.Nodes, node)
	unis.Append(domain, unis.Ports, v.New(unis.KindPort))
	unis.Append(domain, unis.Ports, v.New(unis.KindPort))
	unis.Append(domain, unis.Links, v.New(unis.KindLink))
	unis.Append(doc, unis.Domains, domain)

	assert.Equal(t, map[string]int{
		unis.Domains: 1,
		unis.Nodes:   1,
		unis.Ports:   2,
		unis.Links:   1,
	}, unis.Count(doc))
	assert.Empty(t, unis.Count(unis.Object{}))
}
