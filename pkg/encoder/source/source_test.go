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

package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
)

const doc = `<?xml version="1.0"?>
<rspec xmlns="http://www.geni.net/resources/rspec/3"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xmlns:emulab="http://www.protogeni.net/resources/rspec/ext/emulab/1"
    xsi:schemaLocation="http://www.geni.net/resources/rspec/3 ad.xsd"
    type="advertisement">
  <!-- first node -->
  <node component_id="urn:publicid:IDN+test.net+node+pc1">
    <interface component_id="urn:publicid:IDN+test.net+interface+pc1:eth0"/>
    <interface component_id="urn:publicid:IDN+test.net+interface+pc1:eth1"/>
    <emulab:fd name="cpu"/>
  </node>
  <node component_id="urn:publicid:IDN+test.net+node+pc2">
    <interface component_id="urn:publicid:IDN+test.net+interface+pc2:eth0"/>
  </node>
  <link component_id="urn:publicid:IDN+test.net+link+l1">
    <interface_ref component_id="urn:publicid:IDN+test.net+interface+pc1:eth0"/>
  </link>
</rspec>`

const geni = "http://www.geni.net/resources/rspec/3"

func mustParse(t *testing.T) *source.Tree {
	t.Helper()
	tree, err := source.ParseBytes([]byte(doc))
	require.NoError(t, err)
	return tree
}

func TestParse(t *testing.T) {
	tree := mustParse(t)
	root := tree.Root()
	assert.Equal(t, source.QName{Space: geni, Local: "rspec"}, root.Name)
	assert.Nil(t, root.Parent())

	children := root.Children()
	require.Len(t, children, 4)
	assert.True(t, children[0].IsComment())
	assert.Equal(t, " first node ", children[0].Text)
	assert.Len(t, root.ChildElements(), 3)

	node := children[1]
	assert.Equal(t, root, node.Parent())
	ext := node.ChildElements()[2]
	assert.Equal(t, source.QName{
		Space: "http://www.protogeni.net/resources/rspec/ext/emulab/1",
		Local: "fd",
	}, ext.Name)

	for i := 0; i < tree.Len(); i++ {
		assert.Equal(t, uint32(i), tree.Element(uint32(i)).Ordinal())
	}

	_, err := source.ParseBytes([]byte("<a><</a>"))
	assert.Error(t, err)
	_, err = source.ParseBytes(nil)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	tree := mustParse(t)
	root := tree.Root()
	nodes := root.ChildElements()

	assert.Equal(t, "/rspec", root.Path().String())
	assert.Equal(t, "/rspec/node[1]", nodes[0].Path().String())
	assert.Equal(t, "/rspec/node[2]/interface", nodes[1].ChildElements()[0].Path().String())
	assert.Equal(t, "/rspec/node[1]/interface[2]", nodes[0].ChildElements()[1].Path().String())
	assert.Equal(t, source.Path{
		{Local: "rspec"}, {Local: "link"}, {Local: "interface_ref"},
	}, nodes[2].ChildElements()[0].Path())
}

func TestAttrs(t *testing.T) {
	root := mustParse(t).Root()

	v, ok := root.Attr("type")
	assert.True(t, ok)
	assert.Equal(t, "advertisement", v)
	assert.Equal(t, "x", root.AttrDefault("missing", "x"))

	attrs := root.Attrs()
	assert.Equal(t, 2, attrs.Len(), "namespace declarations are not attributes")
	_, ok = attrs.PopNS("http://www.w3.org/2001/XMLSchema-instance", "schemaLocation")
	assert.True(t, ok)
	v, ok = attrs.PopTrimmed("type")
	assert.True(t, ok)
	assert.Equal(t, "advertisement", v)
	_, ok = attrs.Pop("type")
	assert.False(t, ok)
	assert.Zero(t, attrs.Len())

	// The working copy does not alter the element.
	_, ok = root.Attr("type")
	assert.True(t, ok)
}

func TestLookup(t *testing.T) {
	tree := mustParse(t)
	eth0 := "urn:publicid:IDN+test.net+interface+pc1:eth0"

	got := tree.Lookup("component_id", "interface", eth0)
	require.Len(t, got, 1)
	assert.Equal(t, "interface", got[0].Name.Local)

	got = tree.Lookup("component_id", "", eth0)
	require.Len(t, got, 2)
	assert.Equal(t, "interface", got[0].Name.Local)
	assert.Equal(t, "interface_ref", got[1].Name.Local)

	got = tree.Lookup("component_id", "interface", eth0,
		"urn:publicid:IDN+test.net+interface+pc2:eth0", "nothing")
	assert.Len(t, got, 2)

	assert.Empty(t, tree.Lookup("component_id", "node", eth0))
	assert.Empty(t, tree.Lookup("component_id", "unknown", eth0))
	assert.Empty(t, tree.Lookup("client_id", "", eth0))

	assert.Equal(t, 3, tree.Count("interface"))
	assert.Equal(t, 0, tree.Count("port"))
}
