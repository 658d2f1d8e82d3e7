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

package rspec

import (
	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// identify sets urn, id and name of a node, interface or link. In an
// advertisement they derive from the component id, in a manifest from the
// slice urn and the client id.
func identify(out unis.Object, kind string, c encoder.Context) error {
	props := unis.Props(out, unis.NSGENI)
	if c.Params.SliceUUID != "" {
		props["slice_uuid"] = c.Params.SliceUUID
	}
	componentID := str(props, "component_id")
	switch c.Params.DocType {
	case encoder.Advertisement:
		if componentID == "" {
			return serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
				"attr", "component_id", "kind", kind)
		}
		out[unis.KeyURN] = urn.RSpecURN(componentID)
		out[unis.KeyID] = urn.GENIToID(componentID)
		if name := str(props, "component_name"); name != "" {
			out[unis.KeyName] = name
		}
	case encoder.Manifest:
		clientID := str(props, "client_id")
		if clientID == "" {
			return serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
				"attr", "client_id", "kind", kind)
		}
		slice := c.Params.SliceURN
		props["slice_urn"] = slice
		out[unis.KeyURN] = urn.RSpecURN(slice + "+" + kind + "+" + clientID)
		out[unis.KeyID] = urn.GENIToID(slice + "_" + kind + "_" + clientID)
		out[unis.KeyName] = clientID
		if componentID != "" {
			unis.AddRelation(out, "over", componentID)
		}
	}
	return nil
}

// popIdentifiers copies the identifying attributes common to nodes,
// interfaces and links to the geni properties.
func popIdentifiers(props unis.Object, attrs *source.Attrs) {
	if v, ok := attrs.PopTrimmed("component_id"); ok {
		props["component_id"] = urn.Unquote(v)
	}
	copyAttrs(props, attrs, "component_name", "client_id", "sliver_id")
}

func encodeNode(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	node := st.New(unis.KindNode)
	props := unis.Props(node, unis.NSGENI)
	attrs := el.Attrs()
	popIdentifiers(props, attrs)
	copyAttrs(props, attrs, "component_manager_id", "colocate")
	if v, ok := attrs.Pop("exclusive"); ok {
		props["exclusive"] = parseBool(st, el, v)
	}
	if err := identify(node, "node", c); err != nil {
		return nil, err
	}
	if _, err := st.Children(el, node, c.WithParent(node)); err != nil {
		return nil, err
	}
	idx := unis.Append(c.Collection, unis.Nodes, node)
	st.Register(unis.Pointer(c.Base, unis.Nodes, idx), selfKeys(node)...)
	st.Unparsed(el, attrs)
	return node, nil
}

func encodeInterface(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	port := st.New(unis.KindPort)
	props := unis.Props(port, unis.NSGENI)
	attrs := el.Attrs()
	popIdentifiers(props, attrs)
	copyAttrs(props, attrs, "role")
	if v, ok := attrs.PopTrimmed("public_ipv4"); ok {
		props["public_ipv4"] = v
		port[unis.KeyAddress] = unis.Object{"type": urn.AddressIPv4, "address": v}
	}
	if v, ok := attrs.PopTrimmed("mac_address"); ok {
		props["mac_address"] = v
		port[unis.KeyAddress] = unis.Object{"type": "mac", "address": v}
	}
	if err := identify(port, "interface", c); err != nil {
		return nil, err
	}
	if _, err := st.Children(el, port, c.WithParent(port)); err != nil {
		return nil, err
	}
	st.Register(appendPrimitive(out, unis.Ports, port, c), selfKeys(port)...)
	st.Unparsed(el, attrs)
	return port, nil
}

func encodeLink(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	link := st.New(unis.KindLink)
	props := unis.Props(link, unis.NSGENI)
	attrs := el.Attrs()
	popIdentifiers(props, attrs)
	copyAttrs(props, attrs, "vlantag")
	if err := identify(link, "link", c); err != nil {
		return nil, err
	}
	if _, err := st.Children(el, link, c.WithParent(link)); err != nil {
		return nil, err
	}
	d, err := deriveEndpoints(st, el, link, c)
	if err != nil {
		return nil, err
	}
	if d.drop {
		return nil, nil
	}
	d.endpoints.Apply(link)
	if d.capacity != nil {
		link[unis.KeyCapacity] = *d.capacity
	}
	st.Register(appendPrimitive(out, unis.Links, link, c), selfKeys(link)...)
	st.Unparsed(el, attrs)
	return link, nil
}

// encodeExternalRef encodes a node of another aggregate that is referenced
// by this document.
func encodeExternalRef(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	node := st.New(unis.KindNode)
	node[unis.KeyStatus] = "EXTERNAL"
	props := unis.Props(node, unis.NSGENI)
	attrs := el.Attrs()
	if v, ok := attrs.PopTrimmed("component_id"); ok {
		cid := urn.Unquote(v)
		props["component_id"] = cid
		node[unis.KeyURN] = urn.RSpecURN(cid)
		node[unis.KeyID] = urn.GENIToID(cid)
	}
	copyAttrs(props, attrs, "component_manager_id")
	if _, err := st.Children(el, node, c.WithParent(node)); err != nil {
		return nil, err
	}
	idx := unis.Append(c.Collection, unis.Nodes, node)
	st.Register(unis.Pointer(c.Base, unis.Nodes, idx), selfKeys(node)...)
	st.Unparsed(el, attrs)
	return node, nil
}

// appendPrimitive appends v to the collection coll and returns its pointer.
// If out is not the owner of the collection, out references v.
func appendPrimitive(out unis.Object, coll string, v unis.Object, c encoder.Context) string {
	idx := unis.Append(c.Collection, coll, v)
	ptr := unis.Pointer(c.Base, coll, idx)
	if !unis.Same(out, c.Collection) {
		unis.AppendHref(out, coll, ptr)
	}
	return ptr
}

// selfKeys returns the keys the self links to o are made with.
func selfKeys(o unis.Object) []encoder.Key {
	props := unis.Props(o, unis.NSGENI)
	return []encoder.Key{
		{Field: encoder.FieldURN, Value: str(o, unis.KeyURN)},
		{Field: encoder.FieldURN, Value: urn.RSpecURN(str(props, "component_id"))},
		{Field: encoder.FieldSliverID, Value: urn.RSpecURN(str(props, "sliver_id"))},
		{Field: encoder.FieldClientID, Value: urn.RSpecURN(str(props, "client_id"))},
	}
}

// selfLink returns the reference to the output object of el. Manifests
// identify objects by sliver id, falling back to the client id; other
// documents by component id.
func selfLink(st *encoder.State, el *source.Element, docType encoder.DocType) (string, error) {
	var k encoder.Key
	if docType == encoder.Manifest {
		if v := trimmedAttr(el, "sliver_id"); v != "" {
			k = encoder.Key{Field: encoder.FieldSliverID, Value: v}
		} else {
			k = encoder.Key{Field: encoder.FieldClientID, Value: trimmedAttr(el, "client_id")}
		}
	} else {
		k = encoder.Key{Field: encoder.FieldURN, Value: urn.RSpecURN(el.AttrDefault("component_id", ""))}
	}
	if k.Value == "" {
		return "", serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
			"attr", "component_id, sliver_id or client_id", "element", el.Name)
	}
	return st.SelfLink(el, k)
}

func trimmedAttr(el *source.Element, key string) string {
	v, _ := el.Attr(key)
	return urn.RSpecURN(v)
}
