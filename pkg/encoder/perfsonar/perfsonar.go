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

// Package perfsonar encodes perfSONAR topology documents: the NMTB base
// schema with its L2, L3 and L4 extensions and the OSCARS control plane
// schema.
//
// The root topology element becomes the topology document. Domains are
// appended to the topology, and nodes, ports and links to the innermost
// enclosing domain. Identifiers are OGF network URNs, canonicalized with
// urn.ParseOGF.
package perfsonar

import (
	"strconv"
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// Namespaces of the perfSONAR topology schemas.
const (
	NSBase      = "http://ogf.org/schema/network/topology/base/20070828/"
	NSL2        = "http://ogf.org/schema/network/topology/l2/20070828/"
	NSL3        = "http://ogf.org/schema/network/topology/l3/20070828/"
	NSL4        = "http://ogf.org/schema/network/topology/l4/20070828/"
	NSCtrlPlane = "http://ogf.org/schema/network/topology/ctrlPlane/20080828/"

	nsNML = "http://schemas.ogf.org/nml/base/201103"
)

// Name is the dialect name.
const Name = "ps"

// Dialect returns the perfSONAR dialect.
func Dialect() *encoder.Dialect {
	t := encoder.NewTable()
	t.Register(encodeTopology, "topology", NSBase)
	t.Register(encodeDomain, "domain", NSBase, NSCtrlPlane)
	t.Register(encodeNode, "node", NSBase, NSCtrlPlane)
	t.Register(encodePort, "port", NSL2, NSL3, NSL4, NSCtrlPlane)

	t.Register(encodeName, "name", NSBase, NSL2, NSL3, NSL4)
	t.Register(encodeName, "hostName", NSBase)
	t.Register(encodeName, "ifName", NSL2, NSL3)
	t.Register(encodeDescription, "description", NSBase, NSL2, NSL3, NSL4)
	t.Register(encodeDescription, "ifDescription", NSL2, NSL3)
	t.Register(encodeLocation, "location", NSBase)
	t.Register(encodeCoordinate, "latitude", NSBase)
	t.Register(encodeCoordinate, "longitude", NSBase)
	t.Register(encodeRelation, "relation", NSBase)
	t.Register(encodeIDRef, "idRef", NSBase)
	t.Register(encodeCapacity, "capacity", NSL2, NSL3, NSCtrlPlane)
	t.Register(encodeAddress, "address", NSL3, NSL4, NSCtrlPlane)
	t.Register(encodeAddress, "ipAddress", NSL3)
	t.Register(encodeNetmask, "netmask", NSL3)

	t.Register(encodeL2Link, "link", NSL2)
	t.Register(encodeCtrlLink, "link", NSCtrlPlane)
	t.Register(encodeRemoteLinkID, "remoteLinkId", NSCtrlPlane)
	registerCtrlPlane(t)

	t.Ignore(nsNML)
	return &encoder.Dialect{
		Name:  Name,
		Table: t,
		Collections: map[string]string{
			"topology": unis.Topologies,
			"domain":   unis.Domains,
			"network":  unis.Networks,
			"node":     unis.Nodes,
			"port":     unis.Ports,
			"link":     unis.Links,
			"path":     unis.Paths,
			"service":  unis.Services,
			"metadata": unis.Metadata,
		},
		Variants: func(id string) []string { return []string{urn.ParseOGF(id)} },
	}
}

// New returns an encoder for perfSONAR topologies.
func New(opts ...encoder.Option) *encoder.Encoder {
	return encoder.New(Dialect(), opts...)
}

// identify sets the urn and id of out from the id attribute. It returns the
// canonical urn, which is empty if the element has no id.
func identify(out unis.Object, attrs *source.Attrs) string {
	raw, ok := attrs.PopTrimmed("id")
	if !ok || raw == "" {
		return ""
	}
	u := urn.ParseOGF(raw)
	out[unis.KeyURN] = u
	out[unis.KeyID] = urn.OGFToID(u)
	return u
}

func urnKey(u string) encoder.Key {
	return encoder.Key{Field: encoder.FieldURN, Value: u}
}

// selfLink returns the reference to the output object of el.
func selfLink(st *encoder.State, el *source.Element) (string, error) {
	id, _ := el.Attr("id")
	if id == "" {
		return "", serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
			"attr", "id", "element", el.Name)
	}
	return st.SelfLink(el, urnKey(urn.ParseOGF(id)))
}

// resolve references the element with identifier id. The second result is
// false if the document has no such element.
func resolve(st *encoder.State, id string) (string, bool, error) {
	target, err := st.Find(encoder.Query{Attr: "id", ID: id, Tolerant: true})
	if err != nil || target == nil {
		return "", false, err
	}
	ref, err := selfLink(st, target)
	if err != nil {
		return "", false, err
	}
	return ref, true, nil
}

// resolveOrRaw is like resolve but falls back to id itself.
func resolveOrRaw(st *encoder.State, id string) (string, error) {
	ref, ok, err := resolve(st, id)
	if err != nil || !ok {
		return id, err
	}
	return ref, nil
}

func encodeTopology(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	out[unis.KeySchema] = st.Version().Schema(unis.KindTopology)
	attrs := el.Attrs()
	if u := identify(out, attrs); u != "" {
		st.Register(c.Base, urnKey(u))
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, out, c.WithParent(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// encodeDomain appends a domain to out. The primitives in the domain are
// appended to the domain's collections.
func encodeDomain(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	domain := st.New(unis.KindDomain)
	attrs := el.Attrs()
	u := identify(domain, attrs)
	idx := unis.Append(out, unis.Domains, domain)
	ptr := unis.Pointer(c.Base, unis.Domains, idx)
	st.Register(ptr, urnKey(u))
	st.Unparsed(el, attrs)

	inner := c.WithCollection(domain, ptr).WithParent(domain)
	inner.ParentPort = ""
	if _, err := st.Children(el, domain, inner); err != nil {
		return nil, err
	}
	return domain, nil
}

func encodeNode(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	node := st.New(unis.KindNode)
	attrs := el.Attrs()
	u := identify(node, attrs)
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, node, c.WithParent(node)); err != nil {
		return nil, err
	}
	idx := unis.Append(c.Collection, unis.Nodes, node)
	st.Register(unis.Pointer(c.Base, unis.Nodes, idx), urnKey(u))
	return node, nil
}

// encodePort appends a port to the enclosing collection. A port nested in a
// node is referenced from the node's ports.
func encodePort(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	port := st.New(unis.KindPort)
	attrs := el.Attrs()
	u := identify(port, attrs)
	idx := unis.Append(c.Collection, unis.Ports, port)
	ptr := unis.Pointer(c.Base, unis.Ports, idx)
	if !unis.Same(out, c.Collection) {
		unis.AppendHref(out, unis.Ports, ptr)
	}
	st.Register(ptr, urnKey(u))
	st.Unparsed(el, attrs)

	inner := c.WithParent(port)
	inner.ParentPort = ptr
	if _, err := st.Children(el, port, inner); err != nil {
		return nil, err
	}
	return port, nil
}

func encodeName(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	name := el.TrimmedText()
	out[unis.KeyName] = name
	return name, nil
}

func encodeDescription(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	desc := el.TrimmedText()
	if desc == "" {
		return nil, nil
	}
	out[unis.KeyDescription] = desc
	return desc, nil
}

func encodeLocation(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	loc := unis.Sub(out, unis.KeyLocation)
	if _, err := st.Children(el, out, c); err != nil {
		return nil, err
	}
	return loc, nil
}

// encodeCoordinate stores latitude or longitude in the location of out.
func encodeCoordinate(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	text := el.TrimmedText()
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, serrors.JoinNoStack(encoder.ErrInvalidNumber, err,
			"element", el.Name.Local, "value", text)
	}
	unis.Sub(out, unis.KeyLocation)[el.Name.Local] = v
	return v, nil
}

func encodeCapacity(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	v, err := urn.ParseCapacity(el.TrimmedText())
	if err != nil {
		return nil, err
	}
	out[unis.KeyCapacity] = v
	return v, nil
}

// encodeRelation collects the idRefs of the relation in relations.<type>
// of out.
func encodeRelation(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	attrs := el.Attrs()
	rtype, ok := attrs.PopTrimmed("type")
	if !ok || rtype == "" {
		return nil, serrors.JoinNoStack(encoder.ErrMissingAttribute, nil, "attr", "type")
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, out, c); err != nil {
		return nil, err
	}
	return unis.List(unis.Sub(out, unis.KeyRelations), rtype), nil
}

// encodeIDRef references the element named by the text of el from the
// relation of the enclosing relation element.
func encodeIDRef(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	rtype := ""
	if p := el.Parent(); p != nil && p.Name.Local == "relation" {
		rtype, _ = p.Attr("type")
	}
	if rtype == "" {
		return nil, serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
			"attr", "type", "element", "relation")
	}
	ref, err := resolveOrRaw(st, el.TrimmedText())
	if err != nil {
		return nil, err
	}
	unis.AddRelation(out, rtype, ref)
	return ref, nil
}

// encodeAddress sets the address of the enclosing port. Addresses of other
// primitives have no UNIS representation and are skipped.
func encodeAddress(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	addr := el.TrimmedText()
	if unis.KindOf(c.Parent) != unis.KindPort {
		st.Logger().Debug("Skipping address outside of port",
			"path", el.Path().String(), "address", addr)
		return nil, nil
	}
	attrs := el.Attrs()
	addrType, _ := attrs.PopTrimmed("type")
	if addrType == "" {
		addrType = urn.AddressType(addr)
	}
	st.Unparsed(el, attrs)
	address := unis.Object{"type": strings.ToLower(addrType), "address": addr}
	c.Parent[unis.KeyAddress] = address
	return address, nil
}

func encodeNetmask(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	netmask := el.TrimmedText()
	unis.Props(out, unis.NSIP)["netmask"] = netmask
	return netmask, nil
}
