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

// Package rspec encodes GENI RSpec v3 advertisements and manifests.
//
// The root rspec element becomes a domain. Nodes, interfaces and links are
// appended to the nodes, ports and links collections of the domain;
// interfaces nested in a node are referenced from the node's ports. Links
// reference their endpoints through hrefs resolved by the encoder.
package rspec

import (
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// Namespaces of the RSpec documents and the extensions understood.
const (
	NSProtoGENI3 = "http://www.protogeni.net/resources/rspec/3"
	NSProtoGENI2 = "http://www.protogeni.net/resources/rspec/2"
	NSGENI3      = "http://www.geni.net/resources/rspec/3"

	NSSharedVLANProtoGENI = "http://www.protogeni.net/resources/rspec/ext/shared-vlan/1"
	NSSharedVLANGENI      = "http://www.geni.net/resources/rspec/ext/shared-vlan/1"

	NSGemini   = "http://geni.net/resources/rspec/ext/gemini/1"
	NSOpenFlow = "http://www.geni.net/resources/rspec/ext/openflow/3"
	NSTopo     = "http://geni.bssoftworks.com/rspec/ext/topo/1"
	NSOpState  = "http://www.geni.net/resources/rspec/ext/opstate/1"

	nsXSI = "http://www.w3.org/2001/XMLSchema-instance"
)

// Vendor extensions without UNIS representation.
var ignoredNamespaces = []string{
	"http://hpn.east.isi.edu/rspec/ext/stitch/0.1/",
	"http://www.protogeni.net/resources/rspec/ext/emulab/1",
	"http://www.protogeni.net/resources/rspec/ext/flack/1",
	"http://www.protogeni.net/resources/rspec/ext/client/1",
}

var rspecNamespaces = []string{NSProtoGENI3, NSProtoGENI2, NSGENI3}

// Name is the dialect name.
const Name = "rspec3"

// Properties namespaces used in addition to geni.
const (
	nsOpenFlow = "openflow"
	nsTopo     = "topo"
)

// Dialect returns the RSpec v3 dialect.
func Dialect() *encoder.Dialect {
	t := encoder.NewTable()
	for local, h := range map[string]encoder.Handler{
		"rspec":             encodeRSpec,
		"node":              encodeNode,
		"interface":         encodeInterface,
		"link":              encodeLink,
		"external_ref":      encodeExternalRef,
		"location":          encodeLocation,
		"hardware_type":     encodeHardwareType,
		"available":         encodeAvailable,
		"cloud":             encodeCloud,
		"sliver_type":       encodeSliverType,
		"disk_image":        encodeDiskImage,
		"relation":          encodeRelation,
		"host":              encodeHost,
		"ip":                encodeIP,
		"services":          encodeServices,
		"login":             encodeLogin,
		"link_type":         encodeLinkType,
		"component_manager": encodeComponentManager,
		"interface_ref":     encodeInterfaceRef,
		"property":          encodeProperty,
	} {
		t.Register(h, local, rspecNamespaces...)
	}
	t.Register(encodeSharedVLAN, "link_shared_vlan", NSSharedVLANProtoGENI, NSSharedVLANGENI)

	t.Register(encodeGeminiNode, "node", NSGemini)
	t.Register(encodeGeminiMonitorURN, "monitor_urn", NSGemini)

	t.Register(encodeDatapath, "datapath", NSOpenFlow)
	t.Register(encodeFOAMPort, "port", NSOpenFlow)
	t.Register(encodeFOAMLocation, "location", NSOpenFlow)
	t.Register(encodeFOAMSliver, "sliver", NSOpenFlow)
	t.Register(encodeFOAMController, "controller", NSOpenFlow)
	t.Register(encodeFOAMGroup, "group", NSOpenFlow)
	t.Register(skip, "match", NSOpenFlow)

	for _, local := range []string{"geni-of", "geni-host", "other", "pg-host"} {
		t.Register(encodeTopo, local, NSTopo)
	}
	t.Register(skip, "rspec_opstate", NSOpState)

	t.Ignore(ignoredNamespaces...)
	return &encoder.Dialect{
		Name:  Name,
		Table: t,
		Collections: map[string]string{
			"topology":  unis.Topologies,
			"domain":    unis.Domains,
			"rspec":     unis.Domains,
			"network":   unis.Networks,
			"node":      unis.Nodes,
			"port":      unis.Ports,
			"interface": unis.Ports,
			"link":      unis.Links,
			"path":      unis.Paths,
			"service":   unis.Services,
			"metadata":  unis.Metadata,
		},
	}
}

// New returns an encoder for RSpec v3 documents.
func New(opts ...encoder.Option) *encoder.Encoder {
	return encoder.New(Dialect(), opts...)
}

// skip drops the element and its subtree.
func skip(*encoder.State, *source.Element, unis.Object, encoder.Context) (any, error) {
	return nil, nil
}

func encodeRSpec(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	out[unis.KeySchema] = st.Version().Schema(unis.KindDomain)
	props := unis.Props(out, unis.NSGENI)
	attrs := el.Attrs()
	attrs.PopNS(nsXSI, "schemaLocation")
	copyAttrs(props, attrs, "generated", "generated_by", "expires")

	docType := c.Params.DocType
	if t, ok := attrs.PopTrimmed("type"); ok {
		docType = encoder.DocType(t)
	}
	switch docType {
	case encoder.Manifest:
		if c.Params.SliceURN == "" {
			return nil, serrors.JoinNoStack(encoder.ErrMissingSliceURN, nil)
		}
		props["slice_urn"] = c.Params.SliceURN
		if c.Params.SliceUUID != "" {
			props["slice_uuid"] = c.Params.SliceUUID
		}
		out[unis.KeyURN] = c.Params.SliceURN
		out[unis.KeyID] = urn.GENIToID(c.Params.SliceURN)
	case encoder.Advertisement:
		if c.Params.ComponentManagerID == "" {
			return nil, serrors.JoinNoStack(encoder.ErrMissingComponentManager, nil)
		}
		out[unis.KeyURN] = c.Params.ComponentManagerID
		out[unis.KeyID] = urn.GENIToID(c.Params.ComponentManagerID)
	default:
		return nil, serrors.JoinNoStack(encoder.ErrUnsupportedDocType, nil,
			"type", string(docType))
	}
	props["type"] = string(docType)

	c.Params.DocType = docType
	if _, err := st.Children(el, out, c.WithParent(out)); err != nil {
		return nil, err
	}
	st.Unparsed(el, attrs)
	return out, nil
}

// copyAttrs pops the named attributes and stores their trimmed values in
// dst.
func copyAttrs(dst unis.Object, attrs *source.Attrs, names ...string) {
	for _, name := range names {
		if v, ok := attrs.PopTrimmed(name); ok {
			dst[name] = v
		}
	}
}

// copyNonEmpty is like copyAttrs but skips empty values.
func copyNonEmpty(dst unis.Object, attrs *source.Attrs, names ...string) {
	for _, name := range names {
		if v, _ := attrs.PopTrimmed(name); v != "" {
			dst[name] = v
		}
	}
}

func required(attrs *source.Attrs, name string) (string, error) {
	v, ok := attrs.PopTrimmed(name)
	if !ok {
		return "", serrors.JoinNoStack(encoder.ErrMissingAttribute, nil, "attr", name)
	}
	return v, nil
}

// parseBool parses an xml boolean. Invalid tokens are reported and kept
// verbatim.
func parseBool(st *encoder.State, el *source.Element, raw string) any {
	if v, ok := urn.ParseBoolean(raw); ok {
		return v
	}
	st.Diagnose(encoder.DiagInvalidBoolean, el, raw)
	return strings.TrimSpace(raw)
}

// appendRecord appends rec to the list stored under key in the geni
// properties of o.
func appendRecord(o unis.Object, key string, rec unis.Object) {
	unis.Append(unis.Props(o, unis.NSGENI), key, rec)
}

// records returns the objects of the list stored under key in the geni
// properties of o.
func records(o unis.Object, key string) []unis.Object {
	var out []unis.Object
	for _, v := range unis.List(unis.Props(o, unis.NSGENI), key) {
		if rec, ok := v.(unis.Object); ok {
			out = append(out, rec)
		}
	}
	return out
}

func str(o unis.Object, key string) string {
	s, _ := o[key].(string)
	return s
}
