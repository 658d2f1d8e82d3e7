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
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// Keys of the link records in the geni properties. The endpoints of a link
// are derived from them once all children are encoded.
const (
	keyInterfaceRefs = "interface_refs"
	keySharedVLANs   = "link_shared_vlans"
	keyProperties    = "properties"
)

func encodeLinkType(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindLink)
	attrs := el.Attrs()
	name, err := required(attrs, "name")
	if err != nil {
		return nil, err
	}
	lt := unis.Object{}
	if name != "" {
		lt["name"] = name
	}
	copyNonEmpty(lt, attrs, "class")
	return appendLinkRecord(st, el, parent, "link_types", lt, attrs, c)
}

func encodeComponentManager(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindLink)
	attrs := el.Attrs()
	name, err := required(attrs, "name")
	if err != nil {
		return nil, err
	}
	cm := unis.Object{}
	if name != "" {
		cm["name"] = name
	}
	return appendLinkRecord(st, el, parent, "component_managers", cm, attrs, c)
}

func encodeInterfaceRef(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindLink)
	attrs := el.Attrs()
	ref := unis.Object{}
	if v, _ := attrs.PopTrimmed("component_id"); v != "" {
		ref["component_id"] = urn.Unquote(v)
	}
	copyNonEmpty(ref, attrs, "client_id", "sliver_id")
	return appendLinkRecord(st, el, parent, keyInterfaceRefs, ref, attrs, c)
}

func encodeProperty(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindLink)
	attrs := el.Attrs()
	prop := unis.Object{}
	copyNonEmpty(prop, attrs, "source_id", "dest_id", "capacity", "latency", "packet_loss")
	return appendLinkRecord(st, el, parent, keyProperties, prop, attrs, c)
}

func encodeSharedVLAN(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindLink)
	attrs := el.Attrs()
	vlan := unis.Object{}
	copyNonEmpty(vlan, attrs, "name", "vlantag")
	return appendLinkRecord(st, el, parent, keySharedVLANs, vlan, attrs, c)
}

func appendLinkRecord(st *encoder.State, el *source.Element, link unis.Object, key string,
	rec unis.Object, attrs *source.Attrs, c encoder.Context) (any, error) {

	st.Unparsed(el, attrs)
	if _, err := st.Children(el, rec, c); err != nil {
		return nil, err
	}
	appendRecord(link, key, rec)
	return rec, nil
}
