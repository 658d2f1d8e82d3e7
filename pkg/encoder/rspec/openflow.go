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
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// encodeDatapath encodes an OpenFlow switch of a FOAM advertisement as a
// node of the domain. Its children keep the domain as parent.
func encodeDatapath(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	encoder.MustParent(el, c, unis.KindDomain)
	node := st.New(unis.KindNode)
	node[unis.KeyStatus] = "AVAILABLE"
	props := unis.Props(node, unis.NSGENI)
	attrs := el.Attrs()
	if dpid, ok := attrs.PopTrimmed("dpid"); ok {
		node["dpid"] = strings.ReplaceAll(dpid, ":", "")
	}
	cid, err := required(attrs, "component_id")
	if err != nil {
		return nil, err
	}
	cid = urn.Unquote(cid)
	props["component_id"] = cid
	copyAttrs(props, attrs, "component_manager_id")
	node[unis.KeyID] = urn.FOAMNodeID(cid)
	node[unis.KeyURN] = cid
	st.Unparsed(el, attrs)

	if _, err := st.Children(el, node, c); err != nil {
		return nil, err
	}
	idx := unis.Append(c.Collection, unis.Nodes, node)
	st.Register(unis.Pointer(c.Base, unis.Nodes, idx),
		encoder.Key{Field: encoder.FieldURN, Value: cid})
	return node, nil
}

// encodeFOAMPort encodes a port of the datapath out.
func encodeFOAMPort(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	port := st.New(unis.KindPort)
	props := unis.Props(port, nsOpenFlow)
	attrs := el.Attrs()
	num, _ := attrs.PopTrimmed("num")
	name, _ := attrs.PopTrimmed("name")
	if num != "" {
		props["num"] = num
	}
	if name != "" {
		props["name"] = name
	}
	port[unis.KeyID] = urn.FOAMPortID(str(out, unis.KeyURN), name, num)
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, port, c); err != nil {
		return nil, err
	}
	appendPrimitive(out, unis.Ports, port, c)
	return port, nil
}

// encodeFOAMLocation stores the location in out rather than in the parent.
func encodeFOAMLocation(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	return fillLocation(st, el, out, c)
}

func encodeFOAMSliver(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	props := unis.Props(out, nsOpenFlow)
	attrs := el.Attrs()
	copyAttrs(props, attrs, "ref", "description", "email")
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, out, c); err != nil {
		return nil, err
	}
	return nil, nil
}

func encodeFOAMController(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	attrs := el.Attrs()
	url, err := required(attrs, "url")
	if err != nil {
		return nil, err
	}
	ctype, err := required(attrs, "type")
	if err != nil {
		return nil, err
	}
	unis.Props(out, nsOpenFlow)["controller_"+ctype] = url
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, out, c); err != nil {
		return nil, err
	}
	return nil, nil
}

// encodeFOAMGroup encodes the children of a group into out.
func encodeFOAMGroup(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	_, err := st.Children(el, out, c)
	return nil, err
}

// encodeTopo records the remote end of a FOAM port.
func encodeTopo(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	topo := unis.Object{"type": el.Name.Local}
	attrs := el.Attrs()
	copyAttrs(topo, attrs, "desc", "remote-component-id", "remote-port-name", "remote-hostname")
	unis.Sub(out, unis.KeyProperties)[nsTopo] = topo
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, topo, c); err != nil {
		return nil, err
	}
	return topo, nil
}
