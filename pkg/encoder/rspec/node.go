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
	"strconv"
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

func encodeLocation(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	return fillLocation(st, el, parent, c)
}

// fillLocation stores the location described by el in dst.
func fillLocation(st *encoder.State, el *source.Element, dst unis.Object,
	c encoder.Context) (any, error) {

	loc := unis.Sub(dst, unis.KeyLocation)
	attrs := el.Attrs()
	copyAttrs(loc, attrs, "country")
	for _, key := range []string{"latitude", "longitude"} {
		v, ok := attrs.PopTrimmed(key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, serrors.JoinNoStack(encoder.ErrInvalidNumber, err,
				"attr", key, "value", v)
		}
		loc[key] = f
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, loc, c); err != nil {
		return nil, err
	}
	return loc, nil
}

func encodeHardwareType(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	hw := unis.Object{}
	attrs := el.Attrs()
	copyNonEmpty(hw, attrs, "name")
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, hw, c); err != nil {
		return nil, err
	}
	appendRecord(parent, "hardware_types", hw)
	return hw, nil
}

func encodeAvailable(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	available := unis.Sub(unis.Props(parent, unis.NSGENI), "available")
	attrs := el.Attrs()
	if v, ok := attrs.Pop("now"); ok {
		now := parseBool(st, el, v)
		available["now"] = now
		if b, ok := now.(bool); ok && b {
			parent[unis.KeyStatus] = "AVAILABLE"
		}
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, available, c); err != nil {
		return nil, err
	}
	return available, nil
}

func encodeCloud(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	cloud := unis.Sub(unis.Props(parent, unis.NSGENI), "cloud")
	st.Unparsed(el, el.Attrs())
	if _, err := st.Children(el, cloud, c); err != nil {
		return nil, err
	}
	return cloud, nil
}

func encodeSliverType(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	sliverType := unis.Sub(unis.Props(parent, unis.NSGENI), "sliver_type")
	attrs := el.Attrs()
	copyAttrs(sliverType, attrs, "name", "default")
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, sliverType, c); err != nil {
		return nil, err
	}
	return sliverType, nil
}

// encodeDiskImage appends a disk image to out, which is the sliver type of
// the node.
func encodeDiskImage(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	encoder.MustParent(el, c, unis.KindNode)
	image := unis.Object{}
	attrs := el.Attrs()
	copyAttrs(image, attrs, "name", "os", "version", "description", "default", "url")
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, image, c); err != nil {
		return nil, err
	}
	unis.Append(out, "disk_images", image)
	return image, nil
}

// encodeRelation records a relation of the node and references the related
// node from relations.<type>.
func encodeRelation(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	attrs := el.Attrs()
	rtype, err := required(attrs, "type")
	if err != nil {
		return nil, err
	}
	rel := unis.Object{"type": rtype}
	copyAttrs(rel, attrs, "component_id", "client_id")
	if cid := str(rel, "component_id"); cid != "" {
		ref, err := relationRef(st, cid, c)
		if err != nil {
			return nil, err
		}
		unis.AddRelation(parent, rtype, ref)
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, rel, c); err != nil {
		return nil, err
	}
	appendRecord(parent, "relations", rel)
	return rel, nil
}

// relationRef references the node with the given component id. Nodes that
// are not part of the document are selected by query.
func relationRef(st *encoder.State, componentID string, c encoder.Context) (string, error) {
	if c.Params.DocType != encoder.Manifest {
		target, err := st.Find(encoder.Query{
			Attr:     "component_id",
			ID:       componentID,
			Kind:     "node",
			Tolerant: true,
		})
		if err != nil {
			return "", err
		}
		if target != nil {
			return selfLink(st, target, c.Params.DocType)
		}
	}
	return encoder.CollectionQuery(unis.Nodes, encoder.FieldURN, urn.RSpecURN(componentID)), nil
}

func encodeHost(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode, unis.KindPort)
	host := unis.Object{}
	attrs := el.Attrs()
	if name, _ := attrs.PopTrimmed("name"); name != "" {
		host["hostname"] = name
		parent[unis.KeyID] = name
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, host, c); err != nil {
		return nil, err
	}
	appendRecord(parent, "hosts", host)
	return host, nil
}

func encodeIP(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindPort)
	ip := unis.Sub(unis.Props(parent, unis.NSGENI), "ip")
	attrs := el.Attrs()
	addr, err := required(attrs, "address")
	if err != nil {
		return nil, err
	}
	ip["address"] = addr
	copyNonEmpty(ip, attrs, "netmask")
	ipType := urn.AddressIPv4
	if t, _ := attrs.PopTrimmed("type"); t != "" {
		ipType = strings.ToLower(t)
	}
	ip["type"] = ipType
	parent[unis.KeyAddress] = unis.Object{"address": addr, "type": ipType}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, ip, c); err != nil {
		return nil, err
	}
	return ip, nil
}

// encodeServices encodes the services of a node or interface. The services
// themselves store their records in the parent.
func encodeServices(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	encoder.MustParent(el, c, unis.KindNode, unis.KindPort)
	services := unis.Object{}
	st.Unparsed(el, el.Attrs())
	if _, err := st.Children(el, services, c); err != nil {
		return nil, err
	}
	return services, nil
}

func encodeLogin(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode, unis.KindPort)
	login := unis.Object{}
	attrs := el.Attrs()
	copyNonEmpty(login, attrs, "authentication", "hostname", "port", "username")
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, login, c); err != nil {
		return nil, err
	}
	appendRecord(parent, "logins", login)
	return login, nil
}

func encodeGeminiNode(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	gemini := unis.Sub(unis.Props(parent, unis.NSGENI), "gemini")
	attrs := el.Attrs()
	t, err := required(attrs, "type")
	if err != nil {
		return nil, err
	}
	if t != "" {
		gemini["type"] = t
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, gemini, c); err != nil {
		return nil, err
	}
	return gemini, nil
}

func encodeGeminiMonitorURN(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	parent := encoder.MustParent(el, c, unis.KindNode)
	gemini := unis.Sub(unis.Props(parent, unis.NSGENI), "gemini")
	attrs := el.Attrs()
	name, err := required(attrs, "name")
	if err != nil {
		return nil, err
	}
	if name != "" {
		gemini["monitor_urn"] = name
	}
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, gemini, c); err != nil {
		return nil, err
	}
	return gemini, nil
}
