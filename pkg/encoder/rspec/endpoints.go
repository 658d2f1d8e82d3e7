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

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// unresolvableVLAN is the placeholder for a shared vlan endpoint without
// name.
const unresolvableVLAN = "unresolveable sharedvlan endpoint"

// derivation is the outcome of deriveEndpoints.
type derivation struct {
	endpoints unis.Endpoints
	capacity  *int64
	// drop is set if the link references an interface that does not exist.
	drop bool
}

// deriveEndpoints derives the endpoints of link from the records its
// children stored in the geni properties. The first applicable
// representation wins:
//
//  1. two or more interface refs: the first two form an undirected pair;
//  2. one interface ref or shared vlans: the refs plus one placeholder per
//     shared vlan form an undirected pair;
//  3. source/dest property records: one distinct pair makes the link
//     directed, two make it undirected.
func deriveEndpoints(st *encoder.State, el *source.Element, link unis.Object,
	c encoder.Context) (derivation, error) {

	refs := records(link, keyInterfaceRefs)
	vlans := records(link, keySharedVLANs)
	switch {
	case len(refs) >= 2:
		hrefs, ok, err := resolveRefs(st, el, refs, c)
		if err != nil || !ok {
			return derivation{drop: !ok}, err
		}
		if len(hrefs) > 2 {
			// LAN links connect more than two interfaces. Only the first
			// two are represented.
			st.Diagnose(encoder.DiagTruncatedEndpoints, el,
				strconv.Itoa(len(hrefs))+" interface refs")
			unis.Props(link, unis.NSGENI)["lan"] = true
		}
		return derivation{endpoints: unis.Endpoints{Pair: hrefs[:2]}}, nil

	case len(refs) == 1 || len(vlans) > 0:
		hrefs, ok, err := resolveRefs(st, el, refs, c)
		if err != nil || !ok {
			return derivation{drop: !ok}, err
		}
		for _, vlan := range vlans {
			if name := str(vlan, "name"); name != "" {
				hrefs = append(hrefs, "link to "+name+" endpoint")
				continue
			}
			hrefs = append(hrefs, unresolvableVLAN)
		}
		for len(hrefs) < 2 {
			hrefs = append(hrefs, unresolvableVLAN)
		}
		return derivation{endpoints: unis.Endpoints{Pair: hrefs[:2]}}, nil
	}

	props := records(link, keyProperties)
	if len(props) == 0 {
		return derivation{}, serrors.JoinNoStack(encoder.ErrNoEndpoints, nil,
			"link", str(link, unis.KeyURN))
	}
	pairs, err := propertyPairs(props)
	if err != nil {
		return derivation{}, err
	}
	first := pairs[0]
	src, err := propertyEnd(st, first.source, c)
	if err != nil {
		return derivation{}, err
	}
	dst, err := propertyEnd(st, first.dest, c)
	if err != nil {
		return derivation{}, err
	}
	if len(pairs) == 1 {
		d := derivation{endpoints: unis.Endpoints{Directed: true, Source: src, Sink: dst}}
		if first.capacity != "" {
			if d.capacity, err = parseCapacity(first.capacity); err != nil {
				return derivation{}, err
			}
		}
		return d, nil
	}
	d := derivation{endpoints: unis.Endpoints{Pair: []string{src, dst}}}
	if first.capacity != "" && first.capacity == pairs[1].capacity {
		if d.capacity, err = parseCapacity(first.capacity); err != nil {
			return derivation{}, err
		}
	}
	return d, nil
}

// resolveRefs resolves interface refs to references to their interfaces.
// The second result is false if a ref cannot be resolved; the link is
// dropped in that case.
func resolveRefs(st *encoder.State, el *source.Element, refs []unis.Object,
	c encoder.Context) ([]string, bool, error) {

	hrefs := make([]string, 0, len(refs))
	for _, ref := range refs {
		target, err := findInterface(st, ref, c.Params.DocType)
		if err != nil {
			return nil, false, err
		}
		if target == nil {
			st.Diagnose(encoder.DiagUnresolvedReference, el, refLabel(ref),
				"ref", ref)
			return nil, false, nil
		}
		href, err := selfLink(st, target, c.Params.DocType)
		if err != nil {
			return nil, false, err
		}
		hrefs = append(hrefs, href)
	}
	return hrefs, true, nil
}

// findInterface returns the interface ref points to. Manifests are looked up
// by sliver id, then by client id, other documents by component id.
func findInterface(st *encoder.State, ref unis.Object, docType encoder.DocType) (*source.Element, error) {
	if docType != encoder.Manifest {
		cid := str(ref, "component_id")
		if cid == "" {
			return nil, serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
				"attr", "component_id", "element", "interface_ref")
		}
		return st.Find(encoder.Query{Attr: "component_id", ID: cid, Kind: "interface",
			Tolerant: true})
	}
	sliverID, clientID := str(ref, "sliver_id"), str(ref, "client_id")
	if sliverID == "" && clientID == "" {
		return nil, serrors.JoinNoStack(encoder.ErrMissingAttribute, nil,
			"attr", "sliver_id or client_id", "element", "interface_ref")
	}
	if sliverID != "" {
		target, err := st.Find(encoder.Query{Attr: "sliver_id", ID: sliverID,
			Kind: "interface"})
		if err != nil || target != nil || clientID == "" {
			return target, err
		}
	}
	return st.Find(encoder.Query{Attr: "client_id", ID: clientID, Kind: "interface"})
}

func refLabel(ref unis.Object) string {
	for _, key := range []string{"sliver_id", "client_id", "component_id"} {
		if v := str(ref, key); v != "" {
			return v
		}
	}
	return ""
}

type propertyPair struct {
	source, dest, capacity string
}

// propertyPairs returns the distinct source/dest pairs of the property
// records. There are at most two, and every record names both ends.
func propertyPairs(props []unis.Object) ([]propertyPair, error) {
	var pairs []propertyPair
	for _, p := range props {
		pair := propertyPair{
			source:   str(p, "source_id"),
			dest:     str(p, "dest_id"),
			capacity: str(p, "capacity"),
		}
		if pair.source == "" || pair.dest == "" {
			return nil, serrors.JoinNoStack(encoder.ErrIncompleteLinkProperty, nil,
				"source_id", pair.source, "dest_id", pair.dest)
		}
		if len(pairs) == 2 ||
			len(pairs) == 1 && pairs[0].source == pair.source && pairs[0].dest == pair.dest {
			return nil, serrors.JoinNoStack(encoder.ErrUnmatchedLinkProperty, nil,
				"source_id", pair.source, "dest_id", pair.dest)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// propertyEnd references the interface with component id id, or returns id
// if there is no such interface.
func propertyEnd(st *encoder.State, id string, c encoder.Context) (string, error) {
	target, err := st.Find(encoder.Query{Attr: "component_id", ID: id, Kind: "interface",
		Tolerant: true})
	if err != nil {
		return "", err
	}
	if target == nil {
		return id, nil
	}
	return selfLink(st, target, c.Params.DocType)
}

func parseCapacity(raw string) (*int64, error) {
	v, err := urn.ParseCapacity(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
