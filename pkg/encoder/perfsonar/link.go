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

package perfsonar

import (
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

const linkSep = ":link"

// newLink creates the link encoded by el. The directed flag follows the type
// attribute, links are unidirectional unless declared bidirectional.
func newLink(st *encoder.State, el *source.Element) (unis.Object, *source.Attrs, bool) {
	link := st.New(unis.KindLink)
	attrs := el.Attrs()
	identify(link, attrs)
	directed := true
	if t, _ := attrs.PopTrimmed("type"); t == "bidirectional" {
		directed = false
	}
	return link, attrs, directed
}

// localEnd returns the reference to the port the link leaves from: the
// enclosing port, or the port named by the link urn.
func localEnd(st *encoder.State, link unis.Object, c encoder.Context) (string, error) {
	if c.ParentPort != "" {
		return c.ParentPort, nil
	}
	u, _ := link[unis.KeyURN].(string)
	port, _, ok := strings.Cut(u, linkSep)
	if !ok {
		return "", serrors.JoinNoStack(encoder.ErrNoEndpoints, nil,
			"reason", "link outside of port without port in urn", "urn", u)
	}
	st.Logger().Debug("Link outside of port", "urn", u)
	return resolveOrRaw(st, port)
}

// finishLink applies the endpoints, encodes the children and appends link
// to the enclosing collection.
func finishLink(st *encoder.State, el *source.Element, link unis.Object,
	attrs *source.Attrs, local, remote string, directed bool,
	c encoder.Context) (any, error) {

	e := unis.Endpoints{Directed: directed, Source: local, Sink: remote}
	if !directed {
		e.Pair = []string{local, remote}
	}
	e.Apply(link)
	st.Unparsed(el, attrs)
	if _, err := st.Children(el, link, c.WithParent(link)); err != nil {
		return nil, err
	}
	idx := unis.Append(c.Collection, unis.Links, link)
	u, _ := link[unis.KeyURN].(string)
	st.Register(unis.Pointer(c.Base, unis.Links, idx), urnKey(u))
	return link, nil
}

// encodeL2Link encodes a link leaving the enclosing port. The remote end is
// the port of the link named by the sibling relation.
func encodeL2Link(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	link, attrs, directed := newLink(st, el)
	local, err := localEnd(st, link, c)
	if err != nil {
		return nil, err
	}
	sibling := siblingIDRef(el)
	if sibling == "" {
		return nil, serrors.JoinNoStack(encoder.ErrNoEndpoints, nil,
			"reason", "no sibling relation idRef", "urn", link[unis.KeyURN])
	}
	remotePort, _, _ := strings.Cut(urn.ParseOGF(sibling), linkSep)
	remote, err := resolveOrRaw(st, remotePort)
	if err != nil {
		return nil, err
	}
	return finishLink(st, el, link, attrs, local, remote, directed, c)
}

// siblingIDRef returns the first idRef of the first sibling relation of el.
func siblingIDRef(el *source.Element) string {
	for _, rel := range el.ChildElements() {
		if rel.Name != (source.QName{Space: NSBase, Local: "relation"}) ||
			rel.AttrDefault("type", "") != "sibling" {
			continue
		}
		for _, ref := range rel.ChildElements() {
			if ref.Name == (source.QName{Space: NSBase, Local: "idRef"}) {
				return ref.TrimmedText()
			}
		}
		return ""
	}
	return ""
}

// encodeCtrlLink encodes a control plane link. The remote end is the port
// of the remote link. Remote links at a site are kept verbatim.
func encodeCtrlLink(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	link, attrs, directed := newLink(st, el)
	local, err := localEnd(st, link, c)
	if err != nil {
		return nil, err
	}
	remoteLink := ""
	for _, child := range el.ChildElements() {
		if child.Name == (source.QName{Space: NSCtrlPlane, Local: "remoteLinkId"}) {
			remoteLink = child.TrimmedText()
			break
		}
	}
	if remoteLink == "" {
		return nil, serrors.JoinNoStack(encoder.ErrNoEndpoints, nil,
			"reason", "no remoteLinkId", "urn", link[unis.KeyURN])
	}

	remote := remoteLink
	if !strings.HasSuffix(remoteLink, ":site") && !strings.HasSuffix(remoteLink, ":link=site") {
		if i := strings.LastIndex(remoteLink, ":"); i >= 0 {
			remote = remoteLink[:i]
		}
		ref, ok, err := resolve(st, remote)
		if err != nil {
			return nil, err
		}
		if ok {
			remote = ref
		} else {
			st.Diagnose(encoder.DiagUnresolvedRemote, el, remoteLink)
		}
	}
	return finishLink(st, el, link, attrs, local, remote, directed, c)
}

// encodeRemoteLinkID references the remote link from relations.sibling of
// out.
func encodeRemoteLinkID(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	ref, err := resolveOrRaw(st, urn.ParseOGF(el.TrimmedText()))
	if err != nil {
		return nil, err
	}
	unis.AddRelation(out, "sibling", ref)
	return ref, nil
}
