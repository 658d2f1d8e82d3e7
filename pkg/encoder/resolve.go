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

package encoder

import (
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// Query identifies the source elements Find looks for.
type Query struct {
	// Attr is the identifying attribute, e.g. component_id or id.
	Attr string
	ID   string
	// Kind restricts the lookup to elements with this local name. Empty
	// matches any element.
	Kind string
	// Tolerant also tries the escaped and dialect specific spellings of ID.
	Tolerant bool
}

type lookupResult struct {
	el  *source.Element
	err error
}

// Find returns the single element matching q, or nil if there is none. More
// than one match is an ErrAmbiguousReference. Results are cached, a repeated
// query does not touch the source tree.
func (st *State) Find(q Query) (*source.Element, error) {
	if r, ok := st.lookups.Get(q); ok {
		metrics.CounterInc(st.opts.metrics.lookups(lookupHit))
		return r.el, r.err
	}
	metrics.CounterInc(st.opts.metrics.lookups(lookupMiss))

	candidates := []string{q.ID}
	if q.Tolerant {
		candidates = urn.EscapeVariants(q.ID)
		if st.dialect.Variants != nil {
			for _, v := range st.dialect.Variants(q.ID) {
				candidates = append(candidates, urn.EscapeVariants(v)...)
			}
		}
	}
	var r lookupResult
	switch found := st.tree.Lookup(q.Attr, q.Kind, candidates...); len(found) {
	case 0:
	case 1:
		r.el = found[0]
	default:
		r.err = serrors.JoinNoStack(ErrAmbiguousReference, nil,
			"attr", q.Attr, "id", q.ID, "kind", q.Kind, "matches", len(found))
	}
	st.lookups.Add(q, r)
	return r.el, r.err
}

// Key identifies an output object by the value of one of its fields.
type Key struct {
	// Field is the filter field of the query expression, one of FieldURN,
	// FieldSliverID and FieldClientID.
	Field string
	Value string
}

// SelfLink returns the reference to the output object of el identified by
// k. If the object has been appended already, its pointer is returned.
// Otherwise an opaque token is returned, which is replaced once the document
// is complete: by the pointer of the object if it was appended in the
// meantime, by the query expression selecting it if not. Repeated calls with
// the same key return the same reference.
func (st *State) SelfLink(el *source.Element, k Key) (string, error) {
	if p, ok := st.pointers[k]; ok {
		return p, nil
	}
	if tok, ok := st.tokens[k]; ok {
		return tok, nil
	}
	expr, err := QueryExpression(st.dialect, el, k.Field, k.Value)
	if err != nil {
		return "", err
	}
	tok := st.newToken()
	st.tokens[k] = tok
	st.pending[tok] = pending{key: k, query: expr}
	return tok, nil
}

// Register records pointer as the final location of the object identified
// by keys. Keys with an empty value are ignored; the first registration of a
// key wins.
func (st *State) Register(pointer string, keys ...Key) {
	for _, k := range keys {
		if k.Value == "" {
			continue
		}
		if _, ok := st.pointers[k]; !ok {
			st.pointers[k] = pointer
		}
	}
}

// Pointer returns the pointer registered for k.
func (st *State) Pointer(k Key) (string, bool) {
	p, ok := st.pointers[k]
	return p, ok
}
