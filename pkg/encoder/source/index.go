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

package source

import (
	"github.com/RoaringBitmap/roaring"
)

type attrKey struct {
	attr  string
	value string
}

// index maps unqualified attribute values and local names to the ordinals of
// the elements carrying them.
type index struct {
	byAttr map[attrKey]*roaring.Bitmap
	byKind map[string]*roaring.Bitmap
}

func buildIndex(nodes []*Element) *index {
	idx := &index{
		byAttr: make(map[attrKey]*roaring.Bitmap),
		byKind: make(map[string]*roaring.Bitmap),
	}
	for _, e := range nodes {
		if e.IsComment() {
			continue
		}
		bitmapFor(idx.byKind, e.Name.Local).Add(e.ordinal)
		for _, a := range e.attrs {
			if a.Name.Space != "" {
				continue
			}
			bitmapFor(idx.byAttr, attrKey{attr: a.Name.Local, value: a.Value}).Add(e.ordinal)
		}
	}
	return idx
}

func bitmapFor[K comparable](m map[K]*roaring.Bitmap, k K) *roaring.Bitmap {
	bm, ok := m[k]
	if !ok {
		bm = roaring.New()
		m[k] = bm
	}
	return bm
}

// Lookup returns the elements whose attribute attr equals any of values,
// restricted to elements with local name kind unless kind is empty. The
// result is in document order and contains every element at most once.
func (t *Tree) Lookup(attr, kind string, values ...string) []*Element {
	t.indexOnce.Do(func() { t.index = buildIndex(t.nodes) })

	matches := roaring.New()
	for _, v := range values {
		if bm, ok := t.index.byAttr[attrKey{attr: attr, value: v}]; ok {
			matches.Or(bm)
		}
	}
	if kind != "" {
		kinds, ok := t.index.byKind[kind]
		if !ok {
			return nil
		}
		matches.And(kinds)
	}
	if matches.IsEmpty() {
		return nil
	}
	out := make([]*Element, 0, matches.GetCardinality())
	it := matches.Iterator()
	for it.HasNext() {
		out = append(out, t.nodes[it.Next()])
	}
	return out
}

// Count returns the number of elements with the local name kind.
func (t *Tree) Count(kind string) int {
	t.indexOnce.Do(func() { t.index = buildIndex(t.nodes) })
	if bm, ok := t.index.byKind[kind]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}
