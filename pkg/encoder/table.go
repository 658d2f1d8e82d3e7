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
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

// Handler encodes el into out. It returns the fragment it produced, which
// the caller may merge.
type Handler func(st *State, el *source.Element, out unis.Object, c Context) (any, error)

// Table maps qualified element names to handlers.
type Table struct {
	handlers map[source.QName]Handler
	ignored  map[string]struct{}
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		handlers: make(map[source.QName]Handler),
		ignored:  make(map[string]struct{}),
	}
}

// Register registers h for the element local in each of namespaces.
func (t *Table) Register(h Handler, local string, namespaces ...string) {
	for _, ns := range namespaces {
		t.handlers[source.QName{Space: ns, Local: local}] = h
	}
}

// Ignore makes the traversal skip elements of the given namespaces.
func (t *Table) Ignore(namespaces ...string) {
	for _, ns := range namespaces {
		t.ignored[ns] = struct{}{}
	}
}

// Ignored reports whether elements of namespace ns are skipped.
func (t *Table) Ignored(ns string) bool {
	_, ok := t.ignored[ns]
	return ok
}

// Lookup returns the handler registered for q.
func (t *Table) Lookup(q source.QName) (Handler, bool) {
	h, ok := t.handlers[q]
	return h, ok
}

// Len returns the number of registered names.
func (t *Table) Len() int {
	return len(t.handlers)
}

// Dialect describes a family of input documents.
type Dialect struct {
	// Name identifies the dialect in logs and metrics.
	Name  string
	Table *Table
	// Collections maps element local names to the output collection the
	// element is addressed through in query expressions.
	Collections map[string]string
	// Variants returns the dialect specific spellings of an identifier that
	// tolerant lookups try in addition to the escaped forms.
	Variants func(id string) []string
}
