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
	"strings"

	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

// Diagnostic kinds.
const (
	DiagUnhandledElement    = "unhandled_element"
	DiagUnparsedAttributes  = "unparsed_attributes"
	DiagUnresolvedReference = "ref_doesnot_exist"
	DiagInvalidBoolean      = "invalid_boolean"
	DiagTruncatedEndpoints  = "lan_endpoints_truncated"
	DiagUnresolvedRemote    = "remote_not_found"
)

// Diagnostic is a non-fatal condition met while encoding.
type Diagnostic struct {
	Kind    string `json:"kind" yaml:"kind"`
	Element string `json:"element" yaml:"element"`
	Path    string `json:"path" yaml:"path"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// State is the state of a single Encode call. It is not safe for concurrent
// use.
type State struct {
	dialect *Dialect
	opts    *options
	tree    *source.Tree
	logger  log.Logger

	lookups  *arc.ARCCache[Query, lookupResult]
	pointers map[Key]string
	tokens   map[Key]string
	pending  map[string]pending

	diagnostics []Diagnostic
}

func newState(d *Dialect, opts *options, tree *source.Tree, logger log.Logger) (*State, error) {
	lookups, err := arc.NewARC[Query, lookupResult](opts.cacheSize)
	if err != nil {
		return nil, serrors.Wrap("creating lookup cache", err, "size", opts.cacheSize)
	}
	return &State{
		dialect:  d,
		opts:     opts,
		tree:     tree,
		logger:   logger,
		lookups:  lookups,
		pointers: make(map[Key]string),
		tokens:   make(map[Key]string),
		pending:  make(map[string]pending),
	}, nil
}

// Tree returns the source tree being encoded.
func (st *State) Tree() *source.Tree { return st.tree }

// Logger returns the logger of the current encoding.
func (st *State) Logger() log.Logger { return st.logger }

// Version returns the schema version of the output document.
func (st *State) Version() unis.Version { return st.opts.version }

// New returns an output object of kind k.
func (st *State) New(k unis.Kind) unis.Object { return st.opts.version.New(k) }

// Diagnostics returns the diagnostics reported so far.
func (st *State) Diagnostics() []Diagnostic { return st.diagnostics }

// Children encodes the children of el into out. Comments and elements of
// ignored namespaces are skipped. Elements without handler are reported and
// skipped, together with their subtree. The non-nil fragments returned by
// the handlers are returned in document order.
func (st *State) Children(el *source.Element, out unis.Object, c Context) ([]any, error) {
	var fragments []any
	for _, child := range el.Children() {
		if child.IsComment() {
			continue
		}
		if st.dialect.Table.Ignored(child.Name.Space) {
			metrics.CounterInc(st.opts.metrics.elements(st.dialect.Name, outcomeIgnored))
			continue
		}
		h, ok := st.dialect.Table.Lookup(child.Name)
		if !ok {
			metrics.CounterInc(st.opts.metrics.elements(st.dialect.Name, outcomeUnhandled))
			if st.opts.failOnUnhandled {
				return nil, decodeError(child, serrors.JoinNoStack(ErrUnhandledElement, nil,
					"element", child.Name))
			}
			st.Diagnose(DiagUnhandledElement, child, "no handler for "+child.Name.String())
			continue
		}
		frag, err := st.Handle(h, child, out, c)
		if err != nil {
			return nil, err
		}
		if frag != nil {
			fragments = append(fragments, frag)
		}
	}
	return fragments, nil
}

// Handle invokes h on el. Errors are annotated with el.
func (st *State) Handle(h Handler, el *source.Element, out unis.Object, c Context) (any, error) {
	metrics.CounterInc(st.opts.metrics.elements(st.dialect.Name, outcomeHandled))
	if st.logger.Enabled(log.DebugLevel) {
		st.logger.Debug("Encoding element",
			"element", el.Name.String(), "path", el.Path().String())
	}
	frag, err := h(st, el, out, c)
	if err != nil {
		return nil, decodeError(el, err)
	}
	return frag, nil
}

// Diagnose records a non-fatal condition at el.
func (st *State) Diagnose(kind string, el *source.Element, detail string, ctx ...any) {
	d := Diagnostic{Kind: kind, Detail: detail}
	if el != nil {
		d.Element = el.Name.String()
		d.Path = el.Path().String()
	}
	st.diagnostics = append(st.diagnostics, d)
	metrics.CounterInc(st.opts.metrics.diagnostics(kind))
	st.logger.Info("Encoding diagnostic",
		append([]any{"kind", kind, "path", d.Path, "detail", detail}, ctx...)...)
}

// Unparsed reports the attributes left in attrs as unparsed.
func (st *State) Unparsed(el *source.Element, attrs *source.Attrs) {
	if attrs.Len() == 0 {
		return
	}
	st.Diagnose(DiagUnparsedAttributes, el, strings.Join(attrs.Names(), " "))
}
