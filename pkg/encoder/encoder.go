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

// Package encoder transforms source element trees into UNIS documents.
//
// An Encoder walks the tree depth first, in document order, and dispatches
// every element to the handler its dialect registered for the element's
// qualified name. Handlers populate the output document, appending
// primitives to the append-only collections of the document.
//
// References between primitives are resolved in two phases. A reference to a
// primitive that has been appended already resolves to its JSON pointer. A
// reference to a primitive that has not been appended yet is represented by
// an opaque token. Once the traversal is complete, the tokens are replaced by
// a structural walk over the document: by the pointer of the referenced
// primitive if it was appended in the meantime, or by a JSONPath query
// expression selecting it otherwise.
package encoder

import (
	"context"
	"time"

	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/private/prom"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

// DefaultLookupCacheSize is the default number of cached lookups.
const DefaultLookupCacheSize = 1024

type options struct {
	failOnUnhandled bool
	cacheSize       int
	version         unis.Version
	logger          log.Logger
	metrics         *Metrics
}

// Option configures an Encoder.
type Option func(*options)

// WithFailOnUnhandled makes elements without handler fail the encoding
// instead of being reported and skipped.
func WithFailOnUnhandled(fail bool) Option {
	return func(o *options) { o.failOnUnhandled = fail }
}

// WithLookupCacheSize sets the number of cached lookups per encoding.
// Non-positive values select the default.
func WithLookupCacheSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithSchemaVersion selects the $schema URLs of the output.
func WithSchemaVersion(v unis.Version) Option {
	return func(o *options) { o.version = v }
}

// WithLogger sets the logger. By default the logger of the context passed
// to Encode is used.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Encoder encodes documents of one dialect. An Encoder holds no per
// document state and can be used by concurrent goroutines.
type Encoder struct {
	dialect *Dialect
	opts    options
}

// New returns an encoder for dialect d.
func New(d *Dialect, opts ...Option) *Encoder {
	o := options{
		cacheSize: DefaultLookupCacheSize,
		version:   unis.DefaultVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Encoder{dialect: d, opts: o}
}

// Dialect returns the dialect of the encoder.
func (e *Encoder) Dialect() *Dialect { return e.dialect }

// Result is the outcome of a successful encoding.
type Result struct {
	Document    unis.Object
	Diagnostics []Diagnostic
	// Unresolved is the number of references left as query expressions.
	Unresolved int
}

// Encode encodes tree. On failure the error is a *DecodeError and no
// document is returned. The context is only used for logging.
func (e *Encoder) Encode(ctx context.Context, tree *source.Tree,
	params Params) (*Result, error) {

	start := time.Now()
	logger := e.opts.logger
	if logger == nil {
		logger = log.FromCtx(ctx)
	}
	logger = logger.New("dialect", e.dialect.Name)

	res, err := e.encode(tree, params, logger)
	metrics.CounterInc(e.opts.metrics.documents(e.dialect.Name, prom.Result(err, prom.ErrParse)))
	metrics.Observe(e.opts.metrics.duration(), time.Since(start).Seconds(), e.dialect.Name)
	if err != nil {
		logger.Debug("Encoding failed", "err", err)
		return nil, err
	}
	logger.Debug("Encoded document", "diagnostics", len(res.Diagnostics),
		"unresolved", res.Unresolved, "duration", time.Since(start))
	return res, nil
}

func (e *Encoder) encode(tree *source.Tree, params Params, logger log.Logger) (*Result, error) {
	st, err := newState(e.dialect, &e.opts, tree, logger)
	if err != nil {
		return nil, err
	}
	root := tree.Root()
	h, ok := e.dialect.Table.Lookup(root.Name)
	if !ok {
		return nil, decodeError(root, serrors.JoinNoStack(ErrNoHandler, nil,
			"element", root.Name))
	}
	doc := unis.Object{}
	c := Context{
		Collection: doc,
		Base:       unis.RootPointer,
		Parent:     doc,
		Params:     params,
	}
	if _, err := st.Handle(h, root, doc, c); err != nil {
		return nil, err
	}
	unresolved := st.substitute(doc)
	return &Result{
		Document:    doc,
		Diagnostics: st.diagnostics,
		Unresolved:  unresolved,
	}, nil
}
