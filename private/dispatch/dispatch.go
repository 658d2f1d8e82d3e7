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

// Package dispatch encodes topology files and uploads them to a UNIS
// service. A ledger keeps track of the files that were already uploaded so
// that unchanged files are skipped on the next run.
package dispatch

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/private/prom"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

//go:generate mockgen -destination=mock_dispatch/dispatch.go -package=mock_dispatch github.com/periscope-ps/unisencoder/private/dispatch Ledger,Uploader

// ErrFailed indicates that at least one file could not be dispatched.
var ErrFailed = serrors.New("dispatch failed")

// Uploader uploads an encoded document.
type Uploader interface {
	Upload(ctx context.Context, doc unis.Object) error
}

// EncodeFunc encodes the file at path.
type EncodeFunc func(ctx context.Context, path string) (unis.Object, error)

// Outcome is the outcome of dispatching a single file.
type Outcome string

const (
	Uploaded Outcome = "uploaded"
	Skipped  Outcome = "skipped"
	Failed   Outcome = "failed"
)

// Report describes what happened to a file.
type Report struct {
	Path    string
	Outcome Outcome
	Err     error
}

// Metrics are the dispatcher metrics. A nil *Metrics is valid.
type Metrics struct {
	Files *prometheus.CounterVec
}

// NewMetrics registers the dispatcher metrics.
func NewMetrics(opts ...metrics.Option) *Metrics {
	f := metrics.ApplyOptions(opts...).Auto()
	return &Metrics{
		Files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "dispatch",
			Name:      "files_total",
			Help:      "Number of dispatched files, by outcome.",
		}, []string{"outcome", prom.LabelResult}),
	}
}

func (m *Metrics) files(outcome Outcome, err error) prometheus.Counter {
	if m == nil {
		return nil
	}
	return metrics.CounterWith(m.Files, string(outcome), prom.Result(err, prom.ErrProcess))
}

// Dispatcher encodes, uploads and records files.
type Dispatcher struct {
	Ledger   Ledger
	Uploader Uploader
	Encode   EncodeFunc
	// Workers is the number of files handled concurrently. Values below one
	// mean one.
	Workers int
	Metrics *Metrics
}

// Run dispatches paths. Failures of individual files do not stop the others.
// The returned reports are in the order of paths. If any file failed, the
// error wraps ErrFailed.
func (d *Dispatcher) Run(ctx context.Context, paths []string) ([]Report, error) {
	reports := make([]Report, len(paths))
	var g errgroup.Group
	g.SetLimit(max(1, d.Workers))
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = d.dispatch(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range reports {
		if r.Outcome == Failed {
			failed++
		}
	}
	if failed > 0 {
		return reports, serrors.JoinNoStack(ErrFailed, nil, "failed", failed, "total", len(paths))
	}
	return reports, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, path string) Report {
	logger := log.FromCtx(ctx).New("file", path)
	outcome, err := d.handle(ctx, path, logger)
	metrics.CounterInc(d.Metrics.files(outcome, err))
	if err != nil {
		logger.Error("Dispatching file failed", "err", err)
		return Report{Path: path, Outcome: Failed, Err: err}
	}
	return Report{Path: path, Outcome: outcome}
}

func (d *Dispatcher) handle(ctx context.Context, path string, logger log.Logger) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Failed, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Failed, serrors.Wrap("reading file info", err)
	}
	changed, err := d.Ledger.Changed(ctx, path, info.ModTime())
	if err != nil {
		return Failed, err
	}
	if !changed {
		logger.Debug("File unchanged since last upload")
		return Skipped, nil
	}
	doc, err := d.Encode(ctx, path)
	if err != nil {
		return Failed, serrors.Wrap("encoding", err)
	}
	if err := d.Uploader.Upload(ctx, doc); err != nil {
		return Failed, serrors.Wrap("uploading", err)
	}
	if err := d.Ledger.Record(ctx, path, info.ModTime()); err != nil {
		return Failed, err
	}
	logger.Info("Uploaded file")
	return Uploaded, nil
}
