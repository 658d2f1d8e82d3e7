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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/private/prom"
)

// Metrics are the counters updated by the encoder. A nil *Metrics and nil
// fields are valid and disable the respective metric.
type Metrics struct {
	// Documents counts encoded documents by dialect and result.
	Documents *prometheus.CounterVec
	// Elements counts visited elements by dialect and outcome.
	Elements *prometheus.CounterVec
	// Lookups counts resolver lookups by cache outcome.
	Lookups *prometheus.CounterVec
	// References counts substituted references by resolution.
	References *prometheus.CounterVec
	// Diagnostics counts non-fatal diagnostics by kind.
	Diagnostics *prometheus.CounterVec
	// Duration observes the encoding time by dialect.
	Duration *prometheus.HistogramVec
}

// Label values.
const (
	outcomeHandled   = "handled"
	outcomeUnhandled = "unhandled"
	outcomeIgnored   = "ignored"

	lookupHit  = "hit"
	lookupMiss = "miss"

	resolvedPointer = "pointer"
	resolvedQuery   = "query"
)

// NewMetrics registers the encoder metrics using the given options.
func NewMetrics(opts ...metrics.Option) *Metrics {
	f := metrics.ApplyOptions(opts...).Auto()
	return &Metrics{
		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "encoder",
			Name:      "documents_total",
			Help:      "Number of encoded documents.",
		}, []string{"dialect", prom.LabelResult}),
		Elements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "encoder",
			Name:      "elements_total",
			Help:      "Number of visited source elements.",
		}, []string{"dialect", "outcome"}),
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "encoder",
			Name:      "lookups_total",
			Help:      "Number of reference lookups in the source tree.",
		}, []string{"cache"}),
		References: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "encoder",
			Name:      "references_total",
			Help:      "Number of deferred references, by final resolution.",
		}, []string{"resolution"}),
		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "encoder",
			Name:      "diagnostics_total",
			Help:      "Number of non-fatal diagnostics.",
		}, []string{"kind"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "encoder",
			Name:      "duration_seconds",
			Help:      "Time spent encoding a document.",
			Buckets:   prom.DefaultLatencyBuckets,
		}, []string{"dialect"}),
	}
}

func (m *Metrics) documents(dialect, result string) prometheus.Counter {
	if m == nil {
		return nil
	}
	return metrics.CounterWith(m.Documents, dialect, result)
}

func (m *Metrics) elements(dialect, outcome string) prometheus.Counter {
	if m == nil {
		return nil
	}
	return metrics.CounterWith(m.Elements, dialect, outcome)
}

func (m *Metrics) lookups(outcome string) prometheus.Counter {
	if m == nil {
		return nil
	}
	return metrics.CounterWith(m.Lookups, outcome)
}

func (m *Metrics) references(resolution string) prometheus.Counter {
	if m == nil {
		return nil
	}
	return metrics.CounterWith(m.References, resolution)
}

func (m *Metrics) diagnostics(kind string) prometheus.Counter {
	if m == nil {
		return nil
	}
	return metrics.CounterWith(m.Diagnostics, kind)
}

func (m *Metrics) duration() *prometheus.HistogramVec {
	if m == nil {
		return nil
	}
	return m.Duration
}
