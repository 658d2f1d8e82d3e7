// Copyright 2026 Anapaya Systems
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

// Package metrics registers prometheus collectors on a configurable registry
// and provides nil-safe helpers to update them. A nil metric is a valid,
// disabled metric.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the prometheus namespace of all unisencoder metrics.
const Namespace = "unisencoder"

type Option func(*Options)

// Options configures the metrics Factory, construct it using the ApplyOptions
// function.
type Options struct {
	registry prometheus.Registerer
}

func (o Options) registerer() prometheus.Registerer {
	if o.registry != nil {
		return o.registry
	}
	return prometheus.DefaultRegisterer
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(o *Options) {
		o.registry = registry
	}
}

func ApplyOptions(options ...Option) Options {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	return opts
}

// Auto creates a Factory that uses the provided Options as registry. If no
// explicit registry is set the default registry is used.
func (o Options) Auto() Factory {
	return Factory{opts: o}
}

// Factory is a metrics Factory that registers metrics using the provided
// Options. Construct it using the Options.Auto function.
type Factory struct {
	opts Options
}

func (f Factory) NewCounterVec(
	opts prometheus.CounterOpts,
	labelNames []string,
) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labelNames)
	f.opts.registerer().MustRegister(c)
	return c
}

func (f Factory) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	f.opts.registerer().MustRegister(g)
	return g
}

func (f Factory) NewHistogramVec(
	opts prometheus.HistogramOpts,
	labelNames []string,
) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labelNames)
	f.opts.registerer().MustRegister(h)
	return h
}

// CounterInc increases the counter by 1 if it is not nil.
func CounterInc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

// CounterAdd increases the counter by v if it is not nil.
func CounterAdd(c prometheus.Counter, v float64) {
	if c != nil {
		c.Add(v)
	}
}

// CounterWith returns the child of cv with the given label values, nil if cv
// is nil.
func CounterWith(cv *prometheus.CounterVec, lvs ...string) prometheus.Counter {
	if cv == nil {
		return nil
	}
	return cv.WithLabelValues(lvs...)
}

// GaugeSet sets the gauge to v if it is not nil.
func GaugeSet(g prometheus.Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}

// Observe records v in the child of hv with the given label values, if hv is
// not nil.
func Observe(hv *prometheus.HistogramVec, v float64, lvs ...string) {
	if hv != nil {
		hv.WithLabelValues(lvs...).Observe(v)
	}
}
