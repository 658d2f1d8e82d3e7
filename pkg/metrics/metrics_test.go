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

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/periscope-ps/unisencoder/pkg/metrics"
)

func TestFactory(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	f := metrics.ApplyOptions(metrics.WithRegistry(reg)).Auto()

	cv := f.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "test_total",
		Help:      "Test counter.",
	}, []string{"result"})
	metrics.CounterInc(metrics.CounterWith(cv, "ok"))
	metrics.CounterAdd(metrics.CounterWith(cv, "ok"), 2)
	assert.Equal(t, 3.0, testutil.ToFloat64(cv.WithLabelValues("ok")))

	g := f.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "Test gauge."})
	metrics.GaugeSet(g, 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(g))

	hv := f.NewHistogramVec(prometheus.HistogramOpts{
		Name: "test_seconds", Help: "Test histogram.",
	}, []string{"op"})
	metrics.Observe(hv, 0.5, "a")
	assert.Equal(t, 1, testutil.CollectAndCount(hv))
}

func TestNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.CounterInc(nil)
		metrics.CounterAdd(nil, 1)
		metrics.CounterInc(metrics.CounterWith(nil, "x"))
		metrics.GaugeSet(nil, 1)
		metrics.Observe(nil, 1, "x")
	})
}
