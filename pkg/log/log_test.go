// Copyright 2020 Anapaya Systems
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

package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periscope-ps/unisencoder/pkg/log"
	"github.com/periscope-ps/unisencoder/pkg/log/testlog"
	"github.com/periscope-ps/unisencoder/private/config"
)

func TestSetup(t *testing.T) {
	tests := map[string]struct {
		cfg       log.Config
		assertErr assert.ErrorAssertionFunc
	}{
		"empty, no error": {
			cfg:       log.Config{},
			assertErr: assert.NoError,
		},
		"invalid console level": {
			cfg:       log.Config{Console: log.ConsoleConfig{Level: "invalid"}},
			assertErr: assert.Error,
		},
		"invalid format": {
			cfg:       log.Config{Console: log.ConsoleConfig{Format: "xml"}},
			assertErr: assert.Error,
		},
		"json with stack traces": {
			cfg: log.Config{Console: log.ConsoleConfig{
				Level: "debug", Format: "json", StacktraceLevel: "error",
			}},
			assertErr: assert.NoError,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.assertErr(t, log.Setup(test.cfg))
		})
	}
}

func TestEntriesCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := log.NewEntriesCounter(reg)
	require.NoError(t, log.Setup(log.Config{}, log.WithEntriesCounter(counter)))
	defer func() { require.NoError(t, log.Setup(log.Config{})) }()

	log.Info("one")
	log.Info("two")
	log.Error("three")
	log.Debug("dropped below the default level")

	assert.Equal(t, 2.0, testutil.ToFloat64(counter.Info))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.Error))
	assert.Equal(t, 0.0, testutil.ToFloat64(counter.Debug))
}

func TestContext(t *testing.T) {
	assert.NotNil(t, log.FromCtx(context.Background()))

	logger, logs := testlog.NewObserved()
	ctx := log.CtxWith(context.Background(), logger)
	ctx, labeled := log.WithLabels(ctx, "file", "a.xml")
	labeled.Info("hello")
	log.FromCtx(ctx).Debug("again")

	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		assert.Equal(t, "a.xml", e.ContextMap()["file"])
	}
	assert.True(t, labeled.Enabled(log.DebugLevel))
}

func TestSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg log.Config
	cfg.Sample(&sample, nil, nil)

	var decoded struct {
		Console log.ConsoleConfig `toml:"console"`
	}
	require.NoError(t, config.Decode(sample.Bytes(), &decoded))
	cfg.InitDefaults()
	assert.Equal(t, cfg.Console, decoded.Console)
}
