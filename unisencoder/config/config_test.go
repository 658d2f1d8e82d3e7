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

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/unisencoder/config"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg config.Config
	cfg.Sample(&sample, nil, nil)

	err := toml.NewDecoder(bytes.NewReader(sample.Bytes())).DisallowUnknownFields().Decode(&cfg)
	require.NoError(t, err)
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logging.Console.Level)
	assert.Equal(t, unis.Version20120709, cfg.Encoder.Version())
	assert.Equal(t, 1024, cfg.Encoder.LookupCacheSize)
	assert.Equal(t, 2, cfg.Encoder.Indent)
	assert.Equal(t, 4, cfg.Encoder.Workers)
	assert.Equal(t, "http://localhost:8888", cfg.UNIS.URL)
	assert.Equal(t, "topologies", cfg.UNIS.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.UNIS.Timeout.Duration)
	assert.Equal(t, "unisencoder.ledger.db", cfg.Dispatch.Ledger)
	assert.Equal(t, 4, cfg.Dispatch.Workers)
	assert.Equal(t, "/var/lib/node_exporter/unisencoder.prom", cfg.Metrics.Textfile)
}

func TestLoad(t *testing.T) {
	write := func(t *testing.T, raw string) string {
		file := filepath.Join(t.TempDir(), "unisencoder.toml")
		require.NoError(t, os.WriteFile(file, []byte(raw), 0644))
		return file
	}

	testCases := map[string]struct {
		file      func(t *testing.T) string
		assertErr assert.ErrorAssertionFunc
		check     func(t *testing.T, cfg *config.Config)
	}{
		"no file": {
			file:      func(*testing.T) string { return "" },
			assertErr: assert.NoError,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.DefaultUNISURL, cfg.UNIS.URL)
				assert.Equal(t, config.DefaultWorkers, cfg.Dispatch.Workers)
				assert.Equal(t, config.DefaultWorkers, cfg.Encoder.Workers)
			},
		},
		"separate workers": {
			file: func(t *testing.T) string {
				return write(t, "[encoder]\nworkers = 8\n\n[dispatch]\nworkers = 2\n")
			},
			assertErr: assert.NoError,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 8, cfg.Encoder.Workers)
				assert.Equal(t, 2, cfg.Dispatch.Workers)
			},
		},
		"overrides": {
			file: func(t *testing.T) string {
				return write(t, `
[encoder]
schema_version = "20140214"
fail_on_unhandled = true

[unis]
url = "https://unis.example.net:8443"
timeout = "3s"
`)
			},
			assertErr: assert.NoError,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, unis.Version20140214, cfg.Encoder.Version())
				assert.True(t, cfg.Encoder.FailOnUnhandled)
				assert.Equal(t, "https://unis.example.net:8443", cfg.UNIS.URL)
				assert.Equal(t, 3*time.Second, cfg.UNIS.Timeout.Duration)
				assert.Equal(t, config.DefaultEndpoint, cfg.UNIS.Endpoint)
				assert.Len(t, cfg.Encoder.Options(), 3)
			},
		},
		"unknown key": {
			file:      func(t *testing.T) string { return write(t, "[unis]\nhost = \"x\"\n") },
			assertErr: assert.Error,
		},
		"bad schema version": {
			file: func(t *testing.T) string {
				return write(t, "[encoder]\nschema_version = \"2015\"\n")
			},
			assertErr: assert.Error,
		},
		"bad url scheme": {
			file:      func(t *testing.T) string { return write(t, "[unis]\nurl = \"ftp://x\"\n") },
			assertErr: assert.Error,
		},
		"negative workers": {
			file:      func(t *testing.T) string { return write(t, "[dispatch]\nworkers = -1\n") },
			assertErr: assert.Error,
		},
		"negative encoder workers": {
			file: func(t *testing.T) string {
				return write(t, "[encoder]\nworkers = -1\n")
			},
			assertErr: assert.Error,
		},
		"missing file": {
			file: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.toml")
			},
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.Load(tc.file(t))
			tc.assertErr(t, err)
			if tc.check != nil {
				require.NotNil(t, cfg)
				tc.check(t, cfg)
			}
		})
	}
}
