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

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/private/dispatch"
)

const sliceURN = "urn:publicid:IDN+example.net+slice+exp1"

var (
	manifest = filepath.Join("..", "..", "..", "pkg", "encoder", "rspec", "testdata",
		"manifest.xml")
	topology = filepath.Join("..", "..", "..", "pkg", "encoder", "perfsonar", "testdata",
		"topology.xml")
)

// run executes the command line args and returns the standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRoot("unisencoder", viper.New())
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEncode(t *testing.T) {
	out, err := run(t, "", "encode", "-t", "rspec3", "--slice-urn", sliceURN, manifest)
	require.NoError(t, err)
	var doc unis.Object
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "example.net_slice_exp1", doc[unis.KeyID])
	assert.Equal(t, map[string]int{unis.Nodes: 2, unis.Ports: 2, unis.Links: 1}, unis.Count(doc))
	assert.Contains(t, out, "\n  \"", "default indentation")
}

func TestEncodeStdin(t *testing.T) {
	raw, err := os.ReadFile(topology)
	require.NoError(t, err)
	out, err := run(t, string(raw), "encode", "-t", "ps", "--indent", "0")
	require.NoError(t, err)
	var doc unis.Object
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2, unis.Count(doc)[unis.Domains])
	assert.Equal(t, 1, strings.Count(out, "\n"), "compact output")
}

func TestEncodeOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	_, err := run(t, "", "encode", "-t", "ps", "--format", "yaml", "--output-dir", dir, topology)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "topology.yaml"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Len(t, doc[unis.Domains], 2)
}

func TestEncodeOutput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "manifest.json")
	_, err := run(t, "", "encode", "-t", "rspec3", "--slice-urn", sliceURN, "-o", file, manifest)
	require.NoError(t, err)
	assert.FileExists(t, file)
}

func TestEncodeErrors(t *testing.T) {
	testCases := map[string][]string{
		"missing type":       {"encode", manifest},
		"unknown type":       {"encode", "-t", "rspec2", manifest},
		"urn and credential": {"encode", "-t", "rspec3", "--slice-urn", sliceURN, "--slice-cred", "x", manifest},
		"output with many":   {"encode", "-t", "ps", "-o", "x.json", topology, topology},
		"unknown format":     {"encode", "-t", "ps", "--format", "xml", topology},
		"missing file":       {"encode", "-t", "ps", "missing.xml"},
		"missing slice":      {"encode", "-t", "rspec3", manifest},
		"missing credential": {"encode", "-t", "rspec3", "--slice-cred", "missing.cred", manifest},
	}
	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, "", args...)
			assert.Error(t, err)
		})
	}
}

func TestSummary(t *testing.T) {
	out, err := run(t, "", "summary", "-t", "ps", "--diagnostics", "--no-color", topology)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, []string{"FILE", "DOMAINS", "NODES", "PORTS", "LINKS", "UNRESOLVED", "STATUS"},
		strings.Fields(lines[0]))
	assert.Equal(t, []string{topology, "2", "4", "5", "3"}, strings.Fields(lines[1])[:5])
	assert.NotContains(t, out, "\x1b[")
}

func TestSummaryFailure(t *testing.T) {
	out, err := run(t, "", "summary", "-t", "rspec3", "--no-color", manifest)
	assert.Error(t, err)
	assert.Contains(t, out, "error:")
}

func TestDispatch(t *testing.T) {
	var uploads atomic.Int32
	r := chi.NewRouter()
	r.Post("/topologies", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, dispatch.ContentType, req.Header.Get("Content-Type"))
		uploads.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	t.Setenv("UNISENCODER_UNIS_URL", srv.URL)

	ledger := filepath.Join(t.TempDir(), "ledger.db")
	args := []string{"dispatch", "-t", "ps", "--ledger", ledger, topology}

	out, err := run(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploaded", topology}, strings.Fields(out))

	out, err = run(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, []string{"skipped", topology}, strings.Fields(out))
	assert.EqualValues(t, 1, uploads.Load())
}

func TestSample(t *testing.T) {
	out, err := run(t, "", "sample")
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "unisencoder.toml")
	require.NoError(t, os.WriteFile(file, []byte(out), 0644))

	// The sample is a valid configuration.
	_, err = run(t, "", "--config", file, "encode", "-t", "ps", topology)
	assert.NoError(t, err)
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "unisencoder.prom")
	cfg := filepath.Join(dir, "unisencoder.toml")
	require.NoError(t, os.WriteFile(cfg,
		[]byte("[metrics]\ntextfile = \""+filepath.ToSlash(textfile)+"\"\n"), 0644))

	_, err := run(t, "", "--config", cfg, "encode", "-t", "ps", topology)
	require.NoError(t, err)
	raw, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `unisencoder_encoder_documents_total{dialect="ps",result="ok_success"} 1`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
}
