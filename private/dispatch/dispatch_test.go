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

package dispatch_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/periscope-ps/unisencoder/pkg/metrics"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/private/dispatch"
	"github.com/periscope-ps/unisencoder/private/dispatch/mock_dispatch"
	"github.com/periscope-ps/unisencoder/private/storage/db"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type upload struct {
	contentType string
	doc         unis.Object
}

// fakeUNIS serves the topologies collection and records every upload.
func fakeUNIS(t *testing.T, status int) (*httptest.Server, <-chan upload) {
	uploads := make(chan upload, 10)
	r := chi.NewRouter()
	r.Post("/topologies", func(w http.ResponseWriter, req *http.Request) {
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		var doc unis.Object
		require.NoError(t, json.Unmarshal(raw, &doc))
		uploads <- upload{contentType: req.Header.Get("Content-Type"), doc: doc}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status": "done"}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, uploads
}

func TestClientUpload(t *testing.T) {
	doc := unis.Object{
		unis.KeySchema: "http://unis.crest.iu.edu/schema/20120709/domain#",
		unis.KeyID:     "example.net_slice_exp1",
	}

	testCases := map[string]struct {
		status    int
		endpoint  string
		assertErr assert.ErrorAssertionFunc
		uploaded  bool
	}{
		"created": {
			status:    http.StatusCreated,
			endpoint:  "topologies",
			assertErr: assert.NoError,
			uploaded:  true,
		},
		"leading slash": {
			status:    http.StatusOK,
			endpoint:  "/topologies",
			assertErr: assert.NoError,
			uploaded:  true,
		},
		"rejected": {
			status:   http.StatusBadRequest,
			endpoint: "topologies",
			assertErr: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, dispatch.ErrUpload)
			},
			uploaded: true,
		},
		"unknown endpoint": {
			status:    http.StatusOK,
			endpoint:  "nodes",
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			srv, uploads := fakeUNIS(t, tc.status)
			c := &dispatch.Client{URL: srv.URL + "/", Endpoint: tc.endpoint, HTTP: srv.Client()}

			err := c.Upload(context.Background(), doc)
			tc.assertErr(t, err)
			if !tc.uploaded {
				assert.Empty(t, uploads)
				return
			}
			require.Len(t, uploads, 1)
			got := <-uploads
			assert.Equal(t, dispatch.ContentType, got.contentType)
			assert.Equal(t, doc, got.doc)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := &dispatch.Client{URL: srv.URL, Endpoint: "topologies", HTTP: srv.Client()}
	srv.Close()

	err := c.Upload(context.Background(), unis.Object{})
	assert.Error(t, err)
}

func TestSqliteLedger(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	ledger, err := dispatch.NewSqliteLedger(ctx, path)
	require.NoError(t, err)

	mtime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	changed, err := ledger.Changed(ctx, "a.xml", mtime)
	require.NoError(t, err)
	assert.True(t, changed, "unknown file")

	require.NoError(t, ledger.Record(ctx, "a.xml", mtime))
	changed, err = ledger.Changed(ctx, "a.xml", mtime)
	require.NoError(t, err)
	assert.False(t, changed, "recorded file")

	changed, err = ledger.Changed(ctx, "a.xml", mtime.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, changed, "modified file")

	require.NoError(t, ledger.Record(ctx, "a.xml", mtime.Add(time.Second)))
	require.NoError(t, ledger.Close())

	t.Run("survives reopen", func(t *testing.T) {
		ledger, err := dispatch.NewSqliteLedger(ctx, path)
		require.NoError(t, err)
		defer ledger.Close()
		changed, err := ledger.Changed(ctx, "a.xml", mtime.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func writeFile(t *testing.T, dir, name string) (string, time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("<rspec/>"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return path, info.ModTime()
}

func TestDispatcherRun(t *testing.T) {
	dir := t.TempDir()
	fresh, freshTime := writeFile(t, dir, "fresh.xml")
	same, sameTime := writeFile(t, dir, "same.xml")
	broken, brokenTime := writeFile(t, dir, "broken.xml")
	rejected, rejectedTime := writeFile(t, dir, "rejected.xml")
	missing := filepath.Join(dir, "missing.xml")

	ctrl := gomock.NewController(t)
	ledger := mock_dispatch.NewMockLedger(ctrl)
	uploader := mock_dispatch.NewMockUploader(ctrl)

	ledger.EXPECT().Changed(gomock.Any(), fresh, freshTime).Return(true, nil)
	ledger.EXPECT().Changed(gomock.Any(), same, sameTime).Return(false, nil)
	ledger.EXPECT().Changed(gomock.Any(), broken, brokenTime).Return(true, nil)
	ledger.EXPECT().Changed(gomock.Any(), rejected, rejectedTime).Return(true, nil)

	uploader.EXPECT().Upload(gomock.Any(), unis.Object{unis.KeyID: "fresh.xml"}).Return(nil)
	uploader.EXPECT().Upload(gomock.Any(), unis.Object{unis.KeyID: "rejected.xml"}).
		Return(dispatch.ErrUpload)

	// Only successful uploads are recorded.
	ledger.EXPECT().Record(gomock.Any(), fresh, freshTime).Return(nil)

	encode := func(_ context.Context, path string) (unis.Object, error) {
		if path == broken {
			return nil, assert.AnError
		}
		return unis.Object{unis.KeyID: filepath.Base(path)}, nil
	}

	reg := prometheus.NewRegistry()
	d := &dispatch.Dispatcher{
		Ledger:   ledger,
		Uploader: uploader,
		Encode:   encode,
		Workers:  3,
		Metrics:  dispatch.NewMetrics(metrics.WithRegistry(reg)),
	}
	reports, err := d.Run(context.Background(),
		[]string{fresh, same, broken, rejected, missing})
	assert.ErrorIs(t, err, dispatch.ErrFailed)

	outcomes := make(map[string]dispatch.Outcome)
	for _, r := range reports {
		outcomes[filepath.Base(r.Path)] = r.Outcome
	}
	assert.Equal(t, map[string]dispatch.Outcome{
		"fresh.xml":    dispatch.Uploaded,
		"same.xml":     dispatch.Skipped,
		"broken.xml":   dispatch.Failed,
		"rejected.xml": dispatch.Failed,
		"missing.xml":  dispatch.Failed,
	}, outcomes)
	assert.Equal(t, fresh, reports[0].Path)
	assert.ErrorIs(t, reports[2].Err, assert.AnError)
	assert.ErrorIs(t, reports[3].Err, dispatch.ErrUpload)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		d.Metrics.Files.WithLabelValues("uploaded", "ok_success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		d.Metrics.Files.WithLabelValues("skipped", "ok_success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(
		d.Metrics.Files.WithLabelValues("failed", "err_process")))
}

func TestDispatcherLedgerError(t *testing.T) {
	dir := t.TempDir()
	path, mtime := writeFile(t, dir, "a.xml")

	ctrl := gomock.NewController(t)
	ledger := mock_dispatch.NewMockLedger(ctrl)
	ledger.EXPECT().Changed(gomock.Any(), path, mtime).
		Return(false, db.NewReadError("looking up file", nil))

	d := &dispatch.Dispatcher{
		Ledger:   ledger,
		Uploader: mock_dispatch.NewMockUploader(ctrl),
		Encode: func(context.Context, string) (unis.Object, error) {
			t.Fatal("encode must not be called")
			return nil, nil
		},
	}
	reports, err := d.Run(context.Background(), []string{path})
	assert.ErrorIs(t, err, dispatch.ErrFailed)
	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].Err, db.ErrReadFailed)
}

func TestDispatcherEndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path, _ := writeFile(t, dir, "a.xml")

	srv, uploads := fakeUNIS(t, http.StatusCreated)
	ledger, err := dispatch.NewSqliteLedger(ctx, filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer ledger.Close()

	d := &dispatch.Dispatcher{
		Ledger:   ledger,
		Uploader: &dispatch.Client{URL: srv.URL, Endpoint: "topologies", HTTP: srv.Client()},
		Encode: func(context.Context, string) (unis.Object, error) {
			return unis.Object{unis.KeyID: "a"}, nil
		},
	}
	reports, err := d.Run(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, dispatch.Uploaded, reports[0].Outcome)
	assert.Len(t, uploads, 1)

	reports, err = d.Run(ctx, []string{path})
	require.NoError(t, err)
	assert.Equal(t, dispatch.Skipped, reports[0].Outcome)
	assert.Len(t, uploads, 1)
}
