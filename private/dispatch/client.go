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

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

// ContentType is the media type of uploaded documents.
const ContentType = "application/perfsonar+json"

// DefaultTimeout bounds a single upload if the client has no timeout.
const DefaultTimeout = 10 * time.Second

// ErrUpload indicates that the UNIS service rejected a document.
var ErrUpload = serrors.New("upload rejected")

// Client uploads encoded documents to a UNIS service.
type Client struct {
	// URL is the base URL of the UNIS service.
	URL string
	// Endpoint is the collection documents are posted to, e.g. "topologies".
	Endpoint string
	// HTTP is the client used for requests. If nil, a client with
	// DefaultTimeout is used.
	HTTP *http.Client
}

// Target returns the URL documents are posted to.
func (c *Client) Target() string {
	return strings.TrimRight(c.URL, "/") + "/" + strings.TrimLeft(c.Endpoint, "/")
}

// Upload posts doc to the UNIS service. Uploads are not retried.
func (c *Client) Upload(ctx context.Context, doc unis.Object) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return serrors.Wrap("marshalling document", err)
	}
	target := c.Target()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(raw))
	if err != nil {
		return serrors.Wrap("creating request", err, "url", target)
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return serrors.Wrap("posting document", err, "url", target)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return serrors.JoinNoStack(ErrUpload, nil,
			"url", target, "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: DefaultTimeout}
}
