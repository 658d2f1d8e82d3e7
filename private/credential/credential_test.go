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

package credential_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periscope-ps/unisencoder/private/credential"
)

const sliceURN = "urn:publicid:IDN+example.net+slice+exp1"

// gid returns a self-signed certificate with the given URI SANs.
func gid(t *testing.T, uris ...string) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "exp1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	for _, raw := range uris {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		tmpl.URIs = append(tmpl.URIs, u)
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func pemGID(t *testing.T, uris ...string) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: gid(t, uris...)}))
}

func signedCredential(targetGID string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<signed-credential>
  <credential xml:id="ref0">
    <type>privilege</type>
    <serial>8</serial>
    <owner_gid>ignored</owner_gid>
    <owner_urn>urn:publicid:IDN+example.net+user+alice</owner_urn>
    <target_gid>%s</target_gid>
    <target_urn>%s</target_urn>
  </credential>
  <signatures/>
</signed-credential>`, targetGID, sliceURN))
}

func TestParse(t *testing.T) {
	testCases := map[string]struct {
		raw       func(t *testing.T) []byte
		want      credential.Slice
		assertErr assert.ErrorAssertionFunc
	}{
		"urn and uuid": {
			raw: func(t *testing.T) []byte {
				return signedCredential(pemGID(t, sliceURN,
					"urn:uuid:F2F0E1B2-3C4D-4E5F-8A9B-0C1D2E3F4A5B"))
			},
			want: credential.Slice{
				URN:  sliceURN,
				UUID: "f2f0e1b2-3c4d-4e5f-8a9b-0c1d2e3f4a5b",
			},
			assertErr: assert.NoError,
		},
		"urn only": {
			raw: func(t *testing.T) []byte {
				return signedCredential(pemGID(t, sliceURN))
			},
			want: credential.Slice{
				URN:  sliceURN,
				UUID: credential.DigestUUID(sliceURN),
			},
			assertErr: assert.NoError,
		},
		"base64 der": {
			raw: func(t *testing.T) []byte {
				return signedCredential(base64.StdEncoding.EncodeToString(gid(t, sliceURN)))
			},
			want: credential.Slice{
				URN:  sliceURN,
				UUID: credential.DigestUUID(sliceURN),
			},
			assertErr: assert.NoError,
		},
		"no urn": {
			raw: func(t *testing.T) []byte {
				return signedCredential(pemGID(t, "urn:uuid:f2f0e1b2-3c4d-4e5f-8a9b-0c1d2e3f4a5b"))
			},
			assertErr: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, credential.ErrNoURN)
			},
		},
		"no target": {
			raw: func(t *testing.T) []byte {
				return signedCredential("")
			},
			assertErr: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, credential.ErrNoTarget)
			},
		},
		"garbage gid": {
			raw: func(t *testing.T) []byte {
				return signedCredential("not a certificate")
			},
			assertErr: assert.Error,
		},
		"not xml": {
			raw: func(t *testing.T) []byte {
				return []byte("<<signed-credential>")
			},
			assertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := credential.Parse(tc.raw(t))
			tc.assertErr(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDigestUUID(t *testing.T) {
	// md5("urn:publicid:IDN+example.net+slice+exp1") rendered as a UUID.
	got := credential.DigestUUID(sliceURN)
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, got)
	assert.Equal(t, got, credential.DigestUUID(sliceURN))
	assert.NotEqual(t, got, credential.DigestUUID(sliceURN+"2"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slice.cred")
	require.NoError(t, os.WriteFile(path, signedCredential(pemGID(t, sliceURN)), 0644))

	got, err := credential.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sliceURN, got.URN)

	_, err = credential.LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
