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

// Package credential reads the slice identity from GENI signed credentials.
package credential

import (
	"crypto/md5"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

const (
	publicIDPrefix = "urn:publicid:IDN"
	uuidPrefix     = "urn:uuid:"
)

var (
	// ErrNoTarget indicates that the credential has no target.
	ErrNoTarget = serrors.New("credential without target")
	// ErrNoURN indicates that the target certificate carries no publicid URN.
	ErrNoURN = serrors.New("target certificate without URN")
)

// Slice is the identity of the slice a credential is issued for.
type Slice struct {
	URN  string
	UUID string
}

// LoadFile reads the credential at path.
func LoadFile(path string) (Slice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Slice{}, serrors.Wrap("reading credential", err, "file", path)
	}
	s, err := Parse(raw)
	if err != nil {
		return Slice{}, serrors.Wrap("parsing credential", err, "file", path)
	}
	return s, nil
}

// Parse extracts the slice identity from a signed credential. The URN and
// UUID are taken from the subject alternative names of the target GID. A
// GID without UUID gets the UUID formed by the MD5 digest of the URN.
func Parse(raw []byte) (Slice, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return Slice{}, serrors.Wrap("parsing XML", err)
	}
	gid := doc.FindElement("//credential/target_gid")
	if gid == nil || strings.TrimSpace(gid.Text()) == "" {
		return Slice{}, ErrNoTarget
	}
	cert, err := parseGID(gid.Text())
	if err != nil {
		return Slice{}, err
	}

	var s Slice
	for _, u := range cert.URIs {
		switch v := u.String(); {
		case s.URN == "" && strings.HasPrefix(v, publicIDPrefix):
			s.URN = v
		case s.UUID == "" && strings.HasPrefix(v, uuidPrefix):
			id, err := uuid.Parse(strings.TrimPrefix(v, uuidPrefix))
			if err != nil {
				return Slice{}, serrors.Wrap("parsing UUID", err, "uri", v)
			}
			s.UUID = id.String()
		}
	}
	if s.URN == "" {
		return Slice{}, serrors.JoinNoStack(ErrNoURN, nil, "subject", cert.Subject.String())
	}
	if s.UUID == "" {
		s.UUID = DigestUUID(s.URN)
	}
	return s, nil
}

// DigestUUID returns the UUID formed by the MD5 digest of urn.
func DigestUUID(urn string) string {
	sum := md5.Sum([]byte(urn))
	// FromBytes only fails on wrong lengths.
	id, _ := uuid.FromBytes(sum[:])
	return id.String()
}

// parseGID parses the first certificate of a GID. GIDs are PEM chains, bare
// base64 DER is accepted as well.
func parseGID(text string) (*x509.Certificate, error) {
	var der []byte
	if block, _ := pem.Decode([]byte(strings.TrimSpace(text))); block != nil {
		der = block.Bytes
	} else {
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, serrors.Wrap("decoding target GID", err)
		}
		der = raw
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, serrors.Wrap("parsing target GID", err)
	}
	return cert, nil
}
