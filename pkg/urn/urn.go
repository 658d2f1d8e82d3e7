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

// Package urn canonicalizes the identifiers found in GENI and OGF network
// topology documents and derives the short identifiers used in UNIS
// documents.
//
// All functions are pure and deterministic: applying them twice to the same
// input yields the same output.
package urn

import (
	"net/url"
	"strings"
)

const (
	// GENIPrefix is the prefix of GENI public identifiers.
	GENIPrefix = "urn:publicid:IDN+"
	// OGFPrefix is the prefix of OGF network identifiers.
	OGFPrefix = "urn:ogf:network"
)

// Unquote percent-decodes s. Malformed escapes leave s untouched.
func Unquote(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}

// GENIToID derives a short identifier from a GENI URN, e.g.
// "urn:publicid:IDN+test.net+node+node1" becomes "test.net_node_node1".
func GENIToID(u string) string {
	return strings.ReplaceAll(strings.ReplaceAll(u, GENIPrefix, ""), "+", "_")
}

// RSpecURN canonicalizes a component identifier taken from an RSpec
// document.
func RSpecURN(raw string) string {
	return strings.TrimSpace(Unquote(raw))
}

var ogfFields = []string{"domain=", "node=", "port=", "link="}

// ParseOGF canonicalizes an OGF network URN. Escaped characters are decoded
// and the positional form "urn:ogf:network:d:n:p:l" is rewritten to the
// keyed form "urn:ogf:network:domain=d:node=n:port=p:link=l".
func ParseOGF(raw string) string {
	u := Unquote(strings.TrimSpace(raw))
	if !strings.Contains(u, OGFPrefix) || strings.Contains(u, ":domain=") {
		return u
	}
	parts := strings.Split(u, ":")
	if len(parts) < 3 {
		return u
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts[:3], ":"))
	for i, p := range parts[3:] {
		if i >= len(ogfFields) {
			// Anything past the link part is kept unkeyed.
			b.WriteString(":")
			b.WriteString(strings.Join(parts[3+i:], ":"))
			break
		}
		b.WriteString(":")
		b.WriteString(ogfFields[i])
		b.WriteString(p)
	}
	return b.String()
}

// OGFToID derives a short identifier from a canonical OGF URN.
func OGFToID(u string) string {
	id := strings.ReplaceAll(u, OGFPrefix+":", "")
	id = strings.NewReplacer(":", "_", "=", "_", "/", "_", "*", "").Replace(id)
	return quote(id)
}

// FOAMNodeID derives a node identifier from a FOAM datapath component id.
func FOAMNodeID(u string) string {
	if i := strings.LastIndex(u, "foam"); i >= 0 {
		u = u[i:]
	}
	return strings.ReplaceAll(strings.ReplaceAll(u, ":", ""), "+", "_")
}

// FOAMPortID derives a port identifier from the owning datapath's component
// id and the port name and number.
func FOAMPortID(u, name, num string) string {
	return FOAMNodeID(u) + "_" + name + "_" + num
}

// Escape percent-escapes the path separator and fragment marker, the two
// characters producers escape inconsistently.
func Escape(id string) string {
	return strings.NewReplacer("/", "%2F", "#", "%23").Replace(id)
}

// EscapeVariants returns id followed by its escaped form, if that differs.
func EscapeVariants(id string) []string {
	if e := Escape(id); e != id {
		return []string{id, e}
	}
	return []string{id}
}

// quote percent-encodes every byte outside [A-Za-z0-9_.-].
func quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '_', c == '.', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0xf])
		}
	}
	return b.String()
}
