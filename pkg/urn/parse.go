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

package urn

import (
	"errors"
	"math"
	"net/netip"
	"strconv"
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

var (
	// ErrInvalidCapacity indicates a capacity literal that cannot be parsed.
	ErrInvalidCapacity = errors.New("invalid capacity")
	// ErrInvalidBoolean indicates a boolean literal that cannot be parsed.
	ErrInvalidBoolean = errors.New("invalid boolean")
)

// ParseBoolean parses "true"/"1" and "false"/"0", ignoring case and
// surrounding white space. The second result is false for any other token;
// callers keep the raw token in that case.
func ParseBoolean(token string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseStrictBoolean is like ParseBoolean but fails on invalid tokens.
func ParseStrictBoolean(token string) (bool, error) {
	v, ok := ParseBoolean(token)
	if !ok {
		return false, serrors.JoinNoStack(ErrInvalidBoolean, nil, "value", token)
	}
	return v, nil
}

var capacityUnits = []struct {
	suffix string
	factor float64
}{
	{"gbps", 1e9},
	{"mbps", 1e6},
	{"kbps", 1e3},
	{"bps", 1},
}

// ParseCapacity parses a capacity literal into bits per second. The literal
// is either a bare number or a number followed by one of the case
// insensitive units gbps, mbps, kbps or bps. Negative capacities and
// capacities that do not fit into an int64 are invalid.
func ParseCapacity(token string) (int64, error) {
	clean := strings.ToLower(strings.TrimSpace(token))
	factor := 1.0
	for _, u := range capacityUnits {
		if strings.HasSuffix(clean, u.suffix) {
			clean = strings.TrimSpace(strings.TrimSuffix(clean, u.suffix))
			factor = u.factor
			break
		}
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, serrors.JoinNoStack(ErrInvalidCapacity, err, "value", token)
	}
	// float64(math.MaxInt64) is 2^63, which does not fit into an int64.
	bps := v * factor
	if bps < 0 || bps >= math.MaxInt64 {
		return 0, serrors.JoinNoStack(ErrInvalidCapacity, nil,
			"value", token, "reason", "out of range")
	}
	return int64(bps), nil
}

// Address types reported by AddressType.
const (
	AddressIPv4     = "ipv4"
	AddressIPv6     = "ipv6"
	AddressHostname = "hostname"
)

// AddressType classifies an address literal as ipv4, ipv6 or hostname.
func AddressType(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	switch {
	case err != nil:
		return AddressHostname
	case addr.Is4():
		return AddressIPv4
	default:
		return AddressIPv6
	}
}
