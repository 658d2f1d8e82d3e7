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

package unis

import (
	"strings"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

// Version is a revision of the UNIS schema set.
type Version string

const (
	Version20120709 Version = "20120709"
	Version20140214 Version = "20140214"

	DefaultVersion = Version20120709
)

// ParseVersion parses a schema version, the empty string selects the
// default.
func ParseVersion(s string) (Version, error) {
	switch v := Version(strings.TrimSpace(s)); v {
	case "":
		return DefaultVersion, nil
	case Version20120709, Version20140214:
		return v, nil
	default:
		return "", serrors.New("unsupported schema version", "version", s)
	}
}

// Kind is the type of a UNIS object, as named in its $schema URL.
type Kind string

const (
	KindNetworkResource Kind = "networkresource"
	KindNode            Kind = "node"
	KindDomain          Kind = "domain"
	KindTopology        Kind = "topology"
	KindPort            Kind = "port"
	KindLink            Kind = "link"
	KindNetwork         Kind = "network"
	KindBlipp           Kind = "blipp"
	KindMetadata        Kind = "metadata"
)

const schemaBase = "http://unis.incntre.iu.edu/schema/"

// Schema returns the $schema URL of kind k.
func (v Version) Schema(k Kind) string {
	if v == "" {
		v = DefaultVersion
	}
	return schemaBase + string(v) + "/" + string(k) + "#"
}

// New returns an object of kind k.
func (v Version) New(k Kind) Object {
	return Object{KeySchema: v.Schema(k)}
}

// KindOf returns the kind of o, derived from its $schema URL. The version of
// the URL is not checked.
func KindOf(o Object) Kind {
	s, ok := o[KeySchema].(string)
	if !ok || !strings.HasPrefix(s, schemaBase) {
		return ""
	}
	s = strings.TrimSuffix(s, "#")
	return Kind(s[strings.LastIndex(s, "/")+1:])
}
