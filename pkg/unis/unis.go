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

// Package unis contains the model of UNIS topology documents.
//
// A document is a tree of Object values. Collections (domains, nodes, ports,
// links) are []any slices that are only ever appended to, so the index of an
// element is final once it is appended and can be used in a JSON pointer.
package unis

import (
	"reflect"
	"strconv"
	"strings"
)

// Object is a JSON object of a UNIS document.
type Object = map[string]any

// Well known keys of UNIS objects.
const (
	KeySchema      = "$schema"
	KeyID          = "id"
	KeyURN         = "urn"
	KeyName        = "name"
	KeyDescription = "description"
	KeyProperties  = "properties"
	KeyRelations   = "relations"
	KeyStatus      = "status"
	KeyLocation    = "location"
	KeyAddress     = "address"
	KeyCapacity    = "capacity"
	KeyDirected    = "directed"
	KeyEndpoints   = "endpoints"
	KeyHref        = "href"
	KeyRel         = "rel"
)

// Collections of a UNIS document.
const (
	Topologies = "topologies"
	Domains    = "domains"
	Networks   = "networks"
	Nodes      = "nodes"
	Ports      = "ports"
	Links      = "links"
	Paths      = "paths"
	Services   = "services"
	Metadata   = "metadata"
)

// Property namespaces. Dialect specific attributes are kept under
// properties.<namespace>.
const (
	NSGENI      = "geni"
	NSCtrlPlane = "ctrlPlane"
	NSIP        = "ip"
)

// RelFull is the relation type of every href emitted by the encoder.
const RelFull = "full"

// Href returns a reference object pointing to ref.
func Href(ref string) Object {
	return Object{KeyHref: ref, KeyRel: RelFull}
}

// Sub returns the object stored under key, creating it if it is absent. A
// non-object value under key is replaced.
func Sub(o Object, key string) Object {
	if v, ok := o[key].(Object); ok {
		return v
	}
	v := Object{}
	o[key] = v
	return v
}

// Props returns properties.<ns> of o, creating it if needed.
func Props(o Object, ns string) Object {
	return Sub(Sub(o, KeyProperties), ns)
}

// List returns the collection stored under key.
func List(o Object, key string) []any {
	l, _ := o[key].([]any)
	return l
}

// Append appends v to the collection stored under key and returns its index.
func Append(o Object, key string, v any) int {
	l := List(o, key)
	o[key] = append(l, v)
	return len(l)
}

// AppendHref appends a reference to ref to the list stored under key.
func AppendHref(o Object, key, ref string) {
	Append(o, key, Href(ref))
}

// AddRelation appends a reference to ref to relations.<rel> of o.
func AddRelation(o Object, rel, ref string) {
	Append(Sub(o, KeyRelations), rel, Href(ref))
}

// Pointer returns the JSON pointer of element idx of collection coll, where
// base is the pointer of the object owning the collection, e.g.
// Pointer("#/domains/0", "ports", 1) is "#/domains/0/ports/1".
func Pointer(base, coll string, idx int) string {
	return strings.TrimSuffix(base, "/") + "/" + coll + "/" + strconv.Itoa(idx)
}

// Same reports whether a and b are the same object.
func Same(a, b Object) bool {
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

// RootPointer is the JSON pointer of the document root.
const RootPointer = "#"

// Endpoints is the endpoint representation of a link. A directed link has a
// source and a sink; an undirected link has an unordered pair.
type Endpoints struct {
	Directed bool
	Source   string
	Sink     string
	Pair     []string
}

// Apply writes the endpoints and the directed flag to link.
func (e Endpoints) Apply(link Object) {
	link[KeyDirected] = e.Directed
	if e.Directed {
		link[KeyEndpoints] = Object{
			"source": Href(e.Source),
			"sink":   Href(e.Sink),
		}
		return
	}
	refs := make([]any, 0, len(e.Pair))
	for _, p := range e.Pair {
		refs = append(refs, Href(p))
	}
	link[KeyEndpoints] = refs
}

// Count returns the number of primitives per collection in doc, including
// the primitives of nested collections. References are not counted.
func Count(doc Object) map[string]int {
	counts := make(map[string]int)
	count(doc, counts)
	return counts
}

func count(o Object, counts map[string]int) {
	for _, coll := range []string{
		Topologies, Domains, Networks, Nodes, Ports, Links, Paths, Services, Metadata,
	} {
		for _, v := range List(o, coll) {
			child, ok := v.(Object)
			if !ok || child[KeySchema] == nil {
				continue
			}
			counts[coll]++
			count(child, counts)
		}
	}
}
