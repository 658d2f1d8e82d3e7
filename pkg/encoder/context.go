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

package encoder

import (
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

// DocType is the type of an RSpec document.
type DocType string

const (
	Advertisement DocType = "advertisement"
	Request       DocType = "request"
	Manifest      DocType = "manifest"
)

// Params are the document wide parameters supplied by the caller.
type Params struct {
	// DocType is set by the root handler of dialects that declare the
	// document type in the document itself.
	DocType            DocType
	SliceURN           string
	SliceUUID          string
	ComponentManagerID string
}

// Context is the per element state handed down the recursion. Handlers
// receive it by value; modifying it only affects the handler's own
// descendants.
type Context struct {
	// Collection owns the collections new primitives are appended to.
	Collection unis.Object
	// Base is the JSON pointer of Collection.
	Base string
	// Parent is the nearest enclosing primitive.
	Parent unis.Object
	// ParentPort is the pointer of the enclosing port, if any.
	ParentPort string
	Params     Params
}

// WithParent returns a copy of c with parent set.
func (c Context) WithParent(parent unis.Object) Context {
	c.Parent = parent
	return c
}

// WithCollection returns a copy of c appending to coll, whose pointer is
// base.
func (c Context) WithCollection(coll unis.Object, base string) Context {
	c.Collection = coll
	c.Base = base
	return c
}
