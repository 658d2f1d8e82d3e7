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

// Package source provides the read-only element tree the encoder walks.
//
// A Tree is built once from an XML document. Every element knows its
// namespace-resolved qualified name, its parent, its position in document
// order and its structural path. Elements can be looked up by attribute value
// and local name through an index that is built on first use.
package source

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/beevik/etree"

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

// QName is a namespace-resolved qualified name.
type QName struct {
	Space string
	Local string
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// Kind distinguishes element nodes from comment nodes.
type Kind int

const (
	KindElement Kind = iota
	KindComment
)

// Attr is an attribute of an element.
type Attr struct {
	Name  QName
	Value string
}

// Element is a node of the source tree. Elements are never modified after
// the tree is built.
type Element struct {
	Name QName
	Kind Kind
	// Text is the character data preceding the first child element, or the
	// content of a comment.
	Text string

	attrs    []Attr
	parent   *Element
	children []*Element
	ordinal  uint32
	// sibling is the 1-based position among siblings sharing the name, 0
	// if the name is unique among its siblings.
	sibling int
}

// Parent returns the parent element, nil for the root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child nodes in document order, comments included.
func (e *Element) Children() []*Element { return e.children }

// Ordinal returns the position of the element in document order.
func (e *Element) Ordinal() uint32 { return e.ordinal }

// IsComment reports whether the node is a comment.
func (e *Element) IsComment() bool { return e.Kind == KindComment }

// Attr returns the value of the unqualified attribute key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Space == "" && a.Name.Local == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrDefault returns the value of the unqualified attribute key, or def if
// the attribute is absent.
func (e *Element) AttrDefault(key, def string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	return def
}

// Attrs returns a working copy of the attributes of the element.
func (e *Element) Attrs() *Attrs {
	return &Attrs{list: append([]Attr(nil), e.attrs...)}
}

// TrimmedText returns the text of the element without surrounding white
// space.
func (e *Element) TrimmedText() string {
	return strings.TrimSpace(e.Text)
}

// ChildElements returns the child elements, skipping comments.
func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, c := range e.children {
		if !c.IsComment() {
			out = append(out, c)
		}
	}
	return out
}

// Segment is one step of a structural path.
type Segment struct {
	Local string
	// Index is the 1-based position among same-named siblings, or 0 if
	// there are none.
	Index int
}

func (s Segment) String() string {
	if s.Index == 0 {
		return s.Local
	}
	return s.Local + "[" + strconv.Itoa(s.Index) + "]"
}

// Path is the structural path of an element from the root, root included.
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString("/")
		b.WriteString(s.String())
	}
	return b.String()
}

// Path returns the structural path of the element.
func (e *Element) Path() Path {
	var p Path
	for cur := e; cur != nil; cur = cur.parent {
		p = append(p, Segment{Local: cur.Name.Local, Index: cur.sibling})
	}
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Tree is a parsed source document.
type Tree struct {
	root  *Element
	nodes []*Element

	indexOnce sync.Once
	index     *index
}

// Root returns the root element.
func (t *Tree) Root() *Element { return t.root }

// Len returns the number of nodes in the tree, comments included.
func (t *Tree) Len() int { return len(t.nodes) }

// Element returns the node with the given ordinal.
func (t *Tree) Element(ordinal uint32) *Element { return t.nodes[ordinal] }

// Parse reads an XML document from r.
func Parse(r io.Reader) (*Tree, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, serrors.Wrap("parsing xml", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, serrors.New("document has no root element")
	}
	t := &Tree{}
	t.root = t.build(root, nil)
	return t, nil
}

// ParseBytes parses an XML document held in memory.
func ParseBytes(raw []byte) (*Tree, error) {
	return Parse(bytes.NewReader(raw))
}

// ParseFile parses the XML document stored in file.
func ParseFile(file string) (*Tree, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, serrors.Wrap("opening source", err, "file", file)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, serrors.Wrap("reading source", err, "file", file)
	}
	return t, nil
}

func (t *Tree) add(e *Element) *Element {
	e.ordinal = uint32(len(t.nodes))
	t.nodes = append(t.nodes, e)
	return e
}

func (t *Tree) build(src *etree.Element, parent *Element) *Element {
	e := t.add(&Element{
		Name:   QName{Space: src.NamespaceURI(), Local: src.Tag},
		Kind:   KindElement,
		Text:   src.Text(),
		parent: parent,
	})
	for _, a := range src.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		name := QName{Local: a.Key}
		if a.Space != "" {
			name.Space = a.NamespaceURI()
		}
		e.attrs = append(e.attrs, Attr{Name: name, Value: a.Value})
	}
	counts := make(map[string]int)
	for _, c := range src.ChildElements() {
		counts[c.Tag]++
	}
	seen := make(map[string]int)
	for _, tok := range src.Child {
		switch c := tok.(type) {
		case *etree.Comment:
			e.children = append(e.children, t.add(&Element{
				Kind:   KindComment,
				Text:   c.Data,
				parent: e,
			}))
		case *etree.Element:
			child := t.build(c, e)
			if counts[c.Tag] > 1 {
				seen[c.Tag]++
				child.sibling = seen[c.Tag]
			}
			e.children = append(e.children, child)
		}
	}
	return e
}

// Attrs is a working copy of an element's attributes. Handlers pop the
// attributes they understand; what remains is reported as unparsed.
type Attrs struct {
	list []Attr
}

// Pop removes the unqualified attribute key and returns its value.
func (a *Attrs) Pop(key string) (string, bool) {
	return a.PopNS("", key)
}

// PopNS removes the attribute {space}key and returns its value.
func (a *Attrs) PopNS(space, key string) (string, bool) {
	for i, attr := range a.list {
		if attr.Name.Space == space && attr.Name.Local == key {
			a.list = append(a.list[:i], a.list[i+1:]...)
			return attr.Value, true
		}
	}
	return "", false
}

// PopTrimmed is like Pop but trims white space from the value.
func (a *Attrs) PopTrimmed(key string) (string, bool) {
	v, ok := a.Pop(key)
	return strings.TrimSpace(v), ok
}

// Len returns the number of remaining attributes.
func (a *Attrs) Len() int { return len(a.list) }

// Remaining returns the attributes not popped yet.
func (a *Attrs) Remaining() []Attr { return a.list }

// Names returns the qualified names of the remaining attributes.
func (a *Attrs) Names() []string {
	names := make([]string, 0, len(a.list))
	for _, attr := range a.list {
		names = append(names, attr.Name.String())
	}
	return names
}
