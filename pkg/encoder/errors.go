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
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/unis"
)

var (
	// ErrNoHandler indicates that the root element has no handler.
	ErrNoHandler = errors.New("no handler for element")
	// ErrUnhandledElement is returned for unhandled children if the encoder
	// is configured to fail on them.
	ErrUnhandledElement = errors.New("unhandled element")
	// ErrUnsupportedDocType indicates a document type the dialect cannot
	// encode.
	ErrUnsupportedDocType = errors.New("unsupported document type")
	// ErrMissingSliceURN indicates a manifest encoded without slice URN.
	ErrMissingSliceURN = errors.New("slice urn must be provided when encoding a manifest")
	// ErrMissingComponentManager indicates an advertisement encoded without
	// component manager id.
	ErrMissingComponentManager = errors.New(
		"component manager id must be provided when encoding an advertisement")
	// ErrMissingAttribute indicates that a required attribute is absent.
	ErrMissingAttribute = errors.New("missing required attribute")
	// ErrAmbiguousReference indicates that a reference matches more than one
	// element.
	ErrAmbiguousReference = errors.New("ambiguous reference")
	// ErrNoEndpoints indicates a link without usable endpoints.
	ErrNoEndpoints = errors.New("link has no endpoints")
	// ErrIncompleteLinkProperty indicates a link property lacking its source
	// or destination.
	ErrIncompleteLinkProperty = errors.New("incomplete link property")
	// ErrUnmatchedLinkProperty indicates link properties that do not form
	// at most two distinct endpoint pairs.
	ErrUnmatchedLinkProperty = errors.New("link property does not match endpoints")
	// ErrInvalidNumber indicates a numeric literal that cannot be parsed.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrUnrecognizedKind indicates an element kind without output
	// collection on the path of a referenced element.
	ErrUnrecognizedKind = errors.New("unrecognized element kind")
)

// DecodeError is the error returned by Encode. It wraps the cause and
// records the element that was being encoded.
type DecodeError struct {
	Element source.QName
	Path    string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %s", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *DecodeError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("element", e.Element.String())
	enc.AddString("path", e.Path)
	if m, ok := e.Err.(zapcore.ObjectMarshaler); ok {
		return enc.AddObject("cause", m)
	}
	enc.AddString("cause", e.Err.Error())
	return nil
}

// decodeError attaches el to err, unless err already carries an element.
func decodeError(el *source.Element, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Element: el.Name, Path: el.Path().String(), Err: err}
}

// PreconditionError reports a handler invoked under a parent of the wrong
// kind. It is a programming error and is raised as a panic.
type PreconditionError struct {
	Element source.QName
	Want    []unis.Kind
	Got     unis.Kind
}

func (e *PreconditionError) Error() string {
	want := make([]string, 0, len(e.Want))
	for _, k := range e.Want {
		want = append(want, string(k))
	}
	return fmt.Sprintf("%s must appear under %s, got %q",
		e.Element, strings.Join(want, " or "), e.Got)
}

// MustParent panics with a *PreconditionError if the parent of c is not of
// one of kinds.
func MustParent(el *source.Element, c Context, kinds ...unis.Kind) unis.Object {
	got := unis.KindOf(c.Parent)
	for _, k := range kinds {
		if got == k {
			return c.Parent
		}
	}
	panic(&PreconditionError{Element: el.Name, Want: kinds, Got: got})
}
