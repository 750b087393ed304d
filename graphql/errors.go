// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package graphql

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlcheck/internal/gqlang"
)

// ResponseError describes a problem found in a GraphQL document. Its JSON
// form matches the error entries of a GraphQL response.
type ResponseError struct {
	Message   string     `json:"message" yaml:"message"`
	Locations []Location `json:"locations,omitempty" yaml:"locations,omitempty,flow"`

	// Fields is the path from the enclosing operation or fragment definition
	// down to the offending node. The first element names the operation
	// ("query getCheese", or just "query" for an anonymous query) and later
	// elements are response keys.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty,flow"`

	// Kind classifies validation errors. It is zero for syntax errors.
	Kind ErrorKind `json:"-" yaml:"-"`
}

// Error returns e.Message.
func (e *ResponseError) Error() string {
	return e.Message
}

// ErrorKind identifies the validation check that produced a ResponseError.
type ErrorKind int

// Validation error kinds.
const (
	// MissingSelectionsOnComposite is reported when a field or operation of an
	// object, interface, or union type has no selections.
	MissingSelectionsOnComposite ErrorKind = 1 + iota
	// IllegalSelectionsOnLeaf is reported when a scalar or enum field selects
	// fields or spreads fragments.
	IllegalSelectionsOnLeaf
	// IllegalInlineFragmentsOnLeaf is reported when a scalar or enum field
	// contains inline fragments.
	IllegalInlineFragmentsOnLeaf
)

// String returns the kind's Go constant name.
func (kind ErrorKind) String() string {
	switch kind {
	case 0:
		return "None"
	case MissingSelectionsOnComposite:
		return "MissingSelectionsOnComposite"
	case IllegalSelectionsOnLeaf:
		return "IllegalSelectionsOnLeaf"
	case IllegalInlineFragmentsOnLeaf:
		return "IllegalInlineFragmentsOnLeaf"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
}

// Location identifies a position in a GraphQL document. Line and column
// are 1-based.
type Location struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func astPositionToLocation(pos gqlang.Position) Location {
	return Location{
		Line:   pos.Line,
		Column: pos.Column,
	}
}

// String returns the location in the form "line:col".
func (loc Location) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
}

// toResponseError converts an error from the parser into a response error,
// keeping its position if it has one.
func toResponseError(e error) *ResponseError {
	var re *ResponseError
	if xerrors.As(e, &re) {
		return re
	}
	re = &ResponseError{
		Message: e.Error(),
	}
	if pos, ok := gqlang.ErrorPosition(e); ok {
		re.Locations = []Location{astPositionToLocation(pos)}
	}
	return re
}

// FormatErrors renders a list of errors one per line, each prefixed with its
// first location.
func FormatErrors(errs []*ResponseError) string {
	sb := new(strings.Builder)
	for i, e := range errs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if len(e.Locations) > 0 {
			sb.WriteString(e.Locations[0].String())
			sb.WriteString(": ")
		}
		sb.WriteString(e.Message)
	}
	return sb.String()
}
