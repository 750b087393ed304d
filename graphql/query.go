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

import "zombiezen.com/go/gqlcheck/internal/gqlang"

// Query is a parsed GraphQL executable document: a set of operations and
// fragment definitions. A Query is immutable and may be validated against
// any number of schemas concurrently.
type Query struct {
	source string
	doc    *gqlang.Document
}

// ParseQuery parses a GraphQL executable document. Syntax errors are returned
// as response errors with the location of the problem when it is known.
func ParseQuery(source string) (*Query, []*ResponseError) {
	doc, errs := gqlang.Parse(source)
	if len(errs) > 0 {
		respErrs := make([]*ResponseError, 0, len(errs))
		for _, err := range errs {
			respErrs = append(respErrs, toResponseError(err))
		}
		return nil, respErrs
	}
	var respErrs []*ResponseError
	for _, defn := range doc.Definitions {
		if defn.Operation != nil || defn.Fragment != nil {
			continue
		}
		// https://graphql.github.io/graphql-spec/June2018/#sec-Executable-Definitions
		respErrs = append(respErrs, &ResponseError{
			Message: "not an operation nor a fragment",
			Locations: []Location{
				astPositionToLocation(defn.Start().ToPosition(source)),
			},
		})
	}
	if len(respErrs) > 0 {
		return nil, respErrs
	}
	return &Query{source: source, doc: doc}, nil
}

// Source returns the text the query was parsed from.
func (query *Query) Source() string {
	return query.source
}

// OperationNames returns the names of the query's operations in document
// order. Anonymous operations are listed as the empty string.
func (query *Query) OperationNames() []string {
	var names []string
	for _, defn := range query.doc.Definitions {
		if defn.Operation != nil {
			names = append(names, defn.Operation.Name.String())
		}
	}
	return names
}

// Check parses source and validates it against the schema, returning any
// syntax or validation errors.
func (schema *Schema) Check(source string) []*ResponseError {
	query, errs := ParseQuery(source)
	if len(errs) > 0 {
		return errs
	}
	return schema.Validate(query)
}
