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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantNames  []string
		wantErrors []*ResponseError
	}{
		{
			name:      "Shorthand",
			source:    "{ cheese { id } }",
			wantNames: []string{""},
		},
		{
			name:      "NamedOperationsAndFragment",
			source:    "query a { x }\nfragment f on T { y }\nmutation b { z }",
			wantNames: []string{"a", "b"},
		},
		{
			name:   "UnclosedSelectionSet",
			source: "{ cheese(id: 1) { id }",
			wantErrors: []*ResponseError{
				{Locations: []Location{{Line: 1, Column: 23}}},
			},
		},
		{
			name:   "UnterminatedString",
			source: "{\n  cheese(name: \"brie) { id }\n}",
			wantErrors: []*ResponseError{
				{Locations: []Location{{Line: 2, Column: 16}}},
			},
		},
		{
			name:   "TypeDefinition",
			source: "type Foo { a: Int }",
			wantErrors: []*ResponseError{
				{
					Message:   "not an operation nor a fragment",
					Locations: []Location{{Line: 1, Column: 1}},
				},
			},
		},
		{
			name:   "MixedDefinitions",
			source: "{ a }\nscalar X\nschema { query: Q }",
			wantErrors: []*ResponseError{
				{
					Message:   "not an operation nor a fragment",
					Locations: []Location{{Line: 2, Column: 1}},
				},
				{
					Message:   "not an operation nor a fragment",
					Locations: []Location{{Line: 3, Column: 1}},
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			query, errs := ParseQuery(test.source)
			for _, e := range errs {
				t.Logf("Error: %v: %s", e.Locations, e.Message)
			}
			diff := cmp.Diff(test.wantErrors, errs,
				cmpopts.EquateEmpty(),
				cmpopts.IgnoreFields(ResponseError{}, "Message"))
			if diff != "" {
				t.Errorf("errors (-want +got):\n%s", diff)
			}
			if len(test.wantErrors) > 0 {
				if query != nil {
					t.Error("ParseQuery returned a query along with errors")
				}
				return
			}
			if query == nil {
				t.Fatal("ParseQuery returned nil query")
			}
			if query.Source() != test.source {
				t.Errorf("query.Source() = %q; want %q", query.Source(), test.source)
			}
			if diff := cmp.Diff(test.wantNames, query.OperationNames()); diff != "" {
				t.Errorf("OperationNames() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	schema, err := ParseSchema(dairySchemaSource)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name      string
		source    string
		wantKinds []ErrorKind
	}{
		{
			name:   "Valid",
			source: "{ cheese(id: 1) { flavor } }",
		},
		{
			name:      "SyntaxError",
			source:    "{ cheese(id: 1) { flavor }",
			wantKinds: []ErrorKind{0},
		},
		{
			name:      "ValidationErrors",
			source:    getCheeseQuery,
			wantKinds: []ErrorKind{MissingSelectionsOnComposite, IllegalSelectionsOnLeaf, IllegalInlineFragmentsOnLeaf},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got []ErrorKind
			for _, e := range schema.Check(test.source) {
				got = append(got, e.Kind)
			}
			if diff := cmp.Diff(test.wantKinds, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("error kinds (-want +got):\n%s", diff)
			}
		})
	}
}
