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
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const dairySchemaSource = `
	type Query {
		cheese(id: Int!): Cheese
		cheeses: [Cheese!]!
		milk(id: ID!): Milk
		dairy: DairyProduct
		favoriteEdible: Edible
		allAnimals: [DairyAnimal!]
	}

	type Mutation {
		pushValue(value: Int!): [Int!]!
		addCheese(source: DairyAnimal!): Cheese
	}

	enum DairyAnimal { COW, GOAT, SHEEP, YAK }

	interface Edible {
		fatContent: Float!
		origin: String!
	}

	type Cheese implements Edible {
		id: Int!
		flavor: String!
		fatContent: Float!
		origin: String!
		source: DairyAnimal!
		similarCheese(source: [DairyAnimal!]!): Cheese
		nullableCheese: Cheese
	}

	type Milk implements Edible {
		id: ID!
		fatContent: Float!
		origin: String!
		source: DairyAnimal!
		flavors: [String]
	}

	union DairyProduct = Milk | Cheese`

const getCheeseQuery = `
    query getCheese {
      okCheese: cheese(id: 1) { fatContent, similarCheese(source: YAK) { source } }
      missingFieldsCheese: cheese(id: 1)
      illegalSelectionCheese: cheese(id: 1) { id { something, ... someFields } }
      incorrectFragmentSpread: cheese(id: 1) { flavor { ... on String { __typename } } }
    }
  `

func TestValidate(t *testing.T) {
	schema, err := ParseSchema(dairySchemaSource)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		request    string
		wantErrors []*ResponseError
	}{
		{
			name:    "GetCheese",
			request: getCheeseQuery,
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'cheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 4, Column: 7}},
					Fields:    []string{"query getCheese", "missingFieldsCheese"},
					Kind:      MissingSelectionsOnComposite,
				},
				{
					Message:   "Selections can't be made on scalars (field 'id' returns Int but has selections [something, someFields])",
					Locations: []Location{{Line: 5, Column: 47}},
					Fields:    []string{"query getCheese", "illegalSelectionCheese", "id"},
					Kind:      IllegalSelectionsOnLeaf,
				},
				{
					Message:   "Selections can't be made on scalars (field 'flavor' returns String but has inline fragments [String])",
					Locations: []Location{{Line: 6, Column: 48}},
					Fields:    []string{"query getCheese", "incorrectFragmentSpread", "flavor"},
					Kind:      IllegalInlineFragmentsOnLeaf,
				},
			},
		},
		{
			name:    "Valid",
			request: `{ cheese(id: 1) { id flavor } milk(id: "1") { __typename } }`,
		},
		{
			name:    "AnonymousQuery/Empty",
			request: "{ }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (anonymous query returns Query but has no selections)",
					Locations: []Location{{Line: 1, Column: 1}},
					Fields:    []string{"query"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "NamedQuery/Empty",
			request: "query getNothing { }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'getNothing' returns Query but has no selections)",
					Locations: []Location{{Line: 1, Column: 1}},
					Fields:    []string{"query getNothing"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "AnonymousMutation/Empty",
			request: "mutation { }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (anonymous mutation returns Mutation but has no selections)",
					Locations: []Location{{Line: 1, Column: 1}},
					Fields:    []string{"mutation"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Mutation",
			request: "mutation { pushValue(value: 3) addCheese(source: COW) }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'addCheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 32}},
					Fields:    []string{"mutation", "addCheese"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Subscription/NotInSchema",
			request: "subscription { anything }",
		},
		{
			name:    "Field/EmptyBraces",
			request: "{ cheese(id: 1) { } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'cheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 3}},
					Fields:    []string{"query", "cheese"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Field/Alias",
			request: "query q { c: cheese(id: 1) { s: similarCheese(source: [COW]) } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'similarCheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 30}},
					Fields:    []string{"query q", "c", "s"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Field/ListOfObjects",
			request: "{ cheeses }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'cheeses' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 3}},
					Fields:    []string{"query", "cheeses"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Field/ListOfEnums",
			request: "{ allAnimals { name } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Selections can't be made on scalars (field 'allAnimals' returns DairyAnimal but has selections [name])",
					Locations: []Location{{Line: 1, Column: 3}},
					Fields:    []string{"query", "allAnimals"},
					Kind:      IllegalSelectionsOnLeaf,
				},
			},
		},
		{
			name:    "Field/Typename",
			request: "{ __typename { x } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Selections can't be made on scalars (field '__typename' returns String but has selections [x])",
					Locations: []Location{{Line: 1, Column: 3}},
					Fields:    []string{"query", "__typename"},
					Kind:      IllegalSelectionsOnLeaf,
				},
			},
		},
		{
			name:    "Field/Unknown",
			request: "{ nope { x } cheese(id: 1) { nope } __schema __type(name: \"Cheese\") }",
		},
		{
			name:    "Leaf/EmptyBraces",
			request: "{ cheese(id: 1) { id { } } }",
		},
		{
			name:    "Leaf/SelectionsAndInlineFragments",
			request: "{ cheese(id: 1) { flavor { length ...F ... on Cheese { id } ... { x } } } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Selections can't be made on scalars (field 'flavor' returns String but has selections [length, F])",
					Locations: []Location{{Line: 1, Column: 19}},
					Fields:    []string{"query", "cheese", "flavor"},
					Kind:      IllegalSelectionsOnLeaf,
				},
				{
					Message:   "Selections can't be made on scalars (field 'flavor' returns String but has inline fragments [Cheese, String])",
					Locations: []Location{{Line: 1, Column: 19}},
					Fields:    []string{"query", "cheese", "flavor"},
					Kind:      IllegalInlineFragmentsOnLeaf,
				},
			},
		},
		{
			name:    "Interface/Valid",
			request: "{ favoriteEdible { fatContent } }",
		},
		{
			name:    "Interface/MissingSelections",
			request: "{ favoriteEdible }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'favoriteEdible' returns Edible but has no selections)",
					Locations: []Location{{Line: 1, Column: 3}},
					Fields:    []string{"query", "favoriteEdible"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Union/MissingSelections",
			request: "{ dairy }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'dairy' returns DairyProduct but has no selections)",
					Locations: []Location{{Line: 1, Column: 3}},
					Fields:    []string{"query", "dairy"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "Union/InlineFragments",
			request: "{ dairy { ... on Cheese { similarCheese } ... on Milk { source } } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'similarCheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 27}},
					Fields:    []string{"query", "dairy", "similarCheese"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "InlineFragment/NoTypeCondition",
			request: "{ cheese(id: 1) { ... { nullableCheese } } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'nullableCheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 25}},
					Fields:    []string{"query", "cheese", "nullableCheese"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
		{
			name:    "InlineFragment/UnknownType",
			request: "{ cheese(id: 1) { ... on Nope { nullableCheese } } }",
		},
		{
			name:    "InlineFragment/ScalarType",
			request: "{ cheese(id: 1) { ... on Int { nullableCheese } } }",
		},
		{
			name:    "FragmentDefinition",
			request: "fragment cheeseFields on Cheese { similarCheese flavor { x } }\n{ cheese(id: 1) { ...cheeseFields } }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'similarCheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 35}},
					Fields:    []string{"fragment cheeseFields", "similarCheese"},
					Kind:      MissingSelectionsOnComposite,
				},
				{
					Message:   "Selections can't be made on scalars (field 'flavor' returns String but has selections [x])",
					Locations: []Location{{Line: 1, Column: 49}},
					Fields:    []string{"fragment cheeseFields", "flavor"},
					Kind:      IllegalSelectionsOnLeaf,
				},
			},
		},
		{
			name:    "FragmentDefinition/UnknownType",
			request: "fragment f on Nope { a }\n{ __typename }",
		},
		{
			name:    "FragmentDefinition/ScalarType",
			request: "fragment f on Int { a }\n{ __typename }",
		},
		{
			name:    "TabIndentedField",
			request: "query {\n\tcheese(id: 1)\n\tmilk(id: 1) {\n\t\tid { x }\n\t}\n}",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'cheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 2, Column: 2}},
					Fields:    []string{"query", "cheese"},
					Kind:      MissingSelectionsOnComposite,
				},
				{
					Message:   "Selections can't be made on scalars (field 'id' returns ID but has selections [x])",
					Locations: []Location{{Line: 4, Column: 3}},
					Fields:    []string{"query", "milk", "id"},
					Kind:      IllegalSelectionsOnLeaf,
				},
			},
		},
		{
			name:    "MultipleOperations",
			request: "query a { cheese(id: 1) }\nquery b { milk(id: 1) }",
			wantErrors: []*ResponseError{
				{
					Message:   "Objects must have selections (field 'cheese' returns Cheese but has no selections)",
					Locations: []Location{{Line: 1, Column: 11}},
					Fields:    []string{"query a", "cheese"},
					Kind:      MissingSelectionsOnComposite,
				},
				{
					Message:   "Objects must have selections (field 'milk' returns Milk but has no selections)",
					Locations: []Location{{Line: 2, Column: 11}},
					Fields:    []string{"query b", "milk"},
					Kind:      MissingSelectionsOnComposite,
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			query, errs := ParseQuery(test.request)
			if len(errs) > 0 {
				t.Fatal(FormatErrors(errs))
			}
			got := schema.Validate(query)
			for _, e := range got {
				t.Logf("Error: %s", e.Message)
			}
			if diff := cmp.Diff(test.wantErrors, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("errors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateIsRepeatable(t *testing.T) {
	schema, err := ParseSchema(dairySchemaSource)
	if err != nil {
		t.Fatal(err)
	}
	query, errs := ParseQuery(getCheeseQuery)
	if len(errs) > 0 {
		t.Fatal(FormatErrors(errs))
	}
	want := schema.Validate(query)
	if len(want) != 3 {
		t.Fatalf("Validate returned %d errors; want 3", len(want))
	}

	const n = 8
	results := make([][]*ResponseError, n)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = schema.Validate(query)
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("run %d (-first +got):\n%s", i, diff)
		}
	}
}

func TestFieldPath(t *testing.T) {
	var path fieldPath
	popOp := path.push("query q")
	popA := path.push("a")
	saved := path.snapshot()
	popA()
	popB := path.push("b")
	if diff := cmp.Diff([]string{"query q", "b"}, path.snapshot()); diff != "" {
		t.Errorf("path after pushing b (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"query q", "a"}, saved); diff != "" {
		t.Errorf("snapshot changed after pop (-want +got):\n%s", diff)
	}
	popB()
	popOp()
	if len(path) != 0 {
		t.Errorf("path = %q after popping everything; want empty", path)
	}
}
