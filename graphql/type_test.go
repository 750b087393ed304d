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

import "testing"

const typeTestSchema = `
type Query {
	cheese: Cheese
	cheeses: [Cheese!]!
	pet: Pet
	product: DairyProduct
	animal: DairyAnimal
}

enum DairyAnimal { COW, GOAT }

interface Pet { name: String! }

type Cat implements Pet {
	name: String!
	lives: Int
}

type Cheese {
	id: Int
	flavor: String!
	tags: [String]
}

type Milk { fatContent: Float }

union DairyProduct = Cheese | Milk

input CheeseFilter { id: Int }
`

func TestClassify(t *testing.T) {
	schema, err := ParseSchema(typeTestSchema)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		typ  *gqlType
		want selectionClass
	}{
		{nil, unresolvedClass},
		{intType, leafClass},
		{stringType.toNonNullable(), leafClass},
		{listOf(stringType), leafClass},
		{schema.lookup("DairyAnimal"), leafClass},
		{schema.lookup("Cheese"), compositeClass},
		{listOf(schema.lookup("Cheese").toNonNullable()).toNonNullable(), compositeClass},
		{schema.lookup("Pet"), compositeClass},
		{schema.lookup("DairyProduct"), compositeClass},
		{schema.lookup("CheeseFilter"), unresolvedClass},
	}
	for _, test := range tests {
		if got := classify(test.typ); got != test.want {
			t.Errorf("classify(%v) = %v; want %v", test.typ, got, test.want)
		}
	}
}

func TestTypeKind(t *testing.T) {
	schema, err := ParseSchema(typeTestSchema)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want typeKind
	}{
		{"Int", scalarKind},
		{"ID", scalarKind},
		{"DairyAnimal", enumKind},
		{"Cheese", objectKind},
		{"Pet", interfaceKind},
		{"DairyProduct", unionKind},
		{"CheeseFilter", inputObjectKind},
	}
	for _, test := range tests {
		typ := schema.lookup(test.name)
		if typ == nil {
			t.Errorf("lookup(%q) = <nil>", test.name)
			continue
		}
		if got := typ.kind(); got != test.want {
			t.Errorf("%s.kind() = %v; want %v", test.name, got, test.want)
		}
		if got := listOf(typ).toNonNullable().kind(); got != test.want {
			t.Errorf("[%s]!.kind() = %v; want %v", test.name, got, test.want)
		}
	}
}

func TestFieldType(t *testing.T) {
	schema, err := ParseSchema(typeTestSchema)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		parent string
		field  string
		want   string
	}{
		{"Query", "cheese", "Cheese"},
		{"Query", "cheeses", "[Cheese!]!"},
		{"Query", "nope", ""},
		{"Query", "__typename", "String!"},
		{"Query", "__schema", ""},
		{"Query", "__type", ""},
		{"Cheese", "flavor", "String!"},
		{"Cheese", "tags", "[String]"},
		{"Pet", "name", "String!"},
		{"Pet", "lives", ""},
		{"Cat", "lives", "Int"},
		{"DairyProduct", "__typename", "String!"},
		{"DairyProduct", "fatContent", ""},
		{"DairyAnimal", "__typename", ""},
		{"Int", "foo", ""},
	}
	for _, test := range tests {
		parent := schema.lookup(test.parent)
		got := parent.fieldType(test.field)
		if test.want == "" {
			if got != nil {
				t.Errorf("%s.fieldType(%q) = %v; want <nil>", test.parent, test.field, got)
			}
			continue
		}
		if got.String() != test.want {
			t.Errorf("%s.fieldType(%q) = %v; want %s", test.parent, test.field, got, test.want)
		}
	}
}

func TestListOfIsStable(t *testing.T) {
	a := listOf(intType)
	b := listOf(intType.toNonNullable().toNullable())
	if a != b {
		t.Error("listOf(Int) returned different types on subsequent calls")
	}
	if a.toNonNullable().toNullable() != a {
		t.Error("[Int]! does not round-trip to [Int]")
	}
}
