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
	"sync"
)

// gqlType represents a GraphQL type.
//
// Types can be compared for equality using ==. Types with the same name from
// different schemas are never equal.
type gqlType struct {
	scalar   string
	enum     *enumType
	listElem *gqlType
	obj      *objectType
	union    *unionType
	input    *inputObjectType
	nonNull  bool

	// nullVariant is the same type with the nonNull flag flipped.
	// This is to ensure that either version of the type has a consistent address.
	nullVariant *gqlType

	listInit sync.Once
	listOf_  *gqlType
}

// objectType describes both object and interface types. They differ only in
// whether they can be the concrete type of a value.
type objectType struct {
	name       string
	isIface    bool
	interfaces []*gqlType
	fields     map[string]objectTypeField
	fieldOrder []string
}

type objectTypeField struct {
	name string
	typ  *gqlType
	args map[string]*gqlType
}

func (obj *objectType) field(name string) *objectTypeField {
	f, ok := obj.fields[name]
	if !ok {
		return nil
	}
	return &f
}

type unionType struct {
	name    string
	members []*gqlType
}

type enumType struct {
	name    string
	symbols map[string]struct{}
}

func (info *enumType) has(sym string) bool {
	_, ok := info.symbols[sym]
	return ok
}

type inputObjectType struct {
	name   string
	fields map[string]*gqlType
}

// Predefined types.
var (
	intType     = newScalarType("Int")
	floatType   = newScalarType("Float")
	stringType  = newScalarType("String")
	booleanType = newScalarType("Boolean")
	idType      = newScalarType("ID")
)

func newScalarType(name string) *gqlType {
	return newNamedType(func(typ *gqlType) { typ.scalar = name })
}

func newEnumType(info *enumType) *gqlType {
	return newNamedType(func(typ *gqlType) { typ.enum = info })
}

func newObjectType(info *objectType) *gqlType {
	return newNamedType(func(typ *gqlType) { typ.obj = info })
}

func newUnionType(info *unionType) *gqlType {
	return newNamedType(func(typ *gqlType) { typ.union = info })
}

func newInputObjectType(info *inputObjectType) *gqlType {
	return newNamedType(func(typ *gqlType) { typ.input = info })
}

// newNamedType returns the nullable variant of a named type, linked to its
// non-nullable variant. init sets the type's descriptor on each variant.
func newNamedType(init func(*gqlType)) *gqlType {
	nullable := new(gqlType)
	init(nullable)
	nonNullable := &gqlType{nonNull: true}
	init(nonNullable)
	nullable.nullVariant = nonNullable
	nonNullable.nullVariant = nullable
	return nullable
}

func listOf(elem *gqlType) *gqlType {
	elem.listInit.Do(func() {
		nullable := &gqlType{listElem: elem}
		nonNullable := &gqlType{listElem: elem, nonNull: true}
		nullable.nullVariant = nonNullable
		nonNullable.nullVariant = nullable
		elem.listOf_ = nullable
	})
	return elem.listOf_
}

// String returns the type reference string.
func (typ *gqlType) String() string {
	if typ == nil {
		return "<nil>"
	}
	suffix := ""
	if typ.nonNull {
		suffix = "!"
	}
	if typ.isList() {
		return "[" + typ.listElem.String() + "]" + suffix
	}
	name := typ.name()
	if name == "" {
		return "<invalid type>"
	}
	return name + suffix
}

// name returns the name of a named type or the empty string for lists.
func (typ *gqlType) name() string {
	switch {
	case typ.isScalar():
		return typ.scalar
	case typ.isEnum():
		return typ.enum.name
	case typ.obj != nil:
		return typ.obj.name
	case typ.isUnion():
		return typ.union.name
	case typ.isInputObject():
		return typ.input.name
	default:
		return ""
	}
}

// isNullable reports whether the type permits null.
func (typ *gqlType) isNullable() bool {
	return !typ.nonNull
}

func (typ *gqlType) toNullable() *gqlType {
	if typ.isNullable() {
		return typ
	}
	return typ.nullVariant
}

func (typ *gqlType) toNonNullable() *gqlType {
	if !typ.isNullable() {
		return typ
	}
	return typ.nullVariant
}

func (typ *gqlType) isScalar() bool {
	return typ.scalar != ""
}

func (typ *gqlType) isEnum() bool {
	return typ.enum != nil
}

func (typ *gqlType) isList() bool {
	return typ.listElem != nil
}

func (typ *gqlType) isObject() bool {
	return typ.obj != nil && !typ.obj.isIface
}

func (typ *gqlType) isInterface() bool {
	return typ.obj != nil && typ.obj.isIface
}

func (typ *gqlType) isUnion() bool {
	return typ.union != nil
}

func (typ *gqlType) isInputObject() bool {
	return typ.input != nil
}

// namedType strips away any list and non-null wrappers.
// See https://graphql.github.io/graphql-spec/June2018/#sec-Wrapping-Types
func (typ *gqlType) namedType() *gqlType {
	if typ == nil {
		return nil
	}
	for typ.isList() {
		typ = typ.listElem
	}
	return typ.toNullable()
}

// isInputType reports whether typ can be used as an input.
// See https://graphql.github.io/graphql-spec/June2018/#IsInputType()
func (typ *gqlType) isInputType() bool {
	typ = typ.namedType()
	return typ.isScalar() || typ.isEnum() || typ.isInputObject()
}

// isOutputType reports whether typ can be used as an output.
// See https://graphql.github.io/graphql-spec/June2018/#IsOutputType()
func (typ *gqlType) isOutputType() bool {
	typ = typ.namedType()
	return typ.isScalar() || typ.isEnum() || typ.obj != nil || typ.isUnion()
}

// typeKind is the kind of a named type, as reported by introspection.
// See https://graphql.github.io/graphql-spec/June2018/#sec-Type-Kinds
type typeKind int

const (
	scalarKind typeKind = 1 + iota
	enumKind
	objectKind
	interfaceKind
	unionKind
	inputObjectKind
)

func (typ *gqlType) kind() typeKind {
	typ = typ.namedType()
	switch {
	case typ == nil:
		return 0
	case typ.isScalar():
		return scalarKind
	case typ.isEnum():
		return enumKind
	case typ.isObject():
		return objectKind
	case typ.isInterface():
		return interfaceKind
	case typ.isUnion():
		return unionKind
	case typ.isInputObject():
		return inputObjectKind
	default:
		return 0
	}
}

func (kind typeKind) String() string {
	switch kind {
	case scalarKind:
		return "SCALAR"
	case enumKind:
		return "ENUM"
	case objectKind:
		return "OBJECT"
	case interfaceKind:
		return "INTERFACE"
	case unionKind:
		return "UNION"
	case inputObjectKind:
		return "INPUT_OBJECT"
	default:
		return fmt.Sprintf("typeKind(%d)", int(kind))
	}
}

// selectionClass says whether a field's type demands a selection set.
type selectionClass int

const (
	// unresolvedClass is used for fields whose type could not be determined.
	// Other rules report those, so selection checks skip them.
	unresolvedClass selectionClass = iota
	leafClass
	compositeClass
)

func (c selectionClass) String() string {
	switch c {
	case unresolvedClass:
		return "unresolved"
	case leafClass:
		return "leaf"
	case compositeClass:
		return "composite"
	default:
		return fmt.Sprintf("selectionClass(%d)", int(c))
	}
}

// classify reports which kind of selection set a value of typ requires.
// See https://graphql.github.io/graphql-spec/June2018/#sec-Leaf-Field-Selections
func classify(typ *gqlType) selectionClass {
	switch typ.kind() {
	case scalarKind, enumKind:
		return leafClass
	case objectKind, interfaceKind, unionKind:
		return compositeClass
	default:
		return unresolvedClass
	}
}

const typeNameFieldName = "__typename"

// fieldType returns the type of the named field on typ or nil if the field
// cannot be resolved. typ must be a named type.
func (typ *gqlType) fieldType(name string) *gqlType {
	if classify(typ) != compositeClass {
		return nil
	}
	if name == typeNameFieldName {
		return stringType.toNonNullable()
	}
	if typ.obj == nil {
		// Unions have no fields besides meta-fields.
		return nil
	}
	f := typ.obj.field(name)
	if f == nil {
		return nil
	}
	return f.typ
}
