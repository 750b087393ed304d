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

// Package gqlang provides a parser for the GraphQL language.
package gqlang

import "fmt"

// Document is a parsed GraphQL source.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Document
type Document struct {
	Definitions []*Definition
}

// Definition is a top-level GraphQL construct like an operation, a fragment, or
// a type. Only one of its fields will be set.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Document
type Definition struct {
	Operation *Operation
	Fragment  *FragmentDefinition
	Type      *TypeDefinition
	Schema    *SchemaDefinition
}

// Start returns the position of the definition's first token.
func (defn *Definition) Start() Pos {
	switch {
	case defn.Operation != nil:
		return defn.Operation.Start
	case defn.Fragment != nil:
		return defn.Fragment.Keyword
	case defn.Type != nil:
		return defn.Type.Start()
	case defn.Schema != nil:
		return defn.Schema.Keyword
	default:
		panic("unknown definition")
	}
}

// Operation is a query, a mutation, or a subscription.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Operations
type Operation struct {
	Start               Pos
	Type                OperationType
	Name                *Name
	VariableDefinitions *VariableDefinitions
	Directives          Directives
	SelectionSet        *SelectionSet
}

func (op *Operation) asDefinition() *Definition {
	if op == nil {
		return nil
	}
	return &Definition{Operation: op}
}

// OperationType is one of query, mutation, or subscription.
type OperationType int

// Types of operation.
const (
	Query OperationType = iota
	Mutation
	Subscription
)

// String returns the keyword that corresponds to the operation type.
func (typ OperationType) String() string {
	switch typ {
	case Query:
		return "query"
	case Mutation:
		return "mutation"
	case Subscription:
		return "subscription"
	default:
		return fmt.Sprintf("OperationType(%d)", int(typ))
	}
}

// FragmentDefinition is a named, reusable selection set.
// https://graphql.github.io/graphql-spec/June2018/#FragmentDefinition
type FragmentDefinition struct {
	Keyword      Pos
	Name         *Name
	Type         *TypeCondition
	Directives   Directives
	SelectionSet *SelectionSet
}

func (frag *FragmentDefinition) asDefinition() *Definition {
	if frag == nil {
		return nil
	}
	return &Definition{Fragment: frag}
}

// TypeCondition is the "on Type" clause of a fragment.
// https://graphql.github.io/graphql-spec/June2018/#TypeCondition
type TypeCondition struct {
	On   Pos
	Name *Name
}

// SelectionSet is the set of information an operation requests.
// https://graphql.github.io/graphql-spec/June2018/#SelectionSet
type SelectionSet struct {
	LBrace Pos
	Sel    []*Selection
	RBrace Pos
}

// Len returns the number of selections in the set. A nil set has
// no selections.
func (set *SelectionSet) Len() int {
	if set == nil {
		return 0
	}
	return len(set.Sel)
}

// A Selection is either a field or a fragment. Exactly one of its fields
// will be set.
// https://graphql.github.io/graphql-spec/June2018/#sec-Selection-Sets
type Selection struct {
	Field          *Field
	FragmentSpread *FragmentSpread
	InlineFragment *InlineFragment
}

// Start returns the position of the selection's first token.
func (sel *Selection) Start() Pos {
	switch {
	case sel.Field != nil:
		return sel.Field.Start()
	case sel.FragmentSpread != nil:
		return sel.FragmentSpread.Ellipsis
	case sel.InlineFragment != nil:
		return sel.InlineFragment.Ellipsis
	default:
		panic("unknown selection type")
	}
}

// A Field is a discrete piece of information available to request within a
// selection set.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Fields
type Field struct {
	Alias        *Name
	Name         *Name
	Arguments    *Arguments
	Directives   Directives
	SelectionSet *SelectionSet
}

// Key returns the response key of the field: the alias if present,
// otherwise the name.
func (f *Field) Key() *Name {
	if f.Alias != nil {
		return f.Alias
	}
	return f.Name
}

// Start returns the position of the field's first token.
func (f *Field) Start() Pos {
	return f.Key().Start
}

// End returns the byte offset after the end of the field.
func (f *Field) End() Pos {
	if f.SelectionSet != nil {
		return f.SelectionSet.RBrace + 1
	}
	if f.Arguments != nil {
		return f.Arguments.RParen + 1
	}
	return f.Name.End()
}

func (f *Field) asSelection() *Selection {
	if f == nil {
		return nil
	}
	return &Selection{Field: f}
}

// FragmentSpread is a reference to a named fragment within a selection set.
// https://graphql.github.io/graphql-spec/June2018/#FragmentSpread
type FragmentSpread struct {
	Ellipsis   Pos
	Name       *Name
	Directives Directives
}

func (spread *FragmentSpread) asSelection() *Selection {
	if spread == nil {
		return nil
	}
	return &Selection{FragmentSpread: spread}
}

// InlineFragment is an anonymous fragment embedded in a selection set.
// Type is nil if the fragment has no type condition.
// https://graphql.github.io/graphql-spec/June2018/#InlineFragment
type InlineFragment struct {
	Ellipsis     Pos
	Type         *TypeCondition
	Directives   Directives
	SelectionSet *SelectionSet
}

func (frag *InlineFragment) asSelection() *Selection {
	if frag == nil {
		return nil
	}
	return &Selection{InlineFragment: frag}
}

// Arguments is a set of named arguments on a field.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Arguments
type Arguments struct {
	LParen Pos
	Args   []*Argument
	RParen Pos
}

// Argument is a single element in Arguments.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Arguments
type Argument struct {
	Name  *Name
	Colon Pos
	Value *InputValue
}

// Directives is a list of directives applied to a node.
// https://graphql.github.io/graphql-spec/June2018/#sec-Language.Directives
type Directives []*Directive

// Directive is a single annotation like @skip(if: true).
type Directive struct {
	At        Pos
	Name      *Name
	Arguments *Arguments
}

// An InputValue is a scalar, a variable reference, a list, or an input object.
// https://graphql.github.io/graphql-spec/June2018/#sec-Input-Values
type InputValue struct {
	Null        *Name
	Scalar      *ScalarValue
	VariableRef *Variable
	List        *ListValue
	InputObject *InputObjectValue
}

// Start returns the position of the value's first token.
func (ival *InputValue) Start() Pos {
	switch {
	case ival.Null != nil:
		return ival.Null.Start
	case ival.Scalar != nil:
		return ival.Scalar.Start
	case ival.VariableRef != nil:
		return ival.VariableRef.Dollar
	case ival.List != nil:
		return ival.List.LBracket
	case ival.InputObject != nil:
		return ival.InputObject.LBrace
	default:
		panic("unknown input value")
	}
}

// ScalarValue is a primitive literal like a string or integer.
type ScalarValue struct {
	Start Pos
	Type  ScalarType
	Raw   string
}

// String returns sval.Raw.
func (sval *ScalarValue) String() string {
	return sval.Raw
}

// ScalarType indicates the type of a ScalarValue.
type ScalarType int

// Scalar types.
const (
	StringScalar ScalarType = iota
	BooleanScalar
	EnumScalar
	IntScalar
	FloatScalar
)

// ListValue is a bracketed list of values.
// https://graphql.github.io/graphql-spec/June2018/#sec-List-Value
type ListValue struct {
	LBracket Pos
	Values   []*InputValue
	RBracket Pos
}

// InputObjectValue is a braced set of named values.
// https://graphql.github.io/graphql-spec/June2018/#sec-Input-Object-Values
type InputObjectValue struct {
	LBrace Pos
	Fields []*InputObjectField
	RBrace Pos
}

// InputObjectField is a single element of an InputObjectValue.
type InputObjectField struct {
	Name  *Name
	Colon Pos
	Value *InputValue
}

// A Variable is an input to a GraphQL operation.
// https://graphql.github.io/graphql-spec/June2018/#Variable
type Variable struct {
	Dollar Pos
	Name   *Name
}

// String returns the variable in the form "$foo".
func (v *Variable) String() string {
	if v == nil {
		return ""
	}
	return "$" + v.Name.String()
}

// DefaultValue specifies the default value of an input.
// https://graphql.github.io/graphql-spec/June2018/#DefaultValue
type DefaultValue struct {
	Eq    Pos
	Value *InputValue
}

// VariableDefinitions is the set of variables an operation defines.
// https://graphql.github.io/graphql-spec/June2018/#Variable
type VariableDefinitions struct {
	LParen Pos
	Defs   []*VariableDefinition
	RParen Pos
}

// VariableDefinition is an element of VariableDefinitions.
// https://graphql.github.io/graphql-spec/June2018/#Variable
type VariableDefinition struct {
	Var     *Variable
	Colon   Pos
	Type    *TypeRef
	Default *DefaultValue
}

// A Name is an identifier.
// https://graphql.github.io/graphql-spec/June2018/#sec-Names
type Name struct {
	Value string
	Start Pos
}

// End returns the position of the byte after the last character of the name.
func (n *Name) End() Pos {
	return n.Start + Pos(len(n.Value))
}

// String returns the name or the empty string if the name is nil.
func (n *Name) String() string {
	if n == nil {
		return ""
	}
	return n.Value
}

// A TypeRef is a named type, a list type, or a non-null type.
// https://graphql.github.io/graphql-spec/June2018/#Type
type TypeRef struct {
	Named   *Name
	List    *ListType
	NonNull *NonNullType
}

// Start returns the position of the type reference's first token.
func (ref *TypeRef) Start() Pos {
	switch {
	case ref.Named != nil:
		return ref.Named.Start
	case ref.List != nil:
		return ref.List.LBracket
	case ref.NonNull != nil && ref.NonNull.Named != nil:
		return ref.NonNull.Named.Start
	case ref.NonNull != nil && ref.NonNull.List != nil:
		return ref.NonNull.List.LBracket
	default:
		panic("unrecognized type reference form")
	}
}

// String returns the type reference as it would appear in source.
func (ref *TypeRef) String() string {
	switch {
	case ref == nil:
		return "<nil>"
	case ref.Named != nil:
		return ref.Named.Value
	case ref.List != nil:
		return "[" + ref.List.Type.String() + "]"
	case ref.NonNull != nil && ref.NonNull.Named != nil:
		return ref.NonNull.Named.Value + "!"
	case ref.NonNull != nil && ref.NonNull.List != nil:
		return "[" + ref.NonNull.List.Type.String() + "]!"
	default:
		return "<invalid type>"
	}
}

// ListType declares a homogenous sequence of another type.
// https://graphql.github.io/graphql-spec/June2018/#ListType
type ListType struct {
	LBracket Pos
	Type     *TypeRef
	RBracket Pos
}

// NonNullType declares a named or list type that cannot be null.
// https://graphql.github.io/graphql-spec/June2018/#Type
type NonNullType struct {
	Named *Name
	List  *ListType
	Pos   Pos
}

// A Description is a string that documents a type system definition.
// https://graphql.github.io/graphql-spec/June2018/#Description
type Description struct {
	Start Pos
	Raw   string
}

// SchemaDefinition names the root operation types of a schema.
// https://graphql.github.io/graphql-spec/June2018/#SchemaDefinition
type SchemaDefinition struct {
	Keyword    Pos
	LBrace     Pos
	Operations []*RootOperationTypeDefinition
	RBrace     Pos
}

func (defn *SchemaDefinition) asDefinition() *Definition {
	if defn == nil {
		return nil
	}
	return &Definition{Schema: defn}
}

// RootOperationTypeDefinition is a single "query: Query" entry in a
// SchemaDefinition.
// https://graphql.github.io/graphql-spec/June2018/#RootOperationTypeDefinition
type RootOperationTypeDefinition struct {
	Operation OperationType
	Start     Pos
	Colon     Pos
	Type      *Name
}

// TypeDefinition holds a type definition.
// https://graphql.github.io/graphql-spec/June2018/#TypeDefinition
type TypeDefinition struct {
	// One of the following must be non-nil:

	Scalar      *ScalarTypeDefinition
	Object      *ObjectTypeDefinition
	Interface   *InterfaceTypeDefinition
	Union       *UnionTypeDefinition
	Enum        *EnumTypeDefinition
	InputObject *InputObjectTypeDefinition
}

// Start returns the position of the type definition's first token.
func (defn *TypeDefinition) Start() Pos {
	switch {
	case defn.Scalar != nil:
		return defn.Scalar.Keyword
	case defn.Object != nil:
		return defn.Object.Keyword
	case defn.Interface != nil:
		return defn.Interface.Keyword
	case defn.Union != nil:
		return defn.Union.Keyword
	case defn.Enum != nil:
		return defn.Enum.Keyword
	case defn.InputObject != nil:
		return defn.InputObject.Keyword
	default:
		panic("unknown type definition")
	}
}

// Name returns the type definition's name.
func (defn *TypeDefinition) Name() *Name {
	switch {
	case defn == nil:
		return nil
	case defn.Scalar != nil:
		return defn.Scalar.Name
	case defn.Object != nil:
		return defn.Object.Name
	case defn.Interface != nil:
		return defn.Interface.Name
	case defn.Union != nil:
		return defn.Union.Name
	case defn.Enum != nil:
		return defn.Enum.Name
	case defn.InputObject != nil:
		return defn.InputObject.Name
	default:
		return nil
	}
}

func (defn *TypeDefinition) asDefinition() *Definition {
	return &Definition{Type: defn}
}

// ScalarTypeDefinition names a scalar type.
// https://graphql.github.io/graphql-spec/June2018/#ScalarTypeDefinition
type ScalarTypeDefinition struct {
	Description *Description
	Keyword     Pos
	Name        *Name
}

func (defn *ScalarTypeDefinition) asTypeDefinition() *TypeDefinition {
	return &TypeDefinition{Scalar: defn}
}

// ObjectTypeDefinition names an output object type.
// https://graphql.github.io/graphql-spec/June2018/#ObjectTypeDefinition
type ObjectTypeDefinition struct {
	Description *Description
	Keyword     Pos
	Name        *Name
	Interfaces  []*Name
	Fields      *FieldsDefinition
}

func (defn *ObjectTypeDefinition) asTypeDefinition() *TypeDefinition {
	return &TypeDefinition{Object: defn}
}

// InterfaceTypeDefinition names an abstract output type with fields.
// https://graphql.github.io/graphql-spec/June2018/#InterfaceTypeDefinition
type InterfaceTypeDefinition struct {
	Description *Description
	Keyword     Pos
	Name        *Name
	Fields      *FieldsDefinition
}

func (defn *InterfaceTypeDefinition) asTypeDefinition() *TypeDefinition {
	return &TypeDefinition{Interface: defn}
}

// UnionTypeDefinition names an abstract output type that is one of a set of
// object types.
// https://graphql.github.io/graphql-spec/June2018/#UnionTypeDefinition
type UnionTypeDefinition struct {
	Description *Description
	Keyword     Pos
	Name        *Name
	Eq          Pos
	Members     []*Name
}

func (defn *UnionTypeDefinition) asTypeDefinition() *TypeDefinition {
	return &TypeDefinition{Union: defn}
}

// FieldsDefinition is the list of fields in an ObjectTypeDefinition or an
// InterfaceTypeDefinition.
// https://graphql.github.io/graphql-spec/June2018/#FieldsDefinition
type FieldsDefinition struct {
	LBrace Pos
	Defs   []*FieldDefinition
	RBrace Pos
}

// FieldDefinition specifies a single field in an ObjectTypeDefinition.
// https://graphql.github.io/graphql-spec/June2018/#FieldsDefinition
type FieldDefinition struct {
	Description *Description
	Name        *Name
	Args        *ArgumentsDefinition
	Colon       Pos
	Type        *TypeRef
	Directives  Directives
}

// ArgumentsDefinition specifies the arguments for a FieldDefinition.
// https://graphql.github.io/graphql-spec/June2018/#ArgumentsDefinition
type ArgumentsDefinition struct {
	LParen Pos
	Args   []*InputValueDefinition
	RParen Pos
}

// EnumTypeDefinition names an enumerated leaf type.
// https://graphql.github.io/graphql-spec/June2018/#EnumTypeDefinition
type EnumTypeDefinition struct {
	Description *Description
	Keyword     Pos
	Name        *Name
	Values      *EnumValuesDefinition
}

func (defn *EnumTypeDefinition) asTypeDefinition() *TypeDefinition {
	return &TypeDefinition{Enum: defn}
}

// EnumValuesDefinition is the list of values in an EnumTypeDefinition.
// https://graphql.github.io/graphql-spec/June2018/#EnumValuesDefinition
type EnumValuesDefinition struct {
	LBrace Pos
	Values []*EnumValueDefinition
	RBrace Pos
}

// EnumValueDefinition is a single symbol in an EnumValuesDefinition.
type EnumValueDefinition struct {
	Description *Description
	Value       *Name
	Directives  Directives
}

// InputObjectTypeDefinition names an input object type.
// https://graphql.github.io/graphql-spec/June2018/#InputObjectTypeDefinition
type InputObjectTypeDefinition struct {
	Description *Description
	Keyword     Pos
	Name        *Name
	Fields      *InputFieldsDefinition
}

func (defn *InputObjectTypeDefinition) asTypeDefinition() *TypeDefinition {
	return &TypeDefinition{InputObject: defn}
}

// InputFieldsDefinition is the list of fields in an InputObjectTypeDefinition.
// https://graphql.github.io/graphql-spec/June2018/#InputFieldsDefinition
type InputFieldsDefinition struct {
	LBrace Pos
	Defs   []*InputValueDefinition
	RBrace Pos
}

// InputValueDefinition specifies an argument in a FieldDefinition or a field
// in an InputObjectTypeDefinition.
// https://graphql.github.io/graphql-spec/June2018/#InputValueDefinition
type InputValueDefinition struct {
	Description *Description
	Name        *Name
	Colon       Pos
	Type        *TypeRef
	Default     *DefaultValue
}
