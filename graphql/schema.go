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
	"strings"

	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlcheck/internal/gqlang"
)

// Schema is a parsed set of type definitions. A Schema is immutable and safe
// to use from multiple goroutines.
type Schema struct {
	query        *gqlType
	mutation     *gqlType
	subscription *gqlType
	types        map[string]*gqlType
}

// ParseSchema parses a GraphQL document containing type definitions.
func ParseSchema(source string) (*Schema, error) {
	doc, errs := gqlang.Parse(source)
	if len(errs) > 0 {
		msgBuilder := new(strings.Builder)
		msgBuilder.WriteString("parse schema:")
		for _, err := range errs {
			msgBuilder.WriteByte('\n')
			if p, ok := gqlang.ErrorPosition(err); ok {
				msgBuilder.WriteString(p.String())
				msgBuilder.WriteString(": ")
			}
			msgBuilder.WriteString(err.Error())
		}
		return nil, xerrors.New(msgBuilder.String())
	}
	var schemaDefn *gqlang.SchemaDefinition
	for _, defn := range doc.Definitions {
		switch {
		case defn.Operation != nil:
			return nil, xerrors.Errorf("parse schema: %v: operations not allowed", defn.Operation.Start.ToPosition(source))
		case defn.Fragment != nil:
			return nil, xerrors.Errorf("parse schema: %v: fragments not allowed", defn.Fragment.Keyword.ToPosition(source))
		case defn.Schema != nil:
			if schemaDefn != nil {
				return nil, xerrors.Errorf("parse schema: %v: multiple schema definitions", defn.Schema.Keyword.ToPosition(source))
			}
			schemaDefn = defn.Schema
		}
	}
	typeMap, err := buildTypeMap(source, doc)
	if err != nil {
		return nil, xerrors.Errorf("parse schema: %w", err)
	}
	schema := &Schema{types: typeMap}
	if schemaDefn == nil {
		schema.query = typeMap["Query"]
		schema.mutation = typeMap["Mutation"]
		schema.subscription = typeMap["Subscription"]
	} else if err := schema.setRoots(source, schemaDefn); err != nil {
		return nil, xerrors.Errorf("parse schema: %w", err)
	}
	if schema.query == nil {
		return nil, xerrors.New("parse schema: could not find Query type")
	}
	if !schema.query.isObject() {
		return nil, xerrors.Errorf("parse schema: query type %v must be an object", schema.query)
	}
	if schema.mutation != nil && !schema.mutation.isObject() {
		return nil, xerrors.Errorf("parse schema: mutation type %v must be an object", schema.mutation)
	}
	if schema.subscription != nil && !schema.subscription.isObject() {
		return nil, xerrors.Errorf("parse schema: subscription type %v must be an object", schema.subscription)
	}
	return schema, nil
}

// setRoots assigns the root operation types named in an explicit schema
// definition.
// See https://graphql.github.io/graphql-spec/June2018/#sec-Root-Operation-Types
func (schema *Schema) setRoots(source string, defn *gqlang.SchemaDefinition) error {
	seen := make(map[gqlang.OperationType]bool)
	for _, root := range defn.Operations {
		if seen[root.Operation] {
			return xerrors.Errorf("%v: multiple %v root types", root.Start.ToPosition(source), root.Operation)
		}
		seen[root.Operation] = true
		typ := schema.types[root.Type.Value]
		if typ == nil {
			return xerrors.Errorf("%v: undefined type %s", root.Type.Start.ToPosition(source), root.Type.Value)
		}
		switch root.Operation {
		case gqlang.Query:
			schema.query = typ
		case gqlang.Mutation:
			schema.mutation = typ
		case gqlang.Subscription:
			schema.subscription = typ
		}
	}
	return nil
}

const reservedPrefix = "__"

func buildTypeMap(source string, doc *gqlang.Document) (map[string]*gqlType, error) {
	typeMap := make(map[string]*gqlType)
	builtins := []*gqlType{
		booleanType,
		floatType,
		intType,
		stringType,
		idType,
	}
	for _, b := range builtins {
		typeMap[b.String()] = b
	}
	// First pass: fill out lookup table.
	for _, defn := range doc.Definitions {
		t := defn.Type
		if t == nil {
			continue
		}
		name := t.Name()
		if strings.HasPrefix(name.Value, reservedPrefix) {
			return nil, xerrors.Errorf("%v: use of reserved name %q", name.Start.ToPosition(source), name.Value)
		}
		if typeMap[name.Value] != nil {
			return nil, xerrors.Errorf("%v: multiple types with name %q", name.Start.ToPosition(source), name.Value)
		}

		switch {
		case t.Scalar != nil:
			typeMap[name.Value] = newScalarType(name.Value)
		case t.Enum != nil:
			info := &enumType{
				name:    name.Value,
				symbols: make(map[string]struct{}),
			}
			if t.Enum.Values != nil {
				for _, v := range t.Enum.Values.Values {
					sym := v.Value.Value
					if strings.HasPrefix(sym, reservedPrefix) {
						return nil, xerrors.Errorf("%v: use of reserved name %q", v.Value.Start.ToPosition(source), sym)
					}
					if info.has(sym) {
						return nil, xerrors.Errorf("%v: multiple enum values with name %q", v.Value.Start.ToPosition(source), sym)
					}
					info.symbols[sym] = struct{}{}
				}
			}
			typeMap[name.Value] = newEnumType(info)
		case t.Object != nil:
			typeMap[name.Value] = newObjectType(&objectType{
				name:   name.Value,
				fields: make(map[string]objectTypeField),
			})
		case t.Interface != nil:
			typeMap[name.Value] = newObjectType(&objectType{
				name:    name.Value,
				isIface: true,
				fields:  make(map[string]objectTypeField),
			})
		case t.Union != nil:
			typeMap[name.Value] = newUnionType(&unionType{name: name.Value})
		case t.InputObject != nil:
			typeMap[name.Value] = newInputObjectType(&inputObjectType{
				name:   name.Value,
				fields: make(map[string]*gqlType),
			})
		}
	}
	// Second pass: fill in fields and references to other types.
	for _, defn := range doc.Definitions {
		if defn.Type == nil {
			continue
		}
		var err error
		switch {
		case defn.Type.Object != nil:
			obj := defn.Type.Object
			err = fillObjectTypeFields(source, typeMap, obj.Name, obj.Fields)
			if err == nil {
				err = fillInterfaces(source, typeMap, obj)
			}
		case defn.Type.Interface != nil:
			iface := defn.Type.Interface
			err = fillObjectTypeFields(source, typeMap, iface.Name, iface.Fields)
		case defn.Type.Union != nil:
			err = fillUnionMembers(source, typeMap, defn.Type.Union)
		case defn.Type.InputObject != nil:
			err = fillInputObjectTypeFields(source, typeMap, defn.Type.InputObject)
		}
		if err != nil {
			return nil, err
		}
	}
	// Interface fields are only known after the second pass.
	for _, defn := range doc.Definitions {
		if defn.Type == nil || defn.Type.Object == nil {
			continue
		}
		if err := checkInterfaceFields(source, typeMap, defn.Type.Object); err != nil {
			return nil, err
		}
	}
	return typeMap, nil
}

func fillObjectTypeFields(source string, typeMap map[string]*gqlType, typeName *gqlang.Name, fields *gqlang.FieldsDefinition) error {
	info := typeMap[typeName.Value].obj
	if fields == nil {
		return nil
	}
	for _, fieldDefn := range fields.Defs {
		fieldName := fieldDefn.Name.Value
		if strings.HasPrefix(fieldName, reservedPrefix) {
			return xerrors.Errorf("%v: use of reserved name %q", fieldDefn.Name.Start.ToPosition(source), fieldName)
		}
		if _, found := info.fields[fieldName]; found {
			return xerrors.Errorf("%v: multiple fields named %q in %s", fieldDefn.Name.Start.ToPosition(source), fieldName, typeName)
		}
		typ := resolveTypeRef(typeMap, fieldDefn.Type)
		if typ == nil {
			return xerrors.Errorf("%v: undefined type %v", fieldDefn.Type.Start().ToPosition(source), fieldDefn.Type)
		}
		if !typ.isOutputType() {
			return xerrors.Errorf("%v: %v is not an output type", fieldDefn.Type.Start().ToPosition(source), fieldDefn.Type)
		}
		f := objectTypeField{
			name: fieldName,
			typ:  typ,
		}
		if fieldDefn.Args != nil {
			f.args = make(map[string]*gqlType)
			for _, arg := range fieldDefn.Args.Args {
				argName := arg.Name.Value
				if strings.HasPrefix(argName, reservedPrefix) {
					return xerrors.Errorf("%v: use of reserved name %q", arg.Name.Start.ToPosition(source), argName)
				}
				if _, found := f.args[argName]; found {
					return xerrors.Errorf("%v: multiple arguments named %q for field %s.%s", arg.Name.Start.ToPosition(source), argName, typeName, fieldName)
				}
				typ := resolveTypeRef(typeMap, arg.Type)
				if typ == nil {
					return xerrors.Errorf("%v: undefined type %v", arg.Type.Start().ToPosition(source), arg.Type)
				}
				if !typ.isInputType() {
					return xerrors.Errorf("%v: %v is not an input type", arg.Type.Start().ToPosition(source), arg.Type)
				}
				f.args[argName] = typ
			}
		}
		info.fields[fieldName] = f
		info.fieldOrder = append(info.fieldOrder, fieldName)
	}
	return nil
}

// fillInterfaces resolves the interfaces an object type declares.
func fillInterfaces(source string, typeMap map[string]*gqlType, obj *gqlang.ObjectTypeDefinition) error {
	info := typeMap[obj.Name.Value].obj
	for _, name := range obj.Interfaces {
		typ := typeMap[name.Value]
		if typ == nil {
			return xerrors.Errorf("%v: undefined type %s", name.Start.ToPosition(source), name.Value)
		}
		if !typ.isInterface() {
			return xerrors.Errorf("%v: %s implements %s, which is not an interface", name.Start.ToPosition(source), obj.Name, name.Value)
		}
		for _, prev := range info.interfaces {
			if prev == typ {
				return xerrors.Errorf("%v: %s implements %s multiple times", name.Start.ToPosition(source), obj.Name, name.Value)
			}
		}
		info.interfaces = append(info.interfaces, typ)
	}
	return nil
}

// checkInterfaceFields verifies that an object type declares every field of
// the interfaces it implements.
// See https://graphql.github.io/graphql-spec/June2018/#sec-Objects.Type-Validation
func checkInterfaceFields(source string, typeMap map[string]*gqlType, obj *gqlang.ObjectTypeDefinition) error {
	info := typeMap[obj.Name.Value].obj
	for _, iface := range info.interfaces {
		for _, fieldName := range iface.obj.fieldOrder {
			if info.field(fieldName) == nil {
				return xerrors.Errorf("%v: %s is missing field %q from interface %s", obj.Name.Start.ToPosition(source), obj.Name, fieldName, iface.obj.name)
			}
		}
	}
	return nil
}

func fillUnionMembers(source string, typeMap map[string]*gqlType, u *gqlang.UnionTypeDefinition) error {
	info := typeMap[u.Name.Value].union
	for _, name := range u.Members {
		typ := typeMap[name.Value]
		if typ == nil {
			return xerrors.Errorf("%v: undefined type %s", name.Start.ToPosition(source), name.Value)
		}
		if !typ.isObject() {
			return xerrors.Errorf("%v: union %s member %s is not an object type", name.Start.ToPosition(source), u.Name, name.Value)
		}
		for _, prev := range info.members {
			if prev == typ {
				return xerrors.Errorf("%v: union %s includes %s multiple times", name.Start.ToPosition(source), u.Name, name.Value)
			}
		}
		info.members = append(info.members, typ)
	}
	return nil
}

func fillInputObjectTypeFields(source string, typeMap map[string]*gqlType, obj *gqlang.InputObjectTypeDefinition) error {
	info := typeMap[obj.Name.Value].input
	if obj.Fields == nil {
		return nil
	}
	for _, fieldDefn := range obj.Fields.Defs {
		fieldName := fieldDefn.Name.Value
		if strings.HasPrefix(fieldName, reservedPrefix) {
			return xerrors.Errorf("%v: use of reserved name %q", fieldDefn.Name.Start.ToPosition(source), fieldName)
		}
		if _, found := info.fields[fieldName]; found {
			return xerrors.Errorf("%v: multiple fields named %q in %s", fieldDefn.Name.Start.ToPosition(source), fieldName, obj.Name)
		}
		typ := resolveTypeRef(typeMap, fieldDefn.Type)
		if typ == nil {
			return xerrors.Errorf("%v: undefined type %v", fieldDefn.Type.Start().ToPosition(source), fieldDefn.Type)
		}
		if !typ.isInputType() {
			return xerrors.Errorf("%v: %v is not an input type", fieldDefn.Type.Start().ToPosition(source), fieldDefn.Type)
		}
		info.fields[fieldName] = typ
	}
	return nil
}

func resolveTypeRef(typeMap map[string]*gqlType, ref *gqlang.TypeRef) *gqlType {
	switch {
	case ref.Named != nil:
		return typeMap[ref.Named.Value]
	case ref.List != nil:
		elem := resolveTypeRef(typeMap, ref.List.Type)
		if elem == nil {
			return nil
		}
		return listOf(elem)
	case ref.NonNull != nil && ref.NonNull.Named != nil:
		base := typeMap[ref.NonNull.Named.Value]
		if base == nil {
			return nil
		}
		return base.toNonNullable()
	case ref.NonNull != nil && ref.NonNull.List != nil:
		elem := resolveTypeRef(typeMap, ref.NonNull.List.Type)
		if elem == nil {
			return nil
		}
		return listOf(elem).toNonNullable()
	default:
		panic("unrecognized type reference form")
	}
}

// rootType returns the root type for the given kind of operation or nil if
// the schema does not support that kind of operation.
func (schema *Schema) rootType(opType gqlang.OperationType) *gqlType {
	switch opType {
	case gqlang.Query:
		return schema.query
	case gqlang.Mutation:
		return schema.mutation
	case gqlang.Subscription:
		return schema.subscription
	default:
		panic("unknown operation type")
	}
}

// lookup returns the named type or nil if the schema does not define it.
func (schema *Schema) lookup(name string) *gqlType {
	return schema.types[name]
}
