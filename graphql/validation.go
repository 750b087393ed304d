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

	"zombiezen.com/go/gqlcheck/internal/gqlang"
)

// Validate reports every selection set in the query whose presence or absence
// disagrees with the type being selected: fields of object, interface, and
// union types must select something, and fields of scalar and enum types must
// not. All problems are returned in document order. Validate returns nil if
// the query has none.
//
// Fragment spreads are not followed; each fragment definition is checked
// once against its own type condition. Fields that cannot be resolved against
// the schema are skipped.
//
// See https://graphql.github.io/graphql-spec/June2018/#sec-Leaf-Field-Selections
func (schema *Schema) Validate(query *Query) []*ResponseError {
	v := &validationScope{
		source: query.source,
		schema: schema,
	}
	for _, defn := range query.doc.Definitions {
		switch {
		case defn.Operation != nil:
			checkOperation(v, defn.Operation)
		case defn.Fragment != nil:
			checkFragmentDefinition(v, defn.Fragment)
		}
	}
	return v.errs
}

type validationScope struct {
	source string
	schema *Schema
	path   fieldPath
	errs   []*ResponseError
}

// report records an error at pos with the current path.
func (v *validationScope) report(kind ErrorKind, pos gqlang.Pos, format string, args ...interface{}) {
	v.errs = append(v.errs, &ResponseError{
		Message: fmt.Sprintf(format, args...),
		Locations: []Location{
			astPositionToLocation(pos.ToPosition(v.source)),
		},
		Fields: v.path.snapshot(),
		Kind:   kind,
	})
}

// fieldPath is the stack of segments leading to the node being checked.
type fieldPath []string

// push appends seg to the path and returns a function that removes it.
func (path *fieldPath) push(seg string) (pop func()) {
	*path = append(*path, seg)
	n := len(*path)
	return func() {
		*path = (*path)[:n-1]
	}
}

func (path fieldPath) snapshot() []string {
	return append([]string(nil), path...)
}

func operationSegment(op *gqlang.Operation) string {
	if op.Name == nil {
		return op.Type.String()
	}
	return op.Type.String() + " " + op.Name.Value
}

func checkOperation(v *validationScope, op *gqlang.Operation) {
	defer v.path.push(operationSegment(op))()
	typ := v.schema.rootType(op.Type)
	if typ == nil {
		// Operation kind not supported by the schema. Not this check's concern.
		return
	}
	if op.SelectionSet.Len() == 0 {
		subject := "anonymous " + op.Type.String()
		if op.Name != nil {
			subject = fmt.Sprintf("field '%s'", op.Name.Value)
		}
		v.report(MissingSelectionsOnComposite, op.Start,
			"Objects must have selections (%s returns %s but has no selections)",
			subject, typ.name())
		return
	}
	checkSelectionSet(v, typ, op.SelectionSet)
}

func checkFragmentDefinition(v *validationScope, frag *gqlang.FragmentDefinition) {
	defer v.path.push("fragment " + frag.Name.Value)()
	typ := v.schema.lookup(frag.Type.Name.Value)
	if classify(typ) != compositeClass {
		return
	}
	checkSelectionSet(v, typ, frag.SelectionSet)
}

// checkSelectionSet checks the fields selected on parent, which must be a
// composite named type.
func checkSelectionSet(v *validationScope, parent *gqlType, set *gqlang.SelectionSet) {
	for _, sel := range set.Sel {
		switch {
		case sel.Field != nil:
			checkField(v, parent, sel.Field)
		case sel.FragmentSpread != nil:
			// Checked where the fragment is defined.
		case sel.InlineFragment != nil:
			typ := parent
			if cond := sel.InlineFragment.Type; cond != nil {
				typ = v.schema.lookup(cond.Name.Value)
				if classify(typ) != compositeClass {
					continue
				}
			}
			checkSelectionSet(v, typ, sel.InlineFragment.SelectionSet)
		default:
			panic("unknown selection type")
		}
	}
}

func checkField(v *validationScope, parent *gqlType, field *gqlang.Field) {
	defer v.path.push(field.Key().Value)()
	typ := parent.fieldType(field.Name.Value).namedType()
	switch classify(typ) {
	case compositeClass:
		if field.SelectionSet.Len() == 0 {
			v.report(MissingSelectionsOnComposite, field.Start(),
				"Objects must have selections (field '%s' returns %s but has no selections)",
				field.Name.Value, typ.name())
			return
		}
		checkSelectionSet(v, typ, field.SelectionSet)
	case leafClass:
		checkLeafField(v, typ, field)
	}
}

// checkLeafField reports any selections made on a scalar or enum field.
// Field selections and fragment spreads are reported separately from inline
// fragments, so a field may produce two errors.
func checkLeafField(v *validationScope, typ *gqlType, field *gqlang.Field) {
	if field.SelectionSet == nil {
		return
	}
	var selected, fragTypes []string
	for _, sel := range field.SelectionSet.Sel {
		switch {
		case sel.Field != nil:
			selected = append(selected, sel.Field.Name.Value)
		case sel.FragmentSpread != nil:
			selected = append(selected, sel.FragmentSpread.Name.Value)
		case sel.InlineFragment != nil:
			if cond := sel.InlineFragment.Type; cond != nil {
				fragTypes = append(fragTypes, cond.Name.Value)
			} else {
				fragTypes = append(fragTypes, typ.name())
			}
		default:
			panic("unknown selection type")
		}
	}
	if len(selected) > 0 {
		v.report(IllegalSelectionsOnLeaf, field.Start(),
			"Selections can't be made on scalars (field '%s' returns %s but has selections [%s])",
			field.Name.Value, typ.name(), strings.Join(selected, ", "))
	}
	if len(fragTypes) > 0 {
		v.report(IllegalInlineFragmentsOnLeaf, field.Start(),
			"Selections can't be made on scalars (field '%s' returns %s but has inline fragments [%s])",
			field.Name.Value, typ.name(), strings.Join(fragTypes, ", "))
	}
}
