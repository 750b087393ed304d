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

package gqlang

import "golang.org/x/xerrors"

const (
	maxParseDepth = 50
	maxSize       = 1 << 20 // 1 MiB
)

var errTooDeep = xerrors.New("syntax tree too deep")

type parser struct {
	tokens []token
	eofPos Pos
}

// Parse parses a GraphQL document into an abstract syntax tree.
func Parse(input string) (*Document, []error) {
	if len(input) > maxSize {
		return nil, []error{xerrors.New("parse: document too large")}
	}
	p := &parser{
		tokens: lex(input),
		eofPos: Pos(len(input)),
	}
	var errs []error
	for _, tok := range p.tokens {
		switch tok.kind {
		case unknown:
			errs = append(errs, &posError{
				input: input,
				pos:   tok.start,
				err:   xerrors.Errorf("parse: unrecognized symbol %q", tok.source),
			})
		case stringValue:
			for _, err := range validateStringToken(input, tok) {
				errs = append(errs, xerrors.Errorf("parse: %w", err))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	doc := new(Document)
	for len(p.tokens) > 0 {
		defn, defnErrs := p.definition(0)
		for _, err := range defnErrs {
			fillErrorInput(err, input)
			errs = append(errs, xerrors.Errorf("parse: %w", err))
		}
		if defn == nil {
			break
		}
		doc.Definitions = append(doc.Definitions, defn)
	}
	return doc, errs
}

func (p *parser) next() token {
	tok := p.tokens[0]
	p.tokens = p.tokens[1:]
	return tok
}

func (p *parser) definition(depth int) (*Definition, []error) {
	if len(p.tokens) == 0 {
		return nil, nil
	}
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if _, isOp := operationTypeKeyword(p.tokens[0]); isOp || p.tokens[0].kind == lbrace {
		// Operations do not permit a description before them.
		op, errs := p.operation(depth + 1)
		return op.asDefinition(), errs
	}
	if p.peekKeyword("fragment") {
		// Fragments do not permit a description before them.
		frag, errs := p.fragmentDefinition(depth + 1)
		return frag.asDefinition(), errs
	}
	if p.peekKeyword("schema") {
		defn, errs := p.schemaDefinition(depth + 1)
		return defn.asDefinition(), errs
	}
	var keywordTok token
	switch p.tokens[0].kind {
	case name:
		keywordTok = p.tokens[0]
	case stringValue:
		if len(p.tokens) == 1 {
			return nil, []error{&posError{
				pos: p.eofPos,
				err: xerrors.New("type definition: expected keyword, got EOF"),
			}}
		}
		if p.tokens[1].kind != name {
			return nil, []error{&posError{
				pos: p.tokens[1].start,
				err: xerrors.Errorf("type definition: expected keyword, found %q", p.tokens[1]),
			}}
		}
		keywordTok = p.tokens[1]
	default:
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("type definition: expected string or keyword, found %q", p.tokens[0]),
		}}
	}
	switch keywordTok.source {
	case "scalar":
		def, errs := p.scalarTypeDefinition(depth + 1)
		return def.asTypeDefinition().asDefinition(), errs
	case "type":
		def, errs := p.objectTypeDefinition(depth + 1)
		return def.asTypeDefinition().asDefinition(), errs
	case "interface":
		def, errs := p.interfaceTypeDefinition(depth + 1)
		return def.asTypeDefinition().asDefinition(), errs
	case "union":
		def, errs := p.unionTypeDefinition(depth + 1)
		return def.asTypeDefinition().asDefinition(), errs
	case "enum":
		def, errs := p.enumTypeDefinition(depth + 1)
		return def.asTypeDefinition().asDefinition(), errs
	case "input":
		def, errs := p.inputObjectTypeDefinition(depth + 1)
		return def.asTypeDefinition().asDefinition(), errs
	default:
		return nil, []error{&posError{
			pos: keywordTok.start,
			err: xerrors.Errorf("definition: expected keyword, found %q", keywordTok),
		}}
	}
}

func (p *parser) operation(depth int) (*Operation, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	op := &Operation{
		Start: p.tokens[0].start,
	}
	var errs []error
	switch first := p.tokens[0]; first.kind {
	case name:
		var ok bool
		op.Type, ok = operationTypeKeyword(first)
		if !ok {
			return nil, []error{&posError{
				pos: first.start,
				err: xerrors.Errorf("operation: expected query, mutation, subscription, or '{', found %q", first),
			}}
		}
		p.next()
		if len(p.tokens) == 0 {
			return nil, []error{&posError{
				pos: p.eofPos,
				err: xerrors.New("operation: expected name, variable definitions, or selection set, got EOF"),
			}}
		}
		if p.tokens[0].kind == name {
			var err error
			op.Name, err = p.name()
			if err != nil {
				return nil, []error{xerrors.Errorf("operation: %w", err)}
			}
			if len(p.tokens) == 0 {
				return nil, []error{&posError{
					pos: p.eofPos,
					err: xerrors.New("operation: expected variable definitions or selection set, got EOF"),
				}}
			}
		}
		if p.tokens[0].kind == lparen {
			var varDefErrs []error
			op.VariableDefinitions, varDefErrs = p.variableDefinitions(depth + 1)
			errs = append(errs, prefixErrors(op.rule(), varDefErrs)...)
		}
		var directiveErrs []error
		op.Directives, directiveErrs = p.directives(depth+1, false)
		errs = append(errs, prefixErrors(op.rule(), directiveErrs)...)
	case lbrace:
		// Shorthand syntax.
		op.Type = Query
	default:
		return nil, []error{&posError{
			pos: first.start,
			err: xerrors.Errorf("operation: expected query, mutation, subscription, or '{', found %q", first),
		}}
	}
	var selSetErrs []error
	op.SelectionSet, selSetErrs = p.selectionSet(depth + 1)
	errs = append(errs, prefixErrors(op.rule(), selSetErrs)...)
	if op.SelectionSet == nil {
		return nil, errs
	}
	return op, errs
}

// operationTypeKeyword reports the operation type that tok names, if any.
func operationTypeKeyword(tok token) (OperationType, bool) {
	if tok.kind != name {
		return 0, false
	}
	switch tok.source {
	case "query":
		return Query, true
	case "mutation":
		return Mutation, true
	case "subscription":
		return Subscription, true
	default:
		return 0, false
	}
}

// rule returns the prefix for errors inside the operation.
func (op *Operation) rule() string {
	if op.Name != nil && op.Name.Value != "" {
		return "operation " + op.Name.Value
	}
	return "operation"
}

func (p *parser) selectionSet(depth int) (*SelectionSet, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	set := new(SelectionSet)
	var errs []error
	set.LBrace, set.RBrace, errs = p.group(lbrace, rbrace, "selection", func() []error {
		if len(p.tokens) > 0 && p.tokens[0].kind == ellipsis {
			sel, errs := p.fragment(depth + 1)
			if sel != nil {
				set.Sel = append(set.Sel, sel)
			}
			return errs
		}
		field, errs := p.field(depth + 1)
		if field != nil {
			set.Sel = append(set.Sel, field.asSelection())
		}
		return errs
	})
	errs = prefixErrors("selection set", errs)
	if set.LBrace == -1 {
		return nil, errs
	}
	// An empty set is syntactically fine here. Whether it is allowed depends
	// on the type being selected, which is a validation concern.
	return set, errs
}

func (p *parser) field(depth int) (*Field, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	f := new(Field)
	var err error
	f.Name, err = p.name()
	if err != nil {
		return nil, []error{xerrors.Errorf("field: %w", err)}
	}
	if len(p.tokens) == 0 {
		return f, nil
	}
	if p.tokens[0].kind == colon {
		f.Alias = f.Name
		f.Name = nil
		p.next()
		f.Name, err = p.name()
		if err != nil {
			return nil, []error{xerrors.Errorf("field %s: %w", f.Alias.Value, err)}
		}
		if len(p.tokens) == 0 {
			return f, nil
		}
	}
	var errs []error
	if p.tokens[0].kind == lparen {
		var argsErrs []error
		f.Arguments, argsErrs = p.arguments(depth+1, false)
		errs = append(errs, prefixErrors("field "+f.Name.Value, argsErrs)...)
	}
	var directiveErrs []error
	f.Directives, directiveErrs = p.directives(depth+1, false)
	errs = append(errs, prefixErrors("field "+f.Name.Value, directiveErrs)...)
	if len(p.tokens) == 0 {
		return f, errs
	}
	if p.tokens[0].kind == lbrace {
		var selErrs []error
		f.SelectionSet, selErrs = p.selectionSet(depth + 1)
		errs = append(errs, prefixErrors("field "+f.Name.Value, selErrs)...)
	}
	return f, errs
}

func (p *parser) arguments(depth int, isConst bool) (*Arguments, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	args := new(Arguments)
	var errs []error
	args.LParen, args.RParen, errs = p.nonEmptyGroup(lparen, rparen, "arguments", "argument", func() (int, []error) {
		arg, errs := p.argument(depth+1, isConst)
		if arg != nil {
			args.Args = append(args.Args, arg)
		}
		return len(args.Args), errs
	})
	if args.LParen == -1 {
		return nil, errs
	}
	return args, errs
}

func (p *parser) argument(depth int, isConst bool) (*Argument, []error) {
	// Not prepending "argument:" to errors, since arguments() will prepend
	// "argument #X:".

	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	argName, err := p.name()
	if err != nil {
		return nil, []error{err}
	}
	colonPos, err := p.expect(colon)
	if err != nil {
		return nil, []error{err}
	}
	value, valueErrs := p.value(depth+1, isConst)
	return &Argument{
		Name:  argName,
		Colon: colonPos,
		Value: value,
	}, valueErrs
}

func (p *parser) value(depth int, isConst bool) (*InputValue, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("value: got EOF"),
		}}
	}
	tok := p.tokens[0]
	if lit := scalarLiteral(tok); lit != nil {
		p.next()
		return &InputValue{Scalar: lit}, nil
	}
	switch tok.kind {
	case dollar:
		v, err := p.variable()
		if err != nil {
			return nil, []error{xerrors.Errorf("value: %w", err)}
		}
		val := &InputValue{VariableRef: v}
		if isConst {
			return val, []error{&posError{
				pos: v.Dollar,
				err: xerrors.New("value: found variable in constant context"),
			}}
		}
		return val, nil
	case name:
		// scalarLiteral accepts every name except null.
		p.next()
		return &InputValue{Null: &Name{Start: tok.start, Value: tok.source}}, nil
	case lbracket:
		lval, errs := p.listValue(depth+1, isConst)
		return &InputValue{List: lval}, errs
	case lbrace:
		ioval, errs := p.objectValue(depth+1, isConst)
		return &InputValue{InputObject: ioval}, errs
	default:
		return nil, []error{&posError{
			pos: tok.start,
			err: xerrors.Errorf("value: got %q", tok),
		}}
	}
}

// scalarLiteral returns the scalar value tok spells or nil if tok is not a
// scalar literal. null is not a scalar.
func scalarLiteral(tok token) *ScalarValue {
	v := &ScalarValue{Start: tok.start, Raw: tok.source}
	switch {
	case tok.kind == intValue:
		v.Type = IntScalar
	case tok.kind == floatValue:
		v.Type = FloatScalar
	case tok.kind == stringValue:
		v.Type = StringScalar
	case tok.kind == name && (tok.source == "true" || tok.source == "false"):
		v.Type = BooleanScalar
	case tok.kind == name && tok.source != "null":
		v.Type = EnumScalar
	default:
		return nil
	}
	return v
}

func (p *parser) name() (*Name, error) {
	if len(p.tokens) == 0 {
		return nil, &posError{
			pos: p.eofPos,
			err: xerrors.New("expected name, got EOF"),
		}
	}
	tok := p.tokens[0]
	if tok.kind != name {
		return nil, &posError{
			pos: tok.start,
			err: xerrors.Errorf("expected name, found %q", tok),
		}
	}
	p.next()
	return &Name{
		Start: tok.start,
		Value: tok.source,
	}, nil
}

func (p *parser) variable() (*Variable, error) {
	dollarPos, err := p.expect(dollar)
	if err != nil {
		return nil, xerrors.Errorf("variable: %w", err)
	}
	varName, err := p.name()
	if err != nil {
		return nil, xerrors.Errorf("variable: %w", err)
	}
	return &Variable{
		Dollar: dollarPos,
		Name:   varName,
	}, nil
}

func (p *parser) listValue(depth int, isConst bool) (*ListValue, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	lval := new(ListValue)
	var errs []error
	lval.LBracket, lval.RBracket, errs = p.group(lbracket, rbracket, "list value", func() []error {
		elem, elemErrs := p.value(depth+1, isConst)
		lval.Values = append(lval.Values, elem)
		return elemErrs
	})
	if lval.LBracket == -1 {
		return nil, errs
	}
	return lval, errs
}

func (p *parser) objectValue(depth int, isConst bool) (*InputObjectValue, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	ioval := new(InputObjectValue)
	var errs []error
	ioval.LBrace, ioval.RBrace, errs = p.group(lbrace, rbrace, "object field", func() []error {
		if len(p.tokens) == 0 {
			return []error{&posError{
				pos: p.eofPos,
				err: xerrors.New("expected name, got EOF"),
			}}
		}
		field := new(InputObjectField)
		var err error
		field.Name, err = p.name()
		if err != nil {
			return []error{err}
		}
		field.Colon, err = p.expect(colon)
		if err != nil {
			return []error{err}
		}
		var fieldErrs []error
		field.Value, fieldErrs = p.value(depth+1, isConst)
		ioval.Fields = append(ioval.Fields, field)
		return fieldErrs
	})
	errs = prefixErrors("object value", errs)
	if ioval.LBrace == -1 {
		return nil, errs
	}
	return ioval, errs
}

func (p *parser) variableDefinitions(depth int) (*VariableDefinitions, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	varDefs := new(VariableDefinitions)
	var errs []error
	varDefs.LParen, varDefs.RParen, errs = p.group(lparen, rparen, "variable definition", func() []error {
		def, errs := p.variableDefinition(depth + 1)
		if def != nil {
			varDefs.Defs = append(varDefs.Defs, def)
		}
		return errs
	})
	errs = prefixErrors("variable definitions", errs)
	if varDefs.LParen == -1 {
		return nil, errs
	}
	if varDefs.RParen >= 0 && len(varDefs.Defs) == 0 {
		errs = append(errs, &posError{
			pos: varDefs.RParen,
			err: xerrors.New("variable definitions: empty"),
		})
	}
	return varDefs, errs
}

func (p *parser) variableDefinition(depth int) (*VariableDefinition, []error) {
	// Not prepending "variable definition:" to errors, since
	// variableDefinitions() will prepend "variable definition #X:".

	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	def := &VariableDefinition{
		Colon: -1,
	}
	var err error
	def.Var, err = p.variable()
	if err != nil {
		return nil, []error{err}
	}
	def.Colon, err = p.expect(colon)
	if err != nil {
		return def, []error{err}
	}
	var errs []error
	def.Type, errs = p.typeRef(depth + 1)
	if len(errs) > 0 {
		return def, errs
	}
	def.Default, errs = p.optionalDefaultValue(depth + 1)
	return def, errs
}

func (p *parser) optionalDefaultValue(depth int) (*DefaultValue, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if len(p.tokens) == 0 {
		return nil, nil
	}
	if p.tokens[0].kind != equals {
		return nil, nil
	}
	defaultValue := &DefaultValue{
		Eq: p.next().start,
	}
	var errs []error
	defaultValue.Value, errs = p.value(depth+1, true)
	errs = prefixErrors("default value", errs)
	return defaultValue, errs
}

func (p *parser) typeRef(depth int) (*TypeRef, []error) {
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("type: expected name or '[', got EOF"),
		}}
	}
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	switch tok := p.tokens[0]; tok.kind {
	case name:
		n, err := p.name()
		if err != nil {
			return nil, []error{xerrors.Errorf("type: %w", err)}
		}
		if bang := p.optionalNonNull(); bang >= 0 {
			return &TypeRef{NonNull: &NonNullType{Named: n, Pos: bang}}, nil
		}
		return &TypeRef{Named: n}, nil
	case lbracket:
		p.next()
		list := &ListType{
			LBracket: tok.start,
			RBracket: -1,
		}
		var errs []error
		list.Type, errs = p.typeRef(depth + 1)
		rbrack, err := p.expect(rbracket)
		if err != nil {
			return &TypeRef{List: list}, prefixErrors("list type", append(errs, err))
		}
		list.RBracket = rbrack
		if len(errs) > 0 {
			return &TypeRef{List: list}, prefixErrors("list type", errs)
		}
		if bang := p.optionalNonNull(); bang >= 0 {
			return &TypeRef{NonNull: &NonNullType{List: list, Pos: bang}}, nil
		}
		return &TypeRef{List: list}, nil
	default:
		return nil, []error{&posError{
			pos: tok.start,
			err: xerrors.Errorf("type: expected name or '[', found %q", tok),
		}}
	}
}

// optionalNonNull consumes a '!' if present and returns its position,
// or -1 if there is none.
func (p *parser) optionalNonNull() Pos {
	if len(p.tokens) == 0 || p.tokens[0].kind != nonNull {
		return -1
	}
	return p.next().start
}

func (p *parser) directives(depth int, isConst bool) (Directives, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	var results Directives
	var errs []error
	for len(p.tokens) > 0 && p.tokens[0].kind == atSign {
		d := &Directive{
			At: p.next().start,
		}
		var err error
		d.Name, err = p.name()
		if err != nil {
			errs = append(errs, xerrors.Errorf("directive: %w", err))
			return results, errs
		}
		results = append(results, d)
		if len(p.tokens) == 0 {
			break
		}
		if p.tokens[0].kind != lparen {
			continue
		}
		var argErrs []error
		d.Arguments, argErrs = p.arguments(depth+1, isConst)
		errs = append(errs, prefixErrors("@"+d.Name.Value+" directive", argErrs)...)
	}
	return results, errs
}

// fragment parses either a FragmentSpread or an InlineFragment.
// See https://graphql.github.io/graphql-spec/June2018/#Selection
func (p *parser) fragment(depth int) (*Selection, []error) {
	// Don't prepend "selection:", since this method is only called in the context
	// of selection set, which already prepends "selection:".

	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("expected '...', got EOF"),
		}}
	}
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if p.tokens[0].kind != ellipsis {
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("expected '...', found %q", p.tokens[0]),
		}}
	}
	if len(p.tokens) == 1 {
		p.next() // Advance past the ellipsis to continue parsing selection set.
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("expected name, 'on', or '{', got EOF"),
		}}
	}
	switch p.tokens[1].kind {
	case name:
		if p.tokens[1].source == "on" {
			// Type conditions are only present on inline fragments.
			frag, errs := p.inlineFragment(depth + 1)
			return frag.asSelection(), errs
		}
		spread, errs := p.fragmentSpread(depth + 1)
		return spread.asSelection(), errs
	case lbrace, atSign:
		// Selection sets and bare directives are only present on inline fragments.
		frag, errs := p.inlineFragment(depth + 1)
		return frag.asSelection(), errs
	default:
		p.next() // Advance past the ellipsis to continue parsing selection set.
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("expected name, 'on', '@', or '{', found %q", p.tokens[0]),
		}}
	}
}

func (p *parser) fragmentSpread(depth int) (*FragmentSpread, []error) {
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("fragment spread: expected '...', got EOF"),
		}}
	}
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if p.tokens[0].kind != ellipsis {
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("fragment spread: expected '...', found %q", p.tokens[0]),
		}}
	}
	spread := &FragmentSpread{
		Ellipsis: p.next().start,
	}
	var err error
	spread.Name, err = p.name()
	if err != nil {
		return nil, []error{xerrors.Errorf("fragment spread: %w", err)}
	}
	var errs []error
	spread.Directives, errs = p.directives(depth+1, false)
	return spread, prefixErrors("fragment spread "+spread.Name.Value, errs)
}

func (p *parser) inlineFragment(depth int) (*InlineFragment, []error) {
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("inline fragment: expected '...', got EOF"),
		}}
	}
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if p.tokens[0].kind != ellipsis {
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("inline fragment: expected '...', found %q", p.tokens[0]),
		}}
	}
	frag := &InlineFragment{
		Ellipsis: p.next().start,
	}
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("inline fragment: expected 'on' or '{', got EOF"),
		}}
	}
	if p.tokens[0].kind == name && p.tokens[0].source == "on" {
		var err error
		frag.Type, err = p.typeCondition(depth + 1)
		if err != nil {
			return nil, []error{xerrors.Errorf("inline fragment: %w", err)}
		}
	}
	var errs []error
	var directiveErrs []error
	frag.Directives, directiveErrs = p.directives(depth+1, false)
	for _, err := range directiveErrs {
		errs = append(errs, xerrors.Errorf("inline fragment: %w", err))
	}
	if len(p.tokens) > 0 && p.tokens[0].kind != lbrace {
		// Would be caught by parsing selection set, but give a better error message.
		return nil, append(errs, &posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("inline fragment: expected 'on', '@', or '{', found %q", p.tokens[0]),
		})
	}
	var selErrs []error
	frag.SelectionSet, selErrs = p.selectionSet(depth + 1)
	for _, err := range selErrs {
		errs = append(errs, xerrors.Errorf("inline fragment: %w", err))
	}
	if frag.SelectionSet == nil {
		return nil, errs
	}
	return frag, errs
}

func (p *parser) fragmentDefinition(depth int) (*FragmentDefinition, []error) {
	defn := new(FragmentDefinition)
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("fragment definition: expected 'fragment', got EOF"),
		}}
	}
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	if p.tokens[0].kind != name || p.tokens[0].source != "fragment" {
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("fragment definition: expected 'fragment', found %q", p.tokens[0]),
		}}
	}
	defn.Keyword = p.next().start
	var err error
	defn.Name, err = p.name()
	if err != nil {
		return nil, []error{xerrors.Errorf("fragment definition: %w", err)}
	}
	if defn.Name.Value == "on" {
		return nil, []error{&posError{
			pos: defn.Name.Start,
			err: xerrors.New("fragment definition: expected name, found 'on'"),
		}}
	}
	defn.Type, err = p.typeCondition(depth + 1)
	if err != nil {
		return nil, []error{xerrors.Errorf("fragment definition %s: %w", defn.Name.Value, err)}
	}
	var errs []error
	defn.Directives, errs = p.directives(depth+1, false)
	var selErrs []error
	defn.SelectionSet, selErrs = p.selectionSet(depth + 1)
	errs = append(errs, selErrs...)
	errs = prefixErrors("fragment definition "+defn.Name.Value, errs)
	if defn.SelectionSet == nil {
		return nil, errs
	}
	return defn, errs
}

func (p *parser) typeCondition(depth int) (*TypeCondition, error) {
	cond := new(TypeCondition)
	if len(p.tokens) == 0 {
		return nil, &posError{
			pos: p.eofPos,
			err: xerrors.New("type condition: expected 'on', got EOF"),
		}
	}
	if depth > maxParseDepth {
		return nil, errTooDeep
	}
	if p.tokens[0].kind != name || p.tokens[0].source != "on" {
		return nil, &posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("type condition: expected 'on', found %q", p.tokens[0]),
		}
	}
	cond.On = p.next().start
	var err error
	cond.Name, err = p.name()
	return cond, err
}

func (p *parser) optionalDescription() *Description {
	if len(p.tokens) == 0 {
		return nil
	}
	tok := p.tokens[0]
	if tok.kind != stringValue {
		return nil
	}
	p.next()
	return &Description{
		Start: tok.start,
		Raw:   tok.source,
	}
}

func (p *parser) scalarTypeDefinition(depth int) (*ScalarTypeDefinition, []error) {
	h, errs := p.typeDefinitionHeader(depth, "scalar type definition", "scalar")
	if h == nil {
		return nil, errs
	}
	return &ScalarTypeDefinition{
		Description: h.description,
		Keyword:     h.keyword,
		Name:        h.name,
	}, errs
}

func (p *parser) objectTypeDefinition(depth int) (*ObjectTypeDefinition, []error) {
	h, errs := p.typeDefinitionHeader(depth, "object type definition", "type")
	if h == nil {
		return nil, errs
	}
	def := &ObjectTypeDefinition{
		Description: h.description,
		Keyword:     h.keyword,
		Name:        h.name,
	}
	if h.name == nil {
		return def, errs
	}
	rule := "object type definition " + h.name.Value
	if p.peekKeyword("implements") {
		var err error
		def.Interfaces, err = p.implementsInterfaces()
		if err != nil {
			return def, prefixErrors(rule, []error{err})
		}
	}
	def.Fields, errs = p.fieldsDefinition(depth + 1)
	return def, prefixErrors(rule, errs)
}

// implementsInterfaces parses the "implements A & B" clause of an object type.
// https://graphql.github.io/graphql-spec/June2018/#ImplementsInterfaces
func (p *parser) implementsInterfaces() ([]*Name, error) {
	p.next() // implements
	names, err := p.nameList(amp)
	if err != nil {
		return names, xerrors.Errorf("implements: %w", err)
	}
	return names, nil
}

// nameList parses one or more names separated by sep, with an optional
// leading sep.
func (p *parser) nameList(sep tokenKind) ([]*Name, error) {
	if len(p.tokens) > 0 && p.tokens[0].kind == sep {
		p.next()
	}
	var names []*Name
	for {
		n, err := p.name()
		if err != nil {
			return names, err
		}
		names = append(names, n)
		if len(p.tokens) == 0 || p.tokens[0].kind != sep {
			return names, nil
		}
		p.next()
	}
}

func (p *parser) interfaceTypeDefinition(depth int) (*InterfaceTypeDefinition, []error) {
	h, errs := p.typeDefinitionHeader(depth, "interface type definition", "interface")
	if h == nil {
		return nil, errs
	}
	def := &InterfaceTypeDefinition{
		Description: h.description,
		Keyword:     h.keyword,
		Name:        h.name,
	}
	if h.name == nil {
		return def, errs
	}
	def.Fields, errs = p.fieldsDefinition(depth + 1)
	return def, prefixErrors("interface type definition "+h.name.Value, errs)
}

// unionTypeDefinition parses "union X = A | B". A leading '|' is permitted.
// https://graphql.github.io/graphql-spec/June2018/#UnionTypeDefinition
func (p *parser) unionTypeDefinition(depth int) (*UnionTypeDefinition, []error) {
	h, errs := p.typeDefinitionHeader(depth, "union type definition", "union")
	if h == nil {
		return nil, errs
	}
	def := &UnionTypeDefinition{
		Description: h.description,
		Keyword:     h.keyword,
		Name:        h.name,
	}
	if h.name == nil {
		return def, errs
	}
	rule := "union type definition " + h.name.Value
	var err error
	def.Eq, err = p.expect(equals)
	if err != nil {
		return def, prefixErrors(rule, []error{err})
	}
	def.Members, err = p.nameList(or)
	if err != nil {
		return def, prefixErrors(rule, []error{err})
	}
	return def, nil
}

func (p *parser) schemaDefinition(depth int) (*SchemaDefinition, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	defn := &SchemaDefinition{
		Keyword: p.next().start,
	}
	var errs []error
	defn.LBrace, defn.RBrace, errs = p.group(lbrace, rbrace, "root operation type definition", func() []error {
		opTok := p.tokens[0]
		root := &RootOperationTypeDefinition{Start: opTok.start}
		var ok bool
		root.Operation, ok = operationTypeKeyword(opTok)
		if !ok {
			return []error{&posError{
				pos: opTok.start,
				err: xerrors.Errorf("expected query, mutation, or subscription, found %q", opTok),
			}}
		}
		p.next()
		var err error
		root.Colon, err = p.expect(colon)
		if err != nil {
			return []error{err}
		}
		root.Type, err = p.name()
		if err != nil {
			return []error{err}
		}
		defn.Operations = append(defn.Operations, root)
		return nil
	})
	errs = prefixErrors("schema definition", errs)
	if defn.LBrace == -1 {
		return nil, errs
	}
	return defn, errs
}

func (p *parser) fieldsDefinition(depth int) (*FieldsDefinition, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	fields := new(FieldsDefinition)
	var errs []error
	fields.LBrace, fields.RBrace, errs = p.nonEmptyGroup(lbrace, rbrace, "fields definition", "field definition", func() (int, []error) {
		def, errs := p.fieldDefinition(depth + 1)
		if def != nil {
			fields.Defs = append(fields.Defs, def)
		}
		return len(fields.Defs), errs
	})
	if fields.LBrace == -1 {
		return nil, errs
	}
	return fields, errs
}

func (p *parser) fieldDefinition(depth int) (*FieldDefinition, []error) {
	// Errors are prefixed by fieldsDefinition.
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	field := new(FieldDefinition)
	field.Description = p.optionalDescription()
	var err error
	field.Name, err = p.name()
	if err != nil {
		return nil, []error{err}
	}
	if len(p.tokens) == 0 {
		return field, []error{&posError{
			pos: p.eofPos,
			err: xerrors.New("expected '(' or ':', got EOF"),
		}}
	}
	var errs []error
	if p.tokens[0].kind == lparen {
		field.Args, errs = p.argumentsDefinition(depth + 1)
	}
	field.Colon, err = p.expect(colon)
	if err != nil {
		return field, append(errs, err)
	}
	var typeErrs []error
	field.Type, typeErrs = p.typeRef(depth + 1)
	errs = append(errs, typeErrs...)
	var directiveErrs []error
	field.Directives, directiveErrs = p.directives(depth+1, true)
	errs = append(errs, directiveErrs...)
	return field, errs
}

func (p *parser) argumentsDefinition(depth int) (*ArgumentsDefinition, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	args := new(ArgumentsDefinition)
	var errs []error
	args.LParen, args.RParen, errs = p.nonEmptyGroup(lparen, rparen, "arguments definition", "input value definition", func() (int, []error) {
		def, errs := p.inputValueDefinition(depth + 1)
		if def != nil {
			args.Args = append(args.Args, def)
		}
		return len(args.Args), errs
	})
	if args.LParen == -1 {
		return nil, errs
	}
	return args, errs
}

func (p *parser) enumTypeDefinition(depth int) (*EnumTypeDefinition, []error) {
	h, errs := p.typeDefinitionHeader(depth, "enum type definition", "enum")
	if h == nil {
		return nil, errs
	}
	defn := &EnumTypeDefinition{
		Description: h.description,
		Keyword:     h.keyword,
		Name:        h.name,
	}
	if h.name == nil {
		return defn, errs
	}
	defn.Values, errs = p.enumValuesDefinition(depth + 1)
	return defn, prefixErrors("enum type definition "+h.name.Value, errs)
}

func (p *parser) enumValuesDefinition(depth int) (*EnumValuesDefinition, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	defn := new(EnumValuesDefinition)
	var errs []error
	defn.LBrace, defn.RBrace, errs = p.nonEmptyGroup(lbrace, rbrace, "enum values definition", "enum value definition", func() (int, []error) {
		valueDefn := &EnumValueDefinition{Description: p.optionalDescription()}
		var err error
		valueDefn.Value, err = p.name()
		if err != nil {
			return len(defn.Values), []error{err}
		}
		defn.Values = append(defn.Values, valueDefn)

		var errs []error
		switch v := valueDefn.Value; v.Value {
		case "null", "true", "false":
			errs = append(errs, &posError{
				pos: v.Start,
				err: xerrors.Errorf("expected enum name, found reserved name %q", v.Value),
			})
		}
		var directiveErrs []error
		valueDefn.Directives, directiveErrs = p.directives(depth+1, true)
		return len(defn.Values), append(errs, directiveErrs...)
	})
	if defn.LBrace == -1 {
		return nil, errs
	}
	return defn, errs
}

func (p *parser) inputObjectTypeDefinition(depth int) (*InputObjectTypeDefinition, []error) {
	h, errs := p.typeDefinitionHeader(depth, "input object type definition", "input")
	if h == nil {
		return nil, errs
	}
	def := &InputObjectTypeDefinition{
		Description: h.description,
		Keyword:     h.keyword,
		Name:        h.name,
	}
	if h.name == nil {
		return def, errs
	}
	def.Fields, errs = p.inputFieldsDefinition(depth + 1)
	return def, prefixErrors("input object type definition "+h.name.Value, errs)
}

func (p *parser) inputFieldsDefinition(depth int) (*InputFieldsDefinition, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	fields := new(InputFieldsDefinition)
	var errs []error
	fields.LBrace, fields.RBrace, errs = p.nonEmptyGroup(lbrace, rbrace, "input fields definition", "input value definition", func() (int, []error) {
		def, errs := p.inputValueDefinition(depth + 1)
		if def != nil {
			fields.Defs = append(fields.Defs, def)
		}
		return len(fields.Defs), errs
	})
	if fields.LBrace == -1 {
		return nil, errs
	}
	return fields, errs
}

func (p *parser) inputValueDefinition(depth int) (*InputValueDefinition, []error) {
	// Errors are prefixed by the enclosing arguments or input fields definition.
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	field := new(InputValueDefinition)
	field.Description = p.optionalDescription()
	var err error
	field.Name, err = p.name()
	if err != nil {
		return nil, []error{err}
	}
	field.Colon, err = p.expect(colon)
	if err != nil {
		return field, []error{err}
	}
	var errs []error
	field.Type, errs = p.typeRef(depth + 1)
	if len(errs) > 0 {
		return field, errs
	}
	field.Default, errs = p.optionalDefaultValue(depth + 1)
	return field, errs
}

// typeDefinitionHead holds the parts shared by the start of every type
// definition.
type typeDefinitionHead struct {
	description *Description
	keyword     Pos
	name        *Name
}

// typeDefinitionHeader parses an optional description followed by keyword
// and the type's name. It returns nil if the keyword could not be parsed.
// If the name could not be parsed, the returned head's name is nil.
func (p *parser) typeDefinitionHeader(depth int, rule, keyword string) (*typeDefinitionHead, []error) {
	if depth > maxParseDepth {
		return nil, []error{errTooDeep}
	}
	h := &typeDefinitionHead{description: p.optionalDescription()}
	if len(p.tokens) == 0 {
		return nil, []error{&posError{
			pos: p.eofPos,
			err: xerrors.Errorf("%s: expected '%s', got EOF", rule, keyword),
		}}
	}
	if !p.peekKeyword(keyword) {
		return nil, []error{&posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("%s: expected '%s', found %q", rule, keyword, p.tokens[0]),
		}}
	}
	h.keyword = p.next().start
	var err error
	h.name, err = p.name()
	if err != nil {
		return h, []error{xerrors.Errorf("%s: %w", rule, err)}
	}
	return h, nil
}

// peekKeyword reports whether the next token is the given name.
func (p *parser) peekKeyword(keyword string) bool {
	return len(p.tokens) > 0 && p.tokens[0].kind == name && p.tokens[0].source == keyword
}

// expect consumes a punctuator of the given kind and returns its position.
func (p *parser) expect(kind tokenKind) (Pos, error) {
	if len(p.tokens) == 0 {
		return -1, &posError{
			pos: p.eofPos,
			err: xerrors.Errorf("expected '%s', got EOF", punctuatorStrings[kind]),
		}
	}
	if p.tokens[0].kind != kind {
		return -1, &posError{
			pos: p.tokens[0].start,
			err: xerrors.Errorf("expected '%s', found %q", punctuatorStrings[kind], p.tokens[0]),
		}
	}
	return p.next().start, nil
}

// prefixErrors wraps each error in errs with the rule name.
func prefixErrors(rule string, errs []error) []error {
	for i := range errs {
		errs[i] = xerrors.Errorf("%s: %w", rule, errs[i])
	}
	return errs
}

// nonEmptyGroup is like group, but reports an error if the group closes
// without any items. rule returns the number of items parsed so far.
func (p *parser) nonEmptyGroup(ldelim, rdelim tokenKind, listName, ruleName string, rule func() (int, []error)) (start, end Pos, _ []error) {
	n := 0
	start, end, errs := p.group(ldelim, rdelim, ruleName, func() []error {
		var errs []error
		n, errs = rule()
		return errs
	})
	errs = prefixErrors(listName, errs)
	if start >= 0 && end >= 0 && n == 0 {
		errs = append(errs, &posError{
			pos: end,
			err: xerrors.Errorf("%s: empty", listName),
		})
	}
	return start, end, errs
}

// group parses a list of the given rule started and ended by the given token kind.
func (p *parser) group(ldelim, rdelim tokenKind, ruleName string, rule func() []error) (start, end Pos, _ []error) {
	start, err := p.expect(ldelim)
	if err != nil {
		return -1, -1, []error{err}
	}
	end = -1
	var errs []error
	for i := 1; ; i++ {
		if len(p.tokens) == 0 {
			errs = append(errs, &posError{
				pos: p.eofPos,
				err: xerrors.Errorf("expected %s or '%s', got EOF", ruleName, punctuatorStrings[rdelim]),
			})
			break
		}
		if p.tokens[0].kind == rdelim {
			end = p.next().start
			break
		}
		nleft := len(p.tokens)
		ruleErrs := rule()
		for _, err := range ruleErrs {
			errs = append(errs, xerrors.Errorf("%s #%d: %w", ruleName, i, err))
		}
		if len(p.tokens) == nleft {
			end = p.skipTo(rdelim)
			break
		}
	}
	return start, end, errs
}

func (p *parser) skipTo(rdelim tokenKind) Pos {
	stk := []tokenKind{rdelim}
	for ; len(p.tokens) > 0 && len(stk) > 0; p.tokens = p.tokens[1:] {
		switch kind := p.tokens[0].kind; kind {
		case lparen:
			stk = append(stk, rparen)
		case lbrace:
			stk = append(stk, rbrace)
		case lbracket:
			stk = append(stk, rbracket)
		case rparen, rbrace, rbracket:
			for len(stk) > 0 && stk[len(stk)-1] != kind {
				stk = stk[:len(stk)-1]
			}
			if len(stk) == 1 {
				// Matches top of stack.
				return p.tokens[0].start
			}
		}
	}
	return -1
}

type posError struct {
	input string
	pos   Pos
	err   error
}

func (e *posError) Error() string {
	return e.err.Error()
}

func (e *posError) Unwrap() error {
	return e.err
}

// ErrorPos attempts to extract an error's Pos.
func ErrorPos(e error) (pos Pos, ok bool) {
	var pe *posError
	if !xerrors.As(e, &pe) {
		return 0, false
	}
	return pe.pos, true
}

// ErrorPosition attempts to extract an error's Position.
func ErrorPosition(e error) (p Position, ok bool) {
	var pe *posError
	if !xerrors.As(e, &pe) {
		return Position{}, false
	}
	return pe.pos.ToPosition(pe.input), true
}

func fillErrorInput(e error, input string) {
	var pe *posError
	if !xerrors.As(e, &pe) {
		return
	}
	pe.input = input
}
