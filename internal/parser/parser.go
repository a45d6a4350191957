// Package parser is a hand-written recursive-descent parser over
// internal/lexer, producing an internal/ast.Document. It accepts the
// query-only GraphQL subset this compiler needs: one root operation, fields with aliases/arguments/directives, and
// inline fragments for type coercion. There is no schema-definition
// grammar and no named fragment reuse.
package parser

import (
	"fmt"
	"strconv"
	"text/scanner"

	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/internal/ast"
	"github.com/traverseql/gqlc/internal/lexer"
	"github.com/traverseql/gqlc/internal/token"
)

// Parse lexes and parses source into a Document, or returns a single
// ParseError on the first syntax problem encountered.
func Parse(source string) (*ast.Document, *errors.GraphQLError) {
	l := lexer.New(source)
	var doc *ast.Document
	err := l.CatchSyntaxError(func() {
		doc = parseDocument(l)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func parseDocument(l *lexer.Lexer) *ast.Document {
	l.SkipWhitespace()
	loc := l.Location()

	if l.Peek() == token.BRACE_L {
		op := &ast.OperationDefinition{Type: ast.Query, Loc: loc}
		op.SelectionSet = parseSelectionSet(l)
		requireEOF(l)
		return &ast.Document{Operation: op, Loc: loc}
	}

	name := parseName(l)
	if name.Name != "query" {
		l.SyntaxError(fmt.Sprintf(`unexpected %q, expecting "query" or "{"`, name.Name))
	}
	op := &ast.OperationDefinition{Type: ast.Query, Loc: loc}
	if l.Peek() == token.NAME {
		op.Name = parseName(l)
	}
	op.Directives = parseDirectives(l)
	op.SelectionSet = parseSelectionSet(l)
	requireEOF(l)
	return &ast.Document{Operation: op, Loc: loc}
}

func requireEOF(l *lexer.Lexer) {
	if l.Peek() != token.EOF {
		l.SyntaxError(fmt.Sprintf("unexpected %q after root selection set", l.TokenText()))
	}
}

func parseName(l *lexer.Lexer) *ast.Name {
	loc := l.Location()
	name := l.TokenText()
	l.Advance(token.NAME)
	return &ast.Name{Name: name, Loc: loc}
}

func parseNamed(l *lexer.Lexer) *ast.Named {
	loc := l.Location()
	return &ast.Named{Name: parseName(l), Loc: loc}
}

// SelectionSet : { Selection+ }
func parseSelectionSet(l *lexer.Lexer) *ast.SelectionSet {
	loc := l.Location()
	var selections []ast.Selection
	l.Advance(token.BRACE_L)
	for l.Peek() != token.BRACE_R {
		selections = append(selections, parseSelection(l))
	}
	l.Advance(token.BRACE_R)
	return &ast.SelectionSet{Selections: selections, Loc: loc}
}

func parseSelection(l *lexer.Lexer) ast.Selection {
	if l.Peek() == token.SPREAD {
		return parseInlineFragment(l)
	}
	return parseField(l)
}

// Field : Alias? Name Arguments? Directives? SelectionSet?
// Alias : Name :
func parseField(l *lexer.Lexer) *ast.Field {
	loc := l.Location()
	field := &ast.Field{Loc: loc}
	field.Alias = parseName(l)
	field.Name = field.Alias
	if l.Peek() == token.COLON {
		l.Advance(token.COLON)
		field.Name = parseName(l)
	}
	if l.Peek() == token.PAREN_L {
		field.Arguments = parseArguments(l)
	}
	field.Directives = parseDirectives(l)
	if l.Peek() == token.BRACE_L {
		field.SelectionSet = parseSelectionSet(l)
	}
	return field
}

// InlineFragment : ... on TypeCondition Directives? SelectionSet
//
// Named fragment spreads ("... Name") are not supported by this grammar;
// every spread in a query this compiler accepts is a type coercion.
func parseInlineFragment(l *lexer.Lexer) *ast.InlineFragment {
	loc := l.Location()
	l.Advance(token.SPREAD)
	l.Advance(token.SPREAD)
	l.Advance(token.SPREAD)

	frag := &ast.InlineFragment{Loc: loc}
	l.AdvanceKeyword("on")
	frag.TypeCondition = parseNamed(l)
	frag.Directives = parseDirectives(l)
	frag.SelectionSet = parseSelectionSet(l)
	return frag
}

// Arguments : ( Argument+ )
func parseArguments(l *lexer.Lexer) []*ast.Argument {
	var args []*ast.Argument
	l.Advance(token.PAREN_L)
	for l.Peek() != token.PAREN_R {
		loc := l.Location()
		name := parseName(l)
		l.Advance(token.COLON)
		value := parseValueLiteral(l)
		args = append(args, &ast.Argument{Name: name, Value: value, Loc: loc})
	}
	l.Advance(token.PAREN_R)
	return args
}

// Value :
//   - IntValue
//   - StringValue
//   - BooleanValue
//   - ListValue
//
// This grammar's directives never take float, enum, object, or variable
// ($name) argument values, so the value grammar is trimmed to the four
// kinds the directive table actually uses.
func parseValueLiteral(l *lexer.Lexer) ast.Value {
	loc := l.Location()
	switch l.Peek() {
	case token.BRACKET_L:
		return parseList(l)
	case token.INT:
		text := l.TokenText()
		l.Advance(token.INT)
		return &ast.IntValue{Value: text, Loc: loc}
	case token.STRING:
		text := l.TokenText()
		l.Advance(token.STRING)
		return &ast.StringValue{Value: unquote(text), Loc: loc}
	case token.NAME:
		text := l.TokenText()
		switch text {
		case "true", "false":
			l.Advance(token.NAME)
			return &ast.BooleanValue{Value: text == "true", Loc: loc}
		}
	}
	l.SyntaxError(fmt.Sprintf("unexpected %q", scanner.TokenString(l.Peek())))
	return nil
}

func parseList(l *lexer.Lexer) *ast.ListValue {
	loc := l.Location()
	l.Advance(token.BRACKET_L)
	var values []ast.Value
	for l.Peek() != token.BRACKET_R {
		values = append(values, parseValueLiteral(l))
	}
	l.Advance(token.BRACKET_R)
	return &ast.ListValue{Values: values, Loc: loc}
}

// Directives : Directive+
func parseDirectives(l *lexer.Lexer) []*ast.Directive {
	var directives []*ast.Directive
	for l.Peek() == token.AT {
		directives = append(directives, parseDirective(l))
	}
	return directives
}

// Directive : @ Name Arguments?
func parseDirective(l *lexer.Lexer) *ast.Directive {
	loc := l.Location()
	l.Advance(token.AT)
	directive := &ast.Directive{Name: parseName(l), Loc: loc}
	if l.Peek() == token.PAREN_L {
		directive.Args = parseArguments(l)
	}
	return directive
}

func unquote(tokenText string) string {
	if s, err := strconv.Unquote(tokenText); err == nil {
		return s
	}
	return tokenText
}
