package ast

import "github.com/traverseql/gqlc/errors"

// Value is a literal argument value. This grammar has no use for GraphQL
// variables ($foo) as a value kind: a compile call's runtime parameters
// are referenced by writing "$name" as a plain string inside a @filter's
// value list, so parameter binding is a lexical convention
// resolved during semantic analysis, not a separate AST shape.
type Value interface {
	Node
	GetValue() interface{}
}

var _ Value = (*IntValue)(nil)
var _ Value = (*StringValue)(nil)
var _ Value = (*BooleanValue)(nil)
var _ Value = (*ListValue)(nil)

type IntValue struct {
	Value string
	Loc   errors.Location
}

func (i *IntValue) Kind() string              { return KindIntValue }
func (i *IntValue) Location() errors.Location { return i.Loc }
func (i *IntValue) GetValue() interface{}     { return i.Value }

type StringValue struct {
	Value string
	Loc   errors.Location
}

func (s *StringValue) Kind() string              { return KindStringValue }
func (s *StringValue) Location() errors.Location { return s.Loc }
func (s *StringValue) GetValue() interface{}     { return s.Value }

type BooleanValue struct {
	Value bool
	Loc   errors.Location
}

func (b *BooleanValue) Kind() string              { return KindBooleanValue }
func (b *BooleanValue) Location() errors.Location { return b.Loc }
func (b *BooleanValue) GetValue() interface{}     { return b.Value }

// ListValue is `[v1, v2, ...]`, used by @filter's `value` argument.
type ListValue struct {
	Values []Value
	Loc    errors.Location
}

func (l *ListValue) Kind() string              { return KindListValue }
func (l *ListValue) Location() errors.Location { return l.Loc }
func (l *ListValue) GetValue() interface{}     { return l.Values }
