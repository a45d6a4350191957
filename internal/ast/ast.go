// Package ast defines the syntax tree produced by internal/parser. It is
// the untyped counterpart of compiler.Query: every node knows its own
// source location but nothing about the schema it will be resolved
// against.
package ast

import "github.com/traverseql/gqlc/errors"

// Node kind tags, used for diagnostics and for exhaustiveness checks in
// the handful of places that switch on concrete AST node type.
const (
	KindDocument            = "Document"
	KindOperationDefinition = "OperationDefinition"
	KindSelectionSet        = "SelectionSet"
	KindField               = "Field"
	KindInlineFragment      = "InlineFragment"
	KindArgument            = "Argument"
	KindDirective           = "Directive"
	KindName                = "Name"
	KindNamed               = "NamedType"
	KindList                = "ListType"
	KindNonNull             = "NonNullType"
	KindIntValue            = "IntValue"
	KindFloatValue          = "FloatValue"
	KindStringValue         = "StringValue"
	KindBooleanValue        = "BooleanValue"
	KindNullValue           = "NullValue"
	KindEnumValue           = "EnumValue"
	KindListValue           = "ListValue"
)

// Node is implemented by every AST node.
type Node interface {
	Kind() string
	Location() errors.Location
}

// Document is the parsed form of a single compile call's query string. The
// language this compiler accepts allows exactly one operation, so
// Document carries it directly rather than a list of definitions.
type Document struct {
	Operation *OperationDefinition
	Loc       errors.Location
}

func (d *Document) Kind() string              { return KindDocument }
func (d *Document) Location() errors.Location { return d.Loc }

// OperationType distinguishes the GraphQL operation keywords. The
// compiler only ever lowers query-shaped documents (mutations and
// subscriptions are not a compilation target), but the parser still
// records what keyword introduced the document so a caller-facing error
// can name it.
type OperationType string

const (
	Query OperationType = "query"
)

type OperationDefinition struct {
	Type         OperationType
	Name         *Name
	Directives   []*Directive
	SelectionSet *SelectionSet
	Loc          errors.Location
}

func (o *OperationDefinition) Kind() string              { return KindOperationDefinition }
func (o *OperationDefinition) Location() errors.Location { return o.Loc }

type Name struct {
	Name string
	Loc  errors.Location
}

func (n *Name) Kind() string              { return KindName }
func (n *Name) Location() errors.Location { return n.Loc }
