package ast

import "github.com/traverseql/gqlc/errors"

// A selection set is composed of fields and, for type coercion, inline
// fragments. Named fragment definitions/spreads are not part of this
// grammar: the query language this compiler accepts has no fragment
// reuse.
type SelectionSet struct {
	Selections []Selection
	Loc        errors.Location
}

func (s *SelectionSet) Kind() string              { return KindSelectionSet }
func (s *SelectionSet) Location() errors.Location { return s.Loc }

type Selection interface {
	Node
	// IsSelection is a non-op marker restricting which node kinds may
	// appear inside a SelectionSet.
	IsSelection()
}

var _ Selection = (*Field)(nil)
var _ Selection = (*InlineFragment)(nil)

// A Field describes one discrete piece of information requested within a
// selection set: a property (scalar leaf) or a vertex field (a traversal,
// recognized by the schema's out_/in_ naming convention — see
// schema.IsVertexField).
type Field struct {
	Alias        *Name
	Name         *Name
	Arguments    []*Argument
	Directives   []*Directive
	SelectionSet *SelectionSet
	Loc          errors.Location
}

func (f *Field) Kind() string              { return KindField }
func (f *Field) Location() errors.Location { return f.Loc }
func (f *Field) IsSelection()              {}

// InlineFragment is the GraphQL syntax for a type coercion: `... on Type`.
type InlineFragment struct {
	TypeCondition *Named
	Directives    []*Directive
	SelectionSet  *SelectionSet
	Loc           errors.Location
}

func (f *InlineFragment) Kind() string              { return KindInlineFragment }
func (f *InlineFragment) Location() errors.Location { return f.Loc }
func (f *InlineFragment) IsSelection()              {}

// Argument is a field or directive argument: `name: value`.
type Argument struct {
	Name  *Name
	Value Value
	Loc   errors.Location
}

func (a *Argument) Kind() string              { return KindArgument }
func (a *Argument) Location() errors.Location { return a.Loc }

// Directive is `@name(args...)` attached to a field or inline fragment.
type Directive struct {
	Name *Name
	Args []*Argument
	Loc  errors.Location
}

func (d *Directive) Kind() string              { return KindDirective }
func (d *Directive) Location() errors.Location { return d.Loc }

// Arg looks up an argument by name, returning nil if absent.
func (d *Directive) Arg(name string) *Argument {
	for _, a := range d.Args {
		if a.Name.Name == name {
			return a
		}
	}
	return nil
}
