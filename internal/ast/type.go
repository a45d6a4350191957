package ast

import (
	"fmt"

	"github.com/traverseql/gqlc/errors"
)

// Type is the syntax for a variable's declared type: a named type, a list
// of some type, or a non-null wrapper.
type Type interface {
	Node
	String() string
}

var _ Type = (*Named)(nil)
var _ Type = (*List)(nil)
var _ Type = (*NonNull)(nil)

type Named struct {
	Name *Name
	Loc  errors.Location
}

func (n *Named) Kind() string              { return KindNamed }
func (n *Named) Location() errors.Location { return n.Loc }
func (n *Named) String() string            { return n.Name.Name }

type List struct {
	Type Type
	Loc  errors.Location
}

func (l *List) Kind() string              { return KindList }
func (l *List) Location() errors.Location { return l.Loc }
func (l *List) String() string            { return fmt.Sprintf("[%s]", l.Type.String()) }

type NonNull struct {
	Type Type
	Loc  errors.Location
}

func (n *NonNull) Kind() string              { return KindNonNull }
func (n *NonNull) Location() errors.Location { return n.Loc }
func (n *NonNull) String() string            { return fmt.Sprintf("%s!", n.Type.String()) }
