package schema

import (
	"fmt"
	"strings"
)

// IsVertexField reports whether name is a vertex-field name, i.e. begins
// with the "out_" or "in_" prefix.
func IsVertexField(name string) bool {
	return strings.HasPrefix(name, "out_") || strings.HasPrefix(name, "in_")
}

// FieldDirection returns the direction implied by a vertex-field name's
// prefix. Only meaningful when IsVertexField(name) is true.
func FieldDirection(name string) Direction {
	if strings.HasPrefix(name, "in_") {
		return In
	}
	return Out
}

// Subtype reports whether a is a subtype of b: reflexive, and transitive
// across "implements" and union membership.
func (s *Schema) Subtype(a, b string) bool {
	if a == b {
		return true
	}
	at, ok := s.Types[a]
	if !ok {
		return false
	}
	switch at.Kind {
	case ObjectKind:
		if bt, ok := s.Types[b]; ok {
			switch bt.Kind {
			case InterfaceKind:
				if s.objectImplements(at, bt.Name, map[string]bool{}) {
					return true
				}
			case UnionKind:
				if bt.Members[a] {
					return true
				}
			}
		}
	case InterfaceKind:
		// One interface is a "subtype" of another only via a direct
		// implements-style extension hierarchy; this schema model has
		// no interface-extends-interface relation, so nothing further.
	case UnionKind:
		// A union is not a declared subtype of anything else.
	}
	return false
}

func (s *Schema) objectImplements(obj *Type, iface string, seen map[string]bool) bool {
	if obj.Implements[iface] {
		return true
	}
	for name := range obj.Implements {
		if seen[name] {
			continue
		}
		seen[name] = true
		if it, ok := s.Types[name]; ok && it.Kind == InterfaceKind {
			if it.Name == iface {
				return true
			}
		}
	}
	return false
}

// FieldDescriptor is the result of resolving a field name against a
// parent type: exactly one of Property or Vertex is non-nil.
type FieldDescriptor struct {
	Property *PropertyField
	Vertex   *VertexField
}

// ResolveField resolves field_name on parent_type, searching the type
// itself and, for an interface, failing over to nothing (interfaces
// declare their own copy of shared fields) — and for an object, also
// consulting any implemented interfaces so a field declared once on the
// interface is visible on every implementor.
func (s *Schema) ResolveField(parentType, fieldName string) (*FieldDescriptor, error) {
	t, ok := s.Types[parentType]
	if !ok {
		return nil, fmt.Errorf("schema: unknown type %q", parentType)
	}
	if d, ok := s.resolveOwn(t, fieldName); ok {
		return d, nil
	}
	if t.Kind == ObjectKind {
		for iface := range t.Implements {
			if it, ok := s.Types[iface]; ok {
				if d, ok := s.resolveOwn(it, fieldName); ok {
					return d, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("schema: type %q has no field %q", parentType, fieldName)
}

func (s *Schema) resolveOwn(t *Type, fieldName string) (*FieldDescriptor, bool) {
	if p, ok := t.Properties[fieldName]; ok {
		return &FieldDescriptor{Property: p}, true
	}
	if v, ok := t.Vertices[fieldName]; ok {
		return &FieldDescriptor{Vertex: v}, true
	}
	return nil, false
}

// TypeCoercionValid reports whether coercing a value statically typed as
// `from` to `to` is valid: `to` is a subtype of `from`, or `from` is an
// interface/union containing `to`.
func (s *Schema) TypeCoercionValid(from, to string) bool {
	if from == to {
		return true
	}
	if s.Subtype(to, from) {
		return true
	}
	ft, ok := s.Types[from]
	if !ok {
		return false
	}
	switch ft.Kind {
	case InterfaceKind:
		return ft.Implementors[to]
	case UnionKind:
		return ft.Members[to]
	}
	return false
}

// ConcreteSubtypeCount returns the number of concrete (object) types that
// satisfy typeName — 1 for an object, the size of the implementor/member
// set for an interface/union. Nothing in this module calls it;
// backend/match's type-information pass ranks concrete candidates by
// index coverage and declaration order.
func (s *Schema) ConcreteSubtypeCount(typeName string) int {
	t, ok := s.Types[typeName]
	if !ok {
		return 0
	}
	switch t.Kind {
	case ObjectKind:
		return 1
	case InterfaceKind:
		return len(t.Implementors)
	case UnionKind:
		return len(t.Members)
	}
	return 0
}
