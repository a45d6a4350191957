// Package schema holds the in-memory, immutable-after-construction
// representation of vertex types, edge types, inheritance, and scalar
// properties that every later compiler stage is checked against.
package schema

import "fmt"

// Direction is the traversal direction of a vertex field, fixed by the
// out_/in_ naming convention.
type Direction int

const (
	Out Direction = iota
	In
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// TypeKind distinguishes the three descriptor shapes a schema type can
// take.
type TypeKind int

const (
	ObjectKind TypeKind = iota
	InterfaceKind
	UnionKind
)

// PropertyField is a name -> scalar type mapping on an object/interface.
type PropertyField struct {
	Name string
	Type ScalarType
}

// VertexField is a name -> (target type, direction, edge name) mapping.
// Name always begins with "out_" or "in_" per Direction; EdgeName is the
// name with that prefix stripped.
type VertexField struct {
	Name       string
	EdgeName   string
	Direction  Direction
	TargetType string
}

// Type is one schema type descriptor: an object, an interface, or a
// union. Only object and interface types carry fields; unions only carry
// member names.
type Type struct {
	Kind TypeKind
	Name string

	// Object + Interface
	Properties   map[string]*PropertyField
	Vertices     map[string]*VertexField
	Implements   map[string]bool // interfaces this object type implements
	Implementors map[string]bool // for an interface: concrete object types satisfying it

	// Union
	Members map[string]bool

	// Indexed property names, consulted by the MATCH backend's
	// type-information optimization pass when deciding
	// which candidate starting class's index covers a location's
	// filters.
	Indexes map[string]bool

	// declOrder is this type's position in schema declaration order,
	// the documented tie-break for the type-info pass when two
	// candidate classes have identical estimated cardinality.
	declOrder int
}

// Schema is a mapping from type name to type descriptor, plus the
// type-equivalence hints that substitute for concrete inheritance.
type Schema struct {
	Types map[string]*Type

	// EquivalentUnion maps an object type name O to the union type name
	// U such that U enumerates O and all its concrete subclasses.
	EquivalentUnion map[string]string

	nextDeclOrder int
}

func New() *Schema {
	return &Schema{
		Types:           make(map[string]*Type),
		EquivalentUnion: make(map[string]string),
	}
}

func newType(kind TypeKind, name string) *Type {
	return &Type{
		Kind:         kind,
		Name:         name,
		Properties:   make(map[string]*PropertyField),
		Vertices:     make(map[string]*VertexField),
		Implements:   make(map[string]bool),
		Implementors: make(map[string]bool),
		Members:      make(map[string]bool),
		Indexes:      make(map[string]bool),
	}
}

// AddObject registers a new object type and returns it for further
// mutation (adding properties, vertices, interfaces).
func (s *Schema) AddObject(name string) *Type {
	t := newType(ObjectKind, name)
	t.declOrder = s.nextDeclOrder
	s.nextDeclOrder++
	s.Types[name] = t
	return t
}

func (s *Schema) AddInterface(name string) *Type {
	t := newType(InterfaceKind, name)
	t.declOrder = s.nextDeclOrder
	s.nextDeclOrder++
	s.Types[name] = t
	return t
}

func (s *Schema) AddUnion(name string, members ...string) *Type {
	t := newType(UnionKind, name)
	t.declOrder = s.nextDeclOrder
	s.nextDeclOrder++
	for _, m := range members {
		t.Members[m] = true
	}
	s.Types[name] = t
	return t
}

// Property registers a scalar property field on an object or interface
// type and returns the receiver for chaining.
func (t *Type) Property(name string, scalar ScalarType) *Type {
	t.Properties[name] = &PropertyField{Name: name, Type: scalar}
	return t
}

// Vertex registers a vertex field. name must begin with "out_" or "in_"
// per the is_vertex_field naming convention; the edge name is always
// derived by stripping that prefix.
func (t *Type) Vertex(name, targetType string, dir Direction) *Type {
	edge := name
	switch dir {
	case Out:
		edge = trimPrefix(name, "out_")
	case In:
		edge = trimPrefix(name, "in_")
	}
	t.Vertices[name] = &VertexField{
		Name:       name,
		EdgeName:   edge,
		Direction:  dir,
		TargetType: targetType,
	}
	return t
}

func (t *Type) Implement(iface string) *Type {
	t.Implements[iface] = true
	return t
}

func (t *Type) Index(propertyName string) *Type {
	t.Indexes[propertyName] = true
	return t
}

func (t *Type) DeclOrder() int { return t.declOrder }

func trimPrefix(s, prefix string) string {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// Link records that object implements interface on both sides, and keeps
// type-equivalence hints bidirectionally consistent with union
// membership. Call this once all objects/interfaces/unions have been
// declared.
func (s *Schema) Link() error {
	for _, t := range s.Types {
		if t.Kind != ObjectKind {
			continue
		}
		for iface := range t.Implements {
			it, ok := s.Types[iface]
			if !ok {
				return fmt.Errorf("schema: object %q implements unknown interface %q", t.Name, iface)
			}
			if it.Kind != InterfaceKind {
				return fmt.Errorf("schema: %q implements non-interface %q", t.Name, iface)
			}
			it.Implementors[t.Name] = true
		}
	}
	claimed := map[string]string{}
	for obj, union := range s.EquivalentUnion {
		ut, ok := s.Types[union]
		if !ok || ut.Kind != UnionKind {
			return fmt.Errorf("schema: equivalence hint %q -> %q is not a union type", obj, union)
		}
		if !ut.Members[obj] {
			return fmt.Errorf("schema: equivalence hint %q -> %q: union does not contain %q", obj, union, obj)
		}
		// A union enumerates exactly one object type's concrete-subclass
		// closure, so two hints can't share it.
		if prev, ok := claimed[union]; ok {
			return fmt.Errorf("schema: union %q is the equivalent union of both %q and %q", union, prev, obj)
		}
		claimed[union] = obj
		for m := range ut.Members {
			mt, ok := s.Types[m]
			if !ok || mt.Kind != ObjectKind {
				return fmt.Errorf("schema: union %q member %q is not a concrete object type", union, m)
			}
		}
	}
	return nil
}
