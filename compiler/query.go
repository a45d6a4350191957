// Package compiler performs semantic analysis of a parsed query against
// a schema and produces a typed AST (Query/Selection) ready
// for ir.Builder to lower. It never itself touches a backend.
package compiler

import (
	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/schema"
)

// SelectionKind distinguishes a property-field leaf from a vertex-field
// traversal in the typed AST.
type SelectionKind int

const (
	PropertyField SelectionKind = iota
	VertexField
	CoercionField
)

// Filter is a resolved @filter occurrence: its operator, raw value-list
// elements (not yet classified into literal/param/tag — compiler.Filter
// keeps the raw strings; ir.Builder does the classification so the IR
// expression tree is the single place that distinguishes them), and the
// scalar type of the field/meta-field it filters.
type Filter struct {
	OpName     string
	RawValues  []string
	ScalarType schema.ScalarType
	Loc        errors.Location
}

// Selection is one typed node of the query tree: either a property field
// (possibly the `_x_count` meta-field) or a vertex field (a traversal,
// optionally folded/optional/recursive).
type Selection struct {
	Kind  SelectionKind
	Name  string // schema field name (or "_x_count")
	Alias string
	Loc   errors.Location

	// Property field.
	ScalarType  schema.ScalarType
	IsMetaCount bool
	Output      *string
	Tag         *string

	// Filters holds @filter occurrences. Populated on property fields
	// (and _x_count) for any operator, and on vertex fields for
	// has_edge_degree only — the one operator that measures a
	// traversal's match count rather than a scalar property's value.
	Filters []*Filter

	// Vertex field.
	Direction    schema.Direction
	EdgeName     string
	TargetType   string // the edge's declared target type; coercions are CoercionField children
	Optional     bool
	Fold         bool
	RecurseDepth *int
	OutputSource bool
	Children     []*Selection

	// Coercion field only (Kind == CoercionField): the type this scope
	// is narrowed to. Emitted as ir.CoerceType unless the IR rewrite
	// pass finds it redundant.
	CoercedTo string
}

// IsVertex / IsProperty are convenience predicates mirroring
// schema.IsVertexField's naming-convention check, but resolved once at
// typed-AST build time.
func (s *Selection) IsVertex() bool   { return s.Kind == VertexField }
func (s *Selection) IsProperty() bool { return s.Kind == PropertyField }
func (s *Selection) IsCoercion() bool { return s.Kind == CoercionField }

// Query is the typed, validated root of a compiled query.
type Query struct {
	RootType string
	Root     []*Selection
	Loc      errors.Location
}
