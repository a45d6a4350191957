// Package backend defines the shared result/target vocabulary every
// query-language emitter (backend/match, backend/relational,
// backend/gremlin, backend/cypher) produces, so compile.Compile can
// dispatch on a Target value without importing any one backend's
// internals beyond what's needed to construct it.
package backend

import "github.com/traverseql/gqlc/schema"

// Target selects which backend Compile lowers a query's IR to.
type Target int

const (
	MATCH Target = iota
	Relational
	Gremlin
	Cypher
)

func (t Target) String() string {
	switch t {
	case MATCH:
		return "MATCH"
	case Relational:
		return "Relational"
	case Gremlin:
		return "Gremlin"
	case Cypher:
		return "Cypher"
	}
	return "Unknown"
}

// ParamMeta describes one runtime parameter the compiled query text
// references, in the positional/named order the backend emitted it.
type ParamMeta struct {
	Name       string
	ScalarType schema.ScalarType
}

// ColumnMeta describes one column of the compiled query's result set, in
// source @output order.
type ColumnMeta struct {
	Name       string
	ScalarType schema.ScalarType
	IsList     bool // true for an @output inside a @fold: the column is an array
	Nullable   bool // true when the column's scope is @optional and may be absent
}

// Result is what every backend emitter returns: the query text (or, for
// the relational backend, nil QueryText in favor of a populated
// Builder), plus the input/output metadata Compile reports back to the
// caller so params can be bound and result rows decoded without
// re-deriving either from the original query string.
type Result struct {
	QueryText      string
	Builder        interface{} // *squirrel.SelectBuilder for Relational; nil otherwise
	InputMetadata  []ParamMeta
	OutputMetadata []ColumnMeta
}
