// Package ir defines the intermediate representation queries are
// lowered to between semantic analysis and backend code generation:
// a linear sequence of Blocks describing a state machine of
// traversal/scope/fold/optional/recursion operations, operating against
// a schema-independent model each backend interprets its own way.
package ir

import "github.com/traverseql/gqlc/schema"

// Block is the closed sum type of IR instructions. Every concrete block
// type below is the only implementation; a type switch over Block is
// exhaustive and backends should not need a default case that panics in
// practice (one that does signals a new Block variant slipped in
// unhandled).
type Block interface {
	isBlock()
}

// QueryRoot opens the program at the schema type Type.
type QueryRoot struct {
	Type string
}

// Traverse moves from the current location across EdgeName in Direction,
// descending into TargetType. Optional marks this as a @optional
// traversal: backends must not drop the outer row when the edge has no
// matches. WithinOptionalScope is true when an ancestor scope (not this
// traversal itself) is already optional. No backend reads it; the MATCH
// backend's compound-optional expansion tells nested optionals apart by
// the nesting of its optional spans.
type Traverse struct {
	EdgeName            string
	Direction           schema.Direction
	TargetType          string
	Optional            bool
	WithinOptionalScope bool
}

// Recurse is a @recurse(depth: N) traversal: zero-or-more-up-to-N hops
// across EdgeName, binding every intermediate hop's scope as TargetType.
type Recurse struct {
	EdgeName   string
	Direction  schema.Direction
	TargetType string
	Depth      int
}

// Filter applies Predicate at the current location, discarding rows that
// don't satisfy it.
type Filter struct {
	Predicate Expression
}

// MarkLocation assigns Location to the current scope so that later
// blocks (TaggedValue, Backtrack) can refer back to it.
type MarkLocation struct {
	Location Location
}

// Backtrack returns the state machine's current scope to Location,
// ending the traversal that descended past it (always paired with a
// Traverse whose Optional field is true, or a Recurse).
type Backtrack struct {
	Location Location
}

// EndOptional closes an optional or recursive scope. ir.Builder emits one
// immediately after every Backtrack, so each @optional or @recurse scope
// gets its own; consecutive optional siblings are not grouped under a
// single EndOptional.
type EndOptional struct{}

// Fold begins a @fold scope: StartLocation is the location being folded
// from, traversing EdgeName in Direction into TargetType. Everything
// between Fold and the matching Unfold operates over the collected
// array of folded rows rather than a single row.
type Fold struct {
	StartLocation Location
	EdgeName      string
	Direction     schema.Direction
	TargetType    string
}

// Unfold closes the most recently opened Fold scope.
type Unfold struct{}

// CoerceType narrows the current scope's runtime type to TargetType (an
// inline-fragment "... on TargetType"). The rewrite pass in
// ir/rewrite drops this block when TargetType is already implied by the
// traversal that produced the current scope.
type CoerceType struct {
	TargetType string
}

// OutputSource marks the current location as the subtree whose expansion
// determines the final row set; rows are not cross-joined against
// sibling optional/fold expansions past this point (the
// @output_source truncation semantics).
type OutputSource struct{}

// GlobalOperationsStart is a fence: everything before it is a per-row
// (or per-fold-row) constraint, everything after it is evaluated once
// the full set of local scopes has been assembled — `_x_count` filters
// and filters whose @tag reference crosses into a @fold all live after
// this fence, since the value they compare against (a fold's
// cardinality, or one of its rows' fields) only exists once the fold
// finished collecting.
type GlobalOperationsStart struct{}

// ConstructResult is the terminal block: Outputs maps each @output's
// out_name to the Expression producing its column value.
type ConstructResult struct {
	Outputs map[string]Expression
}

func (QueryRoot) isBlock()             {}
func (Traverse) isBlock()              {}
func (Recurse) isBlock()               {}
func (Filter) isBlock()                {}
func (MarkLocation) isBlock()          {}
func (Backtrack) isBlock()             {}
func (EndOptional) isBlock()           {}
func (Fold) isBlock()                  {}
func (Unfold) isBlock()                {}
func (CoerceType) isBlock()            {}
func (OutputSource) isBlock()          {}
func (GlobalOperationsStart) isBlock() {}
func (ConstructResult) isBlock()       {}

// Program is a fully lowered query: a linear Block sequence plus the
// side-table metadata (tag bindings, output ordering, fold/optional
// bookkeeping) backends and rewrite passes consult without re-deriving
// it from the block list.
type Program struct {
	Blocks   []Block
	Metadata *Metadata
}
