package ir

import "github.com/traverseql/gqlc/schema"

// OutputColumn describes one column of the compiled query's result set,
// in the order @output directives were first encountered in source
// order — the order backend.Result.OutputMetadata is reported in.
type OutputColumn struct {
	Name           string
	ScalarType     schema.ScalarType
	Location       Location
	FieldName      string
	InsideFold     bool
	InsideOptional bool     // the column is nullable: its scope may match zero times
	FoldLocation   Location // valid only when InsideFold
}

// ParamRef describes one runtime parameter referenced by the query
// ("$name" in a @filter value list) — the order backend.Result.
// InputMetadata is reported in.
type ParamRef struct {
	Name       string
	ScalarType schema.ScalarType
}

// TagBinding records where a @tag was bound: FieldName's value at
// Location. ir.Builder leaves Order at zero; the tag-before-filter
// ordering is enforced by compiler.Analyze with its own counters.
type TagBinding struct {
	Location  Location
	FieldName string
	Order     int
}

// FoldScope records one @fold occurrence. StartLocation is the scope the
// fold hangs off; Location is the fold's own collected scope, the root
// every location inside the fold's subtree descends from.
type FoldScope struct {
	StartLocation Location
	Location      Location
	EdgeName      string
	Direction     schema.Direction
	TargetType    string
}

// OptionalInfo classifies one @optional traversal after rewrite.Run's
// classifyOptionals pass: Compound is true when the optional's subtree
// contains at least one further vertex traversal (Traverse, Recurse or
// Fold — not necessarily another @optional), which the MATCH backend
// must expand into 2^n UNIONALL branches rather than a
// single OPTIONAL MATCH.
type OptionalInfo struct {
	Location Location
	Compound bool
}

// Metadata is the side-table ir.Builder populates alongside the Block
// sequence: everything a backend needs about locations, tags, folds and
// outputs without re-walking Blocks to reconstruct it.
type Metadata struct {
	Outputs   []OutputColumn
	Params    []ParamRef
	Tags      map[string]TagBinding
	Folds     []FoldScope
	Optionals []OptionalInfo

	// RecurseChains maps a @recurse scope's location to the per-hop
	// locations rewrite.UnfoldRecurse minted when expanding it,
	// shallowest hop first. The first entry is the scope's own location,
	// so references bound there keep resolving; only backends that run
	// UnfoldRecurse see entries here. A located reference into a chain
	// must consider every hop: a row may stop matching at any depth.
	RecurseChains map[Location][]Location
}

func newMetadata() *Metadata {
	return &Metadata{Tags: map[string]TagBinding{}}
}

// addParam records a parameter reference the first time it is seen;
// later references to the same name are no-ops so InputMetadata lists
// each parameter once even if it's filtered on more than once.
func (m *Metadata) addParam(name string, t schema.ScalarType) {
	for _, p := range m.Params {
		if p.Name == name {
			return
		}
	}
	m.Params = append(m.Params, ParamRef{Name: name, ScalarType: t})
}
