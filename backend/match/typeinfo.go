package match

import (
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/schema"
)

// chooseTraversalClass implements the type-information optimization
// pass for one pattern step: whenever a scope — the query root or any
// traversal/fold target — is typed as an interface or union, MATCH
// needs one concrete class name for the step's class: clause. We prefer
// the narrowest class whose declared indexes cover a property this
// scope filters on; ties break on ascending schema declaration order,
// so a fixed schema always yields the same class. Concrete
// (object-typed) scopes pass through untouched. idx is the block index
// of the QueryRoot/Traverse/Fold that opens the scope; the filters
// considered are the ones attached between it and the next scope
// change.
func chooseTraversalClass(s *schema.Schema, typeName string, p *ir.Program, idx int) string {
	t := s.Types[typeName]
	if t == nil || t.Kind == schema.ObjectKind {
		return typeName
	}
	return chooseClass(s, t, typeName, scopeFilteredProperties(p, idx))
}

func chooseClass(s *schema.Schema, t *schema.Type, typeName string, filtered map[string]bool) string {
	candidates := concreteCandidates(s, t)
	if len(candidates) == 0 {
		return typeName
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	best := candidates[0]
	bestScore := scoreCandidate(s, best, filtered)
	for _, c := range candidates[1:] {
		score := scoreCandidate(s, c, filtered)
		if score > bestScore || (score == bestScore && s.Types[c].DeclOrder() < s.Types[best].DeclOrder()) {
			best, bestScore = c, score
		}
	}
	return best
}

// concreteCandidates returns every object type an interface's
// Implementors (or a union's Members) enumerate, in declaration order,
// so abstract scopes are always resolved to a concrete class the graph
// engine can actually index.
func concreteCandidates(s *schema.Schema, t *schema.Type) []string {
	var names []string
	if t.Kind == schema.InterfaceKind {
		for name := range t.Implementors {
			names = append(names, name)
		}
	} else {
		for name := range t.Members {
			names = append(names, name)
		}
	}
	sortByDeclOrder(s, names)
	return names
}

func sortByDeclOrder(s *schema.Schema, names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && s.Types[names[j-1]].DeclOrder() > s.Types[names[j]].DeclOrder(); j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}

// scoreCandidate counts how many of the scope's filtered properties
// the candidate class has indexed — the estimated-cardinality
// proxy the optimization pass uses in place of live statistics, which
// the in-memory schema model has no way to supply.
func scoreCandidate(s *schema.Schema, class string, filteredProps map[string]bool) int {
	t := s.Types[class]
	if t == nil {
		return 0
	}
	score := 0
	for prop := range filteredProps {
		if t.Indexes[prop] {
			score++
		}
	}
	return score
}

// scopeFilteredProperties collects the field names any Filter applies
// within the scope opened at block idx: the scan starts just past the
// opening block and stops at the first block that changes scope
// (another traversal, a backtrack, the global fence). Only LocalField
// targets count — the only expression shape a same-scope inline filter
// produces.
func scopeFilteredProperties(p *ir.Program, idx int) map[string]bool {
	props := map[string]bool{}
	for _, blk := range p.Blocks[idx+1:] {
		switch b := blk.(type) {
		case ir.Filter:
			collectLocalFields(b.Predicate, props)
		case ir.MarkLocation, ir.CoerceType:
			// still the same scope
		default:
			return props
		}
	}
	return props
}

func collectLocalFields(e ir.Expression, out map[string]bool) {
	switch v := e.(type) {
	case ir.LocalField:
		out[v.FieldName] = true
	case ir.BinaryOp:
		collectLocalFields(v.Left, out)
		collectLocalFields(v.Right, out)
	case ir.Not:
		collectLocalFields(v.Value, out)
	case ir.IsNull:
		collectLocalFields(v.Value, out)
	case ir.List:
		for _, item := range v.Items {
			collectLocalFields(item, out)
		}
	}
}
