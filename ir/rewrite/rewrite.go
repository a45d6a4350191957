// Package rewrite applies the fixed sequence of total, idempotent
// transformations run over an ir.Program before any backend sees it:
// @output_source truncation, redundant coercion removal, optional
// simple/compound classification, fold normalization, adjacent filter
// merging, and (opt-in, for backends without native recursion) recurse
// unfolding.
package rewrite

import "github.com/traverseql/gqlc/ir"

// Run applies the passes every backend expects to have already run, in
// a fixed order. Each pass is total (never errors)
// and idempotent (running it twice is the same as running it once), so
// Run itself is idempotent.
func Run(p *ir.Program) *ir.Program {
	p = truncateAtOutputSource(p)
	p = removeRedundantCoercions(p)
	p = classifyOptionals(p)
	p = normalizeFolds(p)
	p = mergeAdjacentFilters(p)
	return p
}

// removeRedundantCoercions drops a CoerceType block when the scope it
// narrows is already statically known to be exactly TargetType — the
// traversal (or QueryRoot) immediately preceding it already established
// that type, so the inline fragment added no information. It tracks the "currently established type" across QueryRoot,
// Traverse, Recurse and Fold blocks, which are the only blocks that
// change it.
func removeRedundantCoercions(p *ir.Program) *ir.Program {
	out := make([]ir.Block, 0, len(p.Blocks))
	established := ""
	for _, blk := range p.Blocks {
		switch b := blk.(type) {
		case ir.QueryRoot:
			established = b.Type
		case ir.Traverse:
			established = b.TargetType
		case ir.Recurse:
			established = b.TargetType
		case ir.Fold:
			established = b.TargetType
		case ir.CoerceType:
			if b.TargetType == established {
				continue // drop: redundant
			}
			established = b.TargetType
		}
		out = append(out, blk)
	}
	p.Blocks = out
	return p
}

// classifyOptionals walks the block sequence tracking optional-scope
// nesting depth and records, for every Traverse{Optional: true}, whether
// it contains at least one further vertex traversal (Traverse, Recurse
// or Fold — not necessarily another @optional) before its matching
// Backtrack. That's what makes it a "compound" optional needing 2^n
// UNIONALL expansion; an optional whose
// subtree is property fields only (no further traversal at all) is
// "simple" and emittable as one OPTIONAL MATCH clause.
func classifyOptionals(p *ir.Program) *ir.Program {
	type frame struct {
		loc      ir.Location
		optional bool // false for a Recurse scope, which also closes with Backtrack
		hasInner bool
	}
	var stack []frame
	var results []ir.OptionalInfo

	markInner := func() {
		if len(stack) > 0 {
			stack[len(stack)-1].hasInner = true
		}
	}

	for _, blk := range p.Blocks {
		switch b := blk.(type) {
		case ir.Traverse:
			markInner()
			if b.Optional {
				// The paired MarkLocation block immediately follows;
				// its Location becomes this frame's identity once seen.
				stack = append(stack, frame{optional: true})
			}
		case ir.Recurse:
			markInner()
			stack = append(stack, frame{})
		case ir.Fold:
			markInner()
		case ir.MarkLocation:
			if len(stack) > 0 && stack[len(stack)-1].loc == (ir.Location{}) {
				stack[len(stack)-1].loc = b.Location
			}
		case ir.Backtrack:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.optional {
				results = append(results, ir.OptionalInfo{Location: top.loc, Compound: top.hasInner})
			}
		}
	}
	p.Metadata.Optionals = results
	return p
}

// normalizeFolds ensures every Fold block is immediately followed by a
// MarkLocation for its internal scope — true by construction from
// ir.Builder, but a defensive normalization for programs assembled or
// edited by hand (e.g. in tests) rather than through Builder.Build.
func normalizeFolds(p *ir.Program) *ir.Program {
	out := make([]ir.Block, 0, len(p.Blocks)+2)
	for i := 0; i < len(p.Blocks); i++ {
		out = append(out, p.Blocks[i])
		if _, ok := p.Blocks[i].(ir.Fold); ok {
			if i+1 >= len(p.Blocks) {
				continue
			}
			if _, next := p.Blocks[i+1].(ir.MarkLocation); !next {
				out = append(out, ir.MarkLocation{})
			}
		}
	}
	p.Blocks = out
	return p
}

// mergeAdjacentFilters folds a run of consecutive Filter blocks into a
// single Filter whose predicate AND's them together. Semantic analysis
// never itself emits adjacent filters that could conflict, so this is
// purely a size reduction backends benefit from (fewer WHERE/AND clauses
// to print).
func mergeAdjacentFilters(p *ir.Program) *ir.Program {
	out := make([]ir.Block, 0, len(p.Blocks))
	for i := 0; i < len(p.Blocks); i++ {
		f, ok := p.Blocks[i].(ir.Filter)
		if !ok {
			out = append(out, p.Blocks[i])
			continue
		}
		pred := f.Predicate
		j := i + 1
		for j < len(p.Blocks) {
			next, ok := p.Blocks[j].(ir.Filter)
			if !ok {
				break
			}
			pred = ir.BinaryOp{Op: "and", Left: pred, Right: next.Predicate}
			j++
		}
		out = append(out, ir.Filter{Predicate: pred})
		i = j - 1
	}
	p.Blocks = out
	return p
}
