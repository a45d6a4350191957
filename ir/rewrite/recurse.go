package rewrite

import "github.com/traverseql/gqlc/ir"

// UnfoldRecurse expands every Recurse block into a chain of Depth nested
// optional Traverse blocks, each one hop further along the same edge,
// for backends with no native recursive-traversal primitive (the
// relational backend's squirrel builder). Each hop gets its own minted
// Location — the first keeps the scope's original location so existing
// tag/output references stay bound — and the full hop list is recorded
// in Metadata.RecurseChains: a recursion matches at *any* depth up to
// Depth, so a backend reading a field from the recursed scope must
// consult every hop (the relational backend COALESCEs across them),
// not just the deepest. It is not part of Run's default pipeline
// because the MATCH and Gremlin backends both support recursion
// natively and would otherwise lose the single Recurse block they key
// their own emission off of.
func UnfoldRecurse(p *ir.Program) *ir.Program {
	out := make([]ir.Block, 0, len(p.Blocks))
	for i := 0; i < len(p.Blocks); i++ {
		rec, ok := p.Blocks[i].(ir.Recurse)
		if !ok {
			out = append(out, p.Blocks[i])
			continue
		}
		// Find the matching MarkLocation/.../Backtrack,EndOptional run
		// that ir.Builder always emits immediately after a Recurse.
		mark, rest, consumed := splitRecurseBody(p.Blocks[i+1:])
		chain := make([]ir.Location, rec.Depth)
		for hop := 0; hop < rec.Depth; hop++ {
			loc := mark.Location
			if hop > 0 {
				loc = mark.Location.Child(rec.EdgeName, hop)
			}
			chain[hop] = loc
			out = append(out, ir.Traverse{
				EdgeName: rec.EdgeName, Direction: rec.Direction,
				TargetType: rec.TargetType, Optional: true, WithinOptionalScope: hop > 0,
			})
			out = append(out, ir.MarkLocation{Location: loc})
		}
		out = append(out, rest...)
		for hop := 0; hop < rec.Depth; hop++ {
			out = append(out, ir.Backtrack{Location: mark.Location}, ir.EndOptional{})
		}
		if p.Metadata.RecurseChains == nil {
			p.Metadata.RecurseChains = map[ir.Location][]ir.Location{}
		}
		p.Metadata.RecurseChains[mark.Location] = chain
		i += consumed
	}
	p.Blocks = out
	return p
}

// splitRecurseBody separates the MarkLocation that opens a Recurse
// scope from the body blocks, returning the number of blocks (relative
// to the Recurse block itself) the whole MarkLocation..Backtrack,
// EndOptional run occupies so the caller can skip past it.
func splitRecurseBody(blocks []ir.Block) (ir.MarkLocation, []ir.Block, int) {
	mark, _ := blocks[0].(ir.MarkLocation)
	end := 1
	for end < len(blocks) {
		if _, ok := blocks[end].(ir.Backtrack); ok {
			break
		}
		end++
	}
	body := blocks[1:end]
	total := end + 2 // MarkLocation .. Backtrack, EndOptional
	if total > len(blocks) {
		total = len(blocks)
	}
	return mark, body, total
}
