package rewrite

import "github.com/traverseql/gqlc/ir"

// truncateAtOutputSource cuts the program off at an OutputSource marker:
// sibling traversals lowered after the marked subtree are dropped, along
// with any output column whose scope no longer exists afterwards. The
// global-operations tail (the fence, its filters, and ConstructResult)
// survives, since those evaluate against the assembled row rather than
// any one truncated scope.
func truncateAtOutputSource(p *ir.Program) *ir.Program {
	idx := -1
	for i, blk := range p.Blocks {
		if _, ok := blk.(ir.OutputSource); ok {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p
	}

	out := append(make([]ir.Block, 0, len(p.Blocks)), p.Blocks[:idx+1]...)
	inGlobalTail := false
	for _, blk := range p.Blocks[idx+1:] {
		switch b := blk.(type) {
		case ir.GlobalOperationsStart:
			inGlobalTail = true
			out = append(out, b)
		case ir.ConstructResult:
			out = append(out, b)
		case ir.Filter:
			if inGlobalTail {
				out = append(out, b)
			}
		}
	}

	marked := map[ir.Location]bool{}
	for _, blk := range out {
		if ml, ok := blk.(ir.MarkLocation); ok {
			marked[ml.Location] = true
		}
	}

	kept := make([]ir.OutputColumn, 0, len(p.Metadata.Outputs))
	keptNames := map[string]bool{}
	for _, oc := range p.Metadata.Outputs {
		loc := oc.Location
		if oc.InsideFold {
			loc = oc.FoldLocation
		}
		if !marked[loc] {
			continue
		}
		kept = append(kept, oc)
		keptNames[oc.Name] = true
	}
	p.Metadata.Outputs = kept

	for i, blk := range out {
		cr, ok := blk.(ir.ConstructResult)
		if !ok {
			continue
		}
		outputs := make(map[string]ir.Expression, len(cr.Outputs))
		for name, expr := range cr.Outputs {
			if keptNames[name] {
				outputs[name] = expr
			}
		}
		out[i] = ir.ConstructResult{Outputs: outputs}
	}

	p.Blocks = out
	return p
}
