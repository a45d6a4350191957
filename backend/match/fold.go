package match

import "github.com/traverseql/gqlc/ir"

// emitFold handles one Fold..Unfold region: the MATCH
// dialect has no native "collect these rows as an array" clause, so a
// fold is rendered as its own optional step (a fold may legitimately
// collect zero rows without eliminating the outer row) whose alias later
// FoldedField/FoldCount expressions resolve back through aliasOf. *i is
// advanced past every block belonging to the fold, including its
// trailing Unfold.
func (e *emitter) emitFold(f ir.Fold, p *ir.Program, i *int) error {
	idx := *i
	class := chooseTraversalClass(e.schema, f.TargetType, p, idx)
	st := &step{
		class:    class,
		edge:     f.EdgeName,
		dir:      f.Direction,
		optional: true,
	}
	st.alias = e.newAlias(class)
	e.steps = append(e.steps, st)

	idx++ // consume Fold
	if idx < len(p.Blocks) {
		if ml, ok := p.Blocks[idx].(ir.MarkLocation); ok {
			e.aliasOf[ml.Location] = st.alias
			e.classOf[ml.Location] = class
			idx++
		}
	}

	depth := 1
	for idx < len(p.Blocks) && depth > 0 {
		switch b := p.Blocks[idx].(type) {
		case ir.Fold:
			depth++
		case ir.Unfold:
			depth--
			if depth == 0 {
				idx++
				*i = idx - 1
				return nil
			}
		case ir.Filter:
			e.inPattern = true
			st.where = append(st.where, e.renderPredicate(b.Predicate))
			e.inPattern = false
		case ir.CoerceType:
			st.class = b.TargetType
		case ir.MarkLocation:
			e.aliasOf[b.Location] = st.alias
			e.classOf[b.Location] = st.class
		}
		idx++
	}
	*i = idx - 1
	return nil
}

// foldAlias resolves a FoldLocation back to the pattern alias emitFold
// assigned its fold step, falling back to the implicit current-row
// binding if the location was never visited (should not happen for a
// well-formed program).
func (e *emitter) foldAlias(loc ir.Location) string {
	if a, ok := e.aliasOf[loc]; ok {
		return a
	}
	return "$matched"
}
