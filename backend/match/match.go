// Package match compiles ir.Program into the MATCH graph-pattern
// dialect: a `MATCH {class: ..., as: ...} .out('Edge') {...} ...`
// pattern plus a RETURN clause, the primary and hardest backend target.
// Four concerns live in separate files: the template/alias model
// (match.go), the type-information optimization pass that picks each
// pattern step's starting class (typeinfo.go), compound-optional
// UNIONALL expansion (optional.go), and the filter/fold emission tables
// (filters.go, fold.go).
package match

import (
	"fmt"
	"strings"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/schema"
)

// step is one `{class: ..., as: ...}` pattern node, reached from the
// previous step (if any) by traversing edge.
type step struct {
	alias    string
	class    string
	edge     string // edge name reaching this step from its predecessor; "" for the first step
	dir      schema.Direction
	optional bool
	where    []string
}

// optionalSpan is the [start,end] index range in emitter.steps occupied
// by one @optional traversal's subtree, used by optional.go to expand
// compound optionals into UNIONALL branches.
type optionalSpan struct {
	start, end int
	compound   bool
}

// retEntry is one projected output column: its rendered expression text
// plus the pattern alias it reads from, so a UNIONALL branch that elides
// that alias's step can project null in its place.
type retEntry struct {
	name  string
	text  string
	alias string // "" when the expression reads no pattern step
}

type emitter struct {
	schema  *schema.Schema
	meta    *ir.Metadata
	steps   []*step
	aliasOf map[ir.Location]string
	classOf map[ir.Location]string
	counter map[string]int // class name -> next alias suffix

	params     map[string]schema.ScalarType
	paramOrder []string

	// inPattern is set while rendering a step's where: clause, where the
	// dialect names the current vertex's own properties bare and reaches
	// other pattern aliases through the $matched binding; outside a
	// pattern (RETURN, post-projection WHERE) aliases are named directly.
	inPattern bool

	globalWhere []string
	outputs     []backend.ColumnMeta
	ret         []retEntry // in source @output order

	spans []optionalSpan
}

// Emit lowers p into MATCH pattern text and its parameter/column metadata.
func Emit(p *ir.Program, s *schema.Schema) (*backend.Result, error) {
	e := &emitter{
		schema:  s,
		meta:    p.Metadata,
		aliasOf: map[ir.Location]string{},
		classOf: map[ir.Location]string{},
		counter: map[string]int{},
		params:  map[string]schema.ScalarType{},
	}

	var rootType string
	rootIdx := 0
	for idx, blk := range p.Blocks {
		if qr, ok := blk.(ir.QueryRoot); ok {
			rootType = qr.Type
			rootIdx = idx
			break
		}
	}

	startClass := chooseTraversalClass(s, rootType, p, rootIdx)
	compoundByLocation := map[ir.Location]bool{}
	for _, oi := range p.Metadata.Optionals {
		compoundByLocation[oi.Location] = oi.Compound
	}

	passedGlobalFence := false
	// Open Traverse{Optional}/Recurse scopes, in nesting order; both
	// close with a Backtrack block, so the stack entry records which
	// kind it was and only optional scopes become optionalSpans.
	type openScope struct {
		stepIdx  int
		optional bool
		compound bool
	}
	var open []openScope

	for i := 0; i < len(p.Blocks); i++ {
		switch b := p.Blocks[i].(type) {
		case ir.QueryRoot:
			st := &step{alias: e.newAlias(startClass), class: startClass}
			e.steps = append(e.steps, st)
			// Root location is marked by the very next block.
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = st.alias
					e.classOf[ml.Location] = startClass
				}
			}

		case ir.Traverse:
			// An interface/union-typed traversal target goes through the
			// same narrowing the root does, so every abstract hop gets the
			// cardinality-minimizing concrete class, not just the first.
			class := chooseTraversalClass(s, b.TargetType, p, i)
			st := &step{
				class:    class,
				edge:     b.EdgeName,
				dir:      b.Direction,
				optional: b.Optional,
			}
			st.alias = e.newAlias(class)
			stepIdx := len(e.steps)
			e.steps = append(e.steps, st)
			var loc ir.Location
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					loc = ml.Location
					e.aliasOf[ml.Location] = st.alias
					e.classOf[ml.Location] = class
				}
			}
			if b.Optional {
				open = append(open, openScope{stepIdx: stepIdx, optional: true, compound: compoundByLocation[loc]})
			}

		case ir.Recurse:
			st := &step{
				class: b.TargetType,
				edge:  b.EdgeName,
				dir:   b.Direction,
				where: []string{fmt.Sprintf("$depth <= %d", b.Depth)},
			}
			st.alias = e.newAlias(b.TargetType)
			e.steps = append(e.steps, st)
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = st.alias
					e.classOf[ml.Location] = b.TargetType
				}
			}
			open = append(open, openScope{stepIdx: len(e.steps) - 1})

		case ir.Fold:
			if err := e.emitFold(b, p, &i); err != nil {
				return nil, err
			}

		case ir.CoerceType:
			if len(e.steps) > 0 {
				e.steps[len(e.steps)-1].class = b.TargetType
			}

		case ir.Filter:
			if passedGlobalFence {
				e.globalWhere = append(e.globalWhere, e.renderPredicate(b.Predicate))
			} else {
				target := e.steps[len(e.steps)-1]
				e.inPattern = true
				target.where = append(target.where, e.renderPredicate(b.Predicate))
				e.inPattern = false
			}

		case ir.Backtrack:
			if len(open) > 0 {
				sc := open[len(open)-1]
				open = open[:len(open)-1]
				if sc.optional {
					e.spans = append(e.spans, optionalSpan{start: sc.stepIdx, end: len(e.steps) - 1, compound: sc.compound})
				}
			}

		case ir.GlobalOperationsStart:
			passedGlobalFence = true

		case ir.ConstructResult:
			e.buildReturn(b)
		}
	}

	query := e.renderProgram()
	return &backend.Result{
		QueryText:      query,
		InputMetadata:  e.paramMetas(),
		OutputMetadata: e.outputs,
	}, nil
}

func (e *emitter) newAlias(class string) string {
	n := e.counter[class]
	e.counter[class] = n + 1
	return fmt.Sprintf("%s___%d", class, n+1)
}

// renderPatternOnly renders just the `MATCH {...}.out('e'){...}...` clause
// over the current e.steps, with no WHERE/RETURN — the shared core both
// the single-pattern case and each UNIONALL branch use.
func (e *emitter) renderPatternOnly() string {
	var b strings.Builder
	b.WriteString("MATCH ")
	for i, st := range e.steps {
		if i > 0 {
			verb := "out"
			if st.dir == schema.In {
				verb = "in"
			}
			b.WriteString(fmt.Sprintf(".%s('%s')", verb, st.edge))
		}
		b.WriteString("{class: ")
		b.WriteString(st.class)
		b.WriteString(", as: ")
		b.WriteString(st.alias)
		if st.optional {
			b.WriteString(", optional: true")
		}
		if len(st.where) > 0 {
			b.WriteString(", where: (")
			b.WriteString(strings.Join(st.where, " AND "))
			b.WriteString(")")
		}
		b.WriteString("}")
		if i < len(e.steps)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// render produces the full query text for the (no top-level compound
// optional) case: one MATCH pattern plus WHERE/RETURN.
func (e *emitter) render() string {
	var b strings.Builder
	b.WriteString(e.renderPatternOnly())
	if len(e.globalWhere) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(e.globalWhere, " AND "))
	}
	b.WriteString("\nRETURN ")
	b.WriteString(e.renderReturn(nil))
	return b.String()
}

// renderReturn renders the projection list in source @output order,
// substituting null for any column whose backing alias is in excluded
// (the set of step aliases a UNIONALL branch elided).
func (e *emitter) renderReturn(excluded map[string]bool) string {
	cols := make([]string, 0, len(e.ret))
	for _, r := range e.ret {
		if r.alias != "" && excluded[r.alias] {
			cols = append(cols, "null AS `"+r.name+"`")
			continue
		}
		cols = append(cols, r.text+" AS `"+r.name+"`")
	}
	return strings.Join(cols, ", ")
}

// buildReturn walks the output table in the order @output directives
// appeared in the source, so the projection list and OutputMetadata are
// byte-deterministic and match the caller's reading order.
func (e *emitter) buildReturn(c ir.ConstructResult) {
	for _, oc := range e.meta.Outputs {
		expr, ok := c.Outputs[oc.Name]
		if !ok {
			continue
		}
		e.ret = append(e.ret, retEntry{
			name:  oc.Name,
			text:  e.renderPredicate(expr),
			alias: e.exprAlias(expr),
		})
		e.outputs = append(e.outputs, backend.ColumnMeta{
			Name:       oc.Name,
			ScalarType: oc.ScalarType,
			IsList:     isFoldedExpr(expr),
			Nullable:   oc.InsideOptional,
		})
	}
}

func (e *emitter) exprAlias(expr ir.Expression) string {
	switch v := expr.(type) {
	case ir.TaggedValue:
		return e.aliasOf[v.Location]
	case ir.FoldedField:
		return e.foldAlias(v.FoldLocation)
	case ir.FoldCount:
		return e.foldAlias(v.FoldLocation)
	}
	return ""
}

func isFoldedExpr(expr ir.Expression) bool {
	_, ok := expr.(ir.FoldedField)
	return ok
}

func (e *emitter) paramMetas() []backend.ParamMeta {
	out := make([]backend.ParamMeta, 0, len(e.paramOrder))
	for _, name := range e.paramOrder {
		out = append(out, backend.ParamMeta{Name: name, ScalarType: e.params[name]})
	}
	return out
}
