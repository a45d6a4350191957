// Package gremlin compiles ir.Program into a Gremlin traversal string.
// Output completeness is not
// guaranteed: Gremlin's `valueMap`/`project` steps can't express the
// same "optional branch contributes null columns rather than dropping
// the row" semantics the MATCH backend gets from OPTIONAL MATCH, so a
// query mixing @optional and multiple @output columns across branches
// may produce a valid but lossy traversal. This is documented, not
// silently worked around.
package gremlin

import (
	"fmt"
	"strings"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/schema"
)

type emitter struct {
	meta       *ir.Metadata
	steps      []string
	params     map[string]schema.ScalarType
	paramOrder []string
	outputs    []backend.ColumnMeta
}

// Emit lowers p into a single Gremlin traversal string rooted at g.V().
func Emit(p *ir.Program, s *schema.Schema) (*backend.Result, error) {
	e := &emitter{meta: p.Metadata, params: map[string]schema.ScalarType{}}

	for _, blk := range p.Blocks {
		switch b := blk.(type) {
		case ir.QueryRoot:
			e.steps = append(e.steps, fmt.Sprintf("hasLabel('%s')", b.Type))
		case ir.Traverse:
			verb := "out"
			if b.Direction == schema.In {
				verb = "in"
			}
			step := fmt.Sprintf("%s('%s')", verb, b.EdgeName)
			if b.Optional {
				step = fmt.Sprintf("optional(__.%s)", step)
			}
			e.steps = append(e.steps, step)
		case ir.Recurse:
			verb := "out"
			if b.Direction == schema.In {
				verb = "in"
			}
			e.steps = append(e.steps, fmt.Sprintf("repeat(__.%s('%s')).times(%d).emit()", verb, b.EdgeName, b.Depth))
		case ir.Fold:
			verb := "out"
			if b.Direction == schema.In {
				verb = "in"
			}
			e.steps = append(e.steps, fmt.Sprintf("fold().unfold().%s('%s')", verb, b.EdgeName))
		case ir.Unfold:
			// no-op marker; fold/unfold bracket is flattened into a single
			// fold() step pair above since Gremlin's fold()/unfold() steps
			// don't nest the same way ir.Fold/ir.Unfold scope does.
		case ir.CoerceType:
			e.steps = append(e.steps, fmt.Sprintf("hasLabel('%s')", b.TargetType))
		case ir.Filter:
			e.steps = append(e.steps, e.renderFilter(b.Predicate))
		case ir.ConstructResult:
			e.buildProject(b)
		}
	}

	text := "g.V()." + strings.Join(e.steps, ".")
	return &backend.Result{
		QueryText:      text,
		InputMetadata:  e.paramMetas(),
		OutputMetadata: e.outputs,
	}, nil
}

// buildProject walks the output table in source @output order so the
// project() step and OutputMetadata are byte-deterministic.
func (e *emitter) buildProject(c ir.ConstructResult) {
	var names []string
	var exprs []string
	for _, oc := range e.meta.Outputs {
		expr, ok := c.Outputs[oc.Name]
		if !ok {
			continue
		}
		names = append(names, oc.Name)
		exprs = append(exprs, fmt.Sprintf("__.%s", e.renderPredicate(expr)))
		e.outputs = append(e.outputs, backend.ColumnMeta{
			Name:       oc.Name,
			ScalarType: oc.ScalarType,
			IsList:     oc.InsideFold && oc.FieldName != "_x_count",
			Nullable:   oc.InsideOptional,
		})
	}
	if len(names) == 0 {
		return
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("'%s'", n)
	}
	e.steps = append(e.steps, fmt.Sprintf("project(%s).by(%s)", strings.Join(quoted, ", "), strings.Join(exprs, ").by(")))
}

// renderFilter emits one Filter block as a traversal step: a has() step
// with a Gremlin predicate where the shape allows it, falling back to a
// where() step for anything has() can't express.
func (e *emitter) renderFilter(p ir.Expression) string {
	switch v := p.(type) {
	case ir.BinaryOp:
		if v.Op == "and" {
			return e.renderFilter(v.Left) + "." + e.renderFilter(v.Right)
		}
		if v.Op == "has_edge_degree" {
			return fmt.Sprintf("where(__.count(local).is(%s))", e.renderPredicate(v.Right))
		}
		if lf, ok := v.Left.(ir.LocalField); ok {
			if pred := e.gremlinPredicate(v); pred != "" {
				return fmt.Sprintf("has('%s', %s)", lf.FieldName, pred)
			}
		}
	case ir.IsNull:
		if lf, ok := v.Value.(ir.LocalField); ok {
			return fmt.Sprintf("hasNot('%s')", lf.FieldName)
		}
	case ir.Not:
		if isn, ok := v.Value.(ir.IsNull); ok {
			if lf, ok := isn.Value.(ir.LocalField); ok {
				return fmt.Sprintf("has('%s')", lf.FieldName)
			}
		}
		if bo, ok := v.Value.(ir.BinaryOp); ok && bo.Op == "in_collection" {
			if lf, ok := bo.Left.(ir.LocalField); ok {
				return fmt.Sprintf("has('%s', without(%s))", lf.FieldName, e.renderPredicate(bo.Right))
			}
		}
	}
	return "where(" + e.renderPredicate(p) + ")"
}

// gremlinPredicate maps a filter operator onto the matching Gremlin
// predicate, or "" when no direct predicate exists.
func (e *emitter) gremlinPredicate(v ir.BinaryOp) string {
	switch v.Op {
	case "=":
		return "eq(" + e.renderPredicate(v.Right) + ")"
	case "!=":
		return "neq(" + e.renderPredicate(v.Right) + ")"
	case "<":
		return "lt(" + e.renderPredicate(v.Right) + ")"
	case "<=":
		return "lte(" + e.renderPredicate(v.Right) + ")"
	case ">":
		return "gt(" + e.renderPredicate(v.Right) + ")"
	case ">=":
		return "gte(" + e.renderPredicate(v.Right) + ")"
	case "in_collection", "intersects", "contains":
		return "within(" + e.renderPredicate(v.Right) + ")"
	case "between":
		list := v.Right.(ir.List)
		return "between(" + e.renderPredicate(list.Items[0]) + ", " + e.renderPredicate(list.Items[1]) + ")"
	case "has_substring":
		return "containing(" + e.renderPredicate(v.Right) + ")"
	case "starts_with":
		return "startingWith(" + e.renderPredicate(v.Right) + ")"
	case "ends_with":
		return "endingWith(" + e.renderPredicate(v.Right) + ")"
	}
	return ""
}

func (e *emitter) renderPredicate(expr ir.Expression) string {
	switch v := expr.(type) {
	case ir.LocalField:
		return fmt.Sprintf("values('%s')", v.FieldName)
	case ir.TaggedValue:
		return fmt.Sprintf("values('%s')", v.FieldName)
	case ir.FoldedField:
		return fmt.Sprintf("values('%s').fold()", v.FieldName)
	case ir.FoldCount:
		return "count(local)"
	case ir.EdgeDegree:
		return "count(local)"
	case ir.Literal:
		return literalText(v.Value)
	case ir.Variable:
		e.recordParam(v.Name, v.ScalarType)
		return v.Name
	case ir.IsNull:
		return e.renderPredicate(v.Value)
	case ir.Not:
		return "without(" + e.renderPredicate(v.Value) + ")"
	case ir.BinaryOp:
		return e.renderPredicate(v.Left) + ", " + e.renderPredicate(v.Right)
	case ir.List:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = e.renderPredicate(it)
		}
		return strings.Join(items, ", ")
	}
	return ""
}

func literalText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "\\'") + "'"
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func (e *emitter) recordParam(name string, t schema.ScalarType) {
	if _, ok := e.params[name]; ok {
		return
	}
	e.params[name] = t
	e.paramOrder = append(e.paramOrder, name)
}

func (e *emitter) paramMetas() []backend.ParamMeta {
	out := make([]backend.ParamMeta, 0, len(e.paramOrder))
	for _, name := range e.paramOrder {
		out = append(out, backend.ParamMeta{Name: name, ScalarType: e.params[name]})
	}
	return out
}
