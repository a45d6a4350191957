// Package cypher compiles ir.Program into a Cypher pattern-match query,
// in either inline-literal or
// named-placeholder parameter mode depending on InlineParams.
package cypher

import (
	"fmt"
	"strings"
	"time"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/schema"
)

// Options configures cypher emission.
type Options struct {
	// InlineParams renders parameter values as Cypher literals instead
	// of named placeholders ($name), for clients that cannot bind
	// parameters. Production callers should leave this false so
	// InputMetadata stays accurate (inlined params aren't reported
	// there, since the caller no longer needs to bind them).
	InlineParams bool

	// Params supplies the runtime values inlined when InlineParams is
	// set. gqlc.Compile populates it from its own params argument; a
	// referenced parameter missing from it falls back to a $name
	// placeholder.
	Params map[string]interface{}
}

type emitter struct {
	opts    Options
	meta    *ir.Metadata
	aliasOf map[ir.Location]string
	counter int
	path    []string // rendered (alias:Label)-[:EDGE]->(alias:Label) segments
	where   []string
	ret     []string
	outputs []backend.ColumnMeta

	params     map[string]schema.ScalarType
	paramOrder []string
}

// Emit lowers p into a Cypher query string.
func Emit(p *ir.Program, s *schema.Schema, opts Options) (*backend.Result, error) {
	e := &emitter{
		opts:    opts,
		meta:    p.Metadata,
		aliasOf: map[ir.Location]string{},
		params:  map[string]schema.ScalarType{},
	}

	currentAlias := ""
	// broken marks that the single pattern chain was interrupted (an
	// optional/fold subtree closed), so the next traversal must restart
	// with a fresh MATCH clause anchored at currentAlias instead of
	// extending the previous segment.
	broken := false
	var foldReturn []string
	for i := 0; i < len(p.Blocks); i++ {
		switch b := p.Blocks[i].(type) {
		case ir.QueryRoot:
			currentAlias = e.newAlias(b.Type)
			e.path = append(e.path, fmt.Sprintf("(%s:%s)", currentAlias, b.Type))
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = currentAlias
				}
			}

		case ir.Traverse:
			alias := e.newAlias(b.TargetType)
			arrow := "-[:%s]->"
			if b.Direction == schema.In {
				arrow = "<-[:%s]-"
			}
			seg := fmt.Sprintf(arrow, b.EdgeName) + fmt.Sprintf("(%s:%s)", alias, b.TargetType)
			switch {
			case b.Optional:
				seg = fmt.Sprintf("\nOPTIONAL MATCH (%s)", currentAlias) + seg
			case broken:
				seg = fmt.Sprintf("\nMATCH (%s)", currentAlias) + seg
				broken = false
			}
			e.path = append(e.path, seg)
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = alias
				}
			}
			currentAlias = alias

		case ir.Recurse:
			alias := e.newAlias(b.TargetType)
			arrow := fmt.Sprintf("-[:%s*1..%d]->", b.EdgeName, b.Depth)
			if b.Direction == schema.In {
				arrow = fmt.Sprintf("<-[:%s*1..%d]-", b.EdgeName, b.Depth)
			}
			seg := arrow + fmt.Sprintf("(%s:%s)", alias, b.TargetType)
			if broken {
				seg = fmt.Sprintf("\nMATCH (%s)", currentAlias) + seg
				broken = false
			}
			e.path = append(e.path, seg)
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = alias
				}
			}
			currentAlias = alias

		case ir.Fold:
			// A fold collects its rows with collect()/count() in the
			// RETURN clause, so its traversal must not eliminate outer
			// rows: it always renders as its own OPTIONAL MATCH chain.
			alias := e.newAlias(b.TargetType)
			arrow := "-[:%s]->"
			if b.Direction == schema.In {
				arrow = "<-[:%s]-"
			}
			seg := fmt.Sprintf("\nOPTIONAL MATCH (%s)", currentAlias) +
				fmt.Sprintf(arrow, b.EdgeName) + fmt.Sprintf("(%s:%s)", alias, b.TargetType)
			e.path = append(e.path, seg)
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = alias
				}
			}
			foldReturn = append(foldReturn, currentAlias)
			currentAlias = alias

		case ir.Unfold:
			if n := len(foldReturn); n > 0 {
				currentAlias = foldReturn[n-1]
				foldReturn = foldReturn[:n-1]
			}
			broken = true

		case ir.Backtrack:
			if a, ok := e.aliasOf[b.Location]; ok {
				currentAlias = a
			}
			broken = true

		case ir.CoerceType:
			// Cypher expresses coercion as an additional label on the
			// same node rather than a new pattern segment.
			if len(e.path) > 0 {
				e.path[len(e.path)-1] = strings.Replace(e.path[len(e.path)-1], ":"+b.TargetType, "", 1) + fmt.Sprintf(":%s", b.TargetType)
			}

		case ir.Filter:
			e.where = append(e.where, e.renderPredicate(b.Predicate, currentAlias))

		case ir.ConstructResult:
			e.buildReturn(b)
		}
	}

	var b strings.Builder
	b.WriteString("MATCH ")
	b.WriteString(strings.Join(e.path, ""))
	if len(e.where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(e.where, " AND "))
	}
	b.WriteString("\nRETURN ")
	b.WriteString(strings.Join(e.ret, ", "))

	return &backend.Result{
		QueryText:      b.String(),
		InputMetadata:  e.paramMetas(),
		OutputMetadata: e.outputs,
	}, nil
}

func (e *emitter) newAlias(typeName string) string {
	e.counter++
	return fmt.Sprintf("n%d", e.counter)
}

// buildReturn walks the output table in source @output order so the
// RETURN clause and OutputMetadata are byte-deterministic.
func (e *emitter) buildReturn(c ir.ConstructResult) {
	for _, oc := range e.meta.Outputs {
		expr, ok := c.Outputs[oc.Name]
		if !ok {
			continue
		}
		e.ret = append(e.ret, e.renderPredicate(expr, "")+" AS "+oc.Name)
		e.outputs = append(e.outputs, backend.ColumnMeta{
			Name:       oc.Name,
			ScalarType: oc.ScalarType,
			IsList:     oc.InsideFold && oc.FieldName != "_x_count",
			Nullable:   oc.InsideOptional,
		})
	}
}

func (e *emitter) renderPredicate(expr ir.Expression, currentAlias string) string {
	switch v := expr.(type) {
	case ir.LocalField:
		return currentAlias + "." + v.FieldName
	case ir.TaggedValue:
		return e.aliasOf[v.Location] + "." + v.FieldName
	case ir.FoldedField:
		return "collect(" + e.aliasOf[v.FoldLocation] + "." + v.FieldName + ")"
	case ir.FoldCount:
		return "count(" + e.aliasOf[v.FoldLocation] + ")"
	case ir.EdgeDegree:
		return "size((" + e.aliasOf[v.Location] + ")--())"
	case ir.Literal:
		return literalText(v.Value, v.ScalarType)
	case ir.Variable:
		if e.opts.InlineParams {
			if val, ok := e.opts.Params[v.Name]; ok {
				return literalText(val, v.ScalarType)
			}
		}
		e.recordParam(v.Name, v.ScalarType)
		return "$" + v.Name
	case ir.IsNull:
		return e.renderPredicate(v.Value, currentAlias) + " IS NULL"
	case ir.Not:
		return "NOT (" + e.renderPredicate(v.Value, currentAlias) + ")"
	case ir.List:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = e.renderPredicate(it, currentAlias)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case ir.BinaryOp:
		return e.renderBinary(v, currentAlias)
	}
	return ""
}

func (e *emitter) renderBinary(v ir.BinaryOp, currentAlias string) string {
	left := e.renderPredicate(v.Left, currentAlias)
	switch v.Op {
	case "and":
		return "(" + left + " AND " + e.renderPredicate(v.Right, currentAlias) + ")"
	case "in_collection":
		return left + " IN " + e.renderPredicate(v.Right, currentAlias)
	case "has_substring":
		return left + " CONTAINS " + e.renderPredicate(v.Right, currentAlias)
	case "starts_with":
		return left + " STARTS WITH " + e.renderPredicate(v.Right, currentAlias)
	case "ends_with":
		return left + " ENDS WITH " + e.renderPredicate(v.Right, currentAlias)
	case "between":
		list := v.Right.(ir.List)
		return fmt.Sprintf("(%s >= %s AND %s <= %s)", left, e.renderPredicate(list.Items[0], currentAlias), left, e.renderPredicate(list.Items[1], currentAlias))
	case "has_edge_degree":
		return left + " = " + e.renderPredicate(v.Right, currentAlias)
	default:
		return left + " " + v.Op + " " + e.renderPredicate(v.Right, currentAlias)
	}
}

func literalText(v interface{}, t schema.ScalarType) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "\\'") + "'"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		if t == schema.DateTimeType {
			return "datetime('" + schema.SerializeDateTime(x) + "')"
		}
		return "date('" + schema.SerializeDate(x) + "')"
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
