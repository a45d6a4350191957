// Package relational compiles ir.Program into a squirrel SELECT
// builder: useful when the schema's
// concrete types map onto ordinary tables joined on foreign keys rather
// than a graph store. Folds and `_x_count` have no natural relational
// expression without a correlated subquery this backend doesn't attempt,
// so both are rejected with errors.NotSupportedByBackend — the
// documented scope limit for this target.
package relational

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/iancoleman/strcase"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/ir/rewrite"
	"github.com/traverseql/gqlc/schema"
)

type emitter struct {
	schema  *schema.Schema
	meta    *ir.Metadata
	query   sq.SelectBuilder
	aliasOf map[ir.Location]string
	counter int

	params     map[string]schema.ScalarType
	paramOrder []string
	outputs    []backend.ColumnMeta
}

// Emit lowers p into a squirrel SELECT builder. Recurse blocks are first
// unfolded into fixed-depth join chains via rewrite.UnfoldRecurse, since
// plain SQL has no bounded-depth recursive join primitive this builder
// targets (a recursive CTE would be the alternative, left to a future
// backend iteration).
func Emit(p *ir.Program, s *schema.Schema) (*backend.Result, error) {
	for _, blk := range p.Blocks {
		switch blk.(type) {
		case ir.Fold, ir.Unfold:
			return nil, errors.New(errors.NotSupportedByBackend, "relational backend does not support @fold")
		}
	}
	for _, blk := range p.Blocks {
		f, ok := blk.(ir.Filter)
		if !ok {
			continue
		}
		if containsExpr(f.Predicate, func(x ir.Expression) bool { _, ok := x.(ir.FoldCount); return ok }) {
			return nil, errors.New(errors.NotSupportedByBackend, "relational backend does not support _x_count")
		}
		if containsExpr(f.Predicate, func(x ir.Expression) bool { _, ok := x.(ir.EdgeDegree); return ok }) {
			return nil, errors.New(errors.NotSupportedByBackend, "relational backend does not support has_edge_degree")
		}
	}

	p = rewrite.UnfoldRecurse(p)

	e := &emitter{
		schema:  s,
		meta:    p.Metadata,
		aliasOf: map[ir.Location]string{},
		params:  map[string]schema.ScalarType{},
	}

	var rootType string
	for _, blk := range p.Blocks {
		if qr, ok := blk.(ir.QueryRoot); ok {
			rootType = qr.Type
			break
		}
	}
	rootAlias := e.newAlias(rootType)
	e.query = sq.Select().From(tableName(rootType) + " AS " + rootAlias)

	if i := firstMarkLocation(p.Blocks); i >= 0 {
		e.aliasOf[p.Blocks[i].(ir.MarkLocation).Location] = rootAlias
	}

	currentAlias := rootAlias
	for i := 0; i < len(p.Blocks); i++ {
		switch b := p.Blocks[i].(type) {
		case ir.Traverse:
			joinAlias := e.newAlias(b.TargetType)
			e.query = e.join(b, currentAlias, joinAlias)
			if i+1 < len(p.Blocks) {
				if ml, ok := p.Blocks[i+1].(ir.MarkLocation); ok {
					e.aliasOf[ml.Location] = joinAlias
				}
			}
			currentAlias = joinAlias

		case ir.Filter:
			e.query = e.query.Where(e.renderPredicate(b.Predicate, currentAlias))

		case ir.ConstructResult:
			e.buildSelect(b)
		}
	}

	return &backend.Result{
		Builder:        e.query,
		InputMetadata:  e.paramMetas(),
		OutputMetadata: e.outputs,
	}, nil
}

func (e *emitter) newAlias(typeName string) string {
	e.counter++
	return fmt.Sprintf("%s_%d", strcase.ToSnake(typeName), e.counter)
}

func tableName(typeName string) string { return strcase.ToSnake(typeName) + "s" }

func firstMarkLocation(blocks []ir.Block) int {
	for i, b := range blocks {
		if _, ok := b.(ir.MarkLocation); ok {
			return i
		}
	}
	return -1
}

// join adds a LEFT JOIN for a @optional traversal (so an absent match
// doesn't eliminate the outer row) or an INNER JOIN otherwise, following
// the schema's edge-name-as-foreign-key convention: <edge>_id on the
// source table referencing the target table's id column.
func (e *emitter) join(t ir.Traverse, from, to string) sq.SelectBuilder {
	fkCol := fmt.Sprintf("%s.%s_id", from, strcase.ToSnake(t.EdgeName))
	pkCol := to + ".id"
	cond := fmt.Sprintf("%s = %s", fkCol, pkCol)
	table := tableName(t.TargetType) + " AS " + to
	if t.Optional {
		return e.query.LeftJoin(table + " ON " + cond)
	}
	return e.query.Join(table + " ON " + cond)
}

// buildSelect walks the output table in source @output order so the
// column list and OutputMetadata are byte-deterministic.
func (e *emitter) buildSelect(c ir.ConstructResult) {
	for _, oc := range e.meta.Outputs {
		expr, ok := c.Outputs[oc.Name]
		if !ok {
			continue
		}
		e.query = e.query.Column(e.renderColumn(expr) + " AS " + oc.Name)
		e.outputs = append(e.outputs, backend.ColumnMeta{
			Name:       oc.Name,
			ScalarType: oc.ScalarType,
			Nullable:   oc.InsideOptional,
		})
	}
}

func (e *emitter) renderColumn(expr ir.Expression) string {
	switch v := expr.(type) {
	case ir.TaggedValue:
		return e.columnRef(v.Location, v.FieldName)
	default:
		return "NULL"
	}
}

// columnRef renders a located field reference. A location that
// rewrite.UnfoldRecurse expanded into a hop chain COALESCEs across
// every hop's alias: the joins are LEFT JOINs, so a row matched at an
// intermediate depth legitimately nulls out the deeper hops and its
// value must come from the shallowest hop that did match.
func (e *emitter) columnRef(loc ir.Location, fieldName string) string {
	col := strcase.ToSnake(fieldName)
	if chain, ok := e.meta.RecurseChains[loc]; ok && len(chain) > 1 {
		refs := make([]string, len(chain))
		for i, hop := range chain {
			refs[i] = e.aliasOf[hop] + "." + col
		}
		return "COALESCE(" + strings.Join(refs, ", ") + ")"
	}
	return e.aliasOf[loc] + "." + col
}

func (e *emitter) renderPredicate(expr ir.Expression, currentAlias string) string {
	switch v := expr.(type) {
	case ir.LocalField:
		return currentAlias + "." + strcase.ToSnake(v.FieldName)
	case ir.TaggedValue:
		return e.columnRef(v.Location, v.FieldName)
	case ir.Literal:
		return literalText(v)
	case ir.Variable:
		e.recordParam(v.Name, v.ScalarType)
		return ":" + v.Name
	case ir.List:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = e.renderPredicate(it, currentAlias)
		}
		return "(" + strings.Join(items, ", ") + ")"
	case ir.IsNull:
		return e.renderPredicate(v.Value, currentAlias) + " IS NULL"
	case ir.Not:
		return "NOT (" + e.renderPredicate(v.Value, currentAlias) + ")"
	case ir.Ternary:
		return fmt.Sprintf("CASE WHEN %s THEN %s ELSE %s END",
			e.renderPredicate(v.Cond, currentAlias),
			e.renderPredicate(v.IfTrue, currentAlias),
			e.renderPredicate(v.IfFalse, currentAlias))
	case ir.BinaryOp:
		return e.renderBinary(v, currentAlias)
	}
	return "1=1"
}

func (e *emitter) renderBinary(v ir.BinaryOp, currentAlias string) string {
	left := e.renderPredicate(v.Left, currentAlias)
	switch v.Op {
	case "and":
		return fmt.Sprintf("(%s AND %s)", left, e.renderPredicate(v.Right, currentAlias))
	case "between":
		list := v.Right.(ir.List)
		return fmt.Sprintf("(%s BETWEEN %s AND %s)", left,
			e.renderPredicate(list.Items[0], currentAlias), e.renderPredicate(list.Items[1], currentAlias))
	case "in_collection":
		return left + " IN " + e.renderPredicate(v.Right, currentAlias)
	case "has_substring":
		return fmt.Sprintf("%s LIKE '%%' || %s || '%%'", left, e.renderPredicate(v.Right, currentAlias))
	case "starts_with":
		return fmt.Sprintf("%s LIKE %s || '%%'", left, e.renderPredicate(v.Right, currentAlias))
	case "ends_with":
		return fmt.Sprintf("%s LIKE '%%' || %s", left, e.renderPredicate(v.Right, currentAlias))
	default:
		return fmt.Sprintf("(%s %s %s)", left, v.Op, e.renderPredicate(v.Right, currentAlias))
	}
}

func literalText(v ir.Literal) string {
	switch x := v.Value.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		if v.ScalarType == schema.DateTimeType {
			return "'" + schema.SerializeDateTime(x) + "'"
		}
		return "'" + schema.SerializeDate(x) + "'"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func containsExpr(expr ir.Expression, pred func(ir.Expression) bool) bool {
	if expr == nil {
		return false
	}
	if pred(expr) {
		return true
	}
	switch v := expr.(type) {
	case ir.BinaryOp:
		return containsExpr(v.Left, pred) || containsExpr(v.Right, pred)
	case ir.Not:
		return containsExpr(v.Value, pred)
	case ir.IsNull:
		return containsExpr(v.Value, pred)
	case ir.Ternary:
		return containsExpr(v.Cond, pred) || containsExpr(v.IfTrue, pred) || containsExpr(v.IfFalse, pred)
	case ir.List:
		for _, it := range v.Items {
			if containsExpr(it, pred) {
				return true
			}
		}
	}
	return false
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
