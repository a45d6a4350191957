package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/schema"
)

// renderPredicate is the filter emission table: one
// case per Expression variant, keyed the same way filterop.registry
// keys semantic analysis, so the two can't drift on which operator
// names exist.
func (e *emitter) renderPredicate(expr ir.Expression) string {
	switch v := expr.(type) {
	case ir.Literal:
		return literalText(v)
	case ir.Variable:
		e.recordParam(v.Name, v.ScalarType)
		return "{" + v.Name + "}"
	case ir.LocalField:
		if e.inPattern {
			return v.FieldName
		}
		return "$matched." + v.FieldName
	case ir.TaggedValue:
		alias := e.aliasOf[v.Location]
		if alias == "" {
			return "$matched." + v.FieldName
		}
		if e.inPattern {
			return "$matched." + alias + "." + v.FieldName
		}
		return alias + "." + v.FieldName
	case ir.FoldedField:
		return fmt.Sprintf("$matched.%s.%s", e.foldAlias(v.FoldLocation), v.FieldName)
	case ir.FoldCount:
		return fmt.Sprintf("%s.size()", e.foldAlias(v.FoldLocation))
	// (foldAlias returns the fold step's recorded alias, or $matched if
	// the location was never visited; see fold.go.)
	case ir.EdgeDegree:
		alias := e.aliasOf[v.Location]
		if alias == "" {
			alias = "$matched"
		}
		return alias
	case ir.List:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = e.renderPredicate(it)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case ir.IsNull:
		return e.renderPredicate(v.Value) + " IS NULL"
	case ir.Not:
		return "NOT (" + e.renderPredicate(v.Value) + ")"
	case ir.BinaryOp:
		return e.renderBinary(v)
	case ir.Ternary:
		return fmt.Sprintf("IF(%s, %s, %s)", e.renderPredicate(v.Cond), e.renderPredicate(v.IfTrue), e.renderPredicate(v.IfFalse))
	}
	return ""
}

func (e *emitter) renderBinary(v ir.BinaryOp) string {
	left := e.renderPredicate(v.Left)
	switch v.Op {
	case "and":
		return "(" + left + " AND " + e.renderPredicate(v.Right) + ")"
	case "between":
		list := v.Right.(ir.List)
		return fmt.Sprintf("(%s BETWEEN %s AND %s)", left, e.renderPredicate(list.Items[0]), e.renderPredicate(list.Items[1]))
	case "in_collection":
		return left + " IN " + e.renderPredicate(v.Right)
	case "intersects":
		return left + " INTERSECTS " + e.renderPredicate(v.Right)
	case "contains":
		return left + " CONTAINS " + e.renderPredicate(v.Right)
	case "has_substring":
		return left + ".indexOf(" + e.renderPredicate(v.Right) + ") > -1"
	case "starts_with":
		return left + ".startsWith(" + e.renderPredicate(v.Right) + ")"
	case "ends_with":
		return left + ".endsWith(" + e.renderPredicate(v.Right) + ")"
	case "has_edge_degree":
		// edge.size() = n, with edge IS null special-cased for n=0 — an edge that doesn't exist at all binds its
		// alias to null rather than an empty collection.
		if lit, ok := v.Right.(ir.Literal); ok {
			if n, ok := lit.Value.(int64); ok && n == 0 {
				return left + " IS null"
			}
		}
		return left + ".size() = " + e.renderPredicate(v.Right)
	case "name_or_alias":
		return "(" + left + " = " + e.renderPredicate(v.Right) + " OR " + left + "_alias CONTAINS " + e.renderPredicate(v.Right) + ")"
	default:
		return left + " " + v.Op + " " + e.renderPredicate(v.Right)
	}
}

func (e *emitter) recordParam(name string, t schema.ScalarType) {
	if _, ok := e.params[name]; ok {
		return
	}
	e.params[name] = t
	e.paramOrder = append(e.paramOrder, name)
}

// literalText serializes a compile-time literal into the dialect,
// formatting temporal values bit-exactly per their scalar type rather
// than Go's default time.Time rendering.
func literalText(v ir.Literal) string {
	switch x := v.Value.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "\\'") + "'"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		if v.ScalarType == schema.DateTimeType {
			return "date('" + schema.SerializeDateTime(x) + "')"
		}
		return "date('" + schema.SerializeDate(x) + "')"
	default:
		return fmt.Sprintf("%v", x)
	}
}
