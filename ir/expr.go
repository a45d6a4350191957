package ir

import "github.com/traverseql/gqlc/schema"

// Expression is the closed sum type of value-producing nodes that can
// appear inside a Block. Every constructor
// below is the only way to build that variant; a type switch over
// Expression is exhaustive.
type Expression interface {
	isExpression()
}

// Literal is a value baked directly into the query at compile time
// (anything in a @filter value list that ClassifyValue resolves to
// directives.Literal).
type Literal struct {
	Value      interface{}
	ScalarType schema.ScalarType
}

// Variable is a runtime parameter reference ("$name" in a @filter value
// list), bound from Compile's params map.
type Variable struct {
	Name       string
	ScalarType schema.ScalarType
}

// TaggedValue reads the value of FieldName as it stood at Location,
// satisfying a cross-scope @tag/@filter(value: ["%tag"]) reference.
// Because a cross-scope tag can only reference an already-visited
// Location, every TaggedValue's Location already has a MarkLocation block
// earlier in the program by construction.
type TaggedValue struct {
	Location   Location
	FieldName  string
	ScalarType schema.ScalarType
}

// LocalField reads FieldName on the current (innermost) scope.
type LocalField struct {
	FieldName  string
	ScalarType schema.ScalarType
}

// FoldedField reads the collected array of FieldName across every row of
// the fold rooted at FoldLocation — the value a ConstructResult block
// binds to an @output(out_name) inside a @fold scope.
type FoldedField struct {
	FoldLocation Location
	FieldName    string
	ScalarType   schema.ScalarType
}

// FoldCount reads the cardinality of the fold rooted at FoldLocation —
// what a `_x_count` meta-field resolves to.
type FoldCount struct {
	FoldLocation Location
}

// EdgeDegree reads the cardinality of the traversal that reached
// Location — what a vertex field's @filter(op_name: "has_edge_degree")
// resolves to. Unlike FoldCount it isn't collecting
// rows into an array; it measures the same edge a plain Traverse/Recurse
// already bound, so it needs no Fold scope of its own.
type EdgeDegree struct {
	Location Location
}

// BinaryOp applies Op ("=", "!=", "<", "<=", ">", ">=", "contains",
// "has_substring", "starts_with", "ends_with", "intersects", ...) to
// Left and Right.
type BinaryOp struct {
	Op          string
	Left, Right Expression
}

// List is a literal/variable/tag list, e.g. the operand of
// in_collection or between.
type List struct {
	Items []Expression
}

// IsNull tests Value for nullity (is_null / is_not_null, the latter
// wrapped in a Not).
type IsNull struct {
	Value Expression
}

// Not negates a boolean-valued Expression.
type Not struct {
	Value Expression
}

// Ternary is a conditional Expression: IfTrue when Cond holds, else
// IfFalse. No pass or backend in this module constructs one.
type Ternary struct {
	Cond, IfTrue, IfFalse Expression
}

func (Literal) isExpression()     {}
func (Variable) isExpression()    {}
func (TaggedValue) isExpression() {}
func (LocalField) isExpression()  {}
func (FoldedField) isExpression() {}
func (FoldCount) isExpression()   {}
func (EdgeDegree) isExpression()  {}
func (BinaryOp) isExpression()    {}
func (List) isExpression()        {}
func (IsNull) isExpression()      {}
func (Not) isExpression()         {}
func (Ternary) isExpression()     {}
