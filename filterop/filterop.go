// Package filterop is the registry of @filter operator signatures:
// how many arguments each takes, what scalar families they
// accept, and whether they compare against a collection-typed field
// rather than a scalar. Semantic analysis (compiler's buildFilter) and
// ir.Builder look operators up here; the MATCH backend's emission table
// (backend/match) switches on the same operator names without importing
// this package.
package filterop

import "github.com/traverseql/gqlc/schema"

// Arity describes how many value arguments an operator's @filter(value:
// [...]) list must carry.
type Arity int

const (
	Arity0 Arity = iota // is_null, is_not_null
	Arity1              // =, !=, <, <=, >, >=, has_substring, ...
	Arity2              // between
	ArityN              // in_collection, not_in_collection, intersects
)

// Family restricts which scalar kinds an operator may be applied to.
type Family int

const (
	AnyScalar Family = iota
	Orderable        // temporal/decimal/numeric scalars: <, <=, >, >=, between
	TextScalar
	CollectionScalar // the field itself is list-typed: intersects/contains
)

type Op struct {
	Name   string
	Arity  Arity
	Family Family
}

var registry = map[string]*Op{
	"=":                 {"=", Arity1, AnyScalar},
	"!=":                {"!=", Arity1, AnyScalar},
	"<":                 {"<", Arity1, Orderable},
	"<=":                {"<=", Arity1, Orderable},
	">":                 {">", Arity1, Orderable},
	">=":                {">=", Arity1, Orderable},
	"between":           {"between", Arity2, Orderable},
	"in_collection":     {"in_collection", ArityN, AnyScalar},
	"not_in_collection": {"not_in_collection", ArityN, AnyScalar},
	"contains":          {"contains", Arity1, CollectionScalar},
	"not_contains":      {"not_contains", Arity1, CollectionScalar},
	"intersects":        {"intersects", ArityN, CollectionScalar},
	"has_substring":     {"has_substring", Arity1, TextScalar},
	"starts_with":       {"starts_with", Arity1, TextScalar},
	"ends_with":         {"ends_with", Arity1, TextScalar},
	// has_edge_degree is valid only as a @filter on a vertex field
	// (compiler.buildFilter enforces this); AnyScalar here just means
	// FamilyMatches imposes no scalar-type restriction of its own, since
	// the check that matters for this operator isn't a scalar family.
	"has_edge_degree": {"has_edge_degree", Arity1, AnyScalar},
	"is_null":         {"is_null", Arity0, AnyScalar},
	"is_not_null":     {"is_not_null", Arity0, AnyScalar},
	"name_or_alias":   {"name_or_alias", Arity1, TextScalar},
}

func Lookup(name string) *Op { return registry[name] }

// ArityMatches reports whether n supplied value-list elements satisfy
// the operator's declared arity.
func (o *Op) ArityMatches(n int) bool {
	switch o.Arity {
	case Arity0:
		return n == 0
	case Arity1:
		return n == 1
	case Arity2:
		return n == 2
	case ArityN:
		return n >= 1
	}
	return false
}

// FamilyMatches reports whether the operator may be applied to a
// property of the given scalar type.
func (o *Op) FamilyMatches(t schema.ScalarType) bool {
	switch o.Family {
	case AnyScalar, CollectionScalar:
		return true
	case Orderable:
		switch t {
		case schema.IntType, schema.FloatType, schema.DateType, schema.DateTimeType, schema.DecimalType:
			return true
		}
		return false
	case TextScalar:
		return t == schema.StringType || t == schema.IDType
	}
	return false
}
