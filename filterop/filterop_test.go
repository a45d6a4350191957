package filterop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/filterop"
	"github.com/traverseql/gqlc/schema"
)

func TestLookupKnowsEveryOperator(t *testing.T) {
	ops := []string{
		"=", "!=", "<", "<=", ">", ">=", "between",
		"in_collection", "not_in_collection", "contains", "not_contains",
		"intersects", "has_substring", "starts_with", "ends_with",
		"has_edge_degree", "is_null", "is_not_null", "name_or_alias",
	}
	for _, name := range ops {
		assert.NotNil(t, filterop.Lookup(name), name)
	}
	assert.Nil(t, filterop.Lookup("like"))
}

func TestArityMatches(t *testing.T) {
	assert.True(t, filterop.Lookup("is_null").ArityMatches(0))
	assert.False(t, filterop.Lookup("is_null").ArityMatches(1))

	assert.True(t, filterop.Lookup("=").ArityMatches(1))
	assert.False(t, filterop.Lookup("=").ArityMatches(2))

	assert.True(t, filterop.Lookup("between").ArityMatches(2))
	assert.False(t, filterop.Lookup("between").ArityMatches(1))

	assert.True(t, filterop.Lookup("in_collection").ArityMatches(1))
	assert.True(t, filterop.Lookup("in_collection").ArityMatches(5))
	assert.False(t, filterop.Lookup("in_collection").ArityMatches(0))
}

func TestFamilyMatches(t *testing.T) {
	lt := filterop.Lookup("<")
	assert.True(t, lt.FamilyMatches(schema.IntType))
	assert.True(t, lt.FamilyMatches(schema.DateType))
	assert.True(t, lt.FamilyMatches(schema.DecimalType))
	assert.False(t, lt.FamilyMatches(schema.StringType))
	assert.False(t, lt.FamilyMatches(schema.BooleanType))

	sub := filterop.Lookup("has_substring")
	assert.True(t, sub.FamilyMatches(schema.StringType))
	assert.True(t, sub.FamilyMatches(schema.IDType))
	assert.False(t, sub.FamilyMatches(schema.IntType))

	eq := filterop.Lookup("=")
	assert.True(t, eq.FamilyMatches(schema.BooleanType))
	assert.True(t, eq.FamilyMatches(schema.DateTimeType))
}
