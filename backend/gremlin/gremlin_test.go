package gremlin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/backend/gremlin"
	"github.com/traverseql/gqlc/compiler"
	"github.com/traverseql/gqlc/internal/parser"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/ir/rewrite"
	"github.com/traverseql/gqlc/schema"
)

func animalSchema() *schema.Schema {
	s := schema.New()
	s.AddObject("Animal").
		Property("name", schema.StringType).
		Property("net_worth", schema.DecimalType).
		Vertex("out_Animal_ParentOf", "Animal", schema.Out)
	if err := s.Link(); err != nil {
		panic(err)
	}
	return s
}

func emit(t *testing.T, query string) *backend.Result {
	t.Helper()
	s := animalSchema()
	doc, perr := parser.Parse(query)
	assert.Nil(t, perr)
	q, errs := compiler.Analyze(s, doc)
	assert.Empty(t, errs)
	prog, err := ir.NewBuilder(s).Build(q)
	assert.NoError(t, err)
	prog = rewrite.Run(prog)
	result, err := gremlin.Emit(prog, s)
	assert.NoError(t, err)
	return result
}

func TestEmitSimpleTraversal(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
		}
	}`)
	assert.Equal(t, "g.V().hasLabel('Animal').project('animal_name').by(__.values('name'))", result.QueryText)
}

func TestEmitEqualityFilterUsesHasStep(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @filter(op_name: "=", value: ["Hedwig"]) @output(out_name: "animal_name")
		}
	}`)
	assert.Contains(t, result.QueryText, "has('name', eq('Hedwig'))")
}

func TestEmitComparisonAndMembershipPredicates(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @filter(op_name: "in_collection", value: ["$names"]) @output(out_name: "animal_name")
			net_worth @filter(op_name: ">=", value: ["10.5"])
		}
	}`)
	assert.Contains(t, result.QueryText, "has('name', within(names))")
	assert.Contains(t, result.QueryText, "has('net_worth', gte(10.5))")
	assert.Len(t, result.InputMetadata, 1)
	assert.Equal(t, "names", result.InputMetadata[0].Name)
}

func TestEmitIsNullFilters(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @filter(op_name: "is_null", value: []) @output(out_name: "animal_name")
			net_worth @filter(op_name: "is_not_null", value: [])
		}
	}`)
	assert.Contains(t, result.QueryText, "hasNot('name')")
	assert.Contains(t, result.QueryText, "has('net_worth')")
}

func TestEmitTraversalVerbs(t *testing.T) {
	result := emit(t, `{
		Animal {
			out_Animal_ParentOf {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	assert.Contains(t, result.QueryText, ".out('Animal_ParentOf')")
}

func TestEmitRecurseUsesRepeatTimes(t *testing.T) {
	result := emit(t, `{
		Animal {
			out_Animal_ParentOf @recurse(depth: 3) {
				name @output(out_name: "ancestor_name")
			}
		}
	}`)
	assert.Contains(t, result.QueryText, "repeat(__.out('Animal_ParentOf')).times(3).emit()")
}

func TestEmitOptionalWrapsStep(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	assert.Contains(t, result.QueryText, "optional(__.out('Animal_ParentOf'))")
}
