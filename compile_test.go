package gqlc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	gqlc "github.com/traverseql/gqlc"
	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/schema"
)

func animalSchema() *schema.Schema {
	s := schema.New()
	s.AddObject("Animal").
		Property("name", schema.StringType).
		Property("net_worth", schema.DecimalType).
		Vertex("out_Animal_ParentOf", "Animal", schema.Out).
		Vertex("in_Animal_ParentOf", "Animal", schema.In)
	if err := s.Link(); err != nil {
		panic(err)
	}
	return s
}

func TestCompileToMatch(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @output(out_name: "animal_name")
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "RETURN")
}

func TestCompileToCypher(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @output(out_name: "animal_name")
		}
	}`, nil, backend.Cypher)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "MATCH (n1:Animal)")
}

func TestCompileToRelationalRejectsFold(t *testing.T) {
	s := animalSchema()
	_, err := gqlc.Compile(s, `{
		Animal {
			out_Animal_ParentOf @fold {
				name @output(out_name: "sibling_names")
			}
		}
	}`, nil, backend.Relational)
	assert.Error(t, err)
}

func TestCompileParameterizedFilterToMatch(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @filter(op_name: "=", value: ["$wanted"]) @output(out_name: "animal_name")
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "where: (name = {wanted})")
	assert.Len(t, result.InputMetadata, 1)
	assert.Equal(t, "wanted", result.InputMetadata[0].Name)
	assert.Equal(t, schema.StringType, result.InputMetadata[0].ScalarType)
}

func TestCompileTaggedCrossScopeFilter(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			net_worth @tag(tag_name: "parent_wealth")
			name @output(out_name: "animal_name")
			out_Animal_ParentOf {
				net_worth @filter(op_name: ">", value: ["%parent_wealth"])
				name @output(out_name: "parent_name")
			}
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "where: (net_worth > $matched.Animal___1.net_worth)")
}

func TestCompileSameScopeFilterBeforeTag(t *testing.T) {
	// Rule 4 allows a filter to precede the tag it references when both
	// live in the same scope; the lowered predicate must still resolve
	// the tag's binding rather than an empty location.
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @filter(op_name: "=", value: ["%own_name"]) @output(out_name: "animal_name")
			net_worth @tag(tag_name: "own_name")
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "$matched.Animal___1.net_worth")
}

func TestCompileFoldWithCount(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @fold {
				_x_count @output(out_name: "n_parents")
				name @output(out_name: "parent_names")
			}
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "Animal___2.size() AS `n_parents`")

	byName := map[string]backend.ColumnMeta{}
	for _, c := range result.OutputMetadata {
		byName[c.Name] = c
	}
	assert.Equal(t, schema.IntType, byName["n_parents"].ScalarType)
	assert.False(t, byName["n_parents"].IsList)
	assert.True(t, byName["parent_names"].IsList)
}

func TestCompileCountFilterIsGlobal(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @fold {
				_x_count @filter(op_name: ">=", value: ["$min_parents"])
				name @output(out_name: "parent_names")
			}
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	assert.Contains(t, result.QueryText, "WHERE Animal___2.size() >= {min_parents}")
}

func TestCompileOutputNamesAppearOnceInMetadata(t *testing.T) {
	s := animalSchema()
	result, err := gqlc.Compile(s, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf {
				name @output(out_name: "parent_name")
			}
		}
	}`, nil, backend.MATCH)
	assert.NoError(t, err)
	seen := map[string]int{}
	for _, c := range result.OutputMetadata {
		seen[c.Name]++
	}
	assert.Equal(t, map[string]int{"animal_name": 1, "parent_name": 1}, seen)
}

func TestCompileRejectsOptionalInsideFold(t *testing.T) {
	s := animalSchema()
	_, err := gqlc.Compile(s, `{
		Animal {
			out_Animal_ParentOf @fold {
				name @output(out_name: "parent_names")
				out_Animal_ParentOf @optional {
					name @output(out_name: "grandparent_names")
				}
			}
		}
	}`, nil, backend.MATCH)
	assert.Error(t, err)
}

func TestCompileReportsParseErrors(t *testing.T) {
	s := animalSchema()
	_, err := gqlc.Compile(s, `{ Animal { `, nil, backend.MATCH)
	assert.Error(t, err)
}
