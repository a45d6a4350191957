package cypher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/backend/cypher"
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
		Property("birthday", schema.DateType).
		Vertex("out_Animal_ParentOf", "Animal", schema.Out).
		Vertex("in_Animal_ParentOf", "Animal", schema.In)
	if err := s.Link(); err != nil {
		panic(err)
	}
	return s
}

func emit(t *testing.T, query string, opts cypher.Options) *backend.Result {
	t.Helper()
	s := animalSchema()
	doc, perr := parser.Parse(query)
	assert.Nil(t, perr)
	q, errs := compiler.Analyze(s, doc)
	assert.Empty(t, errs)
	prog, err := ir.NewBuilder(s).Build(q)
	assert.NoError(t, err)
	prog = rewrite.Run(prog)
	result, err := cypher.Emit(prog, s, opts)
	assert.NoError(t, err)
	return result
}

func TestEmitSimpleOutput(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
		}
	}`, cypher.Options{})
	assert.Equal(t, "MATCH (n1:Animal)\nRETURN n1.name AS animal_name", result.QueryText)
}

func TestEmitTraversalChainsPattern(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf {
				name @output(out_name: "parent_name")
			}
		}
	}`, cypher.Options{})
	assert.Contains(t, result.QueryText, "(n1:Animal)-[:Animal_ParentOf]->(n2:Animal)")
	assert.Contains(t, result.QueryText, "n2.name AS parent_name")
}

func TestEmitInEdgeReversesArrow(t *testing.T) {
	result := emit(t, `{
		Animal {
			in_Animal_ParentOf {
				name @output(out_name: "child_name")
			}
		}
	}`, cypher.Options{})
	assert.Contains(t, result.QueryText, "(n1:Animal)<-[:Animal_ParentOf]-(n2:Animal)")
}

func TestEmitOptionalStartsOwnClause(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
			}
		}
	}`, cypher.Options{})
	assert.Contains(t, result.QueryText, "MATCH (n1:Animal)\nOPTIONAL MATCH (n1)-[:Animal_ParentOf]->(n2:Animal)")

	byName := map[string]backend.ColumnMeta{}
	for _, c := range result.OutputMetadata {
		byName[c.Name] = c
	}
	assert.True(t, byName["parent_name"].Nullable)
	assert.False(t, byName["animal_name"].Nullable)
}

func TestEmitRecurseUsesVariableLengthPattern(t *testing.T) {
	result := emit(t, `{
		Animal {
			out_Animal_ParentOf @recurse(depth: 3) {
				name @output(out_name: "ancestor_name")
			}
		}
	}`, cypher.Options{})
	assert.Contains(t, result.QueryText, "-[:Animal_ParentOf*1..3]->")
}

func TestEmitFoldCollects(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @fold {
				name @output(out_name: "parent_names")
			}
		}
	}`, cypher.Options{})
	assert.Contains(t, result.QueryText, "OPTIONAL MATCH (n1)-[:Animal_ParentOf]->(n2:Animal)")
	assert.Contains(t, result.QueryText, "collect(n2.name) AS parent_names")

	byName := map[string]backend.ColumnMeta{}
	for _, c := range result.OutputMetadata {
		byName[c.Name] = c
	}
	assert.True(t, byName["parent_names"].IsList)
}

func TestEmitNamedPlaceholderParameters(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @filter(op_name: "=", value: ["$wanted"]) @output(out_name: "animal_name")
		}
	}`, cypher.Options{})
	assert.Contains(t, result.QueryText, "n1.name = $wanted")
	assert.Len(t, result.InputMetadata, 1)
	assert.Equal(t, "wanted", result.InputMetadata[0].Name)
}

func TestEmitInlineParameters(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @filter(op_name: "=", value: ["$wanted"]) @output(out_name: "animal_name")
		}
	}`, cypher.Options{InlineParams: true, Params: map[string]interface{}{"wanted": "Hedwig"}})
	assert.Contains(t, result.QueryText, "n1.name = 'Hedwig'")
	assert.Empty(t, result.InputMetadata)
}

func TestEmitInlineParameterMissingFallsBackToPlaceholder(t *testing.T) {
	result := emit(t, `{
		Animal {
			name @filter(op_name: "=", value: ["$wanted"]) @output(out_name: "animal_name")
		}
	}`, cypher.Options{InlineParams: true})
	assert.Contains(t, result.QueryText, "n1.name = $wanted")
	assert.Len(t, result.InputMetadata, 1)
}
