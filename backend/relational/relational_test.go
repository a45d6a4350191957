package relational_test

import (
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/backend/relational"
	"github.com/traverseql/gqlc/compiler"
	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/internal/parser"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/ir/rewrite"
	"github.com/traverseql/gqlc/schema"
)

func animalSchema() *schema.Schema {
	s := schema.New()
	s.AddObject("Animal").
		Property("name", schema.StringType).
		Vertex("out_Animal_ParentOf", "Animal", schema.Out)
	if err := s.Link(); err != nil {
		panic(err)
	}
	return s
}

func emit(t *testing.T, query string) (*backend.Result, error) {
	t.Helper()
	s := animalSchema()
	doc, perr := parser.Parse(query)
	assert.Nil(t, perr)
	q, errs := compiler.Analyze(s, doc)
	assert.Empty(t, errs)
	prog, err := ir.NewBuilder(s).Build(q)
	assert.NoError(t, err)
	prog = rewrite.Run(prog)
	return relational.Emit(prog, s)
}

func toSQL(t *testing.T, result *backend.Result) string {
	t.Helper()
	builder, ok := result.Builder.(sq.SelectBuilder)
	assert.True(t, ok, "relational result must carry a squirrel SelectBuilder")
	sql, _, err := builder.ToSql()
	assert.NoError(t, err)
	return sql
}

func TestEmitSimpleSelect(t *testing.T) {
	result, err := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
		}
	}`)
	assert.NoError(t, err)
	sql := toSQL(t, result)
	assert.Contains(t, sql, "FROM animals AS animal_1")
	assert.Contains(t, sql, "animal_1.name AS animal_name")
}

func TestEmitTraversalBecomesInnerJoin(t *testing.T) {
	result, err := emit(t, `{
		Animal {
			out_Animal_ParentOf {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	assert.NoError(t, err)
	sql := toSQL(t, result)
	assert.Contains(t, sql, "JOIN animals AS animal_2 ON animal_1.animal_parent_of_id = animal_2.id")
	assert.NotContains(t, sql, "LEFT JOIN")
}

func TestEmitOptionalBecomesLeftJoin(t *testing.T) {
	result, err := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	assert.NoError(t, err)
	sql := toSQL(t, result)
	assert.Contains(t, sql, "LEFT JOIN animals AS animal_2")

	byName := map[string]backend.ColumnMeta{}
	for _, c := range result.OutputMetadata {
		byName[c.Name] = c
	}
	assert.True(t, byName["parent_name"].Nullable)
}

func TestEmitRecurseUnfoldsIntoJoinChain(t *testing.T) {
	result, err := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @recurse(depth: 2) {
				name @output(out_name: "ancestor_name")
			}
		}
	}`)
	assert.NoError(t, err)
	sql := toSQL(t, result)
	assert.Equal(t, 2, strings.Count(sql, "LEFT JOIN animals"))
}

// TestEmitRecurseProjectsEveryHop: the hops are LEFT JOINs, so a row
// whose ancestor chain stops at depth 1 nulls out the depth-2 join —
// its output must come from the shallower hop's column instead of
// being silently dropped with the deepest hop's NULL.
func TestEmitRecurseProjectsEveryHop(t *testing.T) {
	result, err := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @recurse(depth: 2) {
				name @output(out_name: "ancestor_name")
			}
		}
	}`)
	assert.NoError(t, err)
	sql := toSQL(t, result)
	assert.Contains(t, sql, "COALESCE(animal_2.name, animal_3.name) AS ancestor_name")
}

func TestEmitFoldRejected(t *testing.T) {
	_, err := emit(t, `{
		Animal {
			out_Animal_ParentOf @fold {
				name @output(out_name: "parent_names")
			}
		}
	}`)
	assert.Error(t, err)
	gqlErr, ok := err.(*errors.GraphQLError)
	assert.True(t, ok)
	assert.Equal(t, errors.NotSupportedByBackend, gqlErr.Kind)
}

func TestEmitEdgeDegreeRejected(t *testing.T) {
	_, err := emit(t, `{
		Animal {
			name @output(out_name: "animal_name")
			out_Animal_ParentOf @filter(op_name: "has_edge_degree", value: ["2"]) {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	assert.Error(t, err)
	gqlErr, ok := err.(*errors.GraphQLError)
	assert.True(t, ok)
	assert.Equal(t, errors.NotSupportedByBackend, gqlErr.Kind)
}

func TestEmitParameterizedFilter(t *testing.T) {
	result, err := emit(t, `{
		Animal {
			name @filter(op_name: "=", value: ["$wanted"]) @output(out_name: "animal_name")
		}
	}`)
	assert.NoError(t, err)
	sql := toSQL(t, result)
	assert.Contains(t, sql, "animal_1.name = :wanted")
	assert.Len(t, result.InputMetadata, 1)
	assert.Equal(t, "wanted", result.InputMetadata[0].Name)
}
