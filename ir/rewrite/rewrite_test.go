package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

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
		Vertex("out_Animal_ParentOf", "Animal", schema.Out).
		Vertex("in_Animal_ParentOf", "Animal", schema.In)
	if err := s.Link(); err != nil {
		panic(err)
	}
	return s
}

func build(t *testing.T, query string) *ir.Program {
	t.Helper()
	s := animalSchema()
	doc, perr := parser.Parse(query)
	assert.Nil(t, perr)
	q, errs := compiler.Analyze(s, doc)
	assert.Empty(t, errs)
	prog, err := ir.NewBuilder(s).Build(q)
	assert.NoError(t, err)
	return prog
}

// TestClassifyOptionalsSimpleHasNoNestedTraversal covers an @optional
// whose subtree is property fields only: no further Traverse/Recurse/
// Fold occurs inside it, so it's emittable as a single OPTIONAL MATCH.
func TestClassifyOptionalsSimpleHasNoNestedTraversal(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @output(out_name: "name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	prog = rewrite.Run(prog)

	assert.Len(t, prog.Metadata.Optionals, 1)
	assert.False(t, prog.Metadata.Optionals[0].Compound)
}

// TestClassifyOptionalsCompoundOnPlainNestedTraversal: an @optional
// whose child vertex field is a *plain*
// (non-optional) traversal. That still contains a further vertex
// traversal, so the optional is compound and must be expanded into a
// two-branch UNIONALL by the MATCH backend rather than emitted as a
// single OPTIONAL MATCH.
func TestClassifyOptionalsCompoundOnPlainNestedTraversal(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @output(out_name: "name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
				out_Animal_ParentOf {
					name @output(out_name: "grandparent_name")
				}
			}
		}
	}`)
	prog = rewrite.Run(prog)

	assert.Len(t, prog.Metadata.Optionals, 1)
	assert.True(t, prog.Metadata.Optionals[0].Compound)
}

// TestClassifyOptionalsCompoundOnNestedOptional is the case the
// pre-fix classifier already handled correctly: another @optional
// nested inside this one also makes it compound.
func TestClassifyOptionalsCompoundOnNestedOptional(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @output(out_name: "name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
				out_Animal_ParentOf @optional {
					name @output(out_name: "grandparent_name")
				}
			}
		}
	}`)
	prog = rewrite.Run(prog)

	assert.Len(t, prog.Metadata.Optionals, 2)

	// The innermost optional's own subtree has no further traversal, so
	// only the outer one (which contains it) is compound.
	compoundCount := 0
	for _, oi := range prog.Metadata.Optionals {
		if oi.Compound {
			compoundCount++
		}
	}
	assert.Equal(t, 1, compoundCount, "only the outer optional contains a further traversal")
}
