package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/ir/rewrite"
)

func TestUnfoldRecurseExpandsToOptionalHops(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @output(out_name: "name")
			out_Animal_ParentOf @recurse(depth: 3) {
				name @output(out_name: "ancestor_name")
			}
		}
	}`)
	prog = rewrite.UnfoldRecurse(prog)

	var traverses int
	for _, blk := range prog.Blocks {
		switch b := blk.(type) {
		case ir.Recurse:
			t.Fatalf("Recurse block survived unfolding")
		case ir.Traverse:
			assert.True(t, b.Optional, "every unfolded hop is optional")
			traverses++
		}
	}
	assert.Equal(t, 3, traverses)
}

// TestUnfoldRecurseMintsDistinctHopLocations: each unfolded hop must
// carry its own location — a single shared location would leave every
// backend's alias map bound only to the deepest hop, losing the value
// of a row whose chain stops at an intermediate depth.
func TestUnfoldRecurseMintsDistinctHopLocations(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @output(out_name: "name")
			out_Animal_ParentOf @recurse(depth: 3) {
				name @output(out_name: "ancestor_name")
			}
		}
	}`)
	prog = rewrite.UnfoldRecurse(prog)

	seen := map[ir.Location]bool{}
	for i, blk := range prog.Blocks {
		if _, ok := blk.(ir.Traverse); !ok {
			continue
		}
		ml, ok := prog.Blocks[i+1].(ir.MarkLocation)
		assert.True(t, ok, "every unfolded hop is followed by its MarkLocation")
		assert.False(t, seen[ml.Location], "hop locations must be distinct")
		seen[ml.Location] = true
	}
	assert.Len(t, seen, 3)

	assert.Len(t, prog.Metadata.RecurseChains, 1)
	for _, chain := range prog.Metadata.RecurseChains {
		assert.Len(t, chain, 3)
		for loc := range seen {
			assert.Contains(t, chain, loc)
		}
	}
}

func TestUnfoldRecurseLeavesPlainTraversalsAlone(t *testing.T) {
	prog := build(t, `{
		Animal {
			out_Animal_ParentOf {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	before := append([]ir.Block{}, prog.Blocks...)
	prog = rewrite.UnfoldRecurse(prog)
	assert.Equal(t, before, prog.Blocks)
}

func TestRunIsIdempotent(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @filter(op_name: "=", value: ["$x"]) @output(out_name: "name")
			out_Animal_ParentOf @optional {
				name @output(out_name: "parent_name")
			}
		}
	}`)
	prog = rewrite.Run(prog)
	once := append([]ir.Block{}, prog.Blocks...)
	onceOptionals := append([]ir.OptionalInfo{}, prog.Metadata.Optionals...)

	prog = rewrite.Run(prog)
	assert.Equal(t, once, prog.Blocks)
	assert.Equal(t, onceOptionals, prog.Metadata.Optionals)
}

func TestTruncateAtOutputSourceDropsLaterSiblings(t *testing.T) {
	prog := build(t, `{
		Animal {
			name @output(out_name: "name")
			out_Animal_ParentOf @output_source {
				name @output(out_name: "parent_name")
			}
			in_Animal_ParentOf {
				name @output(out_name: "child_name")
			}
		}
	}`)
	prog = rewrite.Run(prog)

	var traverses int
	for _, blk := range prog.Blocks {
		if _, ok := blk.(ir.Traverse); ok {
			traverses++
		}
	}
	assert.Equal(t, 1, traverses, "the sibling traversal after @output_source is dropped")

	var names []string
	for _, oc := range prog.Metadata.Outputs {
		names = append(names, oc.Name)
	}
	assert.Equal(t, []string{"name", "parent_name"}, names)

	last := prog.Blocks[len(prog.Blocks)-1]
	cr, ok := last.(ir.ConstructResult)
	assert.True(t, ok)
	assert.Contains(t, cr.Outputs, "parent_name")
	assert.NotContains(t, cr.Outputs, "child_name")
}
