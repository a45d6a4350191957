package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/ir"
)

// TestOutputsPreserveSourceOrder guards against a regression that would
// otherwise be invisible in the flat Program.Blocks dump: @output
// columns must stay in the order the query wrote them in, not
// whatever order a map iteration (such as over ConstructResult.Outputs)
// would produce.
func TestOutputsPreserveSourceOrder(t *testing.T) {
	q := analyze(t, `{
		Animal {
			name @output(out_name: "a")
			out_Animal_ParentOf {
				name @output(out_name: "b")
			}
		}
	}`)
	prog, err := ir.NewBuilder(animalSchema()).Build(q)
	assert.NoError(t, err)

	var got []string
	for _, oc := range prog.Metadata.Outputs {
		got = append(got, oc.Name)
	}
	want := []string{"a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output order mismatch (-want +got):\n%s", diff)
		t.Log(pretty.Sprint(prog.Metadata.Outputs))
	}
}
