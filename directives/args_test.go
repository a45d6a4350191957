package directives_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/directives"
	"github.com/traverseql/gqlc/internal/ast"
)

func directive(name string, args ...*ast.Argument) *ast.Directive {
	return &ast.Directive{Name: &ast.Name{Name: name}, Args: args}
}

func strArg(name, value string) *ast.Argument {
	return &ast.Argument{Name: &ast.Name{Name: name}, Value: &ast.StringValue{Value: value}}
}

func intArg(name, value string) *ast.Argument {
	return &ast.Argument{Name: &ast.Name{Name: name}, Value: &ast.IntValue{Value: value}}
}

func TestDecodeOutput(t *testing.T) {
	args, err := directives.DecodeOutput(directive("output", strArg("out_name", "animal_name")))
	assert.NoError(t, err)
	assert.Equal(t, "animal_name", args.OutName)
}

func TestDecodeOutputRejectsBadIdentifier(t *testing.T) {
	for _, bad := range []string{"", "9lives", "with space", "hy-phen"} {
		_, err := directives.DecodeOutput(directive("output", strArg("out_name", bad)))
		assert.Error(t, err, bad)
	}
}

func TestDecodeOutputRequiresArgument(t *testing.T) {
	_, err := directives.DecodeOutput(directive("output"))
	assert.Error(t, err)
}

func TestDecodeFilter(t *testing.T) {
	d := directive("filter",
		strArg("op_name", "between"),
		&ast.Argument{Name: &ast.Name{Name: "value"}, Value: &ast.ListValue{Values: []ast.Value{
			&ast.StringValue{Value: "$lower"},
			&ast.StringValue{Value: "$upper"},
		}}})
	args, err := directives.DecodeFilter(d)
	assert.NoError(t, err)
	assert.Equal(t, "between", args.OpName)
	assert.Equal(t, []string{"$lower", "$upper"}, args.Value)
}

func TestDecodeRecurse(t *testing.T) {
	args, err := directives.DecodeRecurse(directive("recurse", intArg("depth", "3")))
	assert.NoError(t, err)
	assert.Equal(t, 3, args.Depth)

	_, err = directives.DecodeRecurse(directive("recurse", intArg("depth", "0")))
	assert.Error(t, err)

	_, err = directives.DecodeRecurse(directive("recurse"))
	assert.Error(t, err)
}

func TestClassifyValue(t *testing.T) {
	kind, name := directives.ClassifyValue("$wanted")
	assert.Equal(t, directives.ParamRef, kind)
	assert.Equal(t, "wanted", name)

	kind, name = directives.ClassifyValue("%parent_name")
	assert.Equal(t, directives.TagRef, kind)
	assert.Equal(t, "parent_name", name)

	kind, name = directives.ClassifyValue("Hedwig")
	assert.Equal(t, directives.Literal, kind)
	assert.Equal(t, "Hedwig", name)

	// A bare sigil with nothing after it is a literal, not a reference.
	kind, _ = directives.ClassifyValue("$")
	assert.Equal(t, directives.Literal, kind)
}

func TestLookupAndLocations(t *testing.T) {
	assert.Nil(t, directives.Lookup("include"))

	out := directives.Lookup(directives.Output)
	assert.NotNil(t, out)
	assert.True(t, out.AllowedAt(directives.LocationPropertyField))
	assert.False(t, out.AllowedAt(directives.LocationVertexField))

	opt := directives.Lookup(directives.Optional)
	assert.True(t, opt.AllowedAt(directives.LocationVertexField))
	assert.False(t, opt.AllowedAt(directives.LocationPropertyField))
}
