package directives

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/traverseql/gqlc/internal/ast"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance, registering the
// "identifier" tag used by OutputArgs/TagArgs against the pattern
// out_name/tag_name values must match.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// OutputArgs is the decoded payload of @output(out_name: String!).
type OutputArgs struct {
	OutName string `validate:"required,identifier"`
}

// TagArgs is the decoded payload of @tag(tag_name: String!).
type TagArgs struct {
	TagName string `validate:"required,identifier"`
}

// FilterArgs is the decoded payload of
// @filter(op_name: String!, value: [String!]).
type FilterArgs struct {
	OpName string   `validate:"required"`
	Value  []string `validate:"omitempty"`
}

// RecurseArgs is the decoded payload of @recurse(depth: Int!).
type RecurseArgs struct {
	Depth int `validate:"required,min=1"`
}

// DecodeOutput extracts and validates @output's arguments.
func DecodeOutput(d *ast.Directive) (*OutputArgs, error) {
	arg := d.Arg("out_name")
	if arg == nil {
		return nil, fmt.Errorf("@output requires an out_name argument")
	}
	sv, ok := arg.Value.(*ast.StringValue)
	if !ok {
		return nil, fmt.Errorf("@output's out_name must be a string")
	}
	args := &OutputArgs{OutName: sv.Value}
	if err := Validator().Struct(args); err != nil {
		return nil, fmt.Errorf("@output: %w", err)
	}
	return args, nil
}

func DecodeTag(d *ast.Directive) (*TagArgs, error) {
	arg := d.Arg("tag_name")
	if arg == nil {
		return nil, fmt.Errorf("@tag requires a tag_name argument")
	}
	sv, ok := arg.Value.(*ast.StringValue)
	if !ok {
		return nil, fmt.Errorf("@tag's tag_name must be a string")
	}
	args := &TagArgs{TagName: sv.Value}
	if err := Validator().Struct(args); err != nil {
		return nil, fmt.Errorf("@tag: %w", err)
	}
	return args, nil
}

func DecodeFilter(d *ast.Directive) (*FilterArgs, error) {
	opArg := d.Arg("op_name")
	if opArg == nil {
		return nil, fmt.Errorf("@filter requires an op_name argument")
	}
	opSV, ok := opArg.Value.(*ast.StringValue)
	if !ok {
		return nil, fmt.Errorf("@filter's op_name must be a string")
	}
	args := &FilterArgs{OpName: opSV.Value}
	if valueArg := d.Arg("value"); valueArg != nil {
		lv, ok := valueArg.Value.(*ast.ListValue)
		if !ok {
			return nil, fmt.Errorf("@filter's value must be a list")
		}
		for _, v := range lv.Values {
			sv, ok := v.(*ast.StringValue)
			if !ok {
				return nil, fmt.Errorf("@filter's value elements must be strings")
			}
			args.Value = append(args.Value, sv.Value)
		}
	}
	if err := Validator().Struct(args); err != nil {
		return nil, fmt.Errorf("@filter: %w", err)
	}
	return args, nil
}

func DecodeRecurse(d *ast.Directive) (*RecurseArgs, error) {
	arg := d.Arg("depth")
	if arg == nil {
		return nil, fmt.Errorf("@recurse requires a depth argument")
	}
	iv, ok := arg.Value.(*ast.IntValue)
	if !ok {
		return nil, fmt.Errorf("@recurse's depth must be an int")
	}
	var depth int
	if _, err := fmt.Sscanf(iv.Value, "%d", &depth); err != nil {
		return nil, fmt.Errorf("@recurse's depth %q is not an integer", iv.Value)
	}
	args := &RecurseArgs{Depth: depth}
	if err := Validator().Struct(args); err != nil {
		return nil, fmt.Errorf("@recurse: %w", err)
	}
	return args, nil
}

// RefKind is how ClassifyValue classifies a @filter value element: "$name" is a runtime
// parameter reference, "%name" is a cross-scope tag reference, anything
// else is a literal.
type RefKind int

const (
	Literal RefKind = iota
	ParamRef
	TagRef
)

func ClassifyValue(raw string) (RefKind, string) {
	if len(raw) > 1 && raw[0] == '$' {
		return ParamRef, raw[1:]
	}
	if len(raw) > 1 && raw[0] == '%' {
		return TagRef, raw[1:]
	}
	return Literal, raw
}
