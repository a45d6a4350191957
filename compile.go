// Package gqlc compiles a restricted GraphQL query, annotated with
// @output/@filter/@tag/@optional/@fold/@recurse/@output_source
// directives, into a query string (or builder) for one of several
// graph/relational/property-graph backends.
package gqlc

import (
	"fmt"

	"github.com/traverseql/gqlc/backend"
	"github.com/traverseql/gqlc/backend/cypher"
	"github.com/traverseql/gqlc/backend/gremlin"
	"github.com/traverseql/gqlc/backend/match"
	"github.com/traverseql/gqlc/backend/relational"
	"github.com/traverseql/gqlc/compiler"
	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/internal/parser"
	"github.com/traverseql/gqlc/ir"
	"github.com/traverseql/gqlc/ir/rewrite"
	"github.com/traverseql/gqlc/schema"
)

// Result is the outcome of a successful Compile: the emitted query text
// (or, for backend.Relational, a populated Builder instead), plus the
// parameter and output-column metadata needed to bind params and decode
// rows without re-parsing the query text.
type Result = backend.Result

// CypherOptions, when passed as the optional variadic argument to
// Compile with target == backend.Cypher, configures inline-vs-named
// parameter emission. Ignored for every other target.
type CypherOptions = cypher.Options

// Compile parses query, validates it against s, lowers it to IR, runs
// the standard rewrite passes, and emits it for target. params feeds
// the Cypher backend's inline-parameter mode; every other backend
// leaves values unbound and reports the parameter names/types it found
// via InputMetadata so the caller can supply them at execution time.
func Compile(s *schema.Schema, query string, params map[string]any, target backend.Target, opts ...CypherOptions) (*Result, error) {
	doc, perr := parser.Parse(query)
	if perr != nil {
		return nil, perr
	}

	typed, errs := compiler.Analyze(s, doc)
	if len(errs) > 0 {
		return nil, errors.MultiError(errs)
	}

	builder := ir.NewBuilder(s)
	program, err := builder.Build(typed)
	if err != nil {
		return nil, err
	}
	program = rewrite.Run(program)

	switch target {
	case backend.MATCH:
		return match.Emit(program, s)
	case backend.Relational:
		return relational.Emit(program, s)
	case backend.Gremlin:
		return gremlin.Emit(program, s)
	case backend.Cypher:
		var o cypher.Options
		if len(opts) > 0 {
			o = opts[0]
		}
		if o.InlineParams && o.Params == nil {
			o.Params = params
		}
		return cypher.Emit(program, s, o)
	default:
		return nil, fmt.Errorf("gqlc: unknown backend target %v", target)
	}
}
