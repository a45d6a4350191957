package compiler

import (
	"strings"

	"github.com/traverseql/gqlc/directives"
	"github.com/traverseql/gqlc/errors"
	"github.com/traverseql/gqlc/filterop"
	"github.com/traverseql/gqlc/internal/ast"
	gschema "github.com/traverseql/gqlc/schema"
)

const metaCount = "_x_count"

// scope is a DFS-order path of vertex-field steps, used only to compare
// "same scope" for the tag-before-filter ordering rule. It is
// a lighter-weight stand-in for ir.Location, which additionally carries a
// disambiguating visit counter the compiler doesn't need pre-lowering.
type scope []string

func (s scope) key() string { return strings.Join(s, ">") }

func (s scope) child(step string) scope {
	next := make(scope, len(s)+1)
	copy(next, s)
	next[len(s)] = step
	return next
}

type tagBinding struct {
	scope scope
	order int
}

// context accumulates validation errors and cross-cutting state across
// the whole query: a single mutable struct threaded through recursive
// helpers rather than returning errors out of every call.
type context struct {
	schema *gschema.Schema

	errs []*errors.GraphQLError

	outputNames map[string]bool
	tagNames    map[string]bool
	tagOrder    map[string]tagBinding

	// order is incremented once per property field visited, in document
	// order; it is the ordering signal for the tag-before-filter rule.
	order int

	outputSourceSeen bool
}

func newContext(s *gschema.Schema) *context {
	return &context{
		schema:      s,
		outputNames: make(map[string]bool),
		tagNames:    make(map[string]bool),
		tagOrder:    make(map[string]tagBinding),
	}
}

func (c *context) addErr(kind errors.Kind, loc errors.Location, rule, format string, a ...interface{}) {
	e := errors.NewAt(kind, loc, format, a...)
	e.Rule = rule
	c.errs = append(c.errs, e)
}

// Analyze validates doc against s and, if it passes, returns the typed
// Query. All violations are collected; the order of reporting is
// unspecified.
func Analyze(s *gschema.Schema, doc *ast.Document) (*Query, []*errors.GraphQLError) {
	c := newContext(s)

	op := doc.Operation
	if op == nil || op.SelectionSet == nil || len(op.SelectionSet.Selections) != 1 {
		c.addErr(errors.TypeError, doc.Loc, "Single Root Selection",
			"a query must have exactly one root selection")
		return nil, c.errs
	}
	rootSel, ok := op.SelectionSet.Selections[0].(*ast.Field)
	if !ok {
		c.addErr(errors.TypeError, op.SelectionSet.Loc, "Single Root Selection",
			"the root selection must be a field naming the entry-point type")
		return nil, c.errs
	}
	rootType := rootSel.Name.Name
	if _, ok := s.Types[rootType]; !ok {
		c.addErr(errors.SchemaError, rootSel.Loc, "Root Type Exists",
			"unknown root type %q", rootType)
		return nil, c.errs
	}

	// Pass 1: pre-bind every @tag so cross-scope references in pass 2 can
	// be resolved regardless of document order between the two scopes
	// that matter (the tag's own scope and the filter's scope); the
	// ordering rule itself is enforced in pass 2 using the order index
	// recorded here. collectTags counts property fields exactly the way
	// pass 2 does (c.order++ once per non-meta property field, skipping
	// vertex fields) so the two passes' order indices are comparable.
	c.collectTags(rootSel.SelectionSet, rootType, scope{})

	c.order = 0
	root := c.analyzeSelectionSet(rootType, rootSel.SelectionSet, scope{}, false, false, false)

	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return &Query{RootType: rootType, Root: root, Loc: rootSel.Loc}, nil
}

// collectTags walks the same document shape analyzeSelectionSet will
// walk in pass 2, resolving each field against parentType so it can
// count property fields (not vertex fields) exactly as pass 2's
// c.order++ does — otherwise a tag's recorded order and a later
// filter's c.order would come from different counters (one counting
// only tags, the other counting every property field) and the
// ordering comparison would be meaningless.
func (c *context) collectTags(set *ast.SelectionSet, parentType string, sc scope) {
	if set == nil {
		return
	}
	for _, sel := range set.Selections {
		switch n := sel.(type) {
		case *ast.Field:
			if n.Name.Name == metaCount {
				continue
			}
			fd, err := c.schema.ResolveField(parentType, n.Name.Name)
			if err != nil {
				continue // unresolvable field; reported properly in pass 2
			}
			if fd.Vertex != nil {
				c.collectTags(n.SelectionSet, fd.Vertex.TargetType, sc.child(n.Name.Name))
				continue
			}
			c.order++
			for _, d := range n.Directives {
				if d.Name.Name == directives.Tag {
					if args, err := directives.DecodeTag(d); err == nil {
						c.tagOrder[args.TagName] = tagBinding{scope: sc, order: c.order}
					}
				}
			}
		case *ast.InlineFragment:
			c.collectTags(n.SelectionSet, n.TypeCondition.Name.Name, sc)
		}
	}
}

// analyzeSelectionSet validates and lowers one GraphQL selection set into
// typed Selection nodes. parentType is the statically known type at this
// scope; insideFold/insideOptional/insideRecurse gate the directive
// co-occurrence rules.
func (c *context) analyzeSelectionSet(parentType string, set *ast.SelectionSet, sc scope, insideFold, insideOptional, insideRecurse bool) []*Selection {
	if set == nil {
		return nil
	}

	var out []*Selection
	seenVertex := false

	for _, raw := range set.Selections {
		switch n := raw.(type) {
		case *ast.Field:
			isMeta := n.Name.Name == metaCount
			var fd *gschema.FieldDescriptor
			var err error
			if !isMeta {
				fd, err = c.schema.ResolveField(parentType, n.Name.Name)
				if err != nil {
					c.addErr(errors.SchemaError, n.Loc, "Field Exists On Type", "%s", err)
					continue
				}
			}

			isVertex := !isMeta && fd.Vertex != nil
			if isVertex {
				seenVertex = true
			} else if seenVertex {
				c.addErr(errors.TypeError, n.Loc, "Property Fields Precede Vertex Fields",
					"property field %q must come before vertex fields in this scope", n.Name.Name)
			}

			if isMeta {
				if !insideFold {
					c.addErr(errors.DirectiveError, n.Loc, "_x_count Scope",
						"_x_count may only be referenced inside a @fold scope")
				}
				out = append(out, c.analyzeMetaCount(n, sc))
				continue
			}

			if isVertex {
				out = append(out, c.analyzeVertexField(n, fd, sc, insideFold, insideOptional, insideRecurse))
			} else {
				c.order++
				out = append(out, c.analyzePropertyField(n, fd, sc))
			}

		case *ast.InlineFragment:
			targetType := n.TypeCondition.Name.Name
			if !c.schema.TypeCoercionValid(parentType, targetType) {
				c.addErr(errors.TypeError, n.Loc, "Type Coercion Valid",
					"cannot coerce %q to %q", parentType, targetType)
			}
			for _, f := range n.Directives {
				if f.Name.Name == directives.Filter {
					c.validateCoercionFilter(f)
				}
			}
			children := c.analyzeSelectionSet(targetType, n.SelectionSet, sc, insideFold, insideOptional, insideRecurse)
			out = append(out, &Selection{
				Kind:      CoercionField,
				Loc:       n.Loc,
				CoercedTo: targetType,
				Children:  children,
			})

		default:
			c.addErr(errors.TypeError, raw.Location(), "Executable Selections",
				"unsupported selection kind")
		}
	}
	return out
}

func (c *context) analyzeMetaCount(n *ast.Field, sc scope) *Selection {
	s := &Selection{
		Kind:        PropertyField,
		Name:        metaCount,
		Alias:       aliasOf(n),
		Loc:         n.Loc,
		ScalarType:  gschema.IntType,
		IsMetaCount: true,
	}
	c.applyPropertyDirectives(n, s, sc)
	return s
}

func (c *context) analyzePropertyField(n *ast.Field, fd *gschema.FieldDescriptor, sc scope) *Selection {
	s := &Selection{
		Kind:       PropertyField,
		Name:       n.Name.Name,
		Alias:      aliasOf(n),
		Loc:        n.Loc,
		ScalarType: fd.Property.Type,
	}
	c.applyPropertyDirectives(n, s, sc)
	return s
}

func (c *context) applyPropertyDirectives(n *ast.Field, s *Selection, sc scope) {
	for _, d := range n.Directives {
		switch d.Name.Name {
		case directives.Output:
			args, err := directives.DecodeOutput(d)
			if err != nil {
				c.addErr(errors.DirectiveError, d.Loc, "Output Arguments", "%s", err)
				continue
			}
			if c.outputNames[args.OutName] {
				c.addErr(errors.DirectiveError, d.Loc, "Output Name Uniqueness",
					"output name %q is used more than once", args.OutName)
			}
			c.outputNames[args.OutName] = true
			name := args.OutName
			s.Output = &name
		case directives.Tag:
			args, err := directives.DecodeTag(d)
			if err != nil {
				c.addErr(errors.DirectiveError, d.Loc, "Tag Arguments", "%s", err)
				continue
			}
			if c.tagNames[args.TagName] {
				c.addErr(errors.DirectiveError, d.Loc, "Tag Name Uniqueness",
					"tag name %q is used more than once", args.TagName)
			}
			c.tagNames[args.TagName] = true
			name := args.TagName
			s.Tag = &name
		case directives.Filter:
			f := c.buildFilter(d, s.ScalarType, sc, false)
			if f != nil {
				s.Filters = append(s.Filters, f)
			}
		default:
			if directives.Lookup(d.Name.Name) == nil {
				c.addErr(errors.DirectiveError, d.Loc, "Known Directive", "unknown directive @%s", d.Name.Name)
			} else {
				c.addErr(errors.DirectiveError, d.Loc, "Directive Location",
					"@%s is not valid on a property field", d.Name.Name)
			}
		}
	}
}

// validateCoercionFilter checks that a @filter written directly on an
// inline fragment (filtering the type-coercion branch itself, rather
// than a property within it) at least decodes to well-formed arguments.
func (c *context) validateCoercionFilter(d *ast.Directive) {
	if _, err := directives.DecodeFilter(d); err != nil {
		c.addErr(errors.FilterArgumentError, d.Loc, "Filter Arguments", "%s", err)
	}
}

// buildFilter validates and resolves one @filter directive. vertexField
// is true when d sits on a vertex field rather than a property field
// (or _x_count): has_edge_degree measures a traversal's match count,
// so it's the only operator valid there, and
// conversely it's not meaningful against a single scalar property.
func (c *context) buildFilter(d *ast.Directive, scalarType gschema.ScalarType, sc scope, vertexField bool) *Filter {
	args, err := directives.DecodeFilter(d)
	if err != nil {
		return nil
	}
	op := filterop.Lookup(args.OpName)
	if op == nil {
		c.addErr(errors.FilterArgumentError, d.Loc, "Known Filter Operator",
			"unknown filter operator %q", args.OpName)
		return nil
	}
	if vertexField && args.OpName != "has_edge_degree" {
		c.addErr(errors.FilterArgumentError, d.Loc, "Vertex Filter Operator",
			"only has_edge_degree may be used as a @filter on a vertex field, not %q", args.OpName)
	}
	if !vertexField && args.OpName == "has_edge_degree" {
		c.addErr(errors.FilterArgumentError, d.Loc, "Edge Degree Vertex Only",
			"has_edge_degree may only be used as a @filter on a vertex field")
	}
	if !op.ArityMatches(len(args.Value)) {
		c.addErr(errors.FilterArgumentError, d.Loc, "Filter Operator Arity",
			"operator %q does not accept %d value(s)", args.OpName, len(args.Value))
	}
	if !vertexField && !op.FamilyMatches(scalarType) {
		c.addErr(errors.FilterArgumentError, d.Loc, "Filter Operator Scalar",
			"operator %q cannot be applied to a %s field", args.OpName, scalarType)
	}
	for _, raw := range args.Value {
		kind, name := directives.ClassifyValue(raw)
		if kind == directives.Literal {
			if _, err := gschema.ParseScalar(scalarType, raw); err != nil {
				c.addErr(errors.FilterArgumentError, d.Loc, "Filter Argument Value", "%s", err)
			}
		}
		if kind == directives.TagRef {
			binding, ok := c.tagOrder[name]
			if !ok {
				c.addErr(errors.DirectiveError, d.Loc, "Tag Defined",
					"filter references undefined tag %%%s", name)
				continue
			}
			if binding.scope.key() != sc.key() && binding.order >= c.order {
				c.addErr(errors.DirectiveError, d.Loc, "Tag Precedes Filter",
					"tag %%%s must be bound before this filter unless they share a scope", name)
			}
		}
	}
	return &Filter{OpName: args.OpName, RawValues: args.Value, ScalarType: scalarType, Loc: d.Loc}
}

func (c *context) analyzeVertexField(n *ast.Field, fd *gschema.FieldDescriptor, sc scope, insideFold, insideOptional, insideRecurse bool) *Selection {
	v := fd.Vertex
	s := &Selection{
		Kind:       VertexField,
		Name:       n.Name.Name,
		Alias:      aliasOf(n),
		Loc:        n.Loc,
		Direction:  v.Direction,
		EdgeName:   v.EdgeName,
		TargetType: v.TargetType,
	}

	var hasOptional, hasFold, hasRecurse, hasOutputSource bool
	var recurseDepth int

	for _, d := range n.Directives {
		switch d.Name.Name {
		case directives.Optional:
			hasOptional = true
		case directives.Fold:
			hasFold = true
		case directives.Recurse:
			hasRecurse = true
			args, err := directives.DecodeRecurse(d)
			if err != nil {
				c.addErr(errors.DirectiveError, d.Loc, "Recurse Arguments", "%s", err)
			} else {
				recurseDepth = args.Depth
				if !c.recurseTargetReachable(v.TargetType) {
					c.addErr(errors.TypeError, d.Loc, "Recurse Target Reachable",
						"recurse target %q is not reachable", v.TargetType)
				}
			}
		case directives.OutputSource:
			hasOutputSource = true
			if c.outputSourceSeen {
				c.addErr(errors.DirectiveError, d.Loc, "Output Source Once",
					"@output_source may appear at most once in a query")
			}
			c.outputSourceSeen = true
		case directives.Filter:
			f := c.buildFilter(d, gschema.IntType, sc, true)
			if f != nil {
				s.Filters = append(s.Filters, f)
			}
		default:
			if directives.Lookup(d.Name.Name) == nil {
				c.addErr(errors.DirectiveError, d.Loc, "Known Directive", "unknown directive @%s", d.Name.Name)
			} else {
				c.addErr(errors.DirectiveError, d.Loc, "Directive Location",
					"@%s is not valid on a vertex field", d.Name.Name)
			}
		}
	}

	if hasOptional && insideFold {
		c.addErr(errors.DirectiveError, n.Loc, "No Optional In Fold", "@optional cannot nest inside @fold")
	}
	if hasFold && insideFold {
		c.addErr(errors.DirectiveError, n.Loc, "No Nested Fold", "@fold cannot nest inside @fold")
	}
	if hasRecurse && insideFold {
		c.addErr(errors.DirectiveError, n.Loc, "No Recurse In Fold", "@recurse cannot nest inside @fold")
	}
	if hasOptional && hasRecurse {
		c.addErr(errors.DirectiveError, n.Loc, "Optional Xor Recurse",
			"@optional and @recurse cannot appear on the same field")
	}
	if hasOutputSource && (insideFold || insideOptional) {
		c.addErr(errors.DirectiveError, n.Loc, "Output Source Placement",
			"@output_source cannot be inside @fold or @optional")
	}

	s.Optional = hasOptional
	s.Fold = hasFold
	s.OutputSource = hasOutputSource
	if hasRecurse {
		d := recurseDepth
		s.RecurseDepth = &d
	}

	childScope := sc.child(n.Name.Name)
	s.Children = c.analyzeSelectionSet(v.TargetType, n.SelectionSet, childScope,
		insideFold || hasFold, insideOptional || hasOptional, insideRecurse || hasRecurse)

	if hasFold {
		if !subtreeHasOutput(s.Children) {
			c.addErr(errors.DirectiveError, n.Loc, "Fold Has Output",
				"a @fold subtree must contain at least one @output")
		}
	}

	return s
}

func (c *context) recurseTargetReachable(targetType string) bool {
	_, ok := c.schema.Types[targetType]
	return ok
}

func subtreeHasOutput(sels []*Selection) bool {
	for _, s := range sels {
		if s.Kind == PropertyField && s.Output != nil {
			return true
		}
		if (s.Kind == VertexField || s.Kind == CoercionField) && subtreeHasOutput(s.Children) {
			return true
		}
	}
	return false
}

func aliasOf(n *ast.Field) string {
	if n.Alias != nil && n.Alias.Name != n.Name.Name {
		return n.Alias.Name
	}
	return n.Name.Name
}
