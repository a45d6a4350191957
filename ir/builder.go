package ir

import (
	"github.com/traverseql/gqlc/compiler"
	"github.com/traverseql/gqlc/directives"
	"github.com/traverseql/gqlc/filterop"
	"github.com/traverseql/gqlc/schema"
)

// Builder lowers a validated compiler.Query into a linear ir.Program:
// a depth-first walk of the typed AST emitting
// Traverse/Recurse/Fold at each vertex-field entry, MarkLocation at
// every scope later code might reference, Filter inline wherever the
// predicate's inputs are already available, and a deferred
// GlobalOperationsStart fence for filters that need a fold to have
// finished collecting first (`_x_count`, or a @tag bound inside a
// @fold).
type Builder struct {
	schema *schema.Schema

	meta          *Metadata
	blocks        []Block
	visits        map[string]int
	globalFilters []Filter
}

// NewBuilder returns a Builder lowering queries against s.
func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{schema: s}
}

// Build lowers q into a Program. q must already be the output of a
// successful compiler.Analyze — Build does not re-validate it.
func (b *Builder) Build(q *compiler.Query) (*Program, error) {
	b.meta = newMetadata()
	b.blocks = nil
	b.visits = map[string]int{}
	b.globalFilters = nil

	b.emit(QueryRoot{Type: q.RootType})
	b.emit(MarkLocation{Location: Root})

	// Pre-bind every @tag before lowering any filter: the ordering rule
	// lets a same-scope filter precede the tag it references, so walking in
	// document order alone would resolve such a reference against an
	// empty binding. The pre-pass mints locations with the same visit
	// counters the main walk will, then the counters reset.
	b.collectTags(q.Root, Root)
	b.visits = map[string]int{}

	b.walk(q.Root, Root, false, nil)

	if len(b.globalFilters) > 0 {
		b.emit(GlobalOperationsStart{})
		for _, f := range b.globalFilters {
			b.emit(f)
		}
	}

	outputs := map[string]Expression{}
	for _, oc := range b.meta.Outputs {
		outputs[oc.Name] = b.outputExpression(oc)
	}
	b.emit(ConstructResult{Outputs: outputs})

	return &Program{Blocks: b.blocks, Metadata: b.meta}, nil
}

func (b *Builder) emit(blk Block) { b.blocks = append(b.blocks, blk) }

func (b *Builder) nextLocation(parent Location, step string) Location {
	key := parent.String() + ">" + step
	visit := b.visits[key]
	b.visits[key] = visit + 1
	return parent.Child(step, visit)
}

// collectTags records each @tag's binding location ahead of the main
// walk, re-deriving the same Location values walk will mint for the
// scopes the tags live in.
func (b *Builder) collectTags(sels []*compiler.Selection, loc Location) {
	for _, s := range sels {
		switch s.Kind {
		case compiler.PropertyField:
			if s.Tag != nil {
				b.meta.Tags[*s.Tag] = TagBinding{Location: loc, FieldName: s.Name}
			}
		case compiler.VertexField:
			b.collectTags(s.Children, b.nextLocation(loc, s.Name))
		case compiler.CoercionField:
			b.collectTags(s.Children, loc)
		}
	}
}

// fold describes the nearest enclosing @fold scope a selection is being
// walked under, or nil at top level / inside a plain traversal.
type fold struct {
	loc Location
	fs  FoldScope
}

func (b *Builder) walk(sels []*compiler.Selection, loc Location, insideOptional bool, f *fold) {
	for _, s := range sels {
		switch s.Kind {
		case compiler.PropertyField:
			b.walkProperty(s, loc, insideOptional, f)
		case compiler.VertexField:
			b.walkVertex(s, loc, insideOptional, f)
		case compiler.CoercionField:
			b.emit(CoerceType{TargetType: s.CoercedTo})
			b.walk(s.Children, loc, insideOptional, f)
		}
	}
}

func (b *Builder) walkProperty(s *compiler.Selection, loc Location, insideOptional bool, f *fold) {
	if s.IsMetaCount {
		b.walkMetaCount(s, insideOptional, f)
		return
	}

	if s.Output != nil {
		oc := OutputColumn{Name: *s.Output, ScalarType: s.ScalarType, Location: loc, FieldName: s.Name, InsideOptional: insideOptional}
		if f != nil {
			oc.InsideFold = true
			oc.FoldLocation = f.loc
		}
		b.meta.Outputs = append(b.meta.Outputs, oc)
	}
	for _, filt := range s.Filters {
		local := LocalField{FieldName: s.Name, ScalarType: s.ScalarType}
		pred, global := b.buildPredicate(local, filt)
		if global {
			b.globalFilters = append(b.globalFilters, Filter{Predicate: pred})
		} else {
			b.emit(Filter{Predicate: pred})
		}
	}
}

// walkMetaCount handles the `_x_count` meta-field: its value only exists
// once the enclosing fold has finished collecting, so every filter (and
// the field's own @output, handled via meta.Outputs using FieldName
// "_x_count") resolves against f.loc rather than the current scope.
func (b *Builder) walkMetaCount(s *compiler.Selection, insideOptional bool, f *fold) {
	var foldLoc Location
	if f != nil {
		foldLoc = f.loc
	}
	if s.Output != nil {
		b.meta.Outputs = append(b.meta.Outputs, OutputColumn{
			Name: *s.Output, ScalarType: schema.IntType,
			FieldName: "_x_count", InsideFold: true, InsideOptional: insideOptional, FoldLocation: foldLoc,
		})
	}
	for _, filt := range s.Filters {
		count := FoldCount{FoldLocation: foldLoc}
		pred, _ := b.buildPredicate(count, filt)
		b.globalFilters = append(b.globalFilters, Filter{Predicate: pred})
	}
}

func (b *Builder) walkVertex(s *compiler.Selection, loc Location, insideOptional bool, f *fold) {
	childLoc := b.nextLocation(loc, s.Name)

	switch {
	case s.Fold:
		fs := FoldScope{StartLocation: loc, Location: childLoc, EdgeName: s.EdgeName, Direction: s.Direction, TargetType: s.TargetType}
		b.meta.Folds = append(b.meta.Folds, fs)
		b.emit(Fold{StartLocation: loc, EdgeName: s.EdgeName, Direction: s.Direction, TargetType: s.TargetType})
		b.emit(MarkLocation{Location: childLoc})
		b.walk(s.Children, childLoc, insideOptional, &fold{loc: childLoc, fs: fs})
		b.emit(Unfold{})

	case s.RecurseDepth != nil:
		b.emit(Recurse{EdgeName: s.EdgeName, Direction: s.Direction, TargetType: s.TargetType, Depth: *s.RecurseDepth})
		b.emit(MarkLocation{Location: childLoc})
		b.walkVertexFilters(s, childLoc)
		b.walk(s.Children, childLoc, insideOptional, f)
		// A @recurse traversal, like @optional, must not eliminate the
		// outer row when it matches zero times (depth:1 is equivalent to
		// a single optional hop), so it closes the same way.
		b.emit(Backtrack{Location: loc})
		b.emit(EndOptional{})

	default:
		optionalHere := s.Optional
		b.emit(Traverse{
			EdgeName: s.EdgeName, Direction: s.Direction, TargetType: s.TargetType,
			Optional: optionalHere, WithinOptionalScope: insideOptional,
		})
		b.emit(MarkLocation{Location: childLoc})
		b.walkVertexFilters(s, childLoc)
		b.walk(s.Children, childLoc, insideOptional || optionalHere, f)
		if optionalHere {
			b.emit(Backtrack{Location: loc})
			b.emit(EndOptional{})
		}
		if s.OutputSource {
			b.emit(OutputSource{})
		}
	}
}

// walkVertexFilters lowers a vertex field's has_edge_degree @filter(s) —
// the only operator semantic analysis allows there (compiler.buildFilter
// rejects anything else) — against an EdgeDegree expression bound to
// loc, the traversal's own MarkLocation, rather than a scalar property.
func (b *Builder) walkVertexFilters(s *compiler.Selection, loc Location) {
	for _, filt := range s.Filters {
		pred, global := b.buildPredicate(EdgeDegree{Location: loc}, filt)
		if global {
			b.globalFilters = append(b.globalFilters, Filter{Predicate: pred})
		} else {
			b.emit(Filter{Predicate: pred})
		}
	}
}

// buildPredicate turns a Filter's operator and raw value list into an
// Expression applying it to fieldExpr, and reports whether the
// predicate must be deferred past GlobalOperationsStart because one of
// its value references a @tag bound inside a @fold.
func (b *Builder) buildPredicate(fieldExpr Expression, filt *compiler.Filter) (Expression, bool) {
	op := filterop.Lookup(filt.OpName)
	global := false

	values := make([]Expression, 0, len(filt.RawValues))
	for _, raw := range filt.RawValues {
		v, isGlobal := b.classifyValue(raw, filt.ScalarType)
		if isGlobal {
			global = true
		}
		values = append(values, v)
	}

	if op == nil {
		// Already reported during semantic analysis; emit a no-op-safe
		// predicate so lowering can still complete.
		return Literal{Value: true, ScalarType: schema.BooleanType}, global
	}

	switch op.Name {
	case "is_null":
		return IsNull{Value: fieldExpr}, global
	case "is_not_null":
		return Not{Value: IsNull{Value: fieldExpr}}, global
	case "between":
		return BinaryOp{Op: "between", Left: fieldExpr, Right: List{Items: values}}, global
	case "in_collection", "not_in_collection", "intersects":
		right := Expression(List{Items: values})
		if op.Name == "not_in_collection" {
			return Not{Value: BinaryOp{Op: "in_collection", Left: fieldExpr, Right: right}}, global
		}
		return BinaryOp{Op: op.Name, Left: fieldExpr, Right: right}, global
	case "not_contains":
		return Not{Value: BinaryOp{Op: "contains", Left: fieldExpr, Right: values[0]}}, global
	default:
		var right Expression
		if len(values) == 1 {
			right = values[0]
		} else if len(values) > 0 {
			right = List{Items: values}
		}
		return BinaryOp{Op: op.Name, Left: fieldExpr, Right: right}, global
	}
}

// classifyValue resolves one raw @filter value-list element into an
// Expression, recording parameters in Metadata.Params as they're first
// seen and reporting whether the reference crosses into a @fold-bound
// tag (which forces the owning predicate to become global).
func (b *Builder) classifyValue(raw string, t schema.ScalarType) (Expression, bool) {
	kind, name := directives.ClassifyValue(raw)
	switch kind {
	case directives.ParamRef:
		b.meta.addParam(name, t)
		return Variable{Name: name, ScalarType: t}, false
	case directives.TagRef:
		tb := b.meta.Tags[name]
		return TaggedValue{Location: tb.Location, FieldName: tb.FieldName, ScalarType: t}, b.tagInsideFold(name)
	default:
		v, err := schema.ParseScalar(t, raw)
		if err != nil {
			v = raw
		}
		return Literal{Value: v, ScalarType: t}, false
	}
}

// tagInsideFold reports whether the named tag was bound to a location
// that lies inside any recorded Fold scope's own collected subtree.
func (b *Builder) tagInsideFold(name string) bool {
	tb, ok := b.meta.Tags[name]
	if !ok {
		return false
	}
	for _, fs := range b.meta.Folds {
		if isUnder(tb.Location, fs.Location) {
			return true
		}
	}
	return false
}

// isUnder reports whether loc's path is the fold scope's path itself or
// a descendant of it — string-prefix containment over the '/'-joined
// path is sufficient because Location.Child always appends a new
// segment rather than mutating in place.
func isUnder(loc, foldScope Location) bool {
	l, f := loc.String(), foldScope.String()
	return l == f || (len(l) > len(f) && l[:len(f)] == f && l[len(f)] == '/')
}

func (b *Builder) outputExpression(oc OutputColumn) Expression {
	switch {
	case oc.FieldName == "_x_count":
		return FoldCount{FoldLocation: oc.FoldLocation}
	case oc.InsideFold:
		return FoldedField{FoldLocation: oc.FoldLocation, FieldName: oc.FieldName, ScalarType: oc.ScalarType}
	default:
		return TaggedValue{Location: oc.Location, FieldName: oc.FieldName, ScalarType: oc.ScalarType}
	}
}
