package match

import (
	"fmt"
	"strings"

	"github.com/traverseql/gqlc/schema"
)

// renderProgram renders e.steps as a single MATCH pattern when no
// top-level compound optional is present, or as a UNIONALL of 2^n
// branches — one per present/absent combination of the top-level
// compound optionals — when at least one is. Nested
// spans inside a compound span are dropped along with it, since they
// can't independently be present once their parent branch is absent;
// this is why only top-level spans are enumerated, not every span.
// More than 8 top-level compound optionals are not expanded: the
// single pattern from render is returned instead of 2^9+ branches.
func (e *emitter) renderProgram() string {
	top := topLevelCompoundSpans(e.spans)
	if len(top) == 0 {
		return e.render()
	}
	if len(top) > 8 {
		// 2^9+ branches is impractical to emit; cap and fall back to the
		// flat (always-present) rendering, documented as a known limit.
		return e.render()
	}

	// Branch order is the ascending subset bitmask, so output is
	// byte-deterministic for a fixed input.
	branches := make([]string, 0, 1<<uint(len(top)))
	for mask := 0; mask < (1 << uint(len(top))); mask++ {
		excluded := make(map[int]bool)
		materialized := make(map[int]bool)
		var excludedSpans []optionalSpan
		for bit, span := range top {
			if mask&(1<<uint(bit)) == 0 {
				for idx := span.start; idx <= span.end; idx++ {
					excluded[idx] = true
				}
				excludedSpans = append(excludedSpans, span)
			} else {
				for idx := span.start; idx <= span.end; idx++ {
					materialized[idx] = true
				}
			}
		}
		branches = append(branches, e.renderExcluding(excluded, materialized, excludedSpans))
	}
	return fmt.Sprintf("UNIONALL(\n  %s\n)", joinBranches(branches))
}

// topLevelCompoundSpans returns the compound spans that are not nested
// inside any other span.
func topLevelCompoundSpans(spans []optionalSpan) []optionalSpan {
	var top []optionalSpan
	for _, s := range spans {
		if !s.compound {
			continue
		}
		nested := false
		for _, other := range spans {
			if other.start < s.start && other.end >= s.end && !(other.start == s.start && other.end == s.end) {
				nested = true
				break
			}
		}
		if !nested {
			top = append(top, s)
		}
	}
	return top
}

func joinBranches(branches []string) string {
	out := ""
	for i, b := range branches {
		if i > 0 {
			out += ",\n  "
		}
		out += "(" + b + ")"
	}
	return out
}

// renderExcluding renders e.steps as one MATCH pattern skipping every
// step index present in excluded — one UNIONALL branch for a particular
// present/absent combination of compound optionals. Eliding a branch's
// traversal isn't enough on its own: the elided
// pattern is still a strict superset of the "present" branch (it simply
// has fewer steps, so it still matches every row where the edge exists
// too), which would make the branches overlap instead of partition the
// result. So for every excludedSpans entry this branch dropped, the
// rendered pattern also gains a WHERE clause asserting that traversal's
// edge does not exist, making the branches pairwise disjoint.
// Each branch also carries its own RETURN: output columns whose backing
// step was elided in this branch are projected as null rather than left
// dangling against an alias the branch's pattern never binds.
func (e *emitter) renderExcluding(excluded, materialized map[int]bool, excludedSpans []optionalSpan) string {
	var disjoint []string
	for _, span := range excludedSpans {
		// The elided traversal's alias is never bound in this branch, so
		// the edge-absent assertion reads the parent vertex's own edge
		// field instead: <parent alias>.<out_/in_><edge name>.
		parent := span.start - 1
		for parent > 0 && excluded[parent] {
			parent--
		}
		st := e.steps[span.start]
		prefix := "out_"
		if st.dir == schema.In {
			prefix = "in_"
		}
		edgeRef := e.steps[parent].alias + "." + prefix + st.edge
		disjoint = append(disjoint, fmt.Sprintf("(%s IS null OR %s.size() = 0)", edgeRef, edgeRef))
	}

	excludedAliases := map[string]bool{}
	for idx := range excluded {
		excludedAliases[e.steps[idx].alias] = true
	}

	save := e.steps
	filtered := make([]*step, 0, len(e.steps))
	for i, st := range e.steps {
		if excluded[i] {
			continue
		}
		// A materialized compound optional's traversal is present with no
		// optionality: the "edge absent" rows live in the complementary
		// branch instead.
		if materialized[i] && st.optional {
			cp := *st
			cp.optional = false
			filtered = append(filtered, &cp)
			continue
		}
		filtered = append(filtered, st)
	}
	e.steps = filtered
	text := e.renderPatternOnly()
	e.steps = save

	where := append(append([]string{}, disjoint...), e.globalWhere...)
	if len(where) > 0 {
		text += "\nWHERE " + strings.Join(where, " AND ")
	}
	text += "\nRETURN " + e.renderReturn(excludedAliases)
	return text
}
