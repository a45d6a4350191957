package ir

import "strconv"

// Location is a value-typed, hashable handle for a scope: an ordered path
// of vertex-field steps from the root, plus a disambiguating visit
// counter when the same path is entered multiple times. Two Locations
// compare equal with ==, which is what lets
// them serve as map keys for tags and backtrack targets without any
// cyclic ownership between IR nodes.
type Location struct {
	path  string // vertex-field steps joined by '/', a re-entered step suffixed "#visit"
	visit int    // disambiguates re-entering the same path
}

// Root is the location of the query's starting vertex.
var Root = Location{}

// Child returns the location reached by traversing edgeStep (e.g.
// "out_Animal_ParentOf") from l, assigning it visit index n (0 for the
// first time this path is entered). l's own visit index stays in the
// child's path, so children of two visits of one path are distinct.
func (l Location) Child(edgeStep string, visit int) Location {
	p := edgeStep
	if l.path != "" {
		p = l.String() + "/" + edgeStep
	}
	return Location{path: p, visit: visit}
}

func (l Location) String() string {
	if l.path == "" {
		return "<root>"
	}
	if l.visit == 0 {
		return l.path
	}
	return l.path + "#" + strconv.Itoa(l.visit)
}
