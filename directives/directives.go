// Package directives describes the fixed set of custom directives this
// compiler recognizes: a descriptor per directive (name + allowed
// locations) with typed argument payloads decoded separately. There is
// no execution-time machinery here — this compiler never executes a
// resolver, it only type-checks and then lowers directive occurrences
// into IR.
package directives

// Location restricts where a directive may be written in the query.
type Location int

const (
	LocationPropertyField Location = iota
	LocationVertexField
	LocationInlineFragment
)

const (
	Output       = "output"
	Filter       = "filter"
	Tag          = "tag"
	Optional     = "optional"
	Fold         = "fold"
	Recurse      = "recurse"
	OutputSource = "output_source"
)

// Descriptor names a directive and the locations it may legally appear
// at. Argument shapes are decoded separately (see args.go) because each
// directive's payload is a distinct Go struct, not a generic map.
type Descriptor struct {
	Name      string
	Locations []Location
}

var registry = map[string]*Descriptor{
	Output: {
		Name:      Output,
		Locations: []Location{LocationPropertyField},
	},
	Filter: {
		Name:      Filter,
		Locations: []Location{LocationPropertyField, LocationInlineFragment},
	},
	Tag: {
		Name:      Tag,
		Locations: []Location{LocationPropertyField},
	},
	Optional: {
		Name:      Optional,
		Locations: []Location{LocationVertexField},
	},
	Fold: {
		Name:      Fold,
		Locations: []Location{LocationVertexField},
	},
	Recurse: {
		Name:      Recurse,
		Locations: []Location{LocationVertexField},
	},
	OutputSource: {
		Name:      OutputSource,
		Locations: []Location{LocationVertexField},
	},
}

// Lookup returns the descriptor for a directive name, or nil if the name
// is not one of the seven directives this compiler recognizes.
func Lookup(name string) *Descriptor {
	return registry[name]
}

// AllowedAt reports whether the directive may be written at loc.
func (d *Descriptor) AllowedAt(loc Location) bool {
	for _, l := range d.Locations {
		if l == loc {
			return true
		}
	}
	return false
}
