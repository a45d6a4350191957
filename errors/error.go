// Package errors defines the typed error taxonomy every stage of the
// compiler surfaces to its caller: parsing, schema resolution, semantic
// analysis, IR lowering and the backends all report through GraphQLError.
package errors

import "fmt"

// Kind identifies which family of the compiler's error taxonomy a
// GraphQLError belongs to. Kind is informational only — callers should
// not branch on it to attempt local recovery; there is none.
type Kind string

const (
	ParseError             Kind = "ParseError"
	SchemaError            Kind = "SchemaError"
	TypeError              Kind = "TypeError"
	DirectiveError         Kind = "DirectiveError"
	FilterArgumentError    Kind = "FilterArgumentError"
	NotSupportedByBackend  Kind = "NotSupportedByBackend"
	InternalAssertionError Kind = "InternalAssertionError"
)

type GraphQLError struct {
	Message    string                 `json:"message"`
	Kind       Kind                   `json:"kind,omitempty"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Rule       string                 `json:"-"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (err *GraphQLError) Error() string {
	if err == nil {
		return "<nil>"
	}
	str := fmt.Sprintf("%s: %s", err.Kind, err.Message)
	for _, loc := range err.Locations {
		str += fmt.Sprintf(" (%d:%d)", loc.Line, loc.Column)
	}
	if err.Path != nil {
		str += fmt.Sprintf(" path: %v", err.Path)
	}
	return str
}

// MultiError aggregates every validation failure collected from a single
// compile call; semantic analysis does not stop at the first error.
type MultiError []*GraphQLError

func (m MultiError) Error() string {
	var res string
	for _, err := range m {
		res += err.Error() + "\n"
	}
	return res
}

var _ error = (*GraphQLError)(nil)

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (a Location) Before(b Location) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
}

func New(kind Kind, format string, arg ...interface{}) *GraphQLError {
	return &GraphQLError{
		Kind:    kind,
		Message: fmt.Sprintf(format, arg...),
	}
}

func NewAt(kind Kind, loc Location, format string, arg ...interface{}) *GraphQLError {
	return &GraphQLError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, arg...),
		Locations: []Location{loc},
	}
}
