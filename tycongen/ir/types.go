// Package ir defines the intermediate representation of an annotated API.
// Providers and parsers build it from Go source; generators walk it to emit
// TypeScript server code. Values in this package are treated as immutable
// once a provider returns them.
package ir

import "fmt"

// Kind identifies the category of a type expression.
type Kind int

const (
	KindPrimitive Kind = iota // STRING, INT32, BOOLEAN, ...
	KindArray                 // []T
	KindMap                   // map[string]V
	KindObject                // inline object with named properties
	KindEnum                  // closed set of string values
	KindReference             // reference to a named declaration in the TypeTable
	KindOptional              // T that may be absent
	KindVoid                  // no payload
	KindUnknown               // any JSON value
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindObject:
		return "Object"
	case KindEnum:
		return "Enum"
	case KindReference:
		return "Reference"
	case KindOptional:
		return "Optional"
	case KindVoid:
		return "Void"
	case KindUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// Type is a type expression. The set of implementations is closed.
type Type interface {
	// Kind returns the kind for type switching.
	Kind() Kind

	sealed()
}

type exprBase struct{}

func (exprBase) sealed() {}

// Documentation holds the free text extracted from a doc comment after
// annotation tags have been removed.
type Documentation struct {
	// Summary is the first paragraph.
	Summary string

	// Body is the complete text, including the summary.
	Body string
}

// IsZero reports whether the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == ""
}

// Source is a location in Go source code.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats s as file:line:col, dropping a zero column. The zero
// Source is "".
func (s Source) String() string {
	switch {
	case s.IsZero():
		return ""
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}
