package ir

import (
	"sort"
	"strings"
)

// Example is a named sample value for a path parameter.
type Example struct {
	Name string

	// Value is the decoded JSON literal: string, float64, bool, or a
	// []any of those for array-typed parameters.
	Value any
}

// PathParam is a named, typed placeholder in an endpoint path.
type PathParam struct {
	// Name matches ^[\w-]+$ and is unique within its endpoint.
	Name        string
	Type        Type
	Description string
	Examples    []Example
	Source      Source
}

// Header is a request header the handler receives.
type Header struct {
	// Name is the Go field name.
	Name string

	// WireName is the HTTP header name.
	WireName    string
	Type        Type
	Optional    bool
	Description string
	Source      Source
}

// CustomError is an error payload type bound to a specific status code.
type CustomError struct {
	StatusCode int
	Type       Type
}

// PathComponent is one piece of an endpoint path template.
type PathComponent interface {
	pathComponent()
}

// StaticSegment is literal path text, slashes included.
type StaticSegment struct {
	Content string
}

func (StaticSegment) pathComponent() {}

// DynamicSegment is a path placeholder bound to a PathParam.
type DynamicSegment struct {
	Name string
	Type Type
}

func (DynamicSegment) pathComponent() {}

// Endpoint is a single HTTP operation.
type Endpoint struct {
	// Name is the endpoint identifier, e.g. "GetUser".
	Name string

	// Method is the upper-case HTTP method.
	Method string

	// Path is the ordered path template.
	Path []PathComponent

	// PathParams are sorted by name.
	PathParams []PathParam

	// Headers are in declaration order.
	Headers []Header

	// Request is the body type; VoidType when the endpoint takes no body.
	Request Type

	// Response is the 2xx payload type.
	Response Type

	// CustomErrors are in declaration order with unique status codes.
	CustomErrors []CustomError

	// DefaultError is the payload for any other non-2xx status.
	DefaultError Type

	Documentation Documentation
	Source        Source
}

// PathTemplate renders the path with :name placeholders.
func (e *Endpoint) PathTemplate() string {
	var sb strings.Builder
	for _, c := range e.Path {
		switch c := c.(type) {
		case StaticSegment:
			sb.WriteString(c.Content)
		case DynamicSegment:
			sb.WriteByte(':')
			sb.WriteString(c.Name)
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// DynamicSegments returns the path's placeholders in path order.
func (e *Endpoint) DynamicSegments() []DynamicSegment {
	var out []DynamicSegment
	for _, c := range e.Path {
		if d, ok := c.(DynamicSegment); ok {
			out = append(out, d)
		}
	}
	return out
}

// PathParam returns the path parameter with the given name.
func (e *Endpoint) PathParam(name string) (PathParam, bool) {
	i := sort.Search(len(e.PathParams), func(i int) bool {
		return e.PathParams[i].Name >= name
	})
	if i < len(e.PathParams) && e.PathParams[i].Name == name {
		return e.PathParams[i], true
	}
	return PathParam{}, false
}

// StatusCodes returns the custom error status codes in declaration order.
func (e *Endpoint) StatusCodes() []int {
	codes := make([]int, len(e.CustomErrors))
	for i, ce := range e.CustomErrors {
		codes[i] = ce.StatusCode
	}
	return codes
}
