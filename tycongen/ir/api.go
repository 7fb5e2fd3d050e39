package ir

import (
	"fmt"
	"net/http"
)

// Api is the root of the IR: ordered endpoints plus the type declarations
// they reference.
type Api struct {
	// Name identifies the API, usually the last element of the package path.
	Name string

	// Types holds every named declaration reachable from an endpoint.
	Types *TypeTable

	endpoints []*Endpoint
	byName    map[string]*Endpoint
}

// NewApi returns an empty Api with its own TypeTable.
func NewApi(name string) *Api {
	return &Api{
		Name:   name,
		Types:  NewTypeTable(),
		byName: make(map[string]*Endpoint),
	}
}

// AddEndpoint appends e. A second endpoint with an existing name is an
// error.
func (a *Api) AddEndpoint(e *Endpoint) error {
	if a.byName == nil {
		a.byName = make(map[string]*Endpoint)
	}
	if _, ok := a.byName[e.Name]; ok {
		return fmt.Errorf("duplicate endpoint %s", e.Name)
	}
	a.endpoints = append(a.endpoints, e)
	a.byName[e.Name] = e
	return nil
}

// Endpoints returns the endpoints in insertion order.
func (a *Api) Endpoints() []*Endpoint {
	return a.endpoints
}

// Endpoint looks up an endpoint by name.
func (a *Api) Endpoint(name string) (*Endpoint, bool) {
	e, ok := a.byName[name]
	return e, ok
}

var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// IsValidMethod reports whether m is an HTTP method endpoints may use.
func IsValidMethod(m string) bool {
	return validMethods[m]
}

// Validate checks the Api for structural issues.
// Returns all validation errors found (not just the first).
func (a *Api) Validate() []error {
	var errs []error
	add := func(code, format string, args ...any) {
		errs = append(errs, &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	for _, d := range a.Types.All() {
		for _, e := range a.danglingReferences(d.Type) {
			add("missing_type_reference", "type %s references unknown type: %s", d.Name, e)
		}
	}

	routes := make(map[string]string)
	for _, e := range a.endpoints {
		if !IsValidMethod(e.Method) {
			add("invalid_method", "endpoint %s: unsupported HTTP method %q", e.Name, e.Method)
		}

		key := e.Method + " " + e.PathTemplate()
		if prev, ok := routes[key]; ok {
			add("duplicate_route", "endpoints %s and %s both handle %s", prev, e.Name, key)
		}
		routes[key] = e.Name

		segments := make(map[string]bool)
		for _, d := range e.DynamicSegments() {
			if segments[d.Name] {
				add("duplicate_segment", "endpoint %s: path placeholder %s appears more than once", e.Name, d.Name)
			}
			segments[d.Name] = true
			if _, ok := e.PathParam(d.Name); !ok {
				add("undeclared_path_param", "endpoint %s: path placeholder %s has no path parameter", e.Name, d.Name)
			}
		}
		for i, p := range e.PathParams {
			if !segments[p.Name] {
				add("unused_path_param", "endpoint %s: path parameter %s does not appear in the path", e.Name, p.Name)
			}
			if i > 0 && e.PathParams[i-1].Name >= p.Name {
				add("unsorted_path_params", "endpoint %s: path parameters are not sorted by name", e.Name)
			}
		}

		wire := make(map[string]bool)
		for _, h := range e.Headers {
			k := http.CanonicalHeaderKey(h.WireName)
			if wire[k] {
				add("duplicate_header", "endpoint %s: header %s declared more than once", e.Name, h.WireName)
			}
			wire[k] = true
		}

		codes := make(map[int]bool)
		for _, ce := range e.CustomErrors {
			if ce.StatusCode < 100 || ce.StatusCode > 599 {
				add("invalid_status", "endpoint %s: status code %d out of range", e.Name, ce.StatusCode)
			} else if ce.StatusCode >= 200 && ce.StatusCode < 300 {
				add("invalid_status", "endpoint %s: custom error status %d is a success status", e.Name, ce.StatusCode)
			}
			if codes[ce.StatusCode] {
				add("duplicate_status", "endpoint %s: status code %d declared more than once", e.Name, ce.StatusCode)
			}
			codes[ce.StatusCode] = true
		}

		for _, t := range endpointTypes(e) {
			for _, name := range a.danglingReferences(t) {
				add("missing_type_reference", "endpoint %s references unknown type: %s", e.Name, name)
			}
		}
	}
	return errs
}

func endpointTypes(e *Endpoint) []Type {
	types := []Type{e.Request, e.Response, e.DefaultError}
	for _, p := range e.PathParams {
		types = append(types, p.Type)
	}
	for _, h := range e.Headers {
		types = append(types, h.Type)
	}
	for _, ce := range e.CustomErrors {
		types = append(types, ce.Type)
	}
	return types
}

func (a *Api) danglingReferences(t Type) []string {
	var missing []string
	Walk(t, func(t Type) {
		if ref, ok := t.(*ReferenceType); ok {
			if _, found := a.Types.Lookup(ref.Name); !found {
				missing = append(missing, ref.Name)
			}
		}
	})
	return missing
}

// Walk calls fn for t and every type nested in it. References are not
// followed.
func Walk(t Type, fn func(Type)) {
	if t == nil {
		return
	}
	fn(t)
	switch t := t.(type) {
	case *ArrayType:
		Walk(t.Element, fn)
	case *MapType:
		Walk(t.Value, fn)
	case *OptionalType:
		Walk(t.Element, fn)
	case *ObjectType:
		for _, p := range t.Properties {
			Walk(p.Type, fn)
		}
	}
}

// References returns the distinct declaration names referenced by types,
// in first-seen order.
func References(types ...Type) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range types {
		Walk(t, func(t Type) {
			if ref, ok := t.(*ReferenceType); ok && !seen[ref.Name] {
				seen[ref.Name] = true
				names = append(names, ref.Name)
			}
		})
	}
	return names
}

// ValidationError represents an Api validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
