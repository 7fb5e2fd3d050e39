package ir

import "encoding/json"

// JSON serialization support for IR types.
// All type expressions include a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for PrimitiveType.
func (t *PrimitiveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind          string `json:"kind"`
		PrimitiveKind string `json:"primitiveKind"`
	}{
		Kind:          "primitive",
		PrimitiveKind: t.PrimitiveKind.String(),
	})
}

// MarshalJSON implements json.Marshaler for ArrayType.
func (t *ArrayType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string `json:"kind"`
		Element Type   `json:"element"`
	}{
		Kind:    "array",
		Element: t.Element,
	})
}

// MarshalJSON implements json.Marshaler for MapType.
func (t *MapType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind  string `json:"kind"`
		Value Type   `json:"value"`
	}{
		Kind:  "map",
		Value: t.Value,
	})
}

// MarshalJSON implements json.Marshaler for ObjectType.
func (t *ObjectType) MarshalJSON() ([]byte, error) {
	props := t.Properties
	if props == nil {
		props = []Property{}
	}
	return json.Marshal(&struct {
		Kind       string     `json:"kind"`
		Properties []Property `json:"properties"`
	}{
		Kind:       "object",
		Properties: props,
	})
}

// MarshalJSON implements json.Marshaler for Property.
func (p Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name        string `json:"name"`
		Type        Type   `json:"type"`
		Optional    bool   `json:"optional,omitempty"`
		ValidateTag string `json:"validateTag,omitempty"`
		Doc         string `json:"doc,omitempty"`
	}{
		Name:        p.Name,
		Type:        p.Type,
		Optional:    p.Optional,
		ValidateTag: p.ValidateTag,
		Doc:         p.Documentation.Summary,
	})
}

// MarshalJSON implements json.Marshaler for EnumType.
func (t *EnumType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind   string   `json:"kind"`
		Values []string `json:"values"`
	}{
		Kind:   "enum",
		Values: t.Values,
	})
}

// MarshalJSON implements json.Marshaler for ReferenceType.
func (t *ReferenceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{
		Kind: "reference",
		Name: t.Name,
	})
}

// MarshalJSON implements json.Marshaler for OptionalType.
func (t *OptionalType) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string `json:"kind"`
		Element Type   `json:"element"`
	}{
		Kind:    "optional",
		Element: t.Element,
	})
}

// MarshalJSON implements json.Marshaler for VoidType.
func (t *VoidType) MarshalJSON() ([]byte, error) {
	return []byte(`{"kind":"void"}`), nil
}

// MarshalJSON implements json.Marshaler for UnknownType.
func (t *UnknownType) MarshalJSON() ([]byte, error) {
	return []byte(`{"kind":"unknown"}`), nil
}

// MarshalJSON implements json.Marshaler for TypeDeclaration.
func (d *TypeDeclaration) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name    string `json:"name"`
		Package string `json:"package,omitempty"`
		Type    Type   `json:"type"`
		Doc     string `json:"doc,omitempty"`
		Source  Source `json:"source"`
	}{
		Name:    d.Name,
		Package: d.Package,
		Type:    d.Type,
		Doc:     d.Documentation.Summary,
		Source:  d.Source,
	})
}

// MarshalJSON implements json.Marshaler for StaticSegment.
func (s StaticSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string `json:"kind"`
		Content string `json:"content"`
	}{
		Kind:    "static",
		Content: s.Content,
	})
}

// MarshalJSON implements json.Marshaler for DynamicSegment.
func (s DynamicSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
		Type Type   `json:"type"`
	}{
		Kind: "dynamic",
		Name: s.Name,
		Type: s.Type,
	})
}

// MarshalJSON implements json.Marshaler for Source.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column,omitempty"`
	}{
		File:   s.File,
		Line:   s.Line,
		Column: s.Column,
	})
}

// MarshalJSON implements json.Marshaler for PathParam.
func (p PathParam) MarshalJSON() ([]byte, error) {
	examples := p.Examples
	if examples == nil {
		examples = []Example{}
	}
	return json.Marshal(&struct {
		Name        string    `json:"name"`
		Type        Type      `json:"type"`
		Description string    `json:"description,omitempty"`
		Examples    []Example `json:"examples"`
	}{
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		Examples:    examples,
	})
}

// MarshalJSON implements json.Marshaler for Example.
func (e Example) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}{
		Name:  e.Name,
		Value: e.Value,
	})
}

// MarshalJSON implements json.Marshaler for Header.
func (h Header) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name        string `json:"name"`
		WireName    string `json:"wireName"`
		Type        Type   `json:"type"`
		Optional    bool   `json:"optional,omitempty"`
		Description string `json:"description,omitempty"`
	}{
		Name:        h.Name,
		WireName:    h.WireName,
		Type:        h.Type,
		Optional:    h.Optional,
		Description: h.Description,
	})
}

// MarshalJSON implements json.Marshaler for CustomError.
func (ce CustomError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		StatusCode int  `json:"statusCode"`
		Type       Type `json:"type"`
	}{
		StatusCode: ce.StatusCode,
		Type:       ce.Type,
	})
}

// MarshalJSON implements json.Marshaler for Endpoint.
func (e *Endpoint) MarshalJSON() ([]byte, error) {
	path := e.Path
	if path == nil {
		path = []PathComponent{}
	}
	return json.Marshal(&struct {
		Name         string          `json:"name"`
		Method       string          `json:"method"`
		Route        string          `json:"route"`
		Path         []PathComponent `json:"path"`
		PathParams   []PathParam     `json:"pathParams,omitempty"`
		Headers      []Header        `json:"headers,omitempty"`
		Request      Type            `json:"request"`
		Response     Type            `json:"response"`
		CustomErrors []CustomError   `json:"customErrors,omitempty"`
		DefaultError Type            `json:"defaultError"`
		Doc          string          `json:"doc,omitempty"`
		Source       Source          `json:"source"`
	}{
		Name:         e.Name,
		Method:       e.Method,
		Route:        e.PathTemplate(),
		Path:         path,
		PathParams:   e.PathParams,
		Headers:      e.Headers,
		Request:      e.Request,
		Response:     e.Response,
		CustomErrors: e.CustomErrors,
		DefaultError: e.DefaultError,
		Doc:          e.Documentation.Summary,
		Source:       e.Source,
	})
}

// MarshalJSON implements json.Marshaler for Api.
func (a *Api) MarshalJSON() ([]byte, error) {
	endpoints := a.endpoints
	if endpoints == nil {
		endpoints = []*Endpoint{}
	}
	types := a.Types.All()
	if types == nil {
		types = []*TypeDeclaration{}
	}
	return json.Marshal(&struct {
		Name      string             `json:"name"`
		Endpoints []*Endpoint        `json:"endpoints"`
		Types     []*TypeDeclaration `json:"types"`
	}{
		Name:      a.Name,
		Endpoints: endpoints,
		Types:     types,
	})
}
