package parser

import (
	"fmt"
	"go/ast"
	"strconv"
	"strings"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
)

var roleTags = []string{TagPathParams, TagHeaders, TagRequest, TagResponse, TagError, TagDefaultError}

// Endpoint parses a struct type annotated with @endpoint METHOD PATH.
// doc is the type's doc comment, which for a single-spec declaration lives
// on the enclosing GenDecl.
//
// Each field of the struct plays one role selected by its tag: @pathParams,
// @headers, @request, @response, @error CODE or @defaultError. Fields
// without a role tag are ignored.
func (p *Parser) Endpoint(spec *ast.TypeSpec, doc *ast.CommentGroup) (*ir.Endpoint, error) {
	comment := annotation.Scan(doc)
	tag, ok := comment.Lookup(TagEndpoint)
	if !ok {
		panic(fmt.Sprintf("parser: Endpoint called on %s without @%s", spec.Name.Name, TagEndpoint))
	}

	method, route, _ := strings.Cut(tag.Text, " ")
	method = strings.ToUpper(strings.TrimSpace(method))
	route = strings.TrimSpace(route)
	if method == "" || route == "" {
		return nil, p.errorf(tag.Pos, "@%s needs a method and a path, e.g. \"GET /users/{id}\"", TagEndpoint)
	}
	if !ir.IsValidMethod(method) {
		return nil, p.errorf(tag.Pos, "unsupported HTTP method %q", method)
	}
	path, err := parsePath(route)
	if err != nil {
		return nil, &ParserError{Pos: p.position(tag.Pos), Msg: err.Error(), Err: err}
	}

	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, p.errorf(spec.Pos(), "endpoint %s must be a struct type", spec.Name.Name)
	}

	e := &ir.Endpoint{
		Name:         spec.Name.Name,
		Method:       method,
		Path:         path,
		Request:      ir.Void(),
		Response:     ir.Void(),
		DefaultError: ir.Unknown(),
		Documentation: ir.Documentation{
			Summary: comment.Summary(),
			Body:    comment.Description(),
		},
		Source: p.source(spec.Name.Pos()),
	}

	assigned := make(map[string]bool)
	for _, f := range st.Fields.List {
		fc := annotation.Scan(f.Doc)
		role, err := p.role(f, fc)
		if err != nil {
			return nil, err
		}
		if role == "" {
			continue
		}
		if role != TagError && assigned[role] {
			return nil, p.errorf(f.Pos(), "endpoint %s has more than one @%s field", e.Name, role)
		}
		assigned[role] = true

		switch role {
		case TagPathParams:
			if e.PathParams, err = p.PathParams(f); err != nil {
				return nil, err
			}
		case TagHeaders:
			if e.Headers, err = p.Headers(f); err != nil {
				return nil, err
			}
		case TagRequest:
			if e.Request, err = p.resolve(f.Type); err != nil {
				return nil, err
			}
		case TagResponse:
			if e.Response, err = p.resolve(f.Type); err != nil {
				return nil, err
			}
		case TagDefaultError:
			if e.DefaultError, err = p.resolve(f.Type); err != nil {
				return nil, err
			}
		case TagError:
			ce, err := p.customError(f, fc, e)
			if err != nil {
				return nil, err
			}
			e.CustomErrors = append(e.CustomErrors, ce)
		}
	}

	if err := p.bindPath(e, tag); err != nil {
		return nil, err
	}
	return e, nil
}

// role returns the single role tag on f, or "" if it has none.
func (p *Parser) role(f *ast.Field, fc annotation.Comment) (string, error) {
	var found []string
	for _, r := range roleTags {
		if fc.Has(r) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return found[0], nil
	default:
		return "", p.errorf(f.Pos(), "field %s has conflicting tags @%s", fieldName(f), strings.Join(found, ", @"))
	}
}

func (p *Parser) customError(f *ast.Field, fc annotation.Comment, e *ir.Endpoint) (ir.CustomError, error) {
	tag, _ := fc.Lookup(TagError)
	code, err := strconv.Atoi(strings.TrimSpace(tag.Text))
	if err != nil {
		return ir.CustomError{}, p.errorf(tag.Pos, "@%s needs a numeric status code, got %q", TagError, tag.Text)
	}
	if code < 100 || code > 599 || (code >= 200 && code < 300) {
		return ir.CustomError{}, p.errorf(tag.Pos, "status code %d is not an error status", code)
	}
	for _, ce := range e.CustomErrors {
		if ce.StatusCode == code {
			return ir.CustomError{}, p.errorf(tag.Pos, "endpoint %s declares status %d more than once", e.Name, code)
		}
	}
	typ, err := p.resolve(f.Type)
	if err != nil {
		return ir.CustomError{}, err
	}
	return ir.CustomError{StatusCode: code, Type: typ}, nil
}

// bindPath gives every placeholder the type of its path parameter and
// checks that the two sets agree.
func (p *Parser) bindPath(e *ir.Endpoint, tag annotation.Tag) error {
	var errs []string
	used := make(map[string]bool)
	for i, c := range e.Path {
		d, ok := c.(ir.DynamicSegment)
		if !ok {
			continue
		}
		param, ok := e.PathParam(d.Name)
		if !ok {
			errs = append(errs, fmt.Sprintf("placeholder %s has no path parameter", d.Name))
			continue
		}
		used[d.Name] = true
		e.Path[i] = ir.DynamicSegment{Name: d.Name, Type: param.Type}
	}
	for _, param := range e.PathParams {
		if !used[param.Name] {
			errs = append(errs, fmt.Sprintf("path parameter %s does not appear in the path", param.Name))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ParserError{
		Pos: p.position(tag.Pos),
		Msg: fmt.Sprintf("endpoint %s: %s", e.Name, strings.Join(errs, "; ")),
	}
}
