package parser

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/types"
	"regexp"
	"slices"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
)

var pathParamName = regexp.MustCompile(`^[\w-]*$`)

// PathParams parses a field annotated with @pathParams into path
// parameters sorted by name.
//
// The field must be a required inline struct. Each property must be
// required, named by ^[\w-]+$ and of a URL-safe type. Examples attached
// with @example must match the property's type. The first violation is
// returned as a *ParserError or *OptionalNotAllowedError.
//
// PathParams panics if decl does not carry @pathParams.
func (p *Parser) PathParams(decl *ast.Field) ([]ir.PathParam, error) {
	if !annotation.Scan(decl.Doc).Has(TagPathParams) {
		panic(fmt.Sprintf("parser: PathParams called on %s without @%s", fieldName(decl), TagPathParams))
	}
	if isOptional(decl) {
		return nil, &OptionalNotAllowedError{Pos: p.position(decl.Pos()), Name: fieldName(decl), What: "path parameters"}
	}
	st, ok := decl.Type.(*ast.StructType)
	if !ok {
		return nil, p.errorf(decl.Type.Pos(), "path parameters %s must be declared as an inline struct", fieldName(decl))
	}

	var params []ir.PathParam
	seen := make(map[string]bool)
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, p.errorf(f.Pos(), "embedded field %s is not supported in path parameters", fieldName(f))
		}
		if skipped(f) {
			continue
		}
		for _, ident := range f.Names {
			param, err := p.pathParam(f, ident)
			if err != nil {
				return nil, err
			}
			if seen[param.Name] {
				return nil, p.errorf(ident.Pos(), "duplicate path parameter %q", param.Name)
			}
			seen[param.Name] = true
			params = append(params, param)
		}
	}

	// Names are unique, so the order is total.
	slices.SortFunc(params, func(a, b ir.PathParam) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return params, nil
}

func (p *Parser) pathParam(f *ast.Field, ident *ast.Ident) (ir.PathParam, error) {
	name := propertyName(f, ident, "path")
	if isOptional(f) {
		return ir.PathParam{}, &OptionalNotAllowedError{Pos: p.position(ident.Pos()), Name: name, What: "path parameter"}
	}
	if !pathParamName.MatchString(name) {
		return ir.PathParam{}, p.errorf(ident.Pos(), "path parameter name %q is malformed: must match %s", name, pathParamName)
	}
	if name == "" {
		return ir.PathParam{}, p.errorf(ident.Pos(), "path parameter name must not be empty")
	}

	typ, err := p.resolve(f.Type)
	if err != nil {
		return ir.PathParam{}, err
	}
	if !ir.IsURLSafe(typ, p.Types) {
		return ir.PathParam{}, p.errorf(f.Type.Pos(), "path parameter %s has type %s, which cannot be carried in a URL", name, types.ExprString(f.Type))
	}

	examples, err := p.examples(annotation.Scan(f.Doc).All(TagExample), typ)
	if err != nil {
		return ir.PathParam{}, err
	}

	return ir.PathParam{
		Name:        name,
		Type:        typ,
		Description: describe(f),
		Examples:    examples,
		Source:      p.source(ident.Pos()),
	}, nil
}
