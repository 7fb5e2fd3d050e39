package parser

import (
	"fmt"
	"go/ast"
	"go/types"
	"net/http"
	"regexp"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
)

// headerName matches an RFC 9110 field-name token.
var headerName = regexp.MustCompile("^[A-Za-z0-9!#$%&'*+.^_`|~-]+$")

// Headers parses a field annotated with @headers into request headers in
// declaration order. Individual headers may be optional; the declaration
// itself may not.
//
// Headers panics if decl does not carry @headers.
func (p *Parser) Headers(decl *ast.Field) ([]ir.Header, error) {
	if !annotation.Scan(decl.Doc).Has(TagHeaders) {
		panic(fmt.Sprintf("parser: Headers called on %s without @%s", fieldName(decl), TagHeaders))
	}
	if isOptional(decl) {
		return nil, &OptionalNotAllowedError{Pos: p.position(decl.Pos()), Name: fieldName(decl), What: "headers"}
	}
	st, ok := decl.Type.(*ast.StructType)
	if !ok {
		return nil, p.errorf(decl.Type.Pos(), "headers %s must be declared as an inline struct", fieldName(decl))
	}

	var headers []ir.Header
	seen := make(map[string]bool)
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, p.errorf(f.Pos(), "embedded field %s is not supported in headers", fieldName(f))
		}
		if skipped(f) {
			continue
		}
		for _, ident := range f.Names {
			wire := propertyName(f, ident, "header")
			if wire == "" {
				return nil, p.errorf(ident.Pos(), "header name must not be empty")
			}
			if !headerName.MatchString(wire) {
				return nil, p.errorf(ident.Pos(), "header name %q is malformed", wire)
			}
			canonical := http.CanonicalHeaderKey(wire)
			if seen[canonical] {
				return nil, p.errorf(ident.Pos(), "duplicate header %q", wire)
			}
			seen[canonical] = true

			expr := f.Type
			if star, ok := expr.(*ast.StarExpr); ok {
				expr = star.X
			}
			typ, err := p.resolve(expr)
			if err != nil {
				return nil, err
			}
			if !ir.IsURLScalar(typ, p.Types) {
				return nil, p.errorf(f.Type.Pos(), "header %s has type %s; headers must be scalars", wire, types.ExprString(f.Type))
			}

			headers = append(headers, ir.Header{
				Name:        ident.Name,
				WireName:    wire,
				Type:        typ,
				Optional:    isOptional(f),
				Description: describe(f),
				Source:      p.source(ident.Pos()),
			})
		}
	}
	return headers, nil
}
