// Package parser turns annotated Go declarations into validated IR nodes.
//
// A Parser is created per package load. It reads the Go type information,
// the shared type table and source positions, and never mutates any of
// them; named types are registered by the injected Resolver.
package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
)

// Annotation tag names.
const (
	TagEndpoint     = "endpoint"
	TagPathParams   = "pathParams"
	TagHeaders      = "headers"
	TagRequest      = "request"
	TagResponse     = "response"
	TagError        = "error"
	TagDefaultError = "defaultError"
	TagExample      = "example"
)

// Resolver converts Go types into IR types.
type Resolver interface {
	Resolve(t types.Type) (ir.Type, error)
}

// Loci maps token positions to source locations. *token.FileSet
// implements it.
type Loci interface {
	Position(p token.Pos) token.Position
}

// Parser parses annotated declarations of a single package load.
type Parser struct {
	// Info holds type information for the syntax being parsed.
	Info *types.Info

	// Types is the shared type table, used to resolve references.
	Types *ir.TypeTable

	// Loci locates syntax nodes for diagnostics.
	Loci Loci

	// Resolver converts property types.
	Resolver Resolver
}

func (p *Parser) position(pos token.Pos) token.Position {
	if p.Loci == nil || !pos.IsValid() {
		return token.Position{}
	}
	return p.Loci.Position(pos)
}

func (p *Parser) source(pos token.Pos) ir.Source {
	position := p.position(pos)
	return ir.Source{File: position.Filename, Line: position.Line, Column: position.Column}
}

func (p *Parser) errorf(pos token.Pos, format string, args ...any) *ParserError {
	return &ParserError{Pos: p.position(pos), Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) resolve(expr ast.Expr) (ir.Type, error) {
	t := p.Info.TypeOf(expr)
	if t == nil {
		return nil, p.errorf(expr.Pos(), "no type information for %s", types.ExprString(expr))
	}
	typ, err := p.Resolver.Resolve(t)
	if err != nil {
		return nil, &ParserError{Pos: p.position(expr.Pos()), Msg: err.Error(), Err: err}
	}
	return typ, nil
}

// fieldTag returns the unquoted struct tag of f.
func fieldTag(f *ast.Field) reflect.StructTag {
	if f.Tag == nil {
		return ""
	}
	s, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return ""
	}
	return reflect.StructTag(s)
}

// jsonTag returns the json name and options of f.
func jsonTag(f *ast.Field) (name string, opts []string) {
	v, ok := fieldTag(f).Lookup("json")
	if !ok {
		return "", nil
	}
	parts := strings.Split(v, ",")
	return parts[0], parts[1:]
}

// isOptional reports whether f is a pointer or carries omitempty/omitzero.
func isOptional(f *ast.Field) bool {
	if _, ok := f.Type.(*ast.StarExpr); ok {
		return true
	}
	_, opts := jsonTag(f)
	for _, o := range opts {
		if o == "omitempty" || o == "omitzero" {
			return true
		}
	}
	return false
}

// propertyName picks the serialized name of a property: the named tag if
// present (even when empty), then the json name, then the Go name.
func propertyName(f *ast.Field, ident *ast.Ident, tagKey string) string {
	if v, ok := fieldTag(f).Lookup(tagKey); ok {
		name, _, _ := strings.Cut(v, ",")
		return name
	}
	if name, _ := jsonTag(f); name != "" && name != "-" {
		return name
	}
	return ident.Name
}

// skipped reports whether f is excluded from JSON by json:"-".
func skipped(f *ast.Field) bool {
	name, opts := jsonTag(f)
	return name == "-" && len(opts) == 0
}

// describe returns the trimmed description of a field: its doc comment
// with tags removed, or its trailing line comment.
func describe(f *ast.Field) string {
	if d := annotation.Scan(f.Doc).Description(); d != "" {
		return d
	}
	return annotation.Scan(f.Comment).Description()
}

// fieldName returns a printable name for a declaration field.
func fieldName(f *ast.Field) string {
	if len(f.Names) > 0 {
		return f.Names[0].Name
	}
	return types.ExprString(f.Type)
}
