package testfixtures

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"
)

// PackagePath is the import path of the annotated fixture API.
const PackagePath = "github.com/broady/tycon/internal/testfixtures"

// Checked is a type-checked source file.
type Checked struct {
	Fset *token.FileSet
	File *ast.File
	Info *types.Info
	Pkg  *types.Package
}

// Check parses and type-checks src as the only file of its package.
// Imports are resolved from source.
func Check(tb testing.TB, src string) *Checked {
	tb.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "api.go", src, parser.ParseComments)
	if err != nil {
		tb.Fatalf("parse: %v", err)
	}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check(f.Name.Name, fset, []*ast.File{f}, info)
	if err != nil {
		tb.Fatalf("type-check: %v", err)
	}
	return &Checked{Fset: fset, File: f, Info: info, Pkg: pkg}
}

// TypeSpec returns the named type declaration and the doc comment that
// applies to it.
func (c *Checked) TypeSpec(tb testing.TB, name string) (*ast.TypeSpec, *ast.CommentGroup) {
	tb.Helper()
	for _, decl := range c.File.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			ts := s.(*ast.TypeSpec)
			if ts.Name.Name != name {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			return ts, doc
		}
	}
	tb.Fatalf("type %s not found", name)
	return nil, nil
}

// Field returns the field of struct type typeName whose first name is
// fieldName.
func (c *Checked) Field(tb testing.TB, typeName, fieldName string) *ast.Field {
	tb.Helper()
	ts, _ := c.TypeSpec(tb, typeName)
	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		tb.Fatalf("type %s is not a struct", typeName)
	}
	for _, f := range st.Fields.List {
		if len(f.Names) > 0 && f.Names[0].Name == fieldName {
			return f
		}
	}
	tb.Fatalf("field %s.%s not found", typeName, fieldName)
	return nil
}
