// Package provider loads annotated Go packages and builds the API
// intermediate representation from them.
package provider

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/parser"
	"golang.org/x/tools/go/packages"
)

// SourceProvider extracts endpoints by analyzing Go source code.
type SourceProvider struct {
	// Logger receives warnings about lossy type mappings.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// SourceInputOptions configures source-based extraction.
type SourceInputOptions struct {
	// Packages are the Go package patterns to analyze.
	Packages []string

	// Dir is the working directory for package loading.
	// Empty means the current directory.
	Dir string

	// Env overrides the environment for the go command, if non-nil.
	Env []string

	// Name is the API name. Defaults to the last element of the first
	// package path.
	Name string
}

// BuildApi loads the packages and returns the Api declared in them.
//
// Every @endpoint declaration is parsed independently; the errors of all
// failing declarations are joined. The returned Api has not been
// validated.
func (p *SourceProvider) BuildApi(ctx context.Context, opts SourceInputOptions) (*ir.Api, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Env:     opts.Env,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %s", strings.Join(opts.Packages, " "))
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0])
		}
	}
	slices.SortFunc(pkgs, func(a, b *packages.Package) int {
		return strings.Compare(a.PkgPath, b.PkgPath)
	})

	name := opts.Name
	if name == "" {
		name = path.Base(pkgs[0].PkgPath)
	}
	api := ir.NewApi(name)

	var errs []error
	for _, pkg := range pkgs {
		logger.Debug("scanning package", slog.String("package", pkg.PkgPath), slog.Int("files", len(pkg.Syntax)))
		resolver := NewTypeResolver(api.Types, pkg.Fset, pkg.Syntax, logger)
		ps := &parser.Parser{
			Info:     pkg.TypesInfo,
			Types:    api.Types,
			Loci:     pkg.Fset,
			Resolver: resolver,
		}
		errs = append(errs, addEndpoints(api, ps, pkg.Syntax, pkg.Fset)...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return api, nil
}

// BuildApiFromFiles builds an Api from already type-checked files. It is
// used by callers that parse in memory rather than through the go command.
func BuildApiFromFiles(name string, fset *token.FileSet, files []*ast.File, info *types.Info, logger *slog.Logger) (*ir.Api, error) {
	api := ir.NewApi(name)
	ps := &parser.Parser{
		Info:     info,
		Types:    api.Types,
		Loci:     fset,
		Resolver: NewTypeResolver(api.Types, fset, files, logger),
	}
	if errs := addEndpoints(api, ps, files, fset); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return api, nil
}

func addEndpoints(api *ir.Api, ps *parser.Parser, files []*ast.File, fset *token.FileSet) []error {
	var errs []error
	for _, spec := range FindEndpoints(files) {
		e, err := ps.Endpoint(spec.Spec, spec.Doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := api.AddEndpoint(e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fset.Position(spec.Spec.Pos()), err))
		}
	}
	return errs
}

// EndpointSpec is a type declaration carrying @endpoint.
type EndpointSpec struct {
	Spec *ast.TypeSpec

	// Doc is the comment that carries the tag: the spec's own doc or, for
	// a single-spec declaration, the GenDecl's.
	Doc *ast.CommentGroup
}

// FindEndpoints returns the @endpoint declarations in files, in source
// order.
func FindEndpoints(files []*ast.File) []EndpointSpec {
	var out []EndpointSpec
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, s := range gd.Specs {
				ts := s.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if annotation.Scan(doc).Has(parser.TagEndpoint) {
					out = append(out, EndpointSpec{Spec: ts, Doc: doc})
				}
			}
		}
	}
	return out
}
