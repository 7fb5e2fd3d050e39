// Package flavor emits validators.ts: runtime schemas for every named
// type plus the per-endpoint validators the generated server calls.
package flavor

import (
	"bytes"
	"fmt"

	"github.com/broady/tycon/tycongen/ir"
)

// Flavor is a validator emission strategy.
type Flavor interface {
	// Name returns the flavor identifier ("zod", "zod-mini").
	Name() string

	// EmitPreamble returns the module header and imports.
	EmitPreamble(ctx *EmitContext) []byte

	// EmitDeclaration returns the schema for one named type.
	EmitDeclaration(ctx *EmitContext, d *ir.TypeDeclaration) []byte

	// EmitEndpoint returns the validators for one endpoint, named as
	// the functions in naming.go describe.
	EmitEndpoint(ctx *EmitContext, e *ir.Endpoint) []byte
}

// EmitContext carries shared state for one validators.ts.
type EmitContext struct {
	Types     *ir.TypeTable
	IndentStr string

	// Warnings collects rules that could not be translated.
	Warnings []string
}

// AddWarning records a non-fatal issue.
func (ctx *EmitContext) AddWarning(format string, args ...any) {
	ctx.Warnings = append(ctx.Warnings, fmt.Sprintf(format, args...))
}

// Names lists the known flavors.
func Names() []string {
	return []string{"zod", "zod-mini"}
}

// Get returns a flavor by name.
func Get(name string) (Flavor, error) {
	switch name {
	case "zod":
		return &ZodFlavor{}, nil
	case "zod-mini":
		return &ZodFlavor{mini: true}, nil
	default:
		return nil, fmt.Errorf("unknown flavor: %q", name)
	}
}

// Generate renders validators.ts for api: all declarations first, in
// table order, then the endpoint validators in endpoint order.
func Generate(f Flavor, ctx *EmitContext, api *ir.Api) []byte {
	if ctx.Types == nil {
		ctx.Types = api.Types
	}
	if ctx.IndentStr == "" {
		ctx.IndentStr = "  "
	}

	var buf bytes.Buffer
	buf.Write(f.EmitPreamble(ctx))
	for _, d := range api.Types.All() {
		buf.WriteByte('\n')
		buf.Write(f.EmitDeclaration(ctx, d))
	}
	for _, e := range api.Endpoints() {
		buf.WriteByte('\n')
		buf.Write(f.EmitEndpoint(ctx, e))
	}
	return buf.Bytes()
}
