package flavor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/typescript"
)

// ZodFlavor emits zod v4 schemas. With mini set it targets the
// tree-shakable zod/mini API instead of method chains.
type ZodFlavor struct {
	mini bool
}

// Name returns "zod" or "zod-mini".
func (f *ZodFlavor) Name() string {
	if f.mini {
		return "zod-mini"
	}
	return "zod"
}

// EmitPreamble returns the banner and the zod import.
func (f *ZodFlavor) EmitPreamble(*EmitContext) []byte {
	var buf bytes.Buffer
	buf.WriteString("// " + typescript.Header + "\n\n")
	if f.mini {
		buf.WriteString("import * as z from \"zod/mini\";\n")
	} else {
		buf.WriteString("import { z } from \"zod\";\n")
	}
	return buf.Bytes()
}

// EmitDeclaration returns `export const NameSchema = ...;`.
func (f *ZodFlavor) EmitDeclaration(ctx *EmitContext, d *ir.TypeDeclaration) []byte {
	var buf bytes.Buffer
	buf.WriteString("export const " + SchemaName(d.Name) + " = ")
	if obj, ok := d.Type.(*ir.ObjectType); ok && len(obj.Properties) > 0 {
		buf.WriteString("z.object({\n")
		for _, p := range obj.Properties {
			buf.WriteString(ctx.IndentStr)
			buf.WriteString(typescript.PropertyName(p.Name))
			buf.WriteString(": ")
			buf.WriteString(f.property(ctx, d.Name, p))
			buf.WriteString(",\n")
		}
		buf.WriteString("});\n")
		return buf.Bytes()
	}
	buf.WriteString(f.schema(ctx, d.Type))
	buf.WriteString(";\n")
	return buf.Bytes()
}

// EmitEndpoint returns every validator the generated route handler for e
// refers to.
func (f *ZodFlavor) EmitEndpoint(ctx *EmitContext, e *ir.Endpoint) []byte {
	var buf bytes.Buffer
	decl := func(name, value string) {
		buf.WriteString("export const " + name + " = " + value + ";\n")
	}
	if !ir.IsVoid(e.Request) {
		decl(RequestValidator(e), f.top(ctx, e.Request))
	}
	for _, seg := range e.DynamicSegments() {
		decl(ParamValidator(e, seg.Name), f.coerce(ctx, seg.Type))
	}
	for _, h := range e.Headers {
		v := f.coerce(ctx, h.Type)
		if h.Optional {
			v = f.optional(v)
		}
		decl(HeaderValidator(e, h), v)
	}
	decl(ResponseValidator(e), f.top(ctx, e.Response))
	for _, ce := range e.CustomErrors {
		decl(CustomErrorValidator(e, ce.StatusCode), f.top(ctx, ce.Type))
	}
	decl(DefaultErrorValidator(e), f.top(ctx, e.DefaultError))
	return buf.Bytes()
}

// top refers to named schemas directly; they are all declared before the
// endpoint validators.
func (f *ZodFlavor) top(ctx *EmitContext, typ ir.Type) string {
	if ref, ok := typ.(*ir.ReferenceType); ok {
		return SchemaName(ref.Name)
	}
	return f.schema(ctx, typ)
}

func (f *ZodFlavor) schema(ctx *EmitContext, typ ir.Type) string {
	switch t := typ.(type) {
	case *ir.PrimitiveType:
		return primitive(t.PrimitiveKind)
	case *ir.ArrayType:
		return "z.array(" + f.schema(ctx, t.Element) + ")"
	case *ir.MapType:
		return "z.record(z.string(), " + f.schema(ctx, t.Value) + ")"
	case *ir.ObjectType:
		props := make([]string, len(t.Properties))
		for i, p := range t.Properties {
			props[i] = typescript.PropertyName(p.Name) + ": " + f.property(ctx, "object", p)
		}
		if len(props) == 0 {
			return "z.object({})"
		}
		return "z.object({ " + strings.Join(props, ", ") + " })"
	case *ir.EnumType:
		return enum(t.Values)
	case *ir.ReferenceType:
		// Lazy so declaration order and recursive types do not matter.
		return "z.lazy(() => " + SchemaName(t.Name) + ")"
	case *ir.OptionalType:
		return f.nullable(f.schema(ctx, t.Element))
	case *ir.VoidType:
		return "z.void()"
	case *ir.UnknownType:
		return "z.unknown()"
	default:
		panic(fmt.Sprintf("flavor: unhandled type %T", typ))
	}
}

func primitive(k ir.PrimitiveKind) string {
	switch k {
	case ir.PrimitiveInt32:
		return "z.int32()"
	case ir.PrimitiveInt64:
		return "z.int()"
	case ir.PrimitiveFloat, ir.PrimitiveDouble:
		return "z.number()"
	case ir.PrimitiveBoolean:
		return "z.boolean()"
	case ir.PrimitiveDateTime:
		return "z.iso.datetime()"
	case ir.PrimitiveBase64:
		return "z.base64()"
	case ir.PrimitiveString:
		return "z.string()"
	default:
		panic(fmt.Sprintf("flavor: unhandled primitive %v", k))
	}
}

func enum(values []string) string {
	if len(values) == 0 {
		return "z.never()"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = emit.Quote(v)
	}
	return "z.enum([" + strings.Join(quoted, ", ") + "])"
}

// coerce returns a schema that accepts the string form of a URL scalar
// or a comma-separated list of them.
func (f *ZodFlavor) coerce(ctx *EmitContext, typ ir.Type) string {
	if ref, ok := typ.(*ir.ReferenceType); ok {
		if _, isEnum := ctx.Types.Resolve(ref).(*ir.EnumType); isEnum {
			return SchemaName(ref.Name)
		}
	}
	switch t := ctx.Types.Resolve(typ).(type) {
	case *ir.PrimitiveType:
		switch t.PrimitiveKind {
		case ir.PrimitiveInt32, ir.PrimitiveInt64:
			return f.pipe("z.coerce.number()", primitive(t.PrimitiveKind))
		case ir.PrimitiveFloat, ir.PrimitiveDouble:
			return "z.coerce.number()"
		case ir.PrimitiveBoolean:
			return "z.stringbool()"
		default:
			return primitive(t.PrimitiveKind)
		}
	case *ir.EnumType:
		return enum(t.Values)
	case *ir.ArrayType:
		return f.pipe(f.split(), "z.array("+f.coerce(ctx, t.Element)+")")
	default:
		panic(fmt.Sprintf("flavor: %T cannot be coerced from a string", typ))
	}
}

func (f *ZodFlavor) split() string {
	const fn = `(s) => s.split(",")`
	if f.mini {
		return "z.pipe(z.string(), z.transform(" + fn + "))"
	}
	return "z.string().transform(" + fn + ")"
}

func (f *ZodFlavor) pipe(a, b string) string {
	if f.mini {
		return "z.pipe(" + a + ", " + b + ")"
	}
	return a + ".pipe(" + b + ")"
}

func (f *ZodFlavor) optional(s string) string {
	if f.mini {
		return "z.optional(" + s + ")"
	}
	return s + ".optional()"
}

func (f *ZodFlavor) nullable(s string) string {
	if f.mini {
		return "z.nullable(" + s + ")"
	}
	return s + ".nullable()"
}

func (f *ZodFlavor) property(ctx *EmitContext, owner string, p ir.Property) string {
	rules := ParseRules(p.ValidateTag)
	s := f.constrain(ctx, owner+"."+p.Name, p.Type, rules)
	if p.Optional && !HasRequired(rules) {
		s = f.optional(s)
	}
	return s
}

// constrain applies validate-tag rules to the schema for typ.
func (f *ZodFlavor) constrain(ctx *EmitContext, where string, typ ir.Type, rules []Rule) string {
	base := f.schema(ctx, typ)
	if len(rules) == 0 {
		return base
	}

	var target Target
	switch typ.(type) {
	case *ir.ReferenceType, *ir.OptionalType:
		// Rules cannot be chained onto lazy or nullable wrappers.
		for _, r := range rules {
			if _, support := r.Classic(TargetString); support == Supported && r.Name != "required" {
				ctx.AddWarning("unsupported_validator: %s on %s: type is not inline", r.Name, where)
			}
		}
		return base
	default:
		switch ir.CategoryOf(typ, ctx.Types) {
		case ir.CategoryString:
			target = TargetString
		case ir.CategoryNumber:
			target = TargetNumber
		case ir.CategoryArray:
			target = TargetArray
		default:
			return base
		}
	}

	// An enum already pins every value; other rules add nothing.
	if values := OneOf(rules); values != nil {
		return oneOf(values, target)
	}

	var parts []string
	for _, r := range rules {
		var s string
		var support Support
		if f.mini {
			s, support = r.Mini(target)
		} else {
			s, support = r.Classic(target)
		}
		switch support {
		case Unsupported:
			ctx.AddWarning("unknown_validator: %s on %s", r.Name, where)
		case Supported:
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) == 0 {
		return base
	}
	if f.mini {
		return base + ".check(" + strings.Join(parts, ", ") + ")"
	}
	return base + strings.Join(parts, "")
}

func oneOf(values []string, t Target) string {
	if t == TargetString {
		return enum(values)
	}
	lits := make([]string, len(values))
	for i, v := range values {
		lits[i] = "z.literal(" + v + ")"
	}
	if len(lits) == 1 {
		return lits[0]
	}
	return "z.union([" + strings.Join(lits, ", ") + "])"
}
