// Package typescript renders IR types as TypeScript type expressions and
// emits the types.ts declaration module.
package typescript

import (
	"fmt"
	"strings"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/ir"
)

// TypeString renders typ as a TypeScript type expression. References are
// rendered by name and must be imported by the caller.
func TypeString(typ ir.Type) string {
	switch t := typ.(type) {
	case *ir.PrimitiveType:
		return primitive(t.PrimitiveKind)
	case *ir.ArrayType:
		elem := TypeString(t.Element)
		if needsParens(t.Element) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case *ir.MapType:
		return "Record<string, " + TypeString(t.Value) + ">"
	case *ir.ObjectType:
		return inlineObject(t)
	case *ir.EnumType:
		if len(t.Values) == 0 {
			return "never"
		}
		values := make([]string, len(t.Values))
		for i, v := range t.Values {
			values[i] = emit.Quote(v)
		}
		return strings.Join(values, " | ")
	case *ir.ReferenceType:
		return t.Name
	case *ir.OptionalType:
		return TypeString(t.Element) + " | null"
	case *ir.VoidType:
		return "void"
	case *ir.UnknownType:
		return "unknown"
	default:
		panic(fmt.Sprintf("typescript: unhandled type %T", typ))
	}
}

func primitive(k ir.PrimitiveKind) string {
	switch k.Category() {
	case ir.CategoryNumber:
		return "number"
	case ir.CategoryBoolean:
		return "boolean"
	default:
		return "string"
	}
}

func needsParens(t ir.Type) bool {
	switch t := t.(type) {
	case *ir.OptionalType:
		return true
	case *ir.EnumType:
		return len(t.Values) > 1
	}
	return false
}

func inlineObject(o *ir.ObjectType) string {
	if len(o.Properties) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		parts[i] = PropertyName(p.Name) + optionalMark(p.Optional) + ": " + TypeString(p.Type)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func optionalMark(optional bool) string {
	if optional {
		return "?"
	}
	return ""
}

// PropertyName quotes name unless it is a plain identifier.
func PropertyName(name string) string {
	if emit.IsIdentifier(name) {
		return name
	}
	return emit.Quote(name)
}
