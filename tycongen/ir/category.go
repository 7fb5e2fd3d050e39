package ir

import "fmt"

// Category is the coarse JSON category of a type. Examples are checked
// against the category of the type they illustrate.
type Category string

const (
	CategoryString  Category = "string"
	CategoryNumber  Category = "number"
	CategoryBoolean Category = "boolean"
	CategoryArray   Category = "array"
	CategoryObject  Category = "object"
	CategoryUnknown Category = "unknown"
)

// Category returns the JSON category of a primitive kind.
func (k PrimitiveKind) Category() Category {
	switch k {
	case PrimitiveInt32, PrimitiveInt64, PrimitiveFloat, PrimitiveDouble:
		return CategoryNumber
	case PrimitiveBoolean:
		return CategoryBoolean
	case PrimitiveString, PrimitiveDateTime, PrimitiveBase64:
		return CategoryString
	default:
		panic(fmt.Sprintf("ir: unhandled primitive kind %v", k))
	}
}

// CategoryOf returns the JSON category of typ, resolving references
// through table.
func CategoryOf(typ Type, table *TypeTable) Category {
	switch t := table.Resolve(typ).(type) {
	case *PrimitiveType:
		return t.PrimitiveKind.Category()
	case *EnumType:
		return CategoryString
	case *ArrayType:
		return CategoryArray
	case *MapType, *ObjectType:
		return CategoryObject
	case *OptionalType:
		return CategoryOf(t.Element, table)
	default:
		return CategoryUnknown
	}
}

// IsURLScalar reports whether typ can be carried as a single URL segment:
// a primitive or a string enum, possibly behind references.
func IsURLScalar(typ Type, table *TypeTable) bool {
	switch table.Resolve(typ).(type) {
	case *PrimitiveType, *EnumType:
		return true
	default:
		return false
	}
}

// IsURLSafe reports whether typ can be carried in a URL: a scalar or an
// array of scalars.
func IsURLSafe(typ Type, table *TypeTable) bool {
	resolved := table.Resolve(typ)
	if arr, ok := resolved.(*ArrayType); ok {
		return IsURLScalar(arr.Element, table)
	}
	return IsURLScalar(resolved, table)
}
