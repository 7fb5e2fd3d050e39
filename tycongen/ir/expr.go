package ir

// ArrayType is an ordered collection.
type ArrayType struct {
	exprBase
	Element Type
}

// Kind returns KindArray.
func (*ArrayType) Kind() Kind { return KindArray }

// Array returns an ArrayType with the given element type.
func Array(element Type) *ArrayType { return &ArrayType{Element: element} }

// MapType is a JSON object with string keys and uniform values.
type MapType struct {
	exprBase
	Value Type
}

// Kind returns KindMap.
func (*MapType) Kind() Kind { return KindMap }

// Map returns a MapType with the given value type.
func Map(value Type) *MapType { return &MapType{Value: value} }

// ObjectType is a JSON object with a fixed set of named properties.
type ObjectType struct {
	exprBase
	Properties []Property
}

// Kind returns KindObject.
func (*ObjectType) Kind() Kind { return KindObject }

// Property is a single named member of an ObjectType.
type Property struct {
	// Name is the serialized property name.
	Name string

	// Type is the property's type. Optional properties carry the
	// element type here; optionality lives in Optional.
	Type Type

	// Optional reports whether the property may be absent.
	Optional bool

	// ValidateTag is the raw `validate` struct tag, if any.
	ValidateTag string

	Documentation Documentation
}

// EnumType is a closed set of string values.
type EnumType struct {
	exprBase
	Values []string
}

// Kind returns KindEnum.
func (*EnumType) Kind() Kind { return KindEnum }

// Enum returns an EnumType with the given values.
func Enum(values ...string) *EnumType { return &EnumType{Values: values} }

// ReferenceType refers to a named declaration in the TypeTable.
type ReferenceType struct {
	exprBase
	Name string
}

// Kind returns KindReference.
func (*ReferenceType) Kind() Kind { return KindReference }

// Ref returns a ReferenceType to the named declaration.
func Ref(name string) *ReferenceType { return &ReferenceType{Name: name} }

// OptionalType wraps a type that may be absent.
type OptionalType struct {
	exprBase
	Element Type
}

// Kind returns KindOptional.
func (*OptionalType) Kind() Kind { return KindOptional }

// Optional wraps element. Wrapping an OptionalType again is a no-op.
func Optional(element Type) Type {
	if o, ok := element.(*OptionalType); ok {
		return o
	}
	return &OptionalType{Element: element}
}

// VoidType marks the absence of a payload.
type VoidType struct{ exprBase }

// Kind returns KindVoid.
func (*VoidType) Kind() Kind { return KindVoid }

// Void returns the void type.
func Void() *VoidType { return &VoidType{} }

// UnknownType accepts any JSON value.
type UnknownType struct{ exprBase }

// Kind returns KindUnknown.
func (*UnknownType) Kind() Kind { return KindUnknown }

// Unknown returns the unknown type.
func Unknown() *UnknownType { return &UnknownType{} }

// IsVoid reports whether t is nil or the void type.
func IsVoid(t Type) bool {
	if t == nil {
		return true
	}
	return t.Kind() == KindVoid
}
