package ir

import "fmt"

// PrimitiveKind identifies a scalar type.
type PrimitiveKind int

const (
	PrimitiveString PrimitiveKind = iota
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveFloat
	PrimitiveDouble
	PrimitiveBoolean
	PrimitiveDateTime // RFC 3339 string on the wire
	PrimitiveBase64   // []byte, base64 string on the wire
)

// String returns the upper-case name of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveString:
		return "STRING"
	case PrimitiveInt32:
		return "INT32"
	case PrimitiveInt64:
		return "INT64"
	case PrimitiveFloat:
		return "FLOAT"
	case PrimitiveDouble:
		return "DOUBLE"
	case PrimitiveBoolean:
		return "BOOLEAN"
	case PrimitiveDateTime:
		return "DATETIME"
	case PrimitiveBase64:
		return "BASE64"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
}

// PrimitiveType is a scalar type.
type PrimitiveType struct {
	exprBase
	PrimitiveKind PrimitiveKind
}

// Kind returns KindPrimitive.
func (*PrimitiveType) Kind() Kind { return KindPrimitive }

// String returns a STRING primitive.
func String() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveString} }

// Int32 returns an INT32 primitive.
func Int32() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveInt32} }

// Int64 returns an INT64 primitive.
func Int64() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveInt64} }

// Float returns a FLOAT primitive.
func Float() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveFloat} }

// Double returns a DOUBLE primitive.
func Double() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveDouble} }

// Boolean returns a BOOLEAN primitive.
func Boolean() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveBoolean} }

// DateTime returns a DATETIME primitive.
func DateTime() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveDateTime} }

// Base64 returns a BASE64 primitive.
func Base64() *PrimitiveType { return &PrimitiveType{PrimitiveKind: PrimitiveBase64} }
