package flavor

import (
	"fmt"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/ir"
)

func prefix(e *ir.Endpoint) string {
	return emit.LowerCamel(e.Name)
}

// SchemaName is the exported schema for a named type.
func SchemaName(typeName string) string {
	return typeName + "Schema"
}

// RequestValidator names the validator for e's request body.
func RequestValidator(e *ir.Endpoint) string {
	return prefix(e) + "RequestValidator"
}

// ResponseValidator names the validator for e's 2xx payload.
func ResponseValidator(e *ir.Endpoint) string {
	return prefix(e) + "ResponseValidator"
}

// DefaultErrorValidator names the validator for e's default error.
func DefaultErrorValidator(e *ir.Endpoint) string {
	return prefix(e) + "DefaultErrorValidator"
}

// CustomErrorValidator names the validator for the error bound to code.
func CustomErrorValidator(e *ir.Endpoint, code int) string {
	return fmt.Sprintf("%sCustomError%dValidator", prefix(e), code)
}

// ParamValidator names the validator for path parameter name.
func ParamValidator(e *ir.Endpoint, name string) string {
	return prefix(e) + "Param" + emit.UpperCamel(name) + "Validator"
}

// HeaderValidator names the validator for header h.
func HeaderValidator(e *ir.Endpoint, h ir.Header) string {
	return prefix(e) + "Header" + emit.UpperCamel(h.Name) + "Validator"
}
