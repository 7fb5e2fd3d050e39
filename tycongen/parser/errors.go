package parser

import (
	"fmt"
	"go/token"
)

// ParserError is a user-facing diagnostic for a malformed annotation.
type ParserError struct {
	Pos token.Position
	Msg string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParserError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

func (e *ParserError) Unwrap() error {
	return e.Err
}

// OptionalNotAllowedError reports a declaration or property that is
// marked optional where a value is always required.
type OptionalNotAllowedError struct {
	Pos token.Position

	// Name is the offending property, or the declaration's field name.
	Name string

	// What describes the construct, e.g. "path parameter".
	What string
}

func (e *OptionalNotAllowedError) Error() string {
	msg := fmt.Sprintf("%s %s must not be optional", e.What, e.Name)
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, msg)
	}
	return msg
}
