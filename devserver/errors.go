package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode is the machine-readable half of an error envelope.
type ErrorCode string

const (
	CodeInvalidArgument    ErrorCode = "invalid_argument"
	CodePermissionDenied   ErrorCode = "permission_denied"
	CodeNotFound           ErrorCode = "not_found"
	CodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	CodeFailedPrecondition ErrorCode = "failed_precondition"
	CodeCanceled           ErrorCode = "canceled"
	CodeInternal           ErrorCode = "internal"
	CodeUnavailable        ErrorCode = "unavailable"
	CodeDeadlineExceeded   ErrorCode = "deadline_exceeded"
)

var httpStatus = map[ErrorCode]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodePermissionDenied:   http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
	CodeFailedPrecondition: http.StatusPreconditionFailed,
	CodeCanceled:           499, // nginx "client closed request"
	CodeInternal:           http.StatusInternalServerError,
	CodeUnavailable:        http.StatusServiceUnavailable,
	CodeDeadlineExceeded:   http.StatusGatewayTimeout,
}

// HTTPStatus returns the status code a response with c is sent with.
// Unknown codes are 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the body of an error envelope:
//
//	{"error": {"code": "not_found", "message": "...", "details": {...}}}
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewError returns an Error with no details.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf is NewError with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithDetail returns a copy of e with key set in its details. e is not
// modified.
func (e *Error) WithDetail(key string, value any) *Error {
	out := *e
	out.Details = maps.Clone(e.Details)
	if out.Details == nil {
		out.Details = make(map[string]any, 1)
	}
	out.Details[key] = value
	return &out
}

// ErrorTransformer maps an application error to an Error. Returning nil
// defers to DefaultErrorTransformer.
type ErrorTransformer func(error) *Error

// DefaultErrorTransformer recognizes *Error, context errors and
// validator.ValidationErrors. Everything else is internal.
func DefaultErrorTransformer(err error) *Error {
	var (
		svcErr  *Error
		valErrs validator.ValidationErrors
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(CodeDeadlineExceeded, "request timeout")
	case errors.Is(err, context.Canceled):
		return NewError(CodeCanceled, "context canceled")
	case errors.As(err, &valErrs):
		return invalidArgument(valErrs)
	default:
		return NewError(CodeInternal, err.Error())
	}
}

// invalidArgument reports every failed field, keyed by its wire name.
func invalidArgument(valErrs validator.ValidationErrors) *Error {
	out := &Error{Code: CodeInvalidArgument, Details: make(map[string]any, len(valErrs))}
	parts := make([]string, len(valErrs))
	for i, fe := range valErrs {
		msg := fieldMessage(fe)
		out.Details[fe.Field()] = msg
		parts[i] = fe.Field() + ": " + msg
	}
	out.Message = strings.Join(parts, "; ")
	return out
}

var fieldMessages = map[string]string{
	"gte":   "must be at least %s",
	"lte":   "must be at most %s",
	"min":   "must be at least %s",
	"max":   "must be at most %s",
	"oneof": "must be one of: %s",
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "required"
	}
	if format, ok := fieldMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	if fe.Param() != "" {
		return "failed " + fe.Tag() + "=" + fe.Param() + " validation"
	}
	return "failed " + fe.Tag() + " validation"
}

// diagnostics splits a compile error into one entry per line, which is
// one `file:line:col: message` per failing declaration.
func diagnostics(err error) []string {
	var out []string
	for line := range strings.SplitSeq(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// writeError sends svcErr with its status. Encoding failures can only be
// logged: the status line is already out.
func writeError(w http.ResponseWriter, svcErr *Error, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.Code.HTTPStatus())
	if err := encodeErrorResponse(w, svcErr); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("encode error response", slog.Any("code", svcErr.Code), slog.Any("error", err))
	}
}
