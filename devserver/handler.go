package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New(validator.WithRequiredStructEnabled())
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
	// Report fields by their wire names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "schema"} {
			name, _, _ := strings.Cut(f.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// handlerConfig is what the App passes down to every endpoint.
type handlerConfig struct {
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	logger             *slog.Logger
	maxRequestBodySize int64
}

// Endpoint is a registered handler. It is created with Query or Exec and
// cannot be implemented outside this package.
type Endpoint interface {
	// Method is the HTTP method the endpoint answers.
	Method() string

	serve(w http.ResponseWriter, ctx *Context, cfg handlerConfig)
}

// Handler adapts a typed function to an Endpoint.
type Handler[Req any, Res any] struct {
	fn           func(context.Context, Req) (Res, error)
	method       string
	interceptors []UnaryInterceptor
}

// Query creates a GET endpoint whose request is decoded from the query
// string. Req is usually a pointer to a struct with `schema` tags.
func Query[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, method: http.MethodGet}
}

// Exec creates a POST endpoint whose request is the JSON body. An empty
// body decodes to the zero request.
func Exec[Req any, Res any](fn func(context.Context, Req) (Res, error)) *Handler[Req, Res] {
	return &Handler[Req, Res]{fn: fn, method: http.MethodPost}
}

// WithUnaryInterceptor adds an interceptor that runs after the app's.
func (h *Handler[Req, Res]) WithUnaryInterceptor(i UnaryInterceptor) *Handler[Req, Res] {
	h.interceptors = append(h.interceptors, i)
	return h
}

// Method implements Endpoint.
func (h *Handler[Req, Res]) Method() string {
	return h.method
}

func (h *Handler[Req, Res]) serve(w http.ResponseWriter, ctx *Context, cfg handlerConfig) {
	req, err := h.decode(w, ctx.HTTPRequest(), cfg)
	if err == nil {
		err = validateRequest(req)
	}
	if err != nil {
		handleError(w, err, cfg)
		return
	}

	final := func(c context.Context, reqAny any) (any, error) {
		typed, ok := reqAny.(Req)
		if !ok {
			return nil, NewError(CodeInternal, "interceptor modified request type incorrectly")
		}
		return h.fn(c, typed)
	}

	all := make([]UnaryInterceptor, 0, len(cfg.interceptors)+len(h.interceptors))
	all = append(all, cfg.interceptors...)
	all = append(all, h.interceptors...)

	var res any
	if chain := chainInterceptors(all); chain != nil {
		res, err = chain(ctx, req, final)
	} else {
		res, err = final(ctx, req)
	}
	if err != nil {
		handleError(w, err, cfg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := encodeResponse(w, res); err != nil {
		// Response may be partially written.
		cfg.logger.Error("failed to encode response",
			slog.String("endpoint", ctx.EndpointID()),
			slog.Any("error", err))
	}
}

func (h *Handler[Req, Res]) decode(w http.ResponseWriter, r *http.Request, cfg handlerConfig) (Req, error) {
	var req Req
	target := any(&req)
	if t := reflect.TypeFor[Req](); t.Kind() == reflect.Pointer {
		v := reflect.New(t.Elem())
		req = v.Interface().(Req)
		target = req
	}

	if h.method == http.MethodGet {
		if err := schemaDecoder.Decode(target, r.URL.Query()); err != nil {
			return req, Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
		}
		return req, nil
	}

	body := r.Body
	if cfg.maxRequestBodySize > 0 {
		body = http.MaxBytesReader(w, body, cfg.maxRequestBodySize)
	}
	err := json.NewDecoder(body).Decode(target)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return req, nil
	case errors.As(err, &maxErr):
		return req, Errorf(CodeInvalidArgument, "request body exceeds %d bytes", maxErr.Limit)
	default:
		return req, Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
	}
}

// validateRequest runs struct validation on struct and struct-pointer
// requests.
func validateRequest(req any) error {
	v := reflect.ValueOf(req)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(req)
}

func handleError(w http.ResponseWriter, err error, cfg handlerConfig) {
	var svcErr *Error
	if cfg.errorTransformer != nil {
		svcErr = cfg.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if cfg.maskInternalErrors && svcErr.Code == CodeInternal {
		svcErr = NewError(CodeInternal, "internal server error")
	}
	writeError(w, svcErr, cfg.logger)
}
