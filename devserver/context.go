package devserver

import (
	"context"
	"net/http"
)

type contextKey struct{}

// Context is the request context handed to interceptors. It embeds the
// request's context.Context and carries the endpoint being served.
type Context struct {
	context.Context
	endpoint string
	request  *http.Request
	writer   http.ResponseWriter
}

// NewContext returns the Context for serving r on endpoint. The App
// creates one per request; tests of interceptors may create their own.
func NewContext(w http.ResponseWriter, r *http.Request, endpoint string) *Context {
	return &Context{
		Context:  r.Context(),
		endpoint: endpoint,
		request:  r,
		writer:   w,
	}
}

// EndpointID identifies the endpoint, e.g. "GET endpoints".
func (c *Context) EndpointID() string {
	return c.request.Method + " " + c.endpoint
}

// HTTPRequest returns the underlying request.
func (c *Context) HTTPRequest() *http.Request {
	return c.request
}

// SetHeader sets a response header. Call it before the handler returns.
func (c *Context) SetHeader(key, value string) {
	c.writer.Header().Set(key, value)
}

// Value implements context.Context.
func (c *Context) Value(key any) any {
	if key == (contextKey{}) {
		return c
	}
	return c.Context.Value(key)
}

// FromContext returns the *Context that ctx was derived from.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(contextKey{}).(*Context)
	return c, ok
}
