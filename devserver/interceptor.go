package devserver

import "context"

// HandlerFunc is the next handler in an interceptor chain.
type HandlerFunc func(ctx context.Context, req any) (res any, err error)

// UnaryInterceptor wraps handler execution. It may inspect or replace the
// request and response, or short-circuit by returning an error without
// calling handler. req is the decoded, validated request.
type UnaryInterceptor func(ctx *Context, req any, handler HandlerFunc) (res any, err error)

// chainInterceptors combines interceptors into one. The first is the
// outermost.
func chainInterceptors(interceptors []UnaryInterceptor) UnaryInterceptor {
	switch len(interceptors) {
	case 0:
		return nil
	case 1:
		return interceptors[0]
	}
	return func(ctx *Context, req any, handler HandlerFunc) (any, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			current, next := interceptors[i], chain
			chain = func(c context.Context, req any) (any, error) {
				dc, ok := FromContext(c)
				if !ok {
					dc = ctx
				}
				return current(dc, req, next)
			}
		}
		return chain(ctx, req)
	}
}
