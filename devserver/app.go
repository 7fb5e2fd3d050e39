package devserver

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
)

// App routes requests to registered endpoints by the path below its
// mount point, e.g. "/endpoints". It is usually mounted under /__tycon/
// with http.StripPrefix.
type App struct {
	mu                 sync.RWMutex
	routes             map[string]Endpoint
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	maxRequestBodySize int64
}

// NewApp returns an empty App with a 1MB request body limit.
func NewApp() *App {
	return &App{
		routes:             make(map[string]Endpoint),
		maxRequestBodySize: 1 << 20,
	}
}

// WithErrorTransformer adds a custom error transformer.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithMaskInternalErrors replaces internal error messages with a generic
// one. Interceptors still see the original error.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithUnaryInterceptor adds a global interceptor. Global interceptors run
// before handler interceptors, each level in the order added.
func (a *App) WithUnaryInterceptor(i UnaryInterceptor) *App {
	a.interceptors = append(a.interceptors, i)
	return a
}

// WithMiddleware adds an HTTP middleware. The first added is outermost.
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets the logger. Defaults to slog.Default().
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMaxRequestBodySize sets the body limit of POST endpoints. 0 means
// no limit.
func (a *App) WithMaxRequestBodySize(size int64) *App {
	a.maxRequestBodySize = size
	return a
}

// Register binds an endpoint to name. Registering a name twice replaces
// the earlier endpoint and logs a warning.
func (a *App) Register(name string, e Endpoint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.routes[name]; exists {
		a.log().Warn("duplicate route registration", slog.String("route", name))
	}
	a.routes[name] = e
}

// Routes returns the registered names, sorted.
func (a *App) Routes() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.routes))
}

// Handler returns the App as an http.Handler wrapped in its middleware.
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.serveHTTP)
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

func (a *App) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

func (a *App) serveHTTP(w http.ResponseWriter, r *http.Request) {
	logger := a.log()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			writeError(w, NewError(CodeInternal, fmt.Sprintf("internal server error (panic): %v", rec)), logger)
		}
	}()

	name := strings.Trim(r.URL.Path, "/")
	a.mu.RLock()
	e, ok := a.routes[name]
	a.mu.RUnlock()
	if !ok {
		writeError(w, NewError(CodeNotFound, "route not found"), logger)
		return
	}
	if r.Method != e.Method() {
		w.Header().Set("Allow", e.Method())
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected %s", r.Method, e.Method()), logger)
		return
	}

	e.serve(w, NewContext(w, r, name), handlerConfig{
		errorTransformer:   a.errorTransformer,
		maskInternalErrors: a.maskInternalErrors,
		interceptors:       a.interceptors,
		logger:             logger,
		maxRequestBodySize: a.maxRequestBodySize,
	})
}
