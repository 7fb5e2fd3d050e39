// Package middleware holds HTTP middleware and interceptors for the
// preview server.
package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins may contain "*" to allow any origin. Default: ["*"].
	AllowedOrigins []string

	// AllowedMethods default to GET, POST and OPTIONS.
	AllowedMethods []string

	// AllowedHeaders default to Content-Type and Authorization.
	AllowedHeaders []string

	// ExposedHeaders are readable by the client. Default: none.
	ExposedHeaders []string

	AllowCredentials bool

	// MaxAge is how long, in seconds, a preflight result may be cached.
	// 0 leaves the header unset.
	MaxAge int
}

// DefaultCORSConfig is permissive and suitable for a local preview
// server.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORS answers preflight requests and sets CORS headers on the rest. A
// nil cfg means DefaultCORSConfig.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	def := DefaultCORSConfig()
	if cfg == nil {
		cfg = def
	}
	origins := cmpOr(cfg.AllowedOrigins, def.AllowedOrigins)
	wildcard := slices.Contains(origins, "*")
	methods := strings.Join(cmpOr(cfg.AllowedMethods, def.AllowedMethods), ", ")
	headers := strings.Join(cmpOr(cfg.AllowedHeaders, def.AllowedHeaders), ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case wildcard && origin != "" && cfg.AllowCredentials:
				// "*" cannot be combined with credentials; echo the origin.
				h.Set("Access-Control-Allow-Origin", origin)
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if h.Get("Access-Control-Allow-Origin") != "" && cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func cmpOr(v, fallback []string) []string {
	if len(v) == 0 {
		return fallback
	}
	return v
}
