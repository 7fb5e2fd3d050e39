package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if len(cfg.AllowedMethods) != 3 {
		t.Errorf("AllowedMethods = %v", cfg.AllowedMethods)
	}
	if len(cfg.AllowedHeaders) != 2 {
		t.Errorf("AllowedHeaders = %v", cfg.AllowedHeaders)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *CORSConfig
		method     string
		origin     string
		wantStatus int
		want       map[string]string
	}{
		{
			name:       "nil config allows all",
			method:     "GET",
			origin:     "http://example.com",
			wantStatus: http.StatusOK,
			want:       map[string]string{"Access-Control-Allow-Origin": "*"},
		},
		{
			name:       "no origin",
			cfg:        DefaultCORSConfig(),
			method:     "GET",
			wantStatus: http.StatusOK,
			want:       map[string]string{"Access-Control-Allow-Origin": "*"},
		},
		{
			name:       "preflight",
			method:     "OPTIONS",
			origin:     "http://example.com",
			wantStatus: http.StatusNoContent,
			want: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization",
				"Access-Control-Max-Age":       "",
			},
		},
		{
			name:       "specific origin allowed",
			cfg:        &CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
			method:     "GET",
			origin:     "http://localhost:5173",
			wantStatus: http.StatusOK,
			want: map[string]string{
				"Access-Control-Allow-Origin": "http://localhost:5173",
				"Vary":                        "Origin",
			},
		},
		{
			name:       "specific origin rejected",
			cfg:        &CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
			method:     "GET",
			origin:     "http://evil.example",
			wantStatus: http.StatusOK,
			want:       map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:       "wildcard with credentials echoes origin",
			cfg:        &CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			method:     "GET",
			origin:     "http://example.com",
			wantStatus: http.StatusOK,
			want: map[string]string{
				"Access-Control-Allow-Origin":      "http://example.com",
				"Access-Control-Allow-Credentials": "true",
			},
		},
		{
			name:       "preflight options",
			cfg:        &CORSConfig{AllowedMethods: []string{"POST"}, ExposedHeaders: []string{"X-Build"}, MaxAge: 600},
			method:     "OPTIONS",
			origin:     "http://example.com",
			wantStatus: http.StatusNoContent,
			want: map[string]string{
				"Access-Control-Allow-Methods":  "POST",
				"Access-Control-Allow-Headers":  "Content-Type, Authorization",
				"Access-Control-Expose-Headers": "X-Build",
				"Access-Control-Max-Age":        "600",
			},
		},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/__tycon/endpoints", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			CORS(tt.cfg)(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			for k, v := range tt.want {
				if got := w.Header().Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}
}
