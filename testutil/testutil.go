// Package testutil provides helpers for testing HTTP handlers that speak
// the preview server's JSON envelopes.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// RequestBuilder builds test requests with a fluent API.
type RequestBuilder struct {
	method  string
	path    string
	body    []byte
	headers http.Header
	query   url.Values
}

// NewRequest returns a builder for GET /.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method:  http.MethodGet,
		path:    "/",
		headers: make(http.Header),
		query:   make(url.Values),
	}
}

// GET sets the method and path.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	b.method, b.path = http.MethodGet, path
	return b
}

// POST sets the method and path.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	b.method, b.path = http.MethodPost, path
	return b
}

// Method sets an arbitrary method.
func (b *RequestBuilder) Method(m string) *RequestBuilder {
	b.method = m
	return b
}

// WithJSON sets the request body as JSON.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	data, _ := json.Marshal(v)
	b.body = data
	b.headers.Set("Content-Type", "application/json")
	return b
}

// WithBody sets the raw request body.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.body = []byte(body)
	return b
}

// WithHeader adds a header.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers.Add(key, value)
	return b
}

// WithQuery adds a query parameter.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.query.Add(key, value)
	return b
}

// Build returns the request and a recorder for its response.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	target := b.path
	if len(b.query) > 0 {
		target += "?" + b.query.Encode()
	}
	var body io.Reader
	if len(b.body) > 0 {
		body = bytes.NewReader(b.body)
	}
	req := httptest.NewRequest(b.method, target, body)
	for k, vs := range b.headers {
		req.Header[k] = vs
	}
	return req, httptest.NewRecorder()
}

// Serve builds the request, serves it with h and returns the recorder.
func (b *RequestBuilder) Serve(h http.Handler) *httptest.ResponseRecorder {
	req, w := b.Build()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks the response status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if w.Code != expectedStatus {
		t.Errorf("expected status %d, got %d\nBody: %s", expectedStatus, w.Code, w.Body.String())
	}
}

// AssertHeader checks a response header.
func AssertHeader(t *testing.T, w *httptest.ResponseRecorder, key, expectedValue string) {
	t.Helper()
	if actual := w.Header().Get(key); actual != expectedValue {
		t.Errorf("expected header %s=%s, got %s", key, expectedValue, actual)
	}
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AssertJSONError decodes {"error": {...}} and checks its code.
func AssertJSONError(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) *ErrorResponse {
	t.Helper()
	var env struct {
		Error *ErrorResponse `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil || env.Error == nil {
		t.Fatalf("failed to decode error response: %v\nBody: %s", err, w.Body.String())
	}
	if env.Error.Code != expectedCode {
		t.Errorf("expected error code %s, got %s (message: %s)", expectedCode, env.Error.Code, env.Error.Message)
	}
	return env.Error
}

// DecodeResult decodes {"result": ...} into v.
func DecodeResult(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := struct {
		Result any `json:"result"`
	}{Result: v}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v\nBody: %s", err, w.Body.String())
	}
}
