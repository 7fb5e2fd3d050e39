package devserver_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/broady/tycon/devserver"
	"github.com/broady/tycon/testutil"
)

type echoRequest struct {
	Text  string `json:"text" schema:"text" validate:"required"`
	Count int    `json:"count" schema:"count" validate:"gte=0,lte=3"`
}

type echoResponse struct {
	Text string `json:"text"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	return &echoResponse{Text: strings.Repeat(req.Text, max(req.Count, 1))}, nil
}

func newEchoApp() *devserver.App {
	app := devserver.NewApp()
	app.Register("echo", devserver.Query(echo))
	app.Register("echo/post", devserver.Exec(echo))
	app.Register("fail", devserver.Query(func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errors.New("database on fire")
	}))
	app.Register("panic", devserver.Query(func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		panic("kaboom")
	}))
	return app
}

func TestApp_Routing(t *testing.T) {
	tests := []struct {
		name     string
		req      *testutil.RequestBuilder
		status   int
		wantCode string
		wantText string
	}{
		{"query", testutil.NewRequest().GET("/echo").WithQuery("text", "ab").WithQuery("count", "2"), http.StatusOK, "", "abab"},
		{"trailing slash", testutil.NewRequest().GET("/echo/").WithQuery("text", "x"), http.StatusOK, "", "x"},
		{"json body", testutil.NewRequest().POST("/echo/post").WithJSON(echoRequest{Text: "hi"}), http.StatusOK, "", "hi"},
		{"unknown query keys ignored", testutil.NewRequest().GET("/echo").WithQuery("text", "x").WithQuery("other", "1"), http.StatusOK, "", "x"},
		{"route not found", testutil.NewRequest().GET("/nope"), http.StatusNotFound, "not_found", ""},
		{"wrong method", testutil.NewRequest().POST("/echo"), http.StatusMethodNotAllowed, "method_not_allowed", ""},
		{"validation", testutil.NewRequest().GET("/echo").WithQuery("text", "x").WithQuery("count", "9"), http.StatusBadRequest, "invalid_argument", ""},
		{"bad query value", testutil.NewRequest().GET("/echo").WithQuery("count", "many"), http.StatusBadRequest, "invalid_argument", ""},
		{"bad json", testutil.NewRequest().POST("/echo/post").WithBody(`{"text":`), http.StatusBadRequest, "invalid_argument", ""},
		{"empty body", testutil.NewRequest().POST("/echo/post"), http.StatusBadRequest, "invalid_argument", ""},
		{"handler error", testutil.NewRequest().GET("/fail").WithQuery("text", "x"), http.StatusInternalServerError, "internal", ""},
		{"panic", testutil.NewRequest().GET("/panic").WithQuery("text", "x"), http.StatusInternalServerError, "internal", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.req.Serve(newEchoApp().WithLogger(quietLogger()).Handler())
			testutil.AssertStatus(t, w, tt.status)
			if tt.wantCode != "" {
				testutil.AssertJSONError(t, w, tt.wantCode)
				return
			}
			var res echoResponse
			testutil.DecodeResult(t, w, &res)
			if res.Text != tt.wantText {
				t.Errorf("text = %q, want %q", res.Text, tt.wantText)
			}
		})
	}
}

func TestApp_MethodNotAllowedSetsAllow(t *testing.T) {
	w := testutil.NewRequest().GET("/echo/post").Serve(newEchoApp().Handler())
	testutil.AssertStatus(t, w, http.StatusMethodNotAllowed)
	testutil.AssertHeader(t, w, "Allow", http.MethodPost)
}

func TestApp_MaskInternalErrors(t *testing.T) {
	app := newEchoApp().WithLogger(quietLogger()).WithMaskInternalErrors()
	w := testutil.NewRequest().GET("/fail").WithQuery("text", "x").Serve(app.Handler())
	errResp := testutil.AssertJSONError(t, w, "internal")
	if errResp.Message != "internal server error" {
		t.Errorf("message = %q", errResp.Message)
	}
}

func TestApp_ErrorTransformer(t *testing.T) {
	app := newEchoApp().WithLogger(quietLogger()).WithErrorTransformer(func(err error) *devserver.Error {
		if strings.Contains(err.Error(), "fire") {
			return devserver.NewError(devserver.CodeUnavailable, "try later")
		}
		return nil
	})
	w := testutil.NewRequest().GET("/fail").WithQuery("text", "x").Serve(app.Handler())
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
	testutil.AssertJSONError(t, w, "unavailable")
}

func TestApp_MaxRequestBodySize(t *testing.T) {
	app := newEchoApp().WithMaxRequestBodySize(16)
	w := testutil.NewRequest().POST("/echo/post").WithJSON(echoRequest{Text: strings.Repeat("x", 64)}).Serve(app.Handler())
	errResp := testutil.AssertJSONError(t, w, "invalid_argument")
	if !strings.Contains(errResp.Message, "exceeds 16 bytes") {
		t.Errorf("message = %q", errResp.Message)
	}
}

func TestApp_InterceptorOrder(t *testing.T) {
	var calls []string
	record := func(name string) devserver.UnaryInterceptor {
		return func(ctx *devserver.Context, req any, next devserver.HandlerFunc) (any, error) {
			calls = append(calls, name+":"+ctx.EndpointID())
			return next(ctx, req)
		}
	}

	app := devserver.NewApp().
		WithUnaryInterceptor(record("global1")).
		WithUnaryInterceptor(record("global2"))
	app.Register("echo", devserver.Query(echo).WithUnaryInterceptor(record("handler")))

	w := testutil.NewRequest().GET("/echo").WithQuery("text", "x").Serve(app.Handler())
	testutil.AssertStatus(t, w, http.StatusOK)

	want := []string{"global1:GET echo", "global2:GET echo", "handler:GET echo"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestApp_InterceptorShortCircuit(t *testing.T) {
	app := devserver.NewApp().WithLogger(quietLogger()).WithUnaryInterceptor(
		func(ctx *devserver.Context, req any, next devserver.HandlerFunc) (any, error) {
			ctx.SetHeader("X-Intercepted", "yes")
			return nil, devserver.NewError(devserver.CodePermissionDenied, "blocked")
		})
	app.Register("echo", devserver.Query(echo))

	w := testutil.NewRequest().GET("/echo").WithQuery("text", "x").Serve(app.Handler())
	testutil.AssertStatus(t, w, http.StatusForbidden)
	testutil.AssertHeader(t, w, "X-Intercepted", "yes")
}

func TestApp_Middleware(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	app := newEchoApp().WithMiddleware(mw("outer")).WithMiddleware(mw("inner"))
	testutil.NewRequest().GET("/echo").WithQuery("text", "x").Serve(app.Handler())
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestApp_Routes(t *testing.T) {
	got := newEchoApp().Routes()
	want := "echo,echo/post,fail,panic"
	if strings.Join(got, ",") != want {
		t.Errorf("Routes() = %v, want %s", got, want)
	}
}
