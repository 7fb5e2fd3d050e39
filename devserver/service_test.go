package devserver_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/broady/tycon"
	"github.com/broady/tycon/devserver"
	"github.com/broady/tycon/testutil"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/ir/irtest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeBuild returns irtest.Api with GetUser declared on line 3 of a
// temporary Go file. While broken is set the build fails instead.
func fakeBuild(t *testing.T) (devserver.BuildFunc, string, *atomic.Bool) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "api.go")
	var lines []string
	for i := 1; i <= 12; i++ {
		lines = append(lines, fmt.Sprintf("// line %d", i))
	}
	if err := os.WriteFile(src, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	broken := new(atomic.Bool)
	build := func(ctx context.Context) (*ir.Api, error) {
		if broken.Load() {
			return nil, fmt.Errorf("invalid api: %w", errors.Join(
				errors.New(src+":3:6: GetUser: response type must be a struct"),
				errors.New(src+":9:2: ListPosts: path parameter tag is empty"),
			))
		}
		api := irtest.Api(t)
		e, _ := api.Endpoint("GetUser")
		e.Source = ir.Source{File: src, Line: 3, Column: 6}
		return api, nil
	}
	return build, src, broken
}

func newService(t *testing.T) (*devserver.Service, http.Handler, string, *atomic.Bool) {
	t.Helper()
	build, src, broken := fakeBuild(t)
	cfg := &tycon.Config{Packages: []string{"example.com/api"}, Logger: quietLogger()}
	svc := devserver.NewService(cfg, build)
	return svc, svc.App().Handler(), src, broken
}

func reload(t *testing.T, h http.Handler) *devserver.ReloadResponse {
	t.Helper()
	w := testutil.NewRequest().POST("/reload").WithJSON(devserver.ReloadRequest{Reason: "manual"}).Serve(h)
	testutil.AssertStatus(t, w, http.StatusOK)
	var res devserver.ReloadResponse
	testutil.DecodeResult(t, w, &res)
	return &res
}

func TestService_BeforeFirstBuild(t *testing.T) {
	_, h, _, _ := newService(t)
	for _, path := range []string{"/endpoints", "/file?path=types.ts", "/source?file=x.go&line=1"} {
		w := testutil.NewRequest().GET(path).Serve(h)
		testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
		testutil.AssertJSONError(t, w, "unavailable")
	}
}

func TestService_Reload(t *testing.T) {
	_, h, _, _ := newService(t)
	res := reload(t, h)

	if res.Endpoints != 3 {
		t.Errorf("Endpoints = %d, want 3", res.Endpoints)
	}
	if res.Types != len(irtest.Declarations()) {
		t.Errorf("Types = %d, want %d", res.Types, len(irtest.Declarations()))
	}
	want := []string{
		"api.json",
		"handlers/createUser.ts",
		"handlers/getUser.ts",
		"handlers/listPosts.ts",
		"server.ts",
		"types.ts",
		"validators.ts",
	}
	if !slices.Equal(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}
}

func TestService_ReloadValidation(t *testing.T) {
	_, h, _, _ := newService(t)
	w := testutil.NewRequest().POST("/reload").WithJSON(map[string]string{"reason": "boredom"}).Serve(h)
	errResp := testutil.AssertJSONError(t, w, "invalid_argument")
	if errResp.Details["reason"] == nil {
		t.Errorf("details = %v", errResp.Details)
	}
}

func TestService_FailedReloadKeepsSnapshot(t *testing.T) {
	_, h, src, broken := newService(t)
	reload(t, h)

	broken.Store(true)
	w := testutil.NewRequest().POST("/reload").Serve(h)
	testutil.AssertStatus(t, w, http.StatusPreconditionFailed)
	errResp := testutil.AssertJSONError(t, w, "failed_precondition")
	diags, _ := errResp.Details["diagnostics"].([]any)
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %v, want 2 entries", errResp.Details["diagnostics"])
	}
	if d := diags[1].(string); !strings.HasPrefix(d, src+":9:2:") {
		t.Errorf("diagnostics[1] = %q", d)
	}

	// The previous build is still served.
	w = testutil.NewRequest().GET("/endpoints").Serve(h)
	testutil.AssertStatus(t, w, http.StatusOK)

	broken.Store(false)
	reload(t, h)
}

func TestService_FirstBuildFails(t *testing.T) {
	_, h, _, broken := newService(t)
	broken.Store(true)
	testutil.NewRequest().POST("/reload").Serve(h)

	w := testutil.NewRequest().GET("/endpoints").Serve(h)
	errResp := testutil.AssertJSONError(t, w, "unavailable")
	if diags, _ := errResp.Details["diagnostics"].([]any); len(diags) != 2 {
		t.Errorf("diagnostics = %v", errResp.Details["diagnostics"])
	}
}

func TestService_ListEndpoints(t *testing.T) {
	_, h, _, _ := newService(t)
	reload(t, h)

	tests := []struct {
		name      string
		query     string
		status    int
		wantNames []string
	}{
		{"all", "", http.StatusOK, []string{"CreateUser", "GetUser", "ListPosts"}},
		{"by name", "GetUser", http.StatusOK, []string{"GetUser"}},
		{"unknown", "Nope", http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest().GET("/endpoints")
			if tt.query != "" {
				req.WithQuery("name", tt.query)
			}
			w := req.Serve(h)
			testutil.AssertStatus(t, w, tt.status)
			if tt.status != http.StatusOK {
				testutil.AssertJSONError(t, w, "not_found")
				return
			}
			var res struct {
				Api       string `json:"api"`
				Endpoints []struct {
					Name string `json:"name"`
				} `json:"endpoints"`
			}
			testutil.DecodeResult(t, w, &res)
			if res.Api != "users" {
				t.Errorf("api = %q", res.Api)
			}
			var names []string
			for _, e := range res.Endpoints {
				names = append(names, e.Name)
			}
			slices.Sort(names)
			if !slices.Equal(names, tt.wantNames) {
				t.Errorf("endpoints = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestService_GetFile(t *testing.T) {
	_, h, _, _ := newService(t)
	reload(t, h)

	tests := []struct {
		name     string
		path     string
		status   int
		wantCode string
		wantLang string
		want     string
	}{
		{"types", "types.ts", http.StatusOK, "", "typescript", "CreateUserRequest"},
		{"stub", "handlers/getUser.ts", http.StatusOK, "", "typescript", "getUser"},
		{"discovery", "api.json", http.StatusOK, "", "json", `"GetUser"`},
		{"missing", "handlers/deletePost.ts", http.StatusNotFound, "not_found", "", ""},
		{"escape", "../secrets.ts", http.StatusBadRequest, "invalid_argument", "", ""},
		{"absolute", "/etc/passwd", http.StatusBadRequest, "invalid_argument", "", ""},
		{"empty", "", http.StatusBadRequest, "invalid_argument", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.NewRequest().GET("/file").WithQuery("path", tt.path).Serve(h)
			testutil.AssertStatus(t, w, tt.status)
			if tt.wantCode != "" {
				testutil.AssertJSONError(t, w, tt.wantCode)
				return
			}
			var res devserver.GetFileResponse
			testutil.DecodeResult(t, w, &res)
			if res.Language != tt.wantLang {
				t.Errorf("language = %q, want %q", res.Language, tt.wantLang)
			}
			if !strings.Contains(res.Content, tt.want) {
				t.Errorf("content missing %q:\n%s", tt.want, res.Content)
			}
		})
	}
}

func TestService_GetSource(t *testing.T) {
	_, h, src, _ := newService(t)
	reload(t, h)

	tests := []struct {
		name      string
		file      string
		line      string
		context   string
		wantCode  string
		wantNums  []int
		highlight int
	}{
		{"default context", src, "3", "", "", []int{1, 2, 3, 4, 5, 6, 7, 8}, 3},
		{"narrow", src, "6", "1", "", []int{5, 6, 7}, 6},
		{"zero context", src, "12", "0", "", []int{12}, 12},
		{"clipped at end", src, "11", "3", "", []int{8, 9, 10, 11, 12}, 11},
		{"past end", src, "40", "", "invalid_argument", nil, 0},
		{"line zero", src, "0", "", "invalid_argument", nil, 0},
		{"context too large", src, "3", "99", "invalid_argument", nil, 0},
		{"not a source", "/etc/hosts", "1", "", "permission_denied", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest().GET("/source").WithQuery("file", tt.file).WithQuery("line", tt.line)
			if tt.context != "" {
				req.WithQuery("context", tt.context)
			}
			w := req.Serve(h)
			if tt.wantCode != "" {
				testutil.AssertJSONError(t, w, tt.wantCode)
				return
			}
			testutil.AssertStatus(t, w, http.StatusOK)
			var res devserver.GetSourceResponse
			testutil.DecodeResult(t, w, &res)
			var nums []int
			for _, l := range res.Lines {
				nums = append(nums, l.Num)
				if l.Highlight != (l.Num == tt.highlight) {
					t.Errorf("line %d highlight = %v", l.Num, l.Highlight)
				}
				if want := fmt.Sprintf("// line %d", l.Num); l.Content != want {
					t.Errorf("line %d content = %q, want %q", l.Num, l.Content, want)
				}
			}
			if !slices.Equal(nums, tt.wantNums) {
				t.Errorf("lines = %v, want %v", nums, tt.wantNums)
			}
		})
	}
}

func TestService_GetSourceDeleted(t *testing.T) {
	_, h, src, _ := newService(t)
	reload(t, h)
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}
	w := testutil.NewRequest().GET("/source").WithQuery("file", src).WithQuery("line", "1").Serve(h)
	testutil.AssertJSONError(t, w, "not_found")
}

func TestService_Compile(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages")
	}
	cfg := &tycon.Config{Packages: []string{"github.com/broady/tycon/internal/testfixtures"}, Logger: quietLogger()}
	svc := devserver.NewService(cfg, nil)
	res, err := svc.Reload(context.Background(), &devserver.ReloadRequest{Reason: "startup"})
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if res.Endpoints != 4 {
		t.Errorf("Endpoints = %d, want 4", res.Endpoints)
	}
	if !slices.Contains(res.Files, "handlers/deletePost.ts") {
		t.Errorf("Files = %v", res.Files)
	}
}
