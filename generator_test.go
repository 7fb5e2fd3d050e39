package tycon

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/broady/tycon/internal/testfixtures"
	"github.com/broady/tycon/tycongen/sink"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var fixtureStubs = []string{
	"handlers/createUser.ts",
	"handlers/deletePost.ts",
	"handlers/getUser.ts",
	"handlers/listPosts.ts",
}

func TestGenerate_Memory(t *testing.T) {
	ctx := context.Background()
	mem := sink.NewMemorySink()
	result, err := FromPackages(testfixtures.PackagePath).
		WithLogger(quietLogger()).
		WithPort(4000).
		ToSink(ctx, mem)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := append([]string{ServerFile, TypesFile, ValidatorsFile}, fixtureStubs...)
	slices.Sort(want)
	if !slices.Equal(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
	if !slices.Equal(mem.Paths(), want) {
		t.Errorf("sink paths = %v, want %v", mem.Paths(), want)
	}
	if result.Endpoints != 4 {
		t.Errorf("Endpoints = %d, want 4", result.Endpoints)
	}
	if result.Types == 0 {
		t.Error("Types = 0")
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Skipped = %v", result.Skipped)
	}

	tests := []struct {
		file    string
		want    []string
		notWant []string
	}{
		{
			file: TypesFile,
			want: []string{"// Code generated by tycon. DO NOT EDIT.", "export interface User {"},
		},
		{
			file:    ValidatorsFile,
			want:    []string{`import { z } from "zod";`, "export const getUserResponseValidator"},
			notWant: []string{"zod/mini"},
		},
		{
			file: ServerFile,
			want: []string{
				`app.get("/users/:id", async (req, res) => {`,
				`import { getUser } from "./handlers/getUser";`,
				"process.env.PORT ?? 4000",
			},
		},
		{
			file: "handlers/getUser.ts",
			want: []string{`from "../types";`, "export async function getUser("},
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got := string(mem.Get(tt.file))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%s missing %q\ngot:\n%s", tt.file, w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("%s should not contain %q", tt.file, nw)
				}
			}
		})
	}
}

func TestGenerate_KeepsExistingStubs(t *testing.T) {
	ctx := context.Background()
	mem := sink.NewMemorySink()
	impl := []byte("export async function getUser() { return { status: 200, data: me } }\n")
	if err := mem.WriteFile(ctx, "handlers/getUser.ts", impl); err != nil {
		t.Fatal(err)
	}

	gen := FromPackages(testfixtures.PackagePath).WithLogger(quietLogger())
	result, err := gen.ToSink(ctx, mem)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(result.Skipped, []string{"handlers/getUser.ts"}) {
		t.Errorf("Skipped = %v", result.Skipped)
	}
	if slices.Contains(result.Files, "handlers/getUser.ts") {
		t.Error("skipped stub reported as written")
	}
	if got := mem.Get("handlers/getUser.ts"); string(got) != string(impl) {
		t.Errorf("implementation overwritten:\n%s", got)
	}

	result, err = gen.OverwriteStubs().ToSink(ctx, mem)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Skipped = %v with OverwriteStubs", result.Skipped)
	}
	if got := string(mem.Get("handlers/getUser.ts")); !strings.Contains(got, "Not implemented: GetUser") {
		t.Errorf("stub not regenerated:\n%s", got)
	}
}

func TestGenerate_ConfigOptions(t *testing.T) {
	ctx := context.Background()
	mem := sink.NewMemorySink()
	_, err := Generate(ctx, &Config{
		Packages:      []string{testfixtures.PackagePath},
		Flavor:        FlavorZodMini,
		HandlersDir:   "src/handlers",
		EmitDiscovery: true,
		Concurrency:   1,
		Sink:          mem,
		Logger:        quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := string(mem.Get(ValidatorsFile)); !strings.Contains(got, `import * as z from "zod/mini";`) {
		t.Errorf("validators.ts not zod-mini:\n%s", got)
	}
	if got := string(mem.Get(ServerFile)); !strings.Contains(got, `from "./src/handlers/getUser";`) {
		t.Errorf("server.ts handler import:\n%s", got)
	}
	if got := string(mem.Get("src/handlers/getUser.ts")); !strings.Contains(got, `from "../../types";`) {
		t.Errorf("stub types import:\n%s", got)
	}

	var doc struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Name  string `json:"name"`
			Route string `json:"route"`
		} `json:"endpoints"`
	}
	if err := json.Unmarshal(mem.Get(DiscoveryFile), &doc); err != nil {
		t.Fatalf("api.json: %v", err)
	}
	if doc.Name != "testfixtures" || len(doc.Endpoints) != 4 || doc.Endpoints[0].Route != "/users/:id" {
		t.Errorf("api.json = %+v", doc)
	}
}

func TestGenerate_ToDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := FromPackages(testfixtures.PackagePath).WithLogger(quietLogger()).ToDir(dir); err != nil {
		t.Fatal(err)
	}
	for _, p := range append([]string{ServerFile, TypesFile, ValidatorsFile}, fixtureStubs...) {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p))); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		cfg    *Config
		errMsg string
	}{
		{
			name:   "no packages",
			cfg:    &Config{OutDir: "out"},
			errMsg: "packages: required",
		},
		{
			name:   "no output",
			cfg:    &Config{Packages: []string{"./api"}},
			errMsg: "out_dir: required",
		},
		{
			name:   "unknown flavor",
			cfg:    &Config{Packages: []string{"./api"}, Flavor: "yup", Sink: sink.NewMemorySink()},
			errMsg: "flavor: must be one of",
		},
		{
			name:   "missing package",
			cfg:    &Config{Packages: []string{"github.com/broady/tycon/internal/nope"}, Sink: sink.NewMemorySink(), Logger: quietLogger()},
			errMsg: "failed to build api",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(ctx, tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Generate() = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}
