// Package devserver is the tycon preview server: a small JSON API under
// /__tycon/ that serves the compiled endpoints, the generated files and
// the Go source behind diagnostics, and recompiles on demand.
package devserver

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/broady/tycon"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/sink"
)

// BuildFunc compiles the API. It is called on every reload.
type BuildFunc func(ctx context.Context) (*ir.Api, error)

// Snapshot is the result of one successful build.
type Snapshot struct {
	Api     *ir.Api
	Files   *sink.MemorySink
	Result  *tycon.GenerateResult
	BuiltAt time.Time

	// sources are the Go files GetSource may read.
	sources map[string]bool
}

// Service implements the preview endpoints. Builds replace the snapshot
// atomically; a failed build keeps the previous one.
type Service struct {
	cfg    *tycon.Config
	build  BuildFunc
	logger *slog.Logger

	mu      sync.RWMutex
	snap    *Snapshot
	lastErr error
}

// NewService returns a Service that emits with cfg. A nil build compiles
// cfg.Packages with tycon.Compile. Call Reload before serving.
func NewService(cfg *tycon.Config, build BuildFunc) *Service {
	if build == nil {
		build = func(ctx context.Context) (*ir.Api, error) {
			return tycon.Compile(ctx, cfg)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, build: build, logger: logger}
}

// App registers the Service's endpoints on a new App.
func (s *Service) App() *App {
	app := NewApp().WithLogger(s.logger)
	app.Register("endpoints", Query(s.ListEndpoints))
	app.Register("file", Query(s.GetFile))
	app.Register("source", Query(s.GetSource))
	app.Register("reload", Exec(s.Reload))
	return app
}

func (s *Service) snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap != nil {
		return s.snap, nil
	}
	err := NewError(CodeUnavailable, "no successful build yet")
	if s.lastErr != nil {
		err = err.WithDetail("diagnostics", diagnostics(s.lastErr))
	}
	return nil, err
}

// ReloadRequest asks for a rebuild.
type ReloadRequest struct {
	Files  []string `json:"files,omitempty"`
	Reason string   `json:"reason,omitempty" validate:"omitempty,oneof=startup file_change manual"`
}

// ReloadResponse summarizes a successful rebuild.
type ReloadResponse struct {
	Endpoints  int      `json:"endpoints"`
	Types      int      `json:"types"`
	Files      []string `json:"files"`
	Warnings   []string `json:"warnings,omitempty"`
	DurationMs int64    `json:"durationMs"`
}

// Reload recompiles the API and regenerates every file in memory.
func (s *Service) Reload(ctx context.Context, req *ReloadRequest) (*ReloadResponse, error) {
	start := time.Now()
	s.logger.Debug("reloading", slog.String("reason", req.Reason), slog.Any("files", req.Files))

	snap, err := s.rebuild(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn("build failed", slog.Any("error", err))
		return nil, NewError(CodeFailedPrecondition, "build failed").
			WithDetail("diagnostics", diagnostics(err))
	}

	s.mu.Lock()
	s.snap, s.lastErr = snap, nil
	s.mu.Unlock()

	return &ReloadResponse{
		Endpoints:  snap.Result.Endpoints,
		Types:      snap.Result.Types,
		Files:      snap.Files.Paths(),
		Warnings:   snap.Result.Warnings,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (s *Service) rebuild(ctx context.Context) (*Snapshot, error) {
	api, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	mem := sink.NewMemorySink()
	cfg := *s.cfg
	cfg.Sink = mem
	cfg.EmitDiscovery = true
	result, err := tycon.Emit(ctx, api, &cfg)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Api:     api,
		Files:   mem,
		Result:  result,
		BuiltAt: time.Now(),
		sources: sourceFiles(api),
	}, nil
}

// sourceFiles lists every Go file the Api was declared in.
func sourceFiles(api *ir.Api) map[string]bool {
	files := make(map[string]bool)
	add := func(src ir.Source) {
		if src.File != "" {
			files[src.File] = true
		}
	}
	for _, e := range api.Endpoints() {
		add(e.Source)
		for _, p := range e.PathParams {
			add(p.Source)
		}
		for _, h := range e.Headers {
			add(h.Source)
		}
	}
	for _, d := range api.Types.All() {
		add(d.Source)
	}
	return files
}

// ListEndpointsRequest optionally selects one endpoint by name.
type ListEndpointsRequest struct {
	Name string `schema:"name"`
}

// ListEndpointsResponse is the compiled API.
type ListEndpointsResponse struct {
	Api       string                `json:"api"`
	Endpoints []*ir.Endpoint        `json:"endpoints"`
	Types     []*ir.TypeDeclaration `json:"types"`
	BuiltAt   time.Time             `json:"builtAt"`
}

// ListEndpoints returns the endpoints of the current snapshot.
func (s *Service) ListEndpoints(ctx context.Context, req *ListEndpointsRequest) (*ListEndpointsResponse, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	endpoints := snap.Api.Endpoints()
	if req.Name != "" {
		e, ok := snap.Api.Endpoint(req.Name)
		if !ok {
			return nil, Errorf(CodeNotFound, "no endpoint named %q", req.Name)
		}
		endpoints = []*ir.Endpoint{e}
	}
	types := snap.Api.Types.All()
	if types == nil {
		types = []*ir.TypeDeclaration{}
	}
	return &ListEndpointsResponse{
		Api:       snap.Api.Name,
		Endpoints: endpoints,
		Types:     types,
		BuiltAt:   snap.BuiltAt,
	}, nil
}

// GetFileRequest names a generated file.
type GetFileRequest struct {
	Path string `schema:"path" validate:"required"`
}

// GetFileResponse is a generated file.
type GetFileResponse struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// GetFile returns a file from the current snapshot, as it would be
// written by tycon gen.
func (s *Service) GetFile(ctx context.Context, req *GetFileRequest) (*GetFileResponse, error) {
	if err := sink.ValidatePath(req.Path); err != nil {
		return nil, Errorf(CodeInvalidArgument, "invalid path %q: %v", req.Path, err)
	}
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	content := snap.Files.Get(req.Path)
	if content == nil {
		return nil, Errorf(CodeNotFound, "%s was not generated", req.Path)
	}
	return &GetFileResponse{
		Path:     req.Path,
		Language: language(req.Path),
		Content:  string(content),
	}, nil
}

func language(p string) string {
	switch path.Ext(p) {
	case ".ts":
		return "typescript"
	case ".json":
		return "json"
	case ".go":
		return "go"
	default:
		return "text"
	}
}

// GetSourceRequest addresses a diagnostic: a line of a Go file the API
// was compiled from.
type GetSourceRequest struct {
	File    string `schema:"file" validate:"required"`
	Line    int    `schema:"line" validate:"required,gte=1"`
	Context int    `schema:"context,default:5" validate:"gte=0,lte=50"`
}

// SourceLine is a single line of source code.
type SourceLine struct {
	Num       int    `json:"num"`
	Content   string `json:"content"`
	Highlight bool   `json:"highlight,omitempty"`
}

// GetSourceResponse is the requested line with surrounding context.
type GetSourceResponse struct {
	File     string       `json:"file"`
	Language string       `json:"language"`
	Lines    []SourceLine `json:"lines"`
	Context  int          `json:"context"`
}

// GetSource returns the lines around req.Line. Only files the current
// snapshot was compiled from can be read.
func (s *Service) GetSource(ctx context.Context, req *GetSourceRequest) (*GetSourceResponse, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if !snap.sources[req.File] {
		return nil, Errorf(CodePermissionDenied, "%s is not a source of this api", req.File)
	}

	f, err := os.Open(req.File)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Errorf(CodeNotFound, "%s no longer exists", req.File)
		}
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	first, last := max(1, req.Line-req.Context), req.Line+req.Context
	resp := &GetSourceResponse{File: req.File, Language: "go", Context: req.Context}
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		if n < first {
			continue
		}
		if n > last {
			break
		}
		resp.Lines = append(resp.Lines, SourceLine{Num: n, Content: sc.Text(), Highlight: n == req.Line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if req.Line > n {
		return nil, Errorf(CodeInvalidArgument, "line %d out of range: %s has %d lines", req.Line, req.File, n)
	}
	return resp, nil
}
