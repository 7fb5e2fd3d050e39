// Package tycon compiles annotated Go API declarations into a validating
// TypeScript/Express server.
//
// Endpoints are Go struct types whose doc comment carries
// `@endpoint METHOD PATH`; their fields are tagged with @pathParams,
// @headers, @request, @response, @error CODE and @defaultError. Generate
// loads the packages, builds and validates the IR, and writes:
//
//	types.ts          declarations of every named type
//	validators.ts     zod schemas and per-endpoint validators
//	server.ts         express routes that validate inputs and outputs
//	handlers/*.ts     one stub per endpoint, never overwritten by default
//	api.json          the IR, when EmitDiscovery is set
package tycon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/broady/tycon/tycongen/emit"
	"github.com/broady/tycon/tycongen/express"
	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/provider"
	"github.com/broady/tycon/tycongen/sink"
	"github.com/broady/tycon/tycongen/typescript"
	"github.com/broady/tycon/tycongen/typescript/flavor"
)

// Generated file names, relative to the output directory.
const (
	TypesFile      = "types.ts"
	ValidatorsFile = "validators.ts"
	ServerFile     = "server.ts"
	DiscoveryFile  = "api.json"
)

// GenerateResult describes one generation run.
type GenerateResult struct {
	// Files are the paths written, sorted.
	Files []string

	// Skipped are stub paths left alone because they already existed.
	Skipped []string

	Endpoints int
	Types     int

	// Warnings are validate rules that could not be translated.
	Warnings []string
}

// Generate compiles cfg.Packages and writes the generated files.
func Generate(ctx context.Context, cfg *Config) (*GenerateResult, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Sink == nil {
		if cfg.OutDir == "" {
			return nil, errors.New("invalid config: out_dir: required")
		}
		cfg.Sink = sink.NewFilesystemSink(cfg.OutDir)
	}

	api, err := Compile(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Emit(ctx, api, cfg)
}

// Compile loads cfg.Packages and returns the validated Api.
func Compile(ctx context.Context, cfg *Config) (*ir.Api, error) {
	cfg = applyConfigDefaults(cfg)
	p := &provider.SourceProvider{Logger: cfg.Logger}
	api, err := p.BuildApi(ctx, provider.SourceInputOptions{
		Packages: cfg.Packages,
		Dir:      cfg.Dir,
		Name:     cfg.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build api: %w", err)
	}
	errs := api.Validate()
	if len(errs) == 0 {
		// Name checks assume a structurally valid Api.
		errs = express.CheckIdentifiers(api, express.Options{HandlersDir: cfg.HandlersDir})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid api: %w", errors.Join(errs...))
	}
	cfg.Logger.Debug("compiled api",
		slog.String("api", api.Name),
		slog.Int("endpoints", len(api.Endpoints())),
		slog.Int("types", api.Types.Len()))
	return api, nil
}

// Emit renders api and writes it to cfg.Sink. api must have passed
// Validate.
func Emit(ctx context.Context, api *ir.Api, cfg *Config) (*GenerateResult, error) {
	cfg = applyConfigDefaults(cfg)
	if cfg.Sink == nil {
		return nil, errors.New("no output sink")
	}
	f, err := flavor.Get(cfg.Flavor.String())
	if err != nil {
		return nil, err
	}

	opts := express.Options{
		Port:        cfg.Port,
		HandlersDir: cfg.HandlersDir,
		TypesModule: strings.Repeat("../", strings.Count(cfg.HandlersDir, "/")+1) + "types",
	}
	tsEmitter := typescript.NewEmitter(typescript.Config{
		EmitComments: cfg.PreserveComments != "none",
		UseTypeAlias: cfg.UseTypeAlias,
	})
	fctx := &flavor.EmitContext{Types: api.Types}

	files := map[string][]byte{
		TypesFile:      tsEmitter.EmitTypes(api.Types),
		ValidatorsFile: flavor.Generate(f, fctx, api),
		ServerFile:     emit.Render(express.GenerateServer(api, opts)),
	}
	if cfg.EmitDiscovery {
		data, err := json.MarshalIndent(api, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", DiscoveryFile, err)
		}
		files[DiscoveryFile] = append(data, '\n')
	}

	result := &GenerateResult{
		Endpoints: len(api.Endpoints()),
		Types:     api.Types.Len(),
		Warnings:  fctx.Warnings,
	}
	for _, w := range fctx.Warnings {
		cfg.Logger.Warn("validator not translated", slog.String("detail", w))
	}
	for path, content := range files {
		if err := cfg.Sink.WriteFile(ctx, path, content); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		result.Files = append(result.Files, path)
	}

	written, skipped, err := writeStubs(ctx, api, cfg, opts)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, written...)
	result.Skipped = skipped
	slices.Sort(result.Files)
	slices.Sort(result.Skipped)

	cfg.Logger.Info("generated",
		slog.String("api", api.Name),
		slog.Int("files", len(result.Files)),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

// writeStubs writes one handler stub per endpoint, in parallel. Stubs
// that already exist are skipped unless cfg.OverwriteStubs is set.
func writeStubs(ctx context.Context, api *ir.Api, cfg *Config, opts express.Options) (written, skipped []string, err error) {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	for _, e := range api.Endpoints() {
		g.Go(func() error {
			path := express.StubPath(e, opts)
			content := emit.Render(express.GenerateStub(e, opts))
			write := cfg.Sink.CreateFile
			if cfg.OverwriteStubs {
				write = cfg.Sink.WriteFile
			}
			err := write(gctx, path, content)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				written = append(written, path)
			case errors.Is(err, sink.ErrExists):
				cfg.Logger.Debug("keeping existing handler", slog.String("path", path))
				skipped = append(skipped, path)
			default:
				return fmt.Errorf("write stub for %s: %w", e.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return written, skipped, nil
}

// Generator provides a fluent API for code generation.
//
// Example:
//
//	tycon.FromPackages("./api").
//	    WithFlavor(tycon.FlavorZodMini).
//	    ToDir("./server/src")
type Generator struct {
	cfg Config
}

// FromPackages creates a Generator for the given package patterns.
func FromPackages(pkgs ...string) *Generator {
	return &Generator{cfg: Config{Packages: pkgs}}
}

// FromConfig creates a Generator starting from a copy of cfg.
func FromConfig(cfg *Config) *Generator {
	return &Generator{cfg: *cfg}
}

// WithFlavor selects the validator flavor.
func (g *Generator) WithFlavor(f Flavor) *Generator {
	g.cfg.Flavor = f
	return g
}

// WithLogger sets the logger for progress and warnings.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// WithPort sets the default listen port of server.ts.
func (g *Generator) WithPort(port int) *Generator {
	g.cfg.Port = port
	return g
}

// WithDiscovery enables api.json output.
func (g *Generator) WithDiscovery() *Generator {
	g.cfg.EmitDiscovery = true
	return g
}

// OverwriteStubs regenerates handler stubs that already exist.
func (g *Generator) OverwriteStubs() *Generator {
	g.cfg.OverwriteStubs = true
	return g
}

// InDir sets the working directory for package loading.
func (g *Generator) InDir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// ToDir generates files into dir on disk.
func (g *Generator) ToDir(dir string) (*GenerateResult, error) {
	cfg := g.cfg
	cfg.OutDir = dir
	cfg.Sink = nil
	return Generate(context.Background(), &cfg)
}

// ToSink generates files into s.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink) (*GenerateResult, error) {
	cfg := g.cfg
	cfg.Sink = s
	return Generate(ctx, &cfg)
}
