package tycon

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/broady/tycon/tycongen/sink"
)

// Flavor selects the validator library targeted by validators.ts.
type Flavor string

const (
	// FlavorZod emits schemas against the classic zod API.
	FlavorZod Flavor = "zod"

	// FlavorZodMini emits schemas against zod/mini for smaller bundles.
	FlavorZodMini Flavor = "zod-mini"
)

// String returns the flavor name.
func (f Flavor) String() string {
	return string(f)
}

// DefaultConfigFile is the file the CLI looks for when --config is unset.
const DefaultConfigFile = "tycon.yaml"

// Config holds the configuration for code generation. The zero value plus
// Packages and OutDir is usable; everything else has a default.
type Config struct {
	// Name is the API name. Defaults to the last element of the first
	// package path.
	Name string `yaml:"name"`

	// Packages are the Go package patterns holding @endpoint declarations.
	// e.g. []string{"./api"}
	Packages []string `yaml:"packages" validate:"required,min=1,dive,required"`

	// Dir is the working directory for package loading.
	Dir string `yaml:"dir"`

	// OutDir is where generated files are written. Required unless Sink
	// is set.
	OutDir string `yaml:"out_dir"`

	// Flavor selects the validator library. Default: "zod".
	Flavor Flavor `yaml:"flavor" validate:"oneof=zod zod-mini"`

	// Port is the default listen port of server.ts. Default: 3000.
	Port int `yaml:"port" validate:"gte=1,lte=65535"`

	// HandlersDir holds the handler stubs, relative to OutDir.
	// Default: "handlers".
	HandlersDir string `yaml:"handlers_dir" validate:"relpath"`

	// PreserveComments controls whether Go doc comments become JSDoc.
	// Supported values: "default", "none".
	PreserveComments string `yaml:"preserve_comments" validate:"oneof=default none"`

	// UseTypeAlias declares objects as type aliases instead of interfaces.
	UseTypeAlias bool `yaml:"use_type_alias"`

	// OverwriteStubs regenerates handler stubs even when they exist.
	// Existing implementations are lost.
	OverwriteStubs bool `yaml:"overwrite_stubs"`

	// EmitDiscovery writes api.json, the IR of the whole API.
	EmitDiscovery bool `yaml:"emit_discovery"`

	// Concurrency bounds parallel stub generation. 0 means GOMAXPROCS.
	Concurrency int `yaml:"concurrency" validate:"gte=0"`

	// Sink receives the generated files. Defaults to a filesystem sink
	// rooted at OutDir.
	Sink sink.OutputSink `yaml:"-"`

	// Logger defaults to slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	result := *cfg

	if result.Flavor == "" {
		result.Flavor = FlavorZod
	}
	if result.Port == 0 {
		result.Port = 3000
	}
	if result.HandlersDir == "" {
		result.HandlersDir = "handlers"
	}
	if result.PreserveComments == "" {
		result.PreserveComments = "default"
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}

	return &result
}

var (
	validate = newValidator()

	//go:embed config.schema.json
	configSchemaJSON []byte
	configSchema     = sync.OnceValues(compileConfigSchema)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return f.Name
		}
		return name
	})
	// relpath accepts a clean relative slash path that stays below its root.
	err := v.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
		return sink.ValidatePath(fl.Field().String()) == nil
	})
	if err != nil {
		panic(fmt.Sprintf("tycon: register relpath validation: %v", err))
	}
	return v
}

func compileConfigSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("tycon.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("tycon.schema.json")
}

// Validate checks a config with defaults applied. Every violation is
// reported, joined.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s: %s", fieldPath(fe), describe(fe)))
	}
	return errors.Join(errs...)
}

// fieldPath drops the struct name from a validator namespace:
// "Config.packages[0]" becomes "packages[0]".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "relpath":
		return fmt.Sprintf("%q: %v", fe.Value(), sink.ValidatePath(fmt.Sprint(fe.Value())))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ParseConfig decodes a tycon.yaml document. The document is checked
// against the config schema, decoded over the defaults and then
// validated; all failures are joined.
func ParseConfig(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	var errs []error
	schema, err := configSchema()
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		errs = append(errs, fmt.Errorf("config schema: %w", err))
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		errs = append(errs, fmt.Errorf("decode config: %w", err))
	}
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// LoadConfig reads and parses the config file at path. Relative Dir and
// OutDir are resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(base, cfg.Dir)
	}
	if cfg.OutDir != "" && !filepath.IsAbs(cfg.OutDir) {
		cfg.OutDir = filepath.Join(base, cfg.OutDir)
	}
	return cfg, nil
}
