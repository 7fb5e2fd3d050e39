// Package cliconfig merges tycon.yaml with command-line flags.
package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/broady/tycon"
)

// Flags are shared by every command that compiles packages.
type Flags struct {
	Config   string   `help:"Config file. Defaults to tycon.yaml when it exists." short:"c" type:"path"`
	Dir      string   `help:"Directory to load packages from." type:"path"`
	Packages []string `arg:"" optional:"" help:"Go package patterns. Replaces packages from the config file."`
}

// Load reads the config file, if any, and applies the flags over it.
// A missing default config file is not an error; a missing explicit one
// is.
func (f *Flags) Load(logger *slog.Logger) (*tycon.Config, error) {
	path := f.Config
	if path == "" {
		path = tycon.DefaultConfigFile
	}

	cfg, err := tycon.LoadConfig(path)
	switch {
	case err == nil:
		logger.Debug("loaded config", slog.String("path", path))
	case f.Config == "" && errors.Is(err, fs.ErrNotExist):
		cfg = &tycon.Config{}
	default:
		return nil, err
	}

	if len(f.Packages) > 0 {
		cfg.Packages = f.Packages
	}
	if len(cfg.Packages) == 0 {
		return nil, fmt.Errorf("no packages: pass package patterns or set packages in %s", path)
	}
	if f.Dir != "" {
		cfg.Dir = f.Dir
	}
	cfg.Logger = logger
	return cfg, nil
}
