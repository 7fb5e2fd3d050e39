package gen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/broady/tycon"
	"github.com/broady/tycon/cmd/tycon/internal/cliconfig"
)

type Cmd struct {
	cliconfig.Flags `embed:""`

	Out            string `help:"Output directory. Overrides out_dir." short:"o" type:"path"`
	Flavor         string `help:"Validator flavor (zod, zod-mini). Overrides flavor." short:"f"`
	Discovery      bool   `help:"Also write api.json." short:"d"`
	OverwriteStubs bool   `help:"Regenerate handler stubs that already exist."`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	cfg, err := c.Load(logger)
	if err != nil {
		return err
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}
	if c.Flavor != "" {
		cfg.Flavor = tycon.Flavor(c.Flavor)
	}
	if c.Discovery {
		cfg.EmitDiscovery = true
	}
	if c.OverwriteStubs {
		cfg.OverwriteStubs = true
	}
	if cfg.OutDir == "" {
		return errors.New("no output directory: pass -o or set out_dir in " + tycon.DefaultConfigFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := tycon.Generate(ctx, cfg)
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		fmt.Printf("  wrote %s\n", f)
	}
	for _, f := range result.Skipped {
		fmt.Printf("  kept  %s\n", f)
	}
	fmt.Printf("✓ %d endpoints, %d types → %s\n", result.Endpoints, result.Types, cfg.OutDir)
	return nil
}
