package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/broady/tycon"
	"github.com/broady/tycon/cmd/tycon/internal/cliconfig"
	"github.com/broady/tycon/tycongen/sink"
)

type Cmd struct {
	cliconfig.Flags `embed:""`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	cfg, err := c.Load(logger)
	if err != nil {
		return err
	}
	ctx := context.Background()

	api, err := tycon.Compile(ctx, cfg)
	if err != nil {
		// Diagnostics are file:line:col: message, one per line.
		fmt.Fprintln(os.Stderr, err)
		return errors.New("check failed")
	}

	// Render everything in memory so untranslatable validate tags
	// surface here too.
	cfg.Sink = sink.NewMemorySink()
	result, err := tycon.Emit(ctx, api, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %d endpoints, %d types\n", result.Endpoints, result.Types)
	for _, w := range result.Warnings {
		fmt.Printf("! %s\n", w)
	}
	return nil
}
