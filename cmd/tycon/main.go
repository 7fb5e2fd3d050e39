package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/broady/tycon/cmd/tycon/internal/check"
	"github.com/broady/tycon/cmd/tycon/internal/dev"
	"github.com/broady/tycon/cmd/tycon/internal/gen"
)

type CLI struct {
	Verbose bool `help:"Log debug output." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate the Express server, validators and handler stubs."`
	Check   check.Cmd  `cmd:"" help:"Compile and validate endpoints without writing files."`
	Dev     dev.Cmd    `cmd:"" help:"Start the preview server."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("tycon"),
		kong.Description("Compile annotated Go endpoint declarations into a TypeScript Express server."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
