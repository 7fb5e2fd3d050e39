package dev

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/broady/tycon/cmd/tycon/internal/cliconfig"
	"github.com/broady/tycon/devserver"
	"github.com/broady/tycon/middleware"
)

// Prefix is where the preview API is mounted, to stay clear of the
// generated server's routes.
const Prefix = "/__tycon"

type Cmd struct {
	cliconfig.Flags `embed:""`

	Port int `help:"Port to listen on." default:"9000" short:"p"`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	cfg, err := c.Load(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := devserver.NewService(cfg, nil)
	if _, err := svc.Reload(ctx, &devserver.ReloadRequest{Reason: "startup"}); err != nil {
		// Keep serving; the UI shows the diagnostics and can reload.
		logger.Warn("initial build failed", slog.Any("error", err))
	}

	app := svc.App().
		WithMiddleware(middleware.CORS(nil)).
		WithUnaryInterceptor(middleware.LoggingInterceptor(logger))

	mux := http.NewServeMux()
	mux.Handle(Prefix+"/", http.StripPrefix(Prefix, app.Handler()))

	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", c.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("tycon dev listening on http://%s%s/\n", srv.Addr, Prefix)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
