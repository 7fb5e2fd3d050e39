package middleware

import (
	"log/slog"
	"time"

	"github.com/broady/tycon/devserver"
)

// LoggingInterceptor logs the start and end of each call with slog,
// including duration and error.
func LoggingInterceptor(logger *slog.Logger) devserver.UnaryInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *devserver.Context, req any, handler devserver.HandlerFunc) (any, error) {
		start := time.Now()
		endpoint := slog.String("endpoint", ctx.EndpointID())

		logger.DebugContext(ctx, "request started", endpoint)

		res, err := handler(ctx, req)
		duration := slog.Duration("duration", time.Since(start))

		if err != nil {
			logger.ErrorContext(ctx, "request failed", endpoint, duration, slog.Any("error", err))
		} else {
			logger.InfoContext(ctx, "request completed", endpoint, duration)
		}
		return res, err
	}
}
