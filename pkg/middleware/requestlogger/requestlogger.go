package requestlogger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
)

type Config struct {
	// Disable drops the INFO-level completion lines; errors still log.
	Disable bool `mapstructure:"disable"`
}

// New logs one line per completed request with method, route, status and
// latency. Responses at 5xx or handler errors log at ERROR level.
func New(config Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Int64("latency", latency.Milliseconds()),
			slog.String("latencyHuman", latency.String()),
		}

		if err != nil || status >= http.StatusInternalServerError {
			logErr := err
			if logErr == nil {
				logErr = fiber.NewError(status)
			}
			logger.ErrorContext(c.UserContext(), "Request Completed", append(attrs, slog.Any("error", logErr))...)
			return errors.WithStack(err)
		}

		if !config.Disable {
			logger.InfoContext(c.UserContext(), "Request Completed", attrs...)
		}
		return errors.WithStack(err)
	}
}
