package requestcontext

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
)

type requestIdKey struct{}

// GetRequestId returns the request id from the context, or an empty
// string when the middleware did not run.
func GetRequestId(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey{}).(string); ok {
		return id
	}
	return ""
}

// New propagates the request id into the user context and its logger, so
// every log line written during the request carries it.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if !ok || requestId == "" {
			requestId = c.Get(requestid.ConfigDefault.Header, fiberutils.UUID())
			c.Set(requestid.ConfigDefault.Header, requestId)
			c.Locals(requestid.ConfigDefault.ContextKey, requestId)
		}

		ctx := context.WithValue(c.UserContext(), requestIdKey{}, requestId)
		ctx = logger.WithContext(ctx, "requestId", requestId)
		c.SetUserContext(ctx)
		return c.Next()
	}
}
