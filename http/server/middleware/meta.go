package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/meta"
)

// HeaderRequestID carries a caller supplied trace id.
const HeaderRequestID = "X-Request-Id"

// NewMetaInjectMW creates a middleware that puts a trace id into the request
// context, reusing X-Request-Id when the caller sends one, and echoes it back.
func NewMetaInjectMW() server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
				meta.TraceID: c.Get(HeaderRequestID),
			})
			ctx = meta.WithTrace(ctx)
			c.SetUserContext(ctx)

			if id, ok := ctx.Value(meta.TraceID).(string); ok {
				c.Set(HeaderRequestID, id)
			}

			return c.Next()
		},
	}
}
