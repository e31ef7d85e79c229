package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/gallery/http/server"
)

// CodeRequestTimeout is reported when a handler gives up because its
// context deadline passed.
const CodeRequestTimeout = "REQUEST_TIMEOUT"

// NewTimeoutMW bounds the request context by d. Handlers that fail with the
// context's deadline error get a REQUEST_TIMEOUT error instead. A
// non-positive d disables the bound.
func NewTimeoutMW(d time.Duration) server.Middleware {
	return server.Middleware{
		Priority: PriorityTimeout,
		Handler: func(c *fiber.Ctx) error {
			if d <= 0 {
				return c.Next()
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), d)
			defer cancel()
			c.SetUserContext(ctx)

			err := c.Next()
			if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
				return errx.New("request timed out",
					errx.WithCode(CodeRequestTimeout),
					errx.WithType(errx.T_Internal),
					errx.WithDetails(errx.D{"timeout": d.String(), "cause": err.Error()}),
				)
			}
			return err
		},
	}
}
