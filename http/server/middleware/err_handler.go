package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/gallery/http/server"
)

// NewErrorHandlerMW writes handler errors as JSON unless the handler
// already answered with an error status.
func NewErrorHandlerMW(hideDetails bool) server.Middleware {
	return server.Middleware{
		Priority: PriorityErrorHandler,
		Handler: func(c *fiber.Ctx) error {
			err := c.Next()
			if err == nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				return err
			}
			return server.WriteErrorResponse(c, err, hideDetails)
		},
	}
}
