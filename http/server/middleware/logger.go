package middleware

import (
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/logger"
)

// LocalOwner is the fiber local under which authentication stores the owner.
const LocalOwner = "owner"

// NewLoggerMW logs one line per request: info below 400, warn for 4xx and
// error for 5xx. Requests addressing an asset carry its owner and id.
func NewLoggerMW(log logger.Logger) server.Middleware {
	log = log.Named("http")

	return server.Middleware{
		Priority: PriorityLogger,
		Handler: func(c *fiber.Ctx) error {
			start := time.Now()
			err := nextRecovered(c)

			status := c.Response().StatusCode()
			if err != nil && status < fiber.StatusBadRequest {
				// not written yet; the error handler runs after us
				status = server.StatusFor(errx.AsErrorX(err).Type())
			}

			l := log.WithContext(c.UserContext()).With(
				"status", status,
				"method", c.Method(),
				"route", c.Route().Path,
				"path", c.Path(),
				"duration", time.Since(start),
				"bytes_in", len(c.Request().Body()),
			)
			if owner, ok := c.Locals(LocalOwner).(string); ok {
				l = l.With("owner", owner)
			}
			if id := c.Params("id"); id != "" {
				l = l.With("asset_id", id)
			}
			if err != nil {
				l = l.With("error_code", errx.AsErrorX(err).Code())
			}

			switch {
			case status >= fiber.StatusInternalServerError:
				if err != nil {
					l.Errorx(err)
				} else {
					l.Error("request failed")
				}
			case status >= fiber.StatusBadRequest:
				l.Warn("request rejected")
			default:
				l.Info("request served")
			}
			return err
		},
	}
}

// nextRecovered runs the rest of the chain, turning a panic into an error
// so the line is still logged.
func nextRecovered(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return c.Next()
}
