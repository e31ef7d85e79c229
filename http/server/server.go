// Package server wraps a fiber app with ordered middleware, JSON error
// responses and a net/http view for tests.
package server

import (
	"context"
	"net"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// HTTPServer owns a fiber app configured from Config. Register routes with
// RegisterRouter, then run it with Start or Serve and shut it down with Stop.
type HTTPServer struct {
	cfg Config
	app *fiber.App
}

// NewHTTPServer builds the fiber app and installs middlewares by
// descending priority.
func NewHTTPServer(cfg Config, middlewares []Middleware) *HTTPServer {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          customErrorHandler(cfg.HideErrorDetails),
		DisableStartupMessage: true,
		Immutable:             true,
	})

	applyMiddlewares(app, middlewares)

	return &HTTPServer{cfg: cfg, app: app}
}

// RegisterRouter lets register add routes to the app.
func (s *HTTPServer) RegisterRouter(register func(r fiber.Router)) {
	register(s.app)
}

// Handler exposes the app as a net/http handler.
func (s *HTTPServer) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Start listens on the configured address and blocks until Stop.
func (s *HTTPServer) Start() error {
	return s.app.Listen(s.cfg.Address())
}

// Serve is Start on an existing listener.
func (s *HTTPServer) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Stop waits for in-flight requests until the shutdown timeout or ctx
// expires, whichever comes first.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.app.ShutdownWithContext(ctx)
}
