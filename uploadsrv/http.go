package uploadsrv

import (
	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/http/server/middleware"
	"github.com/rise-and-shine/gallery/logger"
)

// NewHTTPServer wires svc into an HTTP server with the standard middleware stack.
func NewHTTPServer(cfg server.Config, svc *Service, log logger.Logger) *server.HTTPServer {
	if log == nil {
		log = logger.Nop()
	}
	srv := server.NewHTTPServer(cfg, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTimeoutMW(cfg.HandleTimeout),
		middleware.NewMetaInjectMW(),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(cfg.HideErrorDetails),
	})
	srv.RegisterRouter(svc.Register)
	return srv
}
