// Package middleware holds the fiber middleware stack of the upload server.
// Higher priorities run earlier:
//
//	srv := server.NewHTTPServer(cfg, []server.Middleware{
//		middleware.NewRecoveryMW(log),                       // 1000
//		middleware.NewTimeoutMW(cfg.HandleTimeout),          // 800
//		middleware.NewMetaInjectMW(),                        // 700
//		middleware.NewLoggerMW(log),                         // 500
//		middleware.NewErrorHandlerMW(cfg.HideErrorDetails),  // 400
//	})
package middleware

const (
	PriorityRecovery     = 1000
	PriorityTimeout      = 800
	PriorityMetaInject   = 700
	PriorityLogger       = 500
	PriorityErrorHandler = 400
)
