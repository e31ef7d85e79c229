package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/logger"
)

// CodePanic marks errors produced from a recovered panic.
const CodePanic = "PANIC"

// NewRecoveryMW turns a panic further down the chain into an internal
// error and logs it with the request context.
func NewRecoveryMW(log logger.Logger) server.Middleware {
	log = log.Named("middleware.recovery")

	return server.Middleware{
		Priority: PriorityRecovery,
		Handler: func(c *fiber.Ctx) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = panicError(r)
					log.WithContext(c.UserContext()).Errorx(err)
				}
			}()
			return c.Next()
		},
	}
}

func panicError(r any) error {
	return errx.New(
		fmt.Sprintf("panic: %v", r),
		errx.WithCode(CodePanic),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"stack": string(debug.Stack())}),
	)
}
