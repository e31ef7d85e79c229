package server

import (
	"cmp"
	"slices"

	"github.com/gofiber/fiber/v2"
)

// Middleware is a fiber handler with an ordering priority. Higher
// priorities wrap lower ones.
type Middleware struct {
	Priority int
	Handler  fiber.Handler
}

func applyMiddlewares(app *fiber.App, mws []Middleware) {
	ordered := slices.DeleteFunc(slices.Clone(mws), func(mw Middleware) bool {
		return mw.Handler == nil
	})
	slices.SortStableFunc(ordered, func(a, b Middleware) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	for _, mw := range ordered {
		app.Use(mw.Handler)
	}
}
