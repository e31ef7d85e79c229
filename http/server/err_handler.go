package server

import (
	"errors"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/gallery/meta"
)

// codeRouterError marks errors raised by fiber itself (unknown route,
// oversized body, bad method) rather than by a handler.
const codeRouterError = "ROUTER_ERROR"

var statusByType = map[errx.Type]int{
	errx.T_Validation:     fiber.StatusBadRequest,
	errx.T_Authentication: fiber.StatusUnauthorized,
	errx.T_Forbidden:      fiber.StatusForbidden,
	errx.T_NotFound:       fiber.StatusNotFound,
	errx.T_Conflict:       fiber.StatusConflict,
	errx.T_Throttling:     fiber.StatusTooManyRequests,
}

var typeByStatus = map[int]errx.Type{
	fiber.StatusUnauthorized:    errx.T_Authentication,
	fiber.StatusForbidden:       errx.T_Forbidden,
	fiber.StatusNotFound:        errx.T_NotFound,
	fiber.StatusConflict:        errx.T_Conflict,
	fiber.StatusTooManyRequests: errx.T_Throttling,
}

type errorEnvelope struct {
	TraceID any       `json:"trace_id"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Cause   string            `json:"cause"`
	Trace   string            `json:"trace,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

// WriteErrorResponse sets the status matching err's type and writes the
// JSON error envelope. Trace and details are omitted when hideDetails is
// set. The returned error is err converted to errx.
func WriteErrorResponse(c *fiber.Ctx, err error, hideDetails bool) error {
	e := toErrorX(err)

	body := errorBody{
		Code:   e.Code(),
		Cause:  e.Error(),
		Fields: e.Fields(),
	}
	if !hideDetails {
		body.Trace = e.Trace()
		body.Details = e.Details()
	}

	_ = c.Status(StatusFor(e.Type())).JSON(errorEnvelope{
		TraceID: c.UserContext().Value(meta.TraceID),
		Error:   body,
	})
	return e
}

// StatusFor maps an error type to its HTTP status. Unknown types are 500.
func StatusFor(t errx.Type) int {
	if status, ok := statusByType[t]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// customErrorHandler is the fiber fallback for errors no middleware wrote.
// A response that already carries an error status is left alone.
func customErrorHandler(hideDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}
		_ = WriteErrorResponse(c, err, hideDetails)
		return nil
	}
}

func toErrorX(err error) errx.ErrorX {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return errx.AsErrorX(err)
	}

	t, ok := typeByStatus[fe.Code]
	switch {
	case ok:
	case fe.Code >= fiber.StatusBadRequest && fe.Code < fiber.StatusInternalServerError:
		t = errx.T_Validation
	default:
		t = errx.T_Internal
	}

	return errx.AsErrorX(errx.New(
		fe.Message,
		errx.WithCode(codeRouterError),
		errx.WithType(t),
		errx.WithDetails(errx.D{"status": fe.Code}),
	))
}
