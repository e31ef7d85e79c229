package server_test

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/gallery/http/server"
	"github.com/rise-and-shine/gallery/http/server/middleware"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hideDetails bool) *server.HTTPServer {
	t.Helper()
	return newServerWithTimeout(t, hideDetails, time.Second)
}

func newServerWithTimeout(t *testing.T, hideDetails bool, timeout time.Duration) *server.HTTPServer {
	t.Helper()
	log := logger.Nop()
	cfg := server.Config{
		HideErrorDetails: hideDetails,
		Port:             8080,
		ReadTimeout:      time.Second,
		WriteTimeout:     time.Second,
		IdleTimeout:      time.Second,
		HandleTimeout:    timeout,
		BodyLimit:        1 << 20,
	}
	srv := server.NewHTTPServer(cfg, []server.Middleware{
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(cfg.HideErrorDetails),
		middleware.NewRecoveryMW(log),
		middleware.NewMetaInjectMW(),
		middleware.NewTimeoutMW(cfg.HandleTimeout),
	})
	srv.RegisterRouter(func(r fiber.Router) {
		r.Get("/ok", func(c *fiber.Ctx) error {
			_, hasDeadline := c.UserContext().Deadline()
			if !hasDeadline {
				return errx.New("missing deadline")
			}
			return c.SendString("fine")
		})
		r.Get("/missing", func(*fiber.Ctx) error {
			return errx.New("nothing here", errx.WithCode("NOT_HERE"), errx.WithType(errx.T_NotFound))
		})
		r.Get("/denied", func(*fiber.Ctx) error {
			return errx.New("go away", errx.WithType(errx.T_Forbidden), errx.WithDetails(errx.D{"why": "test"}))
		})
		r.Get("/panic", func(*fiber.Ctx) error {
			panic("boom")
		})
		r.Get("/slow", func(c *fiber.Ctx) error {
			<-c.UserContext().Done()
			return errx.Wrap(c.UserContext().Err())
		})
	})
	return srv
}

type errorBody struct {
	TraceID string `json:"trace_id"`
	Error   struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, srv *server.HTTPServer, path string, header http.Header) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body errorBody
	if rec.Code >= 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestRoutesAndErrorMapping(t *testing.T) {
	srv := newServer(t, false)

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{path: "/ok", status: http.StatusOK},
		{path: "/missing", status: http.StatusNotFound, code: "NOT_HERE"},
		{path: "/denied", status: http.StatusForbidden},
		{path: "/panic", status: http.StatusInternalServerError, code: middleware.CodePanic},
		{path: "/unknown", status: http.StatusNotFound, code: "ROUTER_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec, body := do(t, srv, tc.path, nil)
			assert.Equal(t, tc.status, rec.Code)
			if tc.code != "" {
				assert.Equal(t, tc.code, body.Error.Code)
			}
		})
	}
}

func TestHideErrorDetails(t *testing.T) {
	_, shown := do(t, newServer(t, false), "/denied", nil)
	assert.Equal(t, "test", shown.Error.Details["why"])

	_, hidden := do(t, newServer(t, true), "/denied", nil)
	assert.Empty(t, hidden.Error.Details)
}

func TestTraceIDPropagation(t *testing.T) {
	srv := newServer(t, false)

	rec, body := do(t, srv, "/missing", http.Header{middleware.HeaderRequestID: {"req-42"}})

	assert.Equal(t, "req-42", rec.Header().Get(middleware.HeaderRequestID))
	assert.Equal(t, "req-42", body.TraceID)

	rec, body = do(t, srv, "/missing", nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
	assert.Equal(t, rec.Header().Get(middleware.HeaderRequestID), body.TraceID)
}

func TestAddress(t *testing.T) {
	cfg := server.Config{Host: "0.0.0.0", Port: 9000}
	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
}

func TestTimeoutReportsRequestTimeout(t *testing.T) {
	srv := newServerWithTimeout(t, false, 20*time.Millisecond)

	rec, body := do(t, srv, "/slow", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, middleware.CodeRequestTimeout, body.Error.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, server.StatusFor(errx.T_Validation))
	assert.Equal(t, http.StatusUnauthorized, server.StatusFor(errx.T_Authentication))
	assert.Equal(t, http.StatusConflict, server.StatusFor(errx.T_Conflict))
	assert.Equal(t, http.StatusInternalServerError, server.StatusFor(errx.T_Internal))
}

func TestServeAndStop(t *testing.T) {
	srv := newServer(t, false)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	url := "http://" + ln.Addr().String() + "/ok"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Stop(t.Context()))
	require.NoError(t, <-done)
}
