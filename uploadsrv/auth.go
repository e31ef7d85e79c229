package uploadsrv

import (
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rise-and-shine/gallery/hasher"
)

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// issueToken exchanges HTTP basic credentials of a configured owner for a
// bearer token.
func (s *Service) issueToken(c *fiber.Ctx) error {
	owner, password, ok := basicAuth(c)
	if !ok || !hasher.Verify(s.cfg.Owners, owner, password) {
		s.requests.WithLabelValues("token", "rejected").Inc()
		c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="gallery"`)
		return errx.New("invalid owner credentials",
			errx.WithCode(CodeBadCredentials),
			errx.WithType(errx.T_Authentication),
		)
	}

	signed, payload, err := s.maker.CreateToken(owner, s.cfg.TokenTTL)
	if err != nil {
		s.requests.WithLabelValues("token", "error").Inc()
		return errx.Wrap(err)
	}

	s.requests.WithLabelValues("token", "issued").Inc()
	return c.JSON(tokenResponse{Token: signed, ExpiresAt: payload.ExpiresAt.Time})
}

func basicAuth(c *fiber.Ctx) (string, string, bool) {
	req, err := adaptor.ConvertRequest(c, false)
	if err != nil {
		return "", "", false
	}
	return req.BasicAuth()
}
