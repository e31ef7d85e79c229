package token

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/code19m/errx"
)

const bearerPrefix = "Bearer "

// Bearer attaches a token for one owner to outgoing requests, minting a new
// one shortly before the current one expires.
type Bearer struct {
	maker *JWTMaker
	owner string
	ttl   time.Duration

	mu      sync.Mutex
	current string
	expires time.Time
}

// NewBearer returns a Bearer issuing tokens for owner valid for ttl.
func NewBearer(maker *JWTMaker, owner string, ttl time.Duration) *Bearer {
	return &Bearer{maker: maker, owner: owner, ttl: ttl}
}

// Authorize sets the Authorization header on req.
func (b *Bearer) Authorize(req *http.Request) error {
	tok, err := b.token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", bearerPrefix+tok)
	return nil
}

func (b *Bearer) token() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// renew once less than a tenth of the lifetime is left
	if b.current != "" && b.maker.now().Add(b.ttl/10).Before(b.expires) {
		return b.current, nil
	}

	tok, payload, err := b.maker.CreateToken(b.owner, b.ttl)
	if err != nil {
		return "", errx.Wrap(err)
	}
	b.current, b.expires = tok, payload.ExpiresAt.Time
	return tok, nil
}

// FromHeader extracts the token from an Authorization header value.
func FromHeader(header string) (string, error) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", errx.New("missing bearer token",
			errx.WithCode(CodeInvalidToken),
			errx.WithType(errx.T_Authentication),
		)
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), nil
}
