// Package token issues and verifies the bearer tokens that authorize sync
// requests against an upload server. A token's subject is the owner whose
// uploads it may touch.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CodeExpiredToken = "EXPIRED_TOKEN"
	CodeInvalidToken = "INVALID_TOKEN"

	// Audience is stamped on every token and required on verification.
	Audience = "gallery-uploads"

	minSecretKeySize = 16
)

// JWTMaker signs and verifies HS256 tokens.
type JWTMaker struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

// NewJWTMaker creates a new JWTMaker. The secret must be at least 16 bytes.
func NewJWTMaker(secretKey, issuer string) (*JWTMaker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, errx.New(fmt.Sprintf("invalid key size: must be at least %d characters", minSecretKeySize))
	}
	return &JWTMaker{secretKey: []byte(secretKey), issuer: issuer, now: time.Now}, nil
}

// CreateToken issues a token for owner valid for duration.
func (maker *JWTMaker) CreateToken(owner string, duration time.Duration) (string, *Payload, error) {
	if owner == "" {
		return "", nil, errx.New("owner is required", errx.WithCode(CodeInvalidToken))
	}

	now := maker.now()
	payload := &Payload{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   owner,
			Issuer:    maker.issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(maker.secretKey)
	if err != nil {
		return "", nil, errx.Wrap(err)
	}
	return signed, payload, nil
}

// VerifyToken parses token and checks its signature, audience and lifetime.
func (maker *JWTMaker) VerifyToken(token string) (*Payload, error) {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errx.New("unexpected signing method", errx.WithCode(CodeInvalidToken))
		}
		return maker.secretKey, nil
	}

	opts := []jwt.ParserOption{
		jwt.WithAudience(Audience),
		jwt.WithTimeFunc(maker.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if maker.issuer != "" {
		opts = append(opts, jwt.WithIssuer(maker.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Payload{}, keyFunc, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errx.New("token is expired",
				errx.WithCode(CodeExpiredToken),
				errx.WithType(errx.T_Authentication),
			)
		}
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidToken), errx.WithType(errx.T_Authentication))
	}

	payload, ok := parsed.Claims.(*Payload)
	if !ok || payload.Subject == "" {
		return nil, errx.New("invalid token claims",
			errx.WithCode(CodeInvalidToken),
			errx.WithType(errx.T_Authentication),
		)
	}
	return payload, nil
}

// Payload holds the claims of a sync token.
type Payload struct {
	jwt.RegisteredClaims
}

// Owner returns the owner the token was issued for.
func (p *Payload) Owner() string {
	return p.Subject
}
