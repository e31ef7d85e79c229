// Package hasher hashes owner passwords for the upload server's token
// endpoint.
package hasher

import (
	"sync"

	"github.com/code19m/errx"
	"golang.org/x/crypto/bcrypt"
)

// CodeInvalidPassword is returned for empty passwords and passwords longer
// than bcrypt accepts.
const CodeInvalidPassword = "INVALID_PASSWORD"

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// dummyHash is compared against when an owner is unknown so that the
// response time does not reveal which owners exist.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("gallery"), bcrypt.DefaultCost)
	return h
})

// Hash returns the bcrypt hash of password at the default cost.
func Hash(password string) (string, error) {
	if password == "" || len(password) > MaxPasswordBytes {
		return "", errx.New("password must be 1 to 72 bytes",
			errx.WithCode(CodeInvalidPassword),
			errx.WithType(errx.T_Validation),
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errx.Wrap(err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A malformed hash never
// matches.
func Compare(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Verify looks up owner's hash and compares password against it, spending
// the same bcrypt work when the owner is unknown.
func Verify(hashes map[string]string, owner, password string) bool {
	hash, ok := hashes[owner]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return false
	}
	return Compare(password, hash)
}
