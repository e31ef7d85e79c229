package cfgloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	type auth struct {
		Secret string `mask:"true"`
		TTL    int
	}
	type upload struct {
		Owners map[string]string `mask:"true"`
		Public string
	}
	type cfg struct {
		Owner  string
		Auth   auth
		Ptr    *auth
		Upload *upload
		Empty  *upload
	}

	in := cfg{
		Owner:  "alice",
		Auth:   auth{Secret: "abcd", TTL: 3},
		Ptr:    &auth{Secret: "xy"},
		Upload: &upload{Owners: map[string]string{"alice": "$2a$10$hash"}, Public: "http://cdn"},
	}

	masked, ok := redact(in).(cfg)
	require.True(t, ok)

	assert.Equal(t, "alice", masked.Owner)
	assert.Equal(t, maskedText, masked.Auth.Secret)
	assert.Equal(t, 3, masked.Auth.TTL)
	assert.Equal(t, maskedText, masked.Ptr.Secret)
	assert.Equal(t, map[string]string{"alice": maskedText}, masked.Upload.Owners)
	assert.Equal(t, "http://cdn", masked.Upload.Public)
	assert.Nil(t, masked.Empty)

	assert.Equal(t, "abcd", in.Auth.Secret, "input must not be modified")
	assert.Equal(t, "$2a$10$hash", in.Upload.Owners["alice"])
}

func TestRedactLeavesEmptySecretsEmpty(t *testing.T) {
	type cfg struct {
		Secret string `mask:"true"`
	}

	masked, ok := redact(cfg{}).(cfg)
	require.True(t, ok)
	assert.Empty(t, masked.Secret)
}
