package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("segredo123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", hash)
	assert.True(t, VerifyPassword(hash, "segredo123"))
	assert.False(t, VerifyPassword(hash, "Segredo123"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordBadHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "whatever"))
}
