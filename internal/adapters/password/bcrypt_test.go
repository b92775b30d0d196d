package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("rahasia-123")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia-123", hash)

	assert.NoError(t, hasher.Verify(hash, "rahasia-123"))
	assert.Error(t, hasher.Verify(hash, "salah-total"))
}

func TestBcryptHasher_DistinctSalts(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("rahasia-123")
	require.NoError(t, err)
	second, err := hasher.Hash("rahasia-123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_VerifyGarbageHash(t *testing.T) {
	hasher := NewBcryptHasher(0)
	assert.Error(t, hasher.Verify("not-a-bcrypt-hash", "rahasia-123"))
}
