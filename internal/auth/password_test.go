package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash1, err := HashPassword("Sup3r!secret")
	require.NoError(t, err)
	hash2, err := HashPassword("Sup3r!secret")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "salting should make digests differ")
	assert.True(t, CheckPassword("Sup3r!secret", hash1))
	assert.True(t, CheckPassword("Sup3r!secret", hash2))
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r!secret")
	require.NoError(t, err)

	assert.False(t, CheckPassword("wrong-password", hash))
	assert.False(t, CheckPassword("", hash))
	assert.False(t, CheckPassword("Sup3r!secret", "not-a-bcrypt-digest"))
	assert.False(t, CheckPassword("Sup3r!secret", ""))
}
