package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key")

func frozenClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTokenServiceRoundTrip(t *testing.T) {
	ts := NewTokenService(testSigningKey)

	for _, kind := range []TokenKind{TokenKindAccess, TokenKindRefresh, TokenKindReset} {
		token, err := ts.Issue("user-123", kind, time.Hour)
		require.NoError(t, err)

		claims, err := ts.Parse(token, kind)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, "user-123", claims.Subject)
		assert.Equal(t, kind, claims.Kind)
	}
}

func TestTokenServiceRejectsWrongKind(t *testing.T) {
	ts := NewTokenService(testSigningKey)

	refresh, err := ts.Issue("user-123", TokenKindRefresh, time.Hour)
	require.NoError(t, err)

	_, err = ts.Parse(refresh, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ts.Parse(refresh, TokenKindReset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	ts := NewTokenService(testSigningKey)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ts.Parse(token, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenServiceRejectsWrongKey(t *testing.T) {
	ts := NewTokenService(testSigningKey)
	other := NewTokenService([]byte("a-different-key"))

	token, err := ts.Issue("user-123", TokenKindAccess, time.Hour)
	require.NoError(t, err)

	_, err = other.Parse(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsTampering(t *testing.T) {
	ts := NewTokenService(testSigningKey)

	token, err := ts.Issue("user-123", TokenKindAccess, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ts.Parse(tampered, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceExpiry(t *testing.T) {
	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenService(testSigningKey).WithNow(frozenClock(issuedAt))

	token, err := ts.Issue("user-123", TokenKindAccess, 15*time.Minute)
	require.NoError(t, err)

	// Still valid just before expiry.
	ts.WithNow(frozenClock(issuedAt.Add(14 * time.Minute)))
	_, err = ts.Parse(token, TokenKindAccess)
	require.NoError(t, err)

	// Rejected after expiry.
	ts.WithNow(frozenClock(issuedAt.Add(16 * time.Minute)))
	_, err = ts.Parse(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceZeroAndNegativeTTL(t *testing.T) {
	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenService(testSigningKey).WithNow(frozenClock(issuedAt))

	zero, err := ts.Issue("user-123", TokenKindAccess, 0)
	require.NoError(t, err)
	_, err = ts.Parse(zero, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken, "ttl=0 tokens must never verify")

	negative, err := ts.Issue("user-123", TokenKindAccess, -time.Minute)
	require.NoError(t, err)
	_, err = ts.Parse(negative, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsEmptySubject(t *testing.T) {
	ts := NewTokenService(testSigningKey)

	token, err := ts.Issue("", TokenKindAccess, time.Hour)
	require.NoError(t, err)

	_, err = ts.Parse(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
