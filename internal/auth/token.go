package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenKind tags what a token may be exchanged for. Every consuming operation
// checks the kind, so a refresh token is never accepted where an access token
// is expected.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
	TokenKindReset   TokenKind = "reset"
)

// ErrInvalidToken is the single outcome for every parse failure. Signature,
// expiry, and kind violations are deliberately indistinguishable to callers.
var ErrInvalidToken = goerrors.New("invalid or expired token", goerrors.CategoryAuth)

// Claims is the self-contained claim set carried by every token.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies compact bearer tokens with an HS256 MAC
// over a process-wide symmetric key. Validity is purely a function of
// signature and expiry; there is no server-side revocation list.
type TokenService struct {
	signingKey []byte
	now        func() time.Time
}

// NewTokenService creates a codec bound to the given signing key.
func NewTokenService(signingKey []byte) *TokenService {
	return &TokenService{signingKey: signingKey, now: time.Now}
}

// WithNow overrides the clock, so tests can simulate expiry deterministically.
func (ts *TokenService) WithNow(now func() time.Time) *TokenService {
	if now != nil {
		ts.now = now
	}
	return ts
}

// Issue mints a signed token for the given subject with expiry now+ttl.
func (ts *TokenService) Issue(subjectID string, kind TokenKind, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

// Parse verifies signature, expiry, and kind, returning the decoded claims
// only when all checks pass. Any failure yields ErrInvalidToken.
func (ts *TokenService) Parse(tokenString string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind || claims.RegisteredClaims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
