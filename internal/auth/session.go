package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/yify/yify-api/internal/domain"
)

// ErrUnauthorized is the uniform outcome for every principal-resolution
// failure: missing header, wrong scheme, bad token, or deleted subject. The
// cause is never surfaced to avoid account-enumeration leakage.
var ErrUnauthorized = goerrors.New("missing or invalid authentication credentials", goerrors.CategoryAuth)

const bearerScheme = "Bearer"

// UserStore is the narrow account-store contract the session manager resolves
// principals through.
type UserStore interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// TokenPair is the access/refresh credential pair returned on register, login,
// and refresh. Nothing about it is stored server-side.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SessionTTLs configures the expiry horizon of each token flavor.
type SessionTTLs struct {
	Access  time.Duration
	Refresh time.Duration
	Reset   time.Duration
}

// SessionManager implements the token lifecycle: issuing access/refresh pairs,
// resolving the current principal on protected requests, refreshing, and the
// two-step password-reset exchange.
type SessionManager struct {
	tokens *TokenService
	users  UserStore
	ttls   SessionTTLs
}

// NewSessionManager wires the token codec and user store into a session manager.
func NewSessionManager(tokens *TokenService, users UserStore, ttls SessionTTLs) *SessionManager {
	return &SessionManager{tokens: tokens, users: users, ttls: ttls}
}

// IssueSession produces a fresh access+refresh pair for the subject.
func (m *SessionManager) IssueSession(userID string) (TokenPair, error) {
	access, err := m.tokens.Issue(userID, TokenKindAccess, m.ttls.Access)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.tokens.Issue(userID, TokenKindRefresh, m.ttls.Refresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Authenticate resolves the principal from an Authorization header carrying a
// bearer access token. Every failure mode collapses into ErrUnauthorized.
func (m *SessionManager) Authenticate(ctx context.Context, authorization string) (domain.User, error) {
	scheme, token, found := strings.Cut(authorization, " ")
	if !found || scheme != bearerScheme {
		return domain.User{}, ErrUnauthorized
	}
	return m.resolveSubject(ctx, strings.TrimSpace(token), TokenKindAccess)
}

// Refresh accepts a refresh token and, if it verifies, mints a brand-new
// access+refresh pair. Access and reset tokens are rejected here.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	user, err := m.resolveSubject(ctx, refreshToken, TokenKindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return m.IssueSession(user.ID)
}

// IssueResetToken mints the short-lived single-purpose token delivered
// out-of-band during a password reset.
func (m *SessionManager) IssueResetToken(userID string) (string, error) {
	return m.tokens.Issue(userID, TokenKindReset, m.ttls.Reset)
}

// RedeemResetToken finalizes the reset exchange: the token must be a valid
// reset token, the password pair must match, and the new password must pass
// policy against the resolved subject's identity fields.
func (m *SessionManager) RedeemResetToken(ctx context.Context, token, password, confirm string) error {
	user, err := m.resolveSubject(ctx, token, TokenKindReset)
	if err != nil {
		return err
	}
	if password != confirm {
		return goerrors.New("passwords do not match", goerrors.CategoryValidation)
	}
	if err := ValidatePassword(password, user.Email, user.FirstName, user.LastName); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}
	if err := m.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}
	return nil
}

// ChangePassword rotates a signed-in user's password. The old password must
// verify and the new one must differ from it and pass policy. Outstanding
// tokens remain valid until they expire.
func (m *SessionManager) ChangePassword(ctx context.Context, user domain.User, oldPassword, newPassword string) error {
	if !CheckPassword(oldPassword, user.PasswordHash) {
		return goerrors.New("invalid password, please try again", goerrors.CategoryAuth)
	}
	if oldPassword == newPassword {
		return goerrors.New("new password must differ from the old one", goerrors.CategoryValidation)
	}
	if err := ValidatePassword(newPassword, user.Email, user.FirstName, user.LastName); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}
	if err := m.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}
	return nil
}

func (m *SessionManager) resolveSubject(ctx context.Context, token string, kind TokenKind) (domain.User, error) {
	claims, err := m.tokens.Parse(token, kind)
	if err != nil {
		return domain.User{}, ErrUnauthorized
	}
	user, err := m.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return domain.User{}, ErrUnauthorized
	}
	return user, nil
}
