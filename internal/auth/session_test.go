package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yify/yify-api/internal/domain"
)

var errStoreNotFound = errors.New("user not found")

type memUserStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserStore(users ...domain.User) *memUserStore {
	s := &memUserStore{users: make(map[string]domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, errStoreNotFound
	}
	return user, nil
}

func (s *memUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return errStoreNotFound
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *memUserStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func newTestSessionManager(t *testing.T, users ...domain.User) (*SessionManager, *memUserStore) {
	t.Helper()
	store := newMemUserStore(users...)
	tokens := NewTokenService(testSigningKey)
	manager := NewSessionManager(tokens, store, SessionTTLs{
		Access:  15 * time.Minute,
		Refresh: 24 * time.Hour,
		Reset:   30 * time.Minute,
	})
	return manager, store
}

func testUser(t *testing.T, password string) domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return domain.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: hash,
		FirstName:    "Alice",
		LastName:     "Smith",
	}
}

func TestSessionManagerIssueAndAuthenticate(t *testing.T) {
	user := testUser(t, "Sup3r!secret")
	manager, _ := newTestSessionManager(t, user)
	ctx := context.Background()

	pair, err := manager.IssueSession(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	got, err := manager.Authenticate(ctx, "Bearer "+pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
}

func TestSessionManagerAuthenticateRejections(t *testing.T) {
	user := testUser(t, "Sup3r!secret")
	manager, _ := newTestSessionManager(t, user)
	ctx := context.Background()

	pair, err := manager.IssueSession(user.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"empty header", ""},
		{"no scheme", pair.Access},
		{"wrong scheme", "Basic " + pair.Access},
		{"lowercase scheme", "bearer " + pair.Access},
		{"garbage token", "Bearer nonsense"},
		{"refresh token where access expected", "Bearer " + pair.Refresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Authenticate(ctx, tt.header)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestSessionManagerAuthenticateDeletedUser(t *testing.T) {
	user := testUser(t, "Sup3r!secret")
	manager, store := newTestSessionManager(t, user)
	ctx := context.Background()

	pair, err := manager.IssueSession(user.ID)
	require.NoError(t, err)

	store.remove(user.ID)

	_, err = manager.Authenticate(ctx, "Bearer "+pair.Access)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionManagerRefresh(t *testing.T) {
	user := testUser(t, "Sup3r!secret")
	manager, _ := newTestSessionManager(t, user)
	ctx := context.Background()

	pair, err := manager.IssueSession(user.ID)
	require.NoError(t, err)

	fresh, err := manager.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Access)
	assert.NotEmpty(t, fresh.Refresh)

	// The new access token resolves the same principal.
	got, err := manager.Authenticate(ctx, "Bearer "+fresh.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// An access token is not accepted as a refresh credential.
	_, err = manager.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionManagerResetExchange(t *testing.T) {
	user := testUser(t, "Old!Passw0rd")
	manager, store := newTestSessionManager(t, user)
	ctx := context.Background()

	token, err := manager.IssueResetToken(user.ID)
	require.NoError(t, err)

	// Mismatched confirmation is a validation failure.
	err = manager.RedeemResetToken(ctx, token, "New!Passw0rd", "Different!1")
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	// Policy violations surface as validation failures too.
	err = manager.RedeemResetToken(ctx, token, "weak", "weak")
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	// A valid exchange rotates the stored credential.
	require.NoError(t, manager.RedeemResetToken(ctx, token, "New!Passw0rd", "New!Passw0rd"))
	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, CheckPassword("New!Passw0rd", stored.PasswordHash))
	assert.False(t, CheckPassword("Old!Passw0rd", stored.PasswordHash))
}

func TestSessionManagerResetRejectsOtherKinds(t *testing.T) {
	user := testUser(t, "Old!Passw0rd")
	manager, _ := newTestSessionManager(t, user)
	ctx := context.Background()

	pair, err := manager.IssueSession(user.ID)
	require.NoError(t, err)

	err = manager.RedeemResetToken(ctx, pair.Access, "New!Passw0rd", "New!Passw0rd")
	assert.ErrorIs(t, err, ErrUnauthorized)
	err = manager.RedeemResetToken(ctx, pair.Refresh, "New!Passw0rd", "New!Passw0rd")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionManagerChangePassword(t *testing.T) {
	user := testUser(t, "Old!Passw0rd")
	manager, store := newTestSessionManager(t, user)
	ctx := context.Background()

	// Wrong current password.
	err := manager.ChangePassword(ctx, user, "not-the-password", "New!Passw0rd")
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryAuth, richErr.Category)

	// New password must differ from the old one.
	err = manager.ChangePassword(ctx, user, "Old!Passw0rd", "Old!Passw0rd")
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	// Policy applies to the new password.
	err = manager.ChangePassword(ctx, user, "Old!Passw0rd", "short")
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	require.NoError(t, manager.ChangePassword(ctx, user, "Old!Passw0rd", "New!Passw0rd"))
	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, CheckPassword("New!Passw0rd", stored.PasswordHash))
}
