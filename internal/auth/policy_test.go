package auth

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		first    string
		last     string
		wantMsg  string
	}{
		{
			name:     "strong password passes",
			password: "Str0ng!Pass",
			email:    "a@b.com",
			first:    "A",
			last:     "B",
		},
		{
			name:     "whitespace reported before anything else",
			password: " ",
			wantMsg:  "password must not contain whitespace",
		},
		{
			name:     "tab counts as whitespace",
			password: "Go0d!Pass\tword",
			wantMsg:  "password must not contain whitespace",
		},
		{
			name:     "too short",
			password: "Ab1!xyz",
			wantMsg:  "password must be at least 8 characters long",
		},
		{
			name:     "contains email",
			password: "Xbob@x.io1!",
			email:    "bob@x.io",
			wantMsg:  "password must not contain your email or name",
		},
		{
			name:     "contains first name",
			password: "XAnn2024!a",
			first:    "Ann",
			wantMsg:  "password must not contain your email or name",
		},
		{
			name:     "identity match is case sensitive",
			password: "Xann2024!a",
			first:    "Ann",
		},
		{
			name:     "no lowercase",
			password: "PASSWORD1!",
			wantMsg:  "password must contain at least one lowercase letter",
		},
		{
			name:     "all lowercase fails at uppercase rule",
			password: "password",
			wantMsg:  "password must contain at least one uppercase letter",
		},
		{
			name:     "no digit",
			password: "Password!",
			wantMsg:  "password must contain at least one digit",
		},
		{
			name:     "no symbol",
			password: "Password1",
			wantMsg:  "password must contain at least one symbol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.email, tt.first, tt.last)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
			assert.Equal(t, tt.wantMsg, richErr.Message)
		})
	}
}

func TestValidatePasswordDeterministic(t *testing.T) {
	// Same input, same first violation, every time.
	for i := 0; i < 5; i++ {
		err := ValidatePassword("password", "user@example.com", "User", "Name")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, "password must contain at least one uppercase letter", richErr.Message)
	}
}
