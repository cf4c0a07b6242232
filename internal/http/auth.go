package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"

	"github.com/yify/yify-api/internal/auth"
	"github.com/yify/yify-api/internal/domain"
	"github.com/yify/yify-api/internal/repository"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type profileUpdateRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (r profileUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
	)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (r changePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordConfirmRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r resetPasswordConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type userEnvelope struct {
	Message string       `json:"message"`
	Data    userResponse `json:"data"`
}

type sessionEnvelope struct {
	Message string         `json:"message"`
	Data    userResponse   `json:"data"`
	Tokens  auth.TokenPair `json:"tokens"`
}

type tokensEnvelope struct {
	Message string         `json:"message"`
	Data    auth.TokenPair `json:"data"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password, req.Email, req.FirstName, req.LastName); err != nil {
		s.respondAppError(w, err, "register password policy")
		return
	}

	// Pre-check for a friendlier message. The unique constraint below stays
	// authoritative against a registration race.
	if _, err := s.repo.Users.GetByEmail(r.Context(), req.Email); err == nil {
		s.respondError(w, http.StatusConflict, "CONFLICT", "User with this email address already exists")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.respondAppError(w, err, "register email lookup")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondAppError(w, err, "register hash password")
		return
	}

	user, err := s.repo.Users.Create(r.Context(), repository.UserCreateParams{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "User with this email address already exists")
			return
		}
		s.respondAppError(w, err, "register create user")
		return
	}

	tokens, err := s.sessions.IssueSession(user.ID)
	if err != nil {
		s.respondAppError(w, err, "register issue session")
		return
	}

	s.respondJSON(w, http.StatusCreated, sessionEnvelope{
		Message: "Account created successfully!",
		Data:    toUserResponse(user),
		Tokens:  tokens,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := s.repo.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "User with this email does not exists")
			return
		}
		s.respondAppError(w, err, "login email lookup")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid password, please try again")
		return
	}

	tokens, err := s.sessions.IssueSession(user.ID)
	if err != nil {
		s.respondAppError(w, err, "login issue session")
		return
	}

	s.respondJSON(w, http.StatusOK, sessionEnvelope{
		Message: "Logged in successfully!",
		Data:    toUserResponse(user),
		Tokens:  tokens,
	})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	tokens, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.respondAppError(w, err, "refresh token")
		return
	}

	s.respondJSON(w, http.StatusOK, tokensEnvelope{
		Message: "Token refreshed successfully!",
		Data:    tokens,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	s.respondJSON(w, http.StatusOK, userEnvelope{
		Message: "Profile details fetched successfully!",
		Data:    toUserResponse(user),
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Email == nil && req.FirstName == nil && req.LastName == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "No fields to update")
		return
	}

	user := currentUser(r)
	updated, err := s.repo.Users.Update(r.Context(), user.ID, repository.UserUpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "User with this email address already exists")
			return
		}
		s.respondAppError(w, err, "update profile")
		return
	}

	s.respondJSON(w, http.StatusOK, userEnvelope{
		Message: "Profile updated successfully!",
		Data:    toUserResponse(updated),
	})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.repo.Users.Delete(r.Context(), user.ID); err != nil {
		s.respondAppError(w, err, "delete profile")
		return
	}
	s.respondJSON(w, http.StatusOK, messageEnvelope{Message: "Account deleted successfully!"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	user := currentUser(r)
	if err := s.sessions.ChangePassword(r.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid password, please try again")
			return
		}
		s.respondAppError(w, err, "change password")
		return
	}

	s.respondJSON(w, http.StatusOK, messageEnvelope{Message: "Password changed successfully!"})
}

func (s *Server) handleResetPasswordRequest(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validation.Validate(req.Email, validation.Required, is.Email); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email: "+err.Error())
		return
	}

	// The response is identical whether or not the account exists, so the
	// endpoint cannot be used to enumerate emails.
	const acceptedMessage = "If an account exists for this email, a reset link has been sent"

	user, err := s.repo.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondJSON(w, http.StatusOK, messageEnvelope{Message: acceptedMessage})
			return
		}
		s.respondAppError(w, err, "reset password lookup")
		return
	}

	token, err := s.sessions.IssueResetToken(user.ID)
	if err != nil {
		s.respondAppError(w, err, "reset password token")
		return
	}

	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Use the token below to reset your password. It expires in %d minutes.</p><p><code>%s</code></p>",
		user.FirstName, s.cfg.ResetTokenExpMinutes, token,
	)
	if !s.mailer.Send(r.Context(), user.Email, "Reset your password", html) {
		s.respondAppError(w, goerrors.New("reset mail delivery failed", goerrors.CategoryOperation), "reset password mail")
		return
	}

	s.respondJSON(w, http.StatusOK, messageEnvelope{Message: acceptedMessage})
}

func (s *Server) handleResetPasswordConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordConfirmRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.sessions.RedeemResetToken(r.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		s.respondAppError(w, err, "reset password confirm")
		return
	}

	s.respondJSON(w, http.StatusOK, messageEnvelope{Message: "Password reset successfully!"})
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		CreatedAt:  user.CreatedAt,
		ModifiedAt: user.ModifiedAt,
	}
}
