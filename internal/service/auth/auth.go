package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
	"github.com/cloudlockr/cloudlockr/internal/models"
	"github.com/cloudlockr/cloudlockr/internal/repository"
	"github.com/cloudlockr/cloudlockr/internal/service/auth/tokencodec"
)

// Whitelist is the server side source of truth for refresh token validity.
// A refresh token is honored only while its entry exists and maps to the
// user asserted by the request.
type Whitelist interface {
	// Record the token for the user; entry must expire after ttl
	Record(ctx context.Context, token string, userID string, ttl time.Duration) error

	// Return the owning user id, or "" if the entry is absent
	// (revoked or expired, not distinguished at this layer)
	IsValid(ctx context.Context, token string) (string, error)

	// Delete the entry; unknown tokens are a no-op
	Revoke(ctx context.Context, token string) error
}

type Config struct {
	// Hasher to use during user registration or login
	// Defaults to BcryptHasher
	Hasher PasswordHasher
}

// Auth service: registration, login, token refresh, logout, account deletion
type AuthService struct {
	codec     *tokencodec.Codec
	hasher    PasswordHasher
	whitelist Whitelist
	userRepo  repository.UserRepo
}

func NewService(cfg Config, codec *tokencodec.Codec, whitelist Whitelist, userRepo repository.UserRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if codec == nil {
		return nil, errors.New("token codec must not be nil")
	}
	if whitelist == nil || userRepo == nil {
		return nil, errors.New("whitelist and user repo must not be nil")
	}

	return &AuthService{
		codec:     codec,
		hasher:    hasher,
		whitelist: whitelist,
		userRepo:  userRepo,
	}, nil
}

// AccessTTL is exposed so the transport layer can report token lifetime
func (s *AuthService) AccessTTL() time.Duration {
	return s.codec.AccessTTL()
}

// ValidateRegistration checks all registration inputs and accumulates every
// violation instead of stopping at the first. The field order of the result
// is fixed: email, password, password1.
func (s *AuthService) ValidateRegistration(email string, password string, password1 string) error {
	var fields []apperrors.FieldError

	if email == "" || !strings.Contains(email, "@") {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "Email invalid"})
	}
	if len(password) < 10 {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "Password must be at least 10 characters long"})
	}
	if password != password1 {
		fields = append(fields, apperrors.FieldError{Field: "password1", Message: "Passwords do not match"})
	}

	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}

// Register creates the user and logs it in: both tokens are minted and the
// refresh token is whitelisted for its whole lifetime.
func (s *AuthService) Register(ctx context.Context, email string, password string) (models.Session, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Session{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, hash)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return models.Session{}, apperrors.Validation(
			apperrors.FieldError{Field: "email", Message: "Email already registered"},
		)
	default:
		// Unknown directory failure: reported as a validation error with an
		// empty violation list, matching the long standing wire behavior
		return models.Session{}, apperrors.Validation()
	}

	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a fresh session. Unknown email,
// wrong password and missing inputs all fail identically so the response
// never reveals whether an email is registered.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.Session, error) {
	failed := func() *apperrors.Error {
		return apperrors.Validation(
			apperrors.FieldError{Field: "email", Message: "Incorrect email/password combination"},
		)
	}

	if email == "" || password == "" {
		return models.Session{}, failed()
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Session{}, failed()
	default:
		return models.Session{}, fmt.Errorf("can't look up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.Session{}, failed()
	}

	return s.issueSession(ctx, user)
}

// Authenticate is the gate for every protected operation: it extracts the
// bearer token from the Authorization header value and verifies it as an
// access token.
func (s *AuthService) Authenticate(ctx context.Context, authHeader string) (models.Claims, error) {
	parts := strings.Fields(authHeader)
	if len(parts) < 2 {
		return models.Claims{}, apperrors.Unauthenticated(
			apperrors.FieldError{Field: "auth", Message: "No access token"},
		)
	}

	claims, err := s.codec.Verify(parts[1], false)
	if err != nil {
		return models.Claims{}, apperrors.Forbidden(
			apperrors.FieldError{Field: "auth", Message: "Invalid access token"},
		)
	}

	return claims, nil
}

// Refresh mints a new access token. The refresh token itself is not rotated
// and its whitelist entry is left untouched.
//
// All four gates must pass: both inputs present, valid signature, entry
// still whitelisted, entry owned by the asserted user.
func (s *AuthService) Refresh(ctx context.Context, userID string, refreshToken string) (models.IssuedToken, error) {
	var fields []apperrors.FieldError
	if userID == "" {
		fields = append(fields, apperrors.FieldError{Field: "auth", Message: "No user id"})
	}
	if refreshToken == "" {
		fields = append(fields, apperrors.FieldError{Field: "auth", Message: "No refresh token"})
	}
	if len(fields) > 0 {
		return models.IssuedToken{}, apperrors.Unauthenticated(fields...)
	}

	claims, err := s.codec.Verify(refreshToken, true)
	if err != nil {
		return models.IssuedToken{}, apperrors.Forbidden(
			apperrors.FieldError{Field: "auth", Message: "Invalid refresh token"},
		)
	}

	ownerID, err := s.whitelist.IsValid(ctx, refreshToken)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("whitelist lookup failed. Err: %w", err)
	}
	if ownerID == "" {
		return models.IssuedToken{}, apperrors.Forbidden(
			apperrors.FieldError{Field: "auth", Message: "Revoked refresh token"},
		)
	}
	if userID != ownerID {
		return models.IssuedToken{}, apperrors.Forbidden(
			apperrors.FieldError{Field: "auth", Message: "Invalid user token pair"},
		)
	}

	access, err := s.codec.Mint(claims.UserID, false)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return access, nil
}

// Logout revokes the refresh token. Revoking an already revoked or expired
// token succeeds the same way, so repeated logouts are harmless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.Validation(
			apperrors.FieldError{Field: "auth", Message: "No refresh token"},
		)
	}

	if err := s.whitelist.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("can't revoke refresh token. Err: %w", err)
	}

	return nil
}

// Delete revokes the refresh token and removes the account. The revoke is
// best effort: an absent whitelist entry never blocks account deletion.
func (s *AuthService) Delete(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.Validation(
			apperrors.FieldError{Field: "auth", Message: "No refresh token"},
		)
	}

	if err := s.whitelist.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("can't revoke refresh token. Err: %w", err)
	}

	if err := s.userRepo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("can't delete user. Err: %w", err)
	}

	return nil
}

// Mint both tokens and whitelist the refresh one. Minting and recording are
// sequential, not atomic: a refresh arriving in between sees the token as
// revoked and should simply retry.
func (s *AuthService) issueSession(ctx context.Context, user models.User) (models.Session, error) {
	access, err := s.codec.Mint(user.ID, false)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	refresh, err := s.codec.Mint(user.ID, true)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	err = s.whitelist.Record(ctx, refresh.Value, user.ID.String(), s.codec.RefreshTTL())
	if err != nil {
		return models.Session{}, fmt.Errorf("can't whitelist refresh token. Err: %w", err)
	}

	return models.Session{
		UserID:  user.ID,
		Access:  access,
		Refresh: refresh,
	}, nil
}
