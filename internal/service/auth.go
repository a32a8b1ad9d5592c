package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	msgRegisterRequired = "Name, email and password are required"
	msgEmailTaken       = "Email already registered"
	msgLoginRequired    = "Email and password are required"
	msgBadCredentials   = "Invalid email or password"
	msgEmailRequired    = "Email is required"
	msgResetRequired    = "Token and new password are required"
	msgBadResetToken    = "Invalid or expired reset token"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// AuthDeps wires an AuthService. Now defaults to time.Now.
type AuthDeps struct {
	Users         *repository.Users
	Sessions      *repository.Sessions
	Resets        *repository.Resets
	Hasher        PasswordHasher
	ResetTokens   *auth.ResetTokens
	ResetTokenTTL time.Duration
	Now           func() time.Time
}

// AuthService handles registration, login, logout and password reset.
type AuthService struct {
	users       *repository.Users
	sessions    *repository.Sessions
	resets      *repository.Resets
	hasher      PasswordHasher
	resetTokens *auth.ResetTokens
	resetTTL    time.Duration
	now         func() time.Time

	// compared against when the email is unknown so login timing is uniform
	dummyHash string
}

func NewAuthService(d AuthDeps) (*AuthService, error) {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ResetTokenTTL <= 0 {
		d.ResetTokenTTL = 15 * time.Minute
	}
	dummy, err := d.Hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &AuthService{
		users:       d.Users,
		sessions:    d.Sessions,
		resets:      d.Resets,
		hasher:      d.Hasher,
		resetTokens: d.ResetTokens,
		resetTTL:    d.ResetTokenTTL,
		now:         d.Now,
		dummyHash:   dummy,
	}, nil
}

// Register creates a user and opens a session for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := required(name, email, strings.TrimSpace(password)); err != nil {
		return nil, apperr.Validation(msgRegisterRequired)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(name, email, hash)
	if errors.Is(err, apperr.ErrConflict) {
		return nil, apperr.Conflict(msgEmailTaken)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered", "user_id", user.ID)
	return &models.AuthResult{Token: s.sessions.Issue(user.ID), User: user.Public()}, nil
}

// Login verifies credentials and opens a new session. Every failure is
// reported as unauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Unauthorized(msgLoginRequired)
	}
	user, ok := s.users.ByEmail(email)
	if !ok {
		s.hasher.Compare(s.dummyHash, password)
		logger.Debug(ctx, "Login failed", "reason", "unknown email")
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		logger.Debug(ctx, "Login failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, apperr.Unauthorized(msgBadCredentials)
	}
	return &models.AuthResult{Token: s.sessions.Issue(user.ID), User: user.Public()}, nil
}

// Logout revokes token if it is live. It never fails.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if s.sessions.Revoke(token) {
		logger.Debug(ctx, "Session revoked")
	}
}

// ForgotPassword issues a reset token when email belongs to a user and
// returns nil otherwise. Delivery is out of band; the caller gets the token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*string, error) {
	email = normalizeEmail(email)
	if err := validation.Validate(email, validation.Required); err != nil {
		return nil, apperr.Validation(msgEmailRequired)
	}
	user, ok := s.users.ByEmail(email)
	if !ok {
		return nil, nil
	}

	expiresAt := s.now().Add(s.resetTTL)
	token, err := s.resetTokens.Issue(user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign reset token: %w", err)
	}
	s.resets.Put(models.ResetEntry{Token: token, UserID: user.ID, ExpiresAt: expiresAt})
	logger.Info(ctx, "Password reset issued", "user_id", user.ID, "expires_at", expiresAt)
	return &token, nil
}

// ResetPassword consumes token and replaces the user's password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := required(token, strings.TrimSpace(newPassword)); err != nil {
		return apperr.Validation(msgResetRequired)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	subject, err := s.resetTokens.Verify(token)
	if err != nil {
		logger.Debug(ctx, "Reset token rejected", "error", err)
		// an expired token's entry is discarded as well
		s.resets.Consume(token, s.now())
		return apperr.InvalidToken(msgBadResetToken)
	}
	entry, err := s.resets.Consume(token, s.now())
	if err != nil || entry.UserID != subject {
		return apperr.InvalidToken(msgBadResetToken)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPasswordHash(entry.UserID, hash); err != nil {
		return apperr.InvalidToken(msgBadResetToken)
	}
	logger.Info(ctx, "Password reset completed", "user_id", entry.UserID)
	return nil
}

// ResolveSession returns the user id behind a bearer token.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return s.sessions.Resolve(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// required fails on the first empty value.
func required(values ...string) error {
	for _, v := range values {
		if err := validation.Validate(v, validation.Required); err != nil {
			return err
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return apperr.Validation(msgPasswordTooLong)
	}
	return nil
}
