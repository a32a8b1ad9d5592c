// Package auth holds the credential primitives: password hashing and signed
// password-reset tokens.
package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"taskboard/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetTokens signs and verifies password-reset tokens. A verified token only
// proves origin and freshness; single use is enforced by the reset registry.
type ResetTokens struct {
	secret []byte
	now    func() time.Time
}

func NewResetTokens(secret []byte, now func() time.Time) *ResetTokens {
	if now == nil {
		now = time.Now
	}
	return &ResetTokens{secret: secret, now: now}
}

// Issue returns a token for userID that stops verifying at expiresAt.
func (r *ResetTokens) Issue(userID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(r.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	return token.SignedString(r.secret)
}

// Verify checks signature and expiry and returns the token's user id.
func (r *ResetTokens) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	)
	if err != nil {
		return "", errors.Join(apperr.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", apperr.ErrInvalidToken
	}
	return claims.Subject, nil
}

// RandomSecret returns a fresh 32-byte signing key.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
