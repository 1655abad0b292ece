package util

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const formTokenSubject = "habit-form"

// FormTokenIDKey is the gin context key holding a verified token's id.
const FormTokenIDKey = "form_token_id"

var ErrInvalidFormToken = errors.New("invalid form token")

// FormTokens signs the hidden token embedded in every page form.
// The token id doubles as the submission id for duplicate detection.
type FormTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewFormTokens uses secret, or a random per-process secret when empty.
func NewFormTokens(secret string, ttl time.Duration) *FormTokens {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &FormTokens{secret: key, ttl: ttl}
}

// Issue creates a token with a fresh id.
func (f *FormTokens) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   formTokenSubject,
		ID:        newTokenID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(f.secret)
}

// Verify validates tokenStr and returns its id.
func (f *FormTokens) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidFormToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return f.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(formTokenSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidFormToken
	}
	return claims.ID, nil
}

func newTokenID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
