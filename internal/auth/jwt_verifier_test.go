package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"agora/internal/domain"
	"agora/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (*KeyfuncVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	kf := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, errors.New("unexpected method")
		}
		return &key.PublicKey, nil
	}
	return NewKeyfuncVerifier(kf, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(sub string) models.Claims {
	return models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func TestVerifyToken(t *testing.T) {
	verifier, key := newTestVerifier(t)

	t.Run("valid token", func(t *testing.T) {
		claims, err := verifier.VerifyToken(sign(t, key, validClaims("user-1")))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.GetUserID())
	})

	tests := []struct {
		name   string
		mutate func(*models.Claims)
	}{
		{"anonymous role", func(c *models.Claims) { c.Role = "anon" }},
		{"missing subject", func(c *models.Claims) { c.Subject = "" }},
		{"expired", func(c *models.Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }},
		{"no expiry", func(c *models.Claims) { c.ExpiresAt = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims("user-1")
			tt.mutate(&claims)
			_, err := verifier.VerifyToken(sign(t, key, claims))
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}

	t.Run("symmetric algorithm rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("user-1")).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = verifier.VerifyToken(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.VerifyToken("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
