package auth

import (
	"testing"
	"time"

	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.True(t, h.Verify(hash, "correct horse"))
	assert.False(t, h.Verify(hash, "wrong"))
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	iss := NewJWTIssuer("secret", time.Minute)
	now := time.Now()

	tok, exp, err := iss.Issue(42, model.RoleAdmin, 3, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Minute), exp, time.Second)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestJWTIssuer_Rejects(t *testing.T) {
	iss := NewJWTIssuer("secret", time.Minute)

	expired, _, err := iss.Issue(1, model.RoleUser, 0, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = iss.Parse(expired)
	assert.Error(t, err)

	other, _, err := NewJWTIssuer("other", time.Minute).Issue(1, model.RoleUser, 0, time.Now())
	require.NoError(t, err)
	_, err = iss.Parse(other)
	assert.Error(t, err)

	// HS512で署名したものは受け付けない
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = iss.Parse(hs512)
	assert.Error(t, err)
}
