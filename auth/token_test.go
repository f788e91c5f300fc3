package auth

import (
	"testing"
	"time"

	"wodmatch/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("athlete-1", []string{"organizer"})
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "athlete-1", claims.UserId)
	assert.Equal(t, []string{"organizer"}, claims.Permissions)
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(20*24*time.Hour)))
}

func TestParseTokenRejects(t *testing.T) {
	secret := []byte(config.Env().JWTSecret)
	sign := func(claims *Claims, key []byte) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	future := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  sign(&Claims{UserId: "a", RegisteredClaims: future}, []byte("other")),
		"expired":       sign(&Claims{UserId: "a", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}}, secret),
		"no expiration": sign(&Claims{UserId: "a"}, secret),
		"no user":       sign(&Claims{RegisteredClaims: future}, secret),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token)
			assert.Error(t, err)
		})
	}
}
