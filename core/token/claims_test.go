package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishkit/parishkit/core/token"
)

func mintToken(t *testing.T, claims token.Claims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "raw token untouched", in: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "bearer prefix stripped", in: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "surrounding whitespace trimmed", in: "  Bearer abc.def.ghi ", want: "abc.def.ghi"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, token.Normalize(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("reads identity claims", func(t *testing.T) {
		t.Parallel()

		raw := mintToken(t, token.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID:   "1",
			Role:     "Admin",
			ChurchID: "42",
		})

		claims, err := token.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.UserID)
		assert.Equal(t, "Admin", claims.Role)
		assert.Equal(t, "42", claims.ChurchID)
	})

	t.Run("accepts bearer-prefixed credential", func(t *testing.T) {
		t.Parallel()

		raw := mintToken(t, token.Claims{UserID: "7"})

		claims, err := token.Decode("Bearer " + raw)
		require.NoError(t, err)
		assert.Equal(t, "7", claims.UserID)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		_, err := token.Decode("")
		assert.ErrorIs(t, err, token.ErrEmptyToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()

		_, err := token.Decode("not-a-jwt")
		assert.ErrorIs(t, err, token.ErrMalformedToken)
	})
}

func TestExpiresAt(t *testing.T) {
	t.Parallel()

	t.Run("returns embedded expiry", func(t *testing.T) {
		t.Parallel()

		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		raw := mintToken(t, token.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		})

		got, ok := token.ExpiresAt(raw)
		require.True(t, ok)
		assert.True(t, got.Equal(exp))
	})

	t.Run("no expiry claim", func(t *testing.T) {
		t.Parallel()

		raw := mintToken(t, token.Claims{UserID: "1"})

		_, ok := token.ExpiresAt(raw)
		assert.False(t, ok)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()

		_, ok := token.ExpiresAt("garbage")
		assert.False(t, ok)
	})
}
