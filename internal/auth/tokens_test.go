package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRegistry_Issue(t *testing.T) {
	r := NewTokenRegistry("test-secret", time.Hour)

	a, err := r.Issue(1, "John Doe")
	require.NoError(t, err)
	b, err := r.Issue(1, "John Doe")
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.NotEqual(t, a.Value, b.Value)
	assert.False(t, strings.HasPrefix(a.Value, "jwt_"))
	assert.Equal(t, "John Doe", a.OwnerName)
	assert.WithinDuration(t, time.Now().Add(time.Hour), a.ExpiresAt, 5*time.Second)

	var claims Claims
	_, err = jwt.ParseWithClaims(a.Value, &claims, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, 1, claims.TokenID)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenRegistry_ListAndRevoke(t *testing.T) {
	r := NewTokenRegistry("test-secret", time.Hour)
	r.Issue(1, "A")
	r.Issue(2, "B")
	r.Issue(3, "C")

	r.Revoke(2)
	r.Revoke(2)
	r.Revoke(99)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, 3, list[1].ID)
}

func TestTokenRegistry_Validate(t *testing.T) {
	r := NewTokenRegistry("test-secret", time.Hour)
	tok, err := r.Issue(7, "Jane")
	require.NoError(t, err)

	t.Run("registered token", func(t *testing.T) {
		got, err := r.Validate(tok.Value)
		require.NoError(t, err)
		assert.Equal(t, tok, got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := r.Validate("jwt_1708300000_1")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenRegistry("other-secret", time.Hour)
		forged, _ := other.Issue(7, "Jane")
		_, err := r.Validate(forged.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { r.now = time.Now }()

		_, err := r.Validate(tok.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("revoked", func(t *testing.T) {
		r.Revoke(tok.ID)
		_, err := r.Validate(tok.Value)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})
}
