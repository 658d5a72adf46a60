package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashVerify(t *testing.T) {
	h := New(bcrypt.MinCost)
	for _, p := range []string{"secret1", "a much longer pass phrase", "пароль123", " "} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, strings.HasPrefix(hash, "$2a$04$"), hash)

		ok, err := h.Verify(p, hash)
		require.NoError(t, err)
		assert.True(t, ok, p)

		ok, err = h.Verify(p+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}
}

func TestHasher_FreshSalt(t *testing.T) {
	h := New(bcrypt.MinCost)
	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_MalformedHash(t *testing.T) {
	h := New(bcrypt.MinCost)
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "garbage", hash: "not-a-bcrypt-hash-at-all-not-a-bcrypt-hash-at-all-1234567"},
		{name: "bad prefix", hash: "%2a$04$abcdefghijklmnopqrstuuKQ3VAHHl6y3Pq8mEOmTn8LQYvMdJzGa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("secret1", tt.hash)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrHashFormat)
		})
	}
}

func TestNew_CostFallback(t *testing.T) {
	assert.Equal(t, DefaultCost, New(0).cost)
	assert.Equal(t, DefaultCost, New(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, New(12).cost)
}

func TestHasher_PasswordTooLong(t *testing.T) {
	h := New(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
