package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newIssuer(t *testing.T, secret string, clock *fakeClock) *Issuer {
	t.Helper()
	i, err := New(Config{Secret: secret, TTL: time.Hour}, WithClock(clock.Now))
	require.NoError(t, err)
	return i
}

func TestIssueVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "super-secret", clock)

	tok, err := i.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := i.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestIssue_PayloadShape(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "super-secret", clock)

	tok, err := i.Issue("abc")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "abc"}, claims["user"])
	assert.EqualValues(t, clock.t.Unix(), claims["iat"])
	assert.EqualValues(t, clock.t.Add(time.Hour).Unix(), claims["exp"])
}

func TestIssue_UniquePerTimestamp(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "super-secret", clock)

	a, err := i.Issue("u1")
	require.NoError(t, err)
	b, err := i.Issue("u1")
	require.NoError(t, err)
	assert.Equal(t, a, b, "same input, secret and clock sign identically")

	clock.t = clock.t.Add(time.Second)
	c, err := i.Issue("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestVerify_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "super-secret", clock)

	tok, err := i.Issue("u1")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour - time.Second)
	_, err = i.Verify(tok)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Second)
	_, err = i.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_FlippedSignatureBit(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "super-secret", clock)

	tok, err := i.Issue("u1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for bit := 0; bit < len(sig)*8; bit += 37 {
		tampered := append([]byte(nil), sig...)
		tampered[bit/8] ^= 1 << (bit % 8)
		forged := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(tampered)

		_, err := i.Verify(forged)
		assert.ErrorIs(t, err, ErrInvalidSignature, "bit %d", bit)
	}
}

func TestVerify_ForgedExpiredTokenIsInvalidNotExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "right-secret", clock)
	other := newIssuer(t, "wrong-secret", clock)

	tok, err := other.Issue("u1")
	require.NoError(t, err)

	_, err = i.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	clock.t = clock.t.Add(48 * time.Hour)
	_, err = i.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.NotErrorIs(t, err, ErrExpired)
}

func TestVerify_Rejects(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, "super-secret", clock)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		User: claimsUser{ID: "u1"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		User: claimsUser{ID: "u1"},
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.jwt"},
		{name: "alg none", token: none},
		{name: "missing exp", token: noExp},
		{name: "missing user", token: noUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := i.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	i, err := New(Config{Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, i.ttl)
}
