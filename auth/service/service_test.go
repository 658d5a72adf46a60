package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goserg/devconnector/auth/password"
	"github.com/goserg/devconnector/auth/storage"
	"github.com/goserg/devconnector/auth/token"
	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/storage/mem"
)

func newTestService(t *testing.T) (*Service, *mem.Storage, *token.Issuer) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	issuer, err := token.New(token.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	store := mem.New()
	return New(l, store, password.New(bcrypt.MinCost), issuer), store, issuer
}

func TestService_SignUp(t *testing.T) {
	s, store, issuer := newTestService(t)
	ctx := context.Background()

	tok, err := s.SignUp(ctx, " Ann ", "Ann@X.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := issuer.Verify(tok)
	require.NoError(t, err)

	u, secret, err := store.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, users.AvatarURL("ann@x.com"), u.Avatar)
	assert.NotEqual(t, "secret1", secret.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(secret.PasswordHash), []byte("secret1")))
}

func TestService_SignUp_Duplicate(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)
	before, beforeSecret, err := store.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)

	_, err = s.SignUp(ctx, "Other", "ANN@x.com", "another1")
	assert.ErrorIs(t, err, ErrUserExists)

	after, afterSecret, err := store.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeSecret, afterSecret)
}

func TestService_SignUp_ConcurrentDuplicate(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.SignUp(ctx, "Ann", "ann@x.com", "secret1")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrUserExists)
	}
	assert.Equal(t, 1, ok)
}

func TestService_Login(t *testing.T) {
	s, _, issuer := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	tok, err := s.Login(ctx, " ann@X.com", "secret1")
	require.NoError(t, err)
	_, err = issuer.Verify(tok)
	require.NoError(t, err)

	_, errWrongPassword := s.Login(ctx, "ann@x.com", "secret2")
	_, errUnknownEmail := s.Login(ctx, "bob@x.com", "secret1")
	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

type brokenHashStorage struct {
	*mem.Storage
}

func (b brokenHashStorage) GetUserByEmail(ctx context.Context, email string) (users.User, users.Secret, error) {
	u, _, err := b.Storage.GetUserByEmail(ctx, email)
	return u, users.Secret{PasswordHash: "corrupted"}, err
}

func TestService_Login_CorruptedHash(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	issuer, err := token.New(token.Config{Secret: "test-secret"})
	require.NoError(t, err)
	store := mem.New()
	_, err = store.CreateUser(context.Background(), users.User{Name: "Ann", Email: "ann@x.com"}, users.Secret{})
	require.NoError(t, err)

	s := New(l, brokenHashStorage{store}, password.New(bcrypt.MinCost), issuer)
	_, err = s.Login(context.Background(), "ann@x.com", "secret1")
	assert.ErrorIs(t, err, password.ErrHashFormat)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

type failingStorage struct {
	storage.AuthStorage
}

var errStoreDown = errors.New("store down")

func (failingStorage) GetUserByEmail(context.Context, string) (users.User, users.Secret, error) {
	return users.User{}, users.Secret{}, errStoreDown
}

func TestService_StoreErrors(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	issuer, err := token.New(token.Config{Secret: "test-secret"})
	require.NoError(t, err)
	s := New(l, failingStorage{}, password.New(bcrypt.MinCost), issuer)

	_, err = s.SignUp(context.Background(), "Ann", "ann@x.com", "secret1")
	assert.ErrorIs(t, err, errStoreDown)
	_, err = s.Login(context.Background(), "ann@x.com", "secret1")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Authenticate(t *testing.T) {
	s, _, issuer := newTestService(t)

	_, err := s.Authenticate("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = s.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expiredIssuer, err := token.New(token.Config{Secret: "test-secret", TTL: time.Hour},
		token.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	require.NoError(t, err)
	expired, err := expiredIssuer.Issue("u1")
	require.NoError(t, err)
	_, err = s.Authenticate(expired)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	tok, err := issuer.Issue("u1")
	require.NoError(t, err)
	id, err := s.Authenticate(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestService_Me(t *testing.T) {
	s, store, issuer := newTestService(t)
	ctx := context.Background()

	tok, err := s.SignUp(ctx, "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)
	id, err := issuer.Verify(tok)
	require.NoError(t, err)

	u, err := s.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@x.com", u.Email)

	require.NoError(t, store.DeleteUser(ctx, id))
	_, err = s.Me(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
