package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goserg/devconnector/auth/storage"
	"github.com/goserg/devconnector/auth/users"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserExists         = storage.ErrUserExists
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no token provided")
	ErrTokenInvalid       = errors.New("token is not valid")
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type Service struct {
	storage storage.AuthStorage
	hasher  PasswordHasher
	tokens  TokenIssuer
	log     *logrus.Entry
	now     func() time.Time
}

func New(l *logrus.Logger, storage storage.AuthStorage, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
		tokens:  tokens,
		log:     l.WithField("from", "auth-service"),
		now:     time.Now,
	}
}

// SignUp registers a new user and returns a session token for it.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (string, error) {
	email = users.NormalizeEmail(email)
	_, _, err := s.storage.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return "", ErrUserExists
	case !errors.Is(err, storage.ErrNotFound):
		return "", fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}
	user, err := s.storage.CreateUser(ctx, users.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Avatar:       users.AvatarURL(email),
		RegisteredAt: s.now().UTC(),
	}, users.Secret{PasswordHash: hash})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	s.log.WithField("user_id", user.ID).Info("user registered")
	return s.tokens.Issue(user.ID)
}

// Login checks the credentials and returns a session token. An unknown email
// and a wrong password are both reported as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, secret, err := s.storage.GetUserByEmail(ctx, users.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	ok, err := s.hasher.Verify(password, secret.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password of user %s: %w", user.ID, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID)
}

// Authenticate resolves a presented token to a user id. Every verification
// failure collapses into ErrTokenInvalid.
func (s *Service) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	id, err := s.tokens.Verify(token)
	if err != nil {
		s.log.WithError(err).Debug("token rejected")
		return "", ErrTokenInvalid
	}
	return id, nil
}

func (s *Service) Me(ctx context.Context, userID string) (users.User, error) {
	return s.storage.GetUser(ctx, userID)
}
