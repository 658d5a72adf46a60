// Package token issues and verifies the signed session tokens handed to
// clients after registration or login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 360000 * time.Second

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrEmptySecret      = errors.New("token secret is empty")
)

// Config is read once at startup and never changes afterwards.
type Config struct {
	Secret string
	TTL    time.Duration
}

type claimsUser struct {
	ID string `json:"id"`
}

// Claims is the signed payload: {"user":{"id":...}} plus iat and exp.
type Claims struct {
	User claimsUser `json:"user"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Issuer)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func New(cfg Config, opts ...Option) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	i := &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	return i, nil
}

// Issue signs a token for userID that expires after the configured TTL.
func (i *Issuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := Claims{
		User: claimsUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id embedded in tokenString.
//
// The signature is checked before any claim, so a forged token is reported
// as ErrInvalidSignature whatever expiry it claims. Only a correctly signed
// token can come back as ErrExpired.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	_, err := i.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if claims.User.ID == "" {
		return "", fmt.Errorf("%w: no user in claims", ErrInvalidSignature)
	}
	return claims.User.ID, nil
}
