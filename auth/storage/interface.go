package storage

import (
	"context"
	"errors"

	"github.com/goserg/devconnector/auth/users"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
)

// AuthStorage is the credential store. Emails passed in are already
// normalized; implementations must enforce their uniqueness.
type AuthStorage interface {
	// CreateUser persists user with a store-generated ID and returns it.
	// A duplicate email yields ErrUserExists.
	CreateUser(ctx context.Context, user users.User, secret users.Secret) (users.User, error)
	GetUserByEmail(ctx context.Context, email string) (users.User, users.Secret, error)
	GetUser(ctx context.Context, id string) (users.User, error)
	DeleteUser(ctx context.Context, id string) error
}
