package storage

import (
	"context"
	"errors"
	"time"

	authstorage "github.com/goserg/devconnector/auth/storage"
	"github.com/goserg/devconnector/internal/domain"
)

var (
	ErrNotFound   = authstorage.ErrNotFound
	ErrUserExists = authstorage.ErrUserExists
	// ErrEntryNotFound means the profile exists but has no experience or
	// education entry with the requested id.
	ErrEntryNotFound = errors.New("profile entry not found")
)

// ProfileStorage keeps one profile document per user. Every mutation is
// atomic for its document. Profiles whose owner no longer exists are not
// returned.
type ProfileStorage interface {
	UpsertProfile(ctx context.Context, userID string, fields domain.ProfileFields, now time.Time) (domain.Profile, error)
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	DeleteProfile(ctx context.Context, userID string) error

	PushExperience(ctx context.Context, userID string, exp domain.Experience) (domain.Profile, error)
	PullExperience(ctx context.Context, userID string, expID string) (domain.Profile, error)
	PushEducation(ctx context.Context, userID string, edu domain.Education) (domain.Profile, error)
	PullEducation(ctx context.Context, userID string, eduID string) (domain.Profile, error)
}

type Storage interface {
	authstorage.AuthStorage
	ProfileStorage
	Close(ctx context.Context) error
}
