package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	authstorage "github.com/goserg/devconnector/auth/storage"
	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/storage"
)

var (
	ErrNoUser          = errors.New("user not found")
	ErrNoProfile       = errors.New("there is no profile for this user")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEntryNotFound   = errors.New("entry not found")
)

type ProfileService struct {
	profiles storage.ProfileStorage
	accounts authstorage.AuthStorage
	log      *logrus.Entry
	now      func() time.Time
	newID    func() string
}

func NewProfileService(l *logrus.Logger, profiles storage.ProfileStorage, accounts authstorage.AuthStorage) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		accounts: accounts,
		log:      l.WithField("from", "profile-service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Me returns the profile of the authenticated user.
func (s *ProfileService) Me(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Profile{}, ErrNoProfile
	}
	return p, err
}

// ByUser returns the profile owned by userID. An id the store cannot even
// parse is reported the same way as a missing profile.
func (s *ProfileService) ByUser(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, err
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.ListProfiles(ctx)
}

// Upsert creates the user's profile or merges fields into the existing one.
func (s *ProfileService) Upsert(ctx context.Context, userID string, fields domain.ProfileFields) (domain.Profile, error) {
	if _, err := s.accounts.GetUser(ctx, userID); err != nil {
		if errors.Is(err, authstorage.ErrNotFound) {
			return domain.Profile{}, ErrNoUser
		}
		return domain.Profile{}, err
	}
	return s.profiles.UpsertProfile(ctx, userID, fields, s.now().UTC())
}

// DeleteAccount removes the user's profile and then the user itself.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.profiles.DeleteProfile(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	err := s.accounts.DeleteUser(ctx, userID)
	if err != nil && !errors.Is(err, authstorage.ErrNotFound) {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.WithField("user_id", userID).Info("account deleted")
	return nil
}

func (s *ProfileService) AddExperience(ctx context.Context, userID string, exp domain.Experience) (domain.Profile, error) {
	exp.ID = s.newID()
	return mapEntryErr(s.profiles.PushExperience(ctx, userID, exp))
}

func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (domain.Profile, error) {
	return mapEntryErr(s.profiles.PullExperience(ctx, userID, expID))
}

func (s *ProfileService) AddEducation(ctx context.Context, userID string, edu domain.Education) (domain.Profile, error) {
	edu.ID = s.newID()
	return mapEntryErr(s.profiles.PushEducation(ctx, userID, edu))
}

func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (domain.Profile, error) {
	return mapEntryErr(s.profiles.PullEducation(ctx, userID, eduID))
}

func mapEntryErr(p domain.Profile, err error) (domain.Profile, error) {
	switch {
	case errors.Is(err, storage.ErrEntryNotFound):
		return domain.Profile{}, ErrEntryNotFound
	case errors.Is(err, storage.ErrNotFound):
		return domain.Profile{}, ErrNoProfile
	}
	return p, err
}

// ParseSkills splits a comma separated list, trimming entries and dropping
// empty ones and repeats. Order of first appearance is kept.
func ParseSkills(list string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	skills := []string{}
	for _, skill := range strings.Split(list, ",") {
		skill = strings.TrimSpace(skill)
		if skill == "" || !seen.Add(strings.ToLower(skill)) {
			continue
		}
		skills = append(skills, skill)
	}
	return skills
}
