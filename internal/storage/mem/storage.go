// Package mem is an in-process Storage. Data lives as long as the value.
package mem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	authstorage "github.com/goserg/devconnector/auth/storage"
	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/storage"
)

type account struct {
	user   users.User
	secret users.Secret
}

type Storage struct {
	mu       sync.RWMutex
	accounts map[string]account
	emails   map[string]string
	profiles map[string]domain.Profile
	// order keeps profile owners in creation order.
	order []string
}

var _ storage.Storage = (*Storage)(nil)

func New() *Storage {
	return &Storage{
		accounts: make(map[string]account),
		emails:   make(map[string]string),
		profiles: make(map[string]domain.Profile),
	}
}

func (s *Storage) Close(context.Context) error { return nil }

func (s *Storage) CreateUser(_ context.Context, user users.User, secret users.Secret) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return users.User{}, authstorage.ErrUserExists
	}
	user.ID = uuid.NewString()
	s.accounts[user.ID] = account{user: user, secret: secret}
	s.emails[user.Email] = user.ID
	return user, nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (users.User, users.Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return users.User{}, users.Secret{}, authstorage.ErrNotFound
	}
	a := s.accounts[id]
	return a.user, a.secret, nil
}

func (s *Storage) GetUser(_ context.Context, id string) (users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return users.User{}, authstorage.ErrNotFound
	}
	return a.user, nil
}

func (s *Storage) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return authstorage.ErrNotFound
	}
	delete(s.emails, a.user.Email)
	delete(s.accounts, id)
	return nil
}

func (s *Storage) UpsertProfile(_ context.Context, userID string, fields domain.ProfileFields, now time.Time) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = domain.Profile{
			ID:   uuid.NewString(),
			User: domain.UserSummary{ID: userID},
			Date: now,
		}
		s.order = append(s.order, userID)
	}
	p.Apply(fields)
	s.profiles[userID] = clone(p)
	return s.withUser(p)
}

func (s *Storage) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, storage.ErrNotFound
	}
	return s.withUser(clone(p))
}

func (s *Storage) ListProfiles(context.Context) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Profile, 0, len(s.order))
	for _, userID := range s.order {
		p, err := s.withUser(clone(s.profiles[userID]))
		if err != nil {
			continue
		}
		list = append(list, p)
	}
	return list, nil
}

func (s *Storage) DeleteProfile(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return nil
	}
	delete(s.profiles, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) PushExperience(_ context.Context, userID string, exp domain.Experience) (domain.Profile, error) {
	return s.update(userID, func(p *domain.Profile) error {
		p.PrependExperience(exp)
		return nil
	})
}

func (s *Storage) PullExperience(_ context.Context, userID string, expID string) (domain.Profile, error) {
	return s.update(userID, func(p *domain.Profile) error {
		if !p.RemoveExperience(expID) {
			return storage.ErrEntryNotFound
		}
		return nil
	})
}

func (s *Storage) PushEducation(_ context.Context, userID string, edu domain.Education) (domain.Profile, error) {
	return s.update(userID, func(p *domain.Profile) error {
		p.PrependEducation(edu)
		return nil
	})
}

func (s *Storage) PullEducation(_ context.Context, userID string, eduID string) (domain.Profile, error) {
	return s.update(userID, func(p *domain.Profile) error {
		if !p.RemoveEducation(eduID) {
			return storage.ErrEntryNotFound
		}
		return nil
	})
}

func (s *Storage) update(userID string, fn func(p *domain.Profile) error) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, storage.ErrNotFound
	}
	p = clone(p)
	if err := fn(&p); err != nil {
		return domain.Profile{}, err
	}
	s.profiles[userID] = p
	return s.withUser(clone(p))
}

// withUser fills the owner summary. Callers hold s.mu.
func (s *Storage) withUser(p domain.Profile) (domain.Profile, error) {
	a, ok := s.accounts[p.User.ID]
	if !ok {
		return domain.Profile{}, storage.ErrNotFound
	}
	p.User = domain.UserSummary{
		ID:     a.user.ID,
		Name:   a.user.Name,
		Avatar: a.user.Avatar,
	}
	return p, nil
}

func clone(p domain.Profile) domain.Profile {
	if p.Skills != nil {
		p.Skills = append([]string(nil), p.Skills...)
	}
	if p.Experience != nil {
		p.Experience = append([]domain.Experience(nil), p.Experience...)
	}
	if p.Education != nil {
		p.Education = append([]domain.Education(nil), p.Education...)
	}
	return p
}
