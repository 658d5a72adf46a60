// Package storagetest holds the behaviour every storage.Storage must show.
// Backend packages run it from their tests.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/storage"
)

type Suite struct {
	suite.Suite
	// NewStorage returns an empty storage. It is called before every test.
	NewStorage func() storage.Storage

	store storage.Storage
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStorage()
}

func (s *Suite) TearDownTest() {
	s.Require().NoError(s.store.Close(s.ctx))
}

func (s *Suite) createUser(name, email string) users.User {
	u, err := s.store.CreateUser(s.ctx, users.User{
		Name:         name,
		Email:        email,
		Avatar:       users.AvatarURL(email),
		RegisteredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}, users.Secret{PasswordHash: "hash-of-" + email})
	s.Require().NoError(err)
	return u
}

func (s *Suite) TestCreateUser() {
	u := s.createUser("Ann", "ann@x.com")
	s.NotEmpty(u.ID)
	s.Equal("Ann", u.Name)

	got, err := s.store.GetUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal("Ann", got.Name)
	s.Equal("ann@x.com", got.Email)
	s.Equal(users.AvatarURL("ann@x.com"), got.Avatar)
	s.WithinDuration(u.RegisteredAt, got.RegisteredAt, time.Second)

	byEmail, secret, err := s.store.GetUserByEmail(s.ctx, "ann@x.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
	s.Equal("hash-of-ann@x.com", secret.PasswordHash)
}

func (s *Suite) TestCreateUser_DuplicateEmail() {
	first := s.createUser("Ann", "ann@x.com")

	_, err := s.store.CreateUser(s.ctx, users.User{
		Name:  "Impostor",
		Email: "ann@x.com",
	}, users.Secret{PasswordHash: "other"})
	s.ErrorIs(err, storage.ErrUserExists)

	got, secret, err := s.store.GetUserByEmail(s.ctx, "ann@x.com")
	s.Require().NoError(err)
	s.Equal(first.ID, got.ID)
	s.Equal("Ann", got.Name)
	s.Equal("hash-of-ann@x.com", secret.PasswordHash)
}

func (s *Suite) TestGetUser_NotFound() {
	s.createUser("Ann", "ann@x.com")

	_, _, err := s.store.GetUserByEmail(s.ctx, "bob@x.com")
	s.ErrorIs(err, storage.ErrNotFound)

	for _, id := range []string{"", "not-an-id", "00000000-0000-0000-0000-000000000000", "65f1c0ffee0000000000abcd"} {
		_, err = s.store.GetUser(s.ctx, id)
		s.ErrorIs(err, storage.ErrNotFound, id)
	}
}

func (s *Suite) TestDeleteUser() {
	u := s.createUser("Ann", "ann@x.com")

	s.Require().NoError(s.store.DeleteUser(s.ctx, u.ID))
	_, err := s.store.GetUser(s.ctx, u.ID)
	s.ErrorIs(err, storage.ErrNotFound)
	s.ErrorIs(s.store.DeleteUser(s.ctx, u.ID), storage.ErrNotFound)

	again := s.createUser("Ann", "ann@x.com")
	s.NotEqual(u.ID, again.ID)
}

func (s *Suite) TestUpsertProfile() {
	u := s.createUser("Ann", "ann@x.com")
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	p, err := s.store.UpsertProfile(s.ctx, u.ID, domain.ProfileFields{
		Company: "Acme",
		Status:  "Developer",
		Skills:  []string{"go", "sql"},
		Social:  domain.Social{Twitter: "@ann"},
	}, now)
	s.Require().NoError(err)
	s.NotEmpty(p.ID)
	s.Equal(domain.UserSummary{ID: u.ID, Name: "Ann", Avatar: u.Avatar}, p.User)
	s.Equal("Acme", p.Company)
	s.Equal([]string{"go", "sql"}, p.Skills)
	s.Equal("@ann", p.Social.Twitter)
	s.WithinDuration(now, p.Date, time.Second)
	s.Empty(p.Experience)
	s.Empty(p.Education)

	updated, err := s.store.UpsertProfile(s.ctx, u.ID, domain.ProfileFields{
		Status: "Lead",
		Bio:    "hi",
	}, now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(p.ID, updated.ID)
	s.Equal("Acme", updated.Company)
	s.Equal("Lead", updated.Status)
	s.Equal("hi", updated.Bio)
	s.Equal([]string{"go", "sql"}, updated.Skills)
	s.Equal(domain.Social{}, updated.Social)
	s.WithinDuration(now, updated.Date, time.Second)

	got, err := s.store.GetProfile(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(updated.ID, got.ID)
	s.Equal("Lead", got.Status)
}

func (s *Suite) TestGetProfile_NotFound() {
	u := s.createUser("Ann", "ann@x.com")
	_, err := s.store.GetProfile(s.ctx, u.ID)
	s.ErrorIs(err, storage.ErrNotFound)
	_, err = s.store.GetProfile(s.ctx, "not-an-id")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *Suite) TestListProfiles() {
	list, err := s.store.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)

	ann := s.createUser("Ann", "ann@x.com")
	bob := s.createUser("Bob", "bob@x.com")
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err = s.store.UpsertProfile(s.ctx, ann.ID, domain.ProfileFields{Status: "a", Skills: []string{"go"}}, now)
	s.Require().NoError(err)
	_, err = s.store.UpsertProfile(s.ctx, bob.ID, domain.ProfileFields{Status: "b", Skills: []string{"js"}}, now.Add(time.Minute))
	s.Require().NoError(err)

	list, err = s.store.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Ann", list[0].User.Name)
	s.Equal("Bob", list[1].User.Name)
}

func (s *Suite) TestDeleteProfile() {
	u := s.createUser("Ann", "ann@x.com")
	_, err := s.store.UpsertProfile(s.ctx, u.ID, domain.ProfileFields{Status: "a"}, time.Now())
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteProfile(s.ctx, u.ID))
	_, err = s.store.GetProfile(s.ctx, u.ID)
	s.ErrorIs(err, storage.ErrNotFound)
	s.NoError(s.store.DeleteProfile(s.ctx, u.ID), "deleting a missing profile is not an error")
}

func (s *Suite) TestOrphanProfileHidden() {
	u := s.createUser("Ann", "ann@x.com")
	_, err := s.store.UpsertProfile(s.ctx, u.ID, domain.ProfileFields{Status: "a"}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.DeleteUser(s.ctx, u.ID))

	_, err = s.store.GetProfile(s.ctx, u.ID)
	s.ErrorIs(err, storage.ErrNotFound)
	list, err := s.store.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestExperience() {
	u := s.createUser("Ann", "ann@x.com")
	from := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.store.PushExperience(s.ctx, u.ID, domain.Experience{ID: "e1", Title: "dev", Company: "Acme", From: from})
	s.ErrorIs(err, storage.ErrNotFound, "no profile yet")

	_, err = s.store.UpsertProfile(s.ctx, u.ID, domain.ProfileFields{Status: "a"}, time.Now())
	s.Require().NoError(err)

	_, err = s.store.PushExperience(s.ctx, u.ID, domain.Experience{
		ID: "e1", Title: "junior", Company: "Acme", From: from, To: &to, Description: "first job",
	})
	s.Require().NoError(err)
	p, err := s.store.PushExperience(s.ctx, u.ID, domain.Experience{
		ID: "e2", Title: "senior", Company: "Initech", Location: "Remote", From: to, Current: true,
	})
	s.Require().NoError(err)
	s.Require().Len(p.Experience, 2)
	s.Equal("e2", p.Experience[0].ID, "new entries go first")
	s.Equal("e1", p.Experience[1].ID)
	s.Equal("Initech", p.Experience[0].Company)
	s.True(p.Experience[0].Current)
	s.Nil(p.Experience[0].To)
	s.Require().NotNil(p.Experience[1].To)
	s.True(to.Equal(*p.Experience[1].To))
	s.True(from.Equal(p.Experience[1].From))
	s.Equal("Ann", p.User.Name)

	_, err = s.store.PullExperience(s.ctx, u.ID, "missing")
	s.ErrorIs(err, storage.ErrEntryNotFound)
	p, err = s.store.GetProfile(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Len(p.Experience, 2, "unknown id leaves the list alone")

	p, err = s.store.PullExperience(s.ctx, u.ID, "e2")
	s.Require().NoError(err)
	s.Require().Len(p.Experience, 1)
	s.Equal("e1", p.Experience[0].ID)
}

func (s *Suite) TestEducation() {
	u := s.createUser("Ann", "ann@x.com")
	from := time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.store.PullEducation(s.ctx, u.ID, "x")
	s.ErrorIs(err, storage.ErrNotFound)

	_, err = s.store.UpsertProfile(s.ctx, u.ID, domain.ProfileFields{Status: "a"}, time.Now())
	s.Require().NoError(err)

	_, err = s.store.PushEducation(s.ctx, u.ID, domain.Education{
		ID: "s1", School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: from,
	})
	s.Require().NoError(err)
	p, err := s.store.PushEducation(s.ctx, u.ID, domain.Education{
		ID: "s2", School: "ETH", Degree: "MSc", FieldOfStudy: "CS", From: from.AddDate(4, 0, 0), Current: true,
	})
	s.Require().NoError(err)
	s.Require().Len(p.Education, 2)
	s.Equal("s2", p.Education[0].ID)
	s.Equal("MSc", p.Education[0].Degree)

	_, err = s.store.PullEducation(s.ctx, u.ID, "missing")
	s.ErrorIs(err, storage.ErrEntryNotFound)

	p, err = s.store.PullEducation(s.ctx, u.ID, "s1")
	s.Require().NoError(err)
	s.Require().Len(p.Education, 1)
	s.Equal("s2", p.Education[0].ID)
	s.Equal("CS", p.Education[0].FieldOfStudy)
}
