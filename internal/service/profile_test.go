package service

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/storage/mem"
)

func newTestProfileService(t *testing.T) (*ProfileService, *mem.Storage, users.User) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	store := mem.New()
	u, err := store.CreateUser(context.Background(), users.User{Name: "Ann", Email: "ann@x.com"}, users.Secret{})
	require.NoError(t, err)

	s := NewProfileService(l, store, store)
	var n int
	s.newID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, store, u
}

func TestParseSkills(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single", in: "go", want: []string{"go"}},
		{name: "trimmed", in: " HTML, CSS ,JavaScript ", want: []string{"HTML", "CSS", "JavaScript"}},
		{name: "empties dropped", in: "go,, ,sql,", want: []string{"go", "sql"}},
		{name: "repeats dropped", in: "Go, go, SQL, Go", want: []string{"Go", "SQL"}},
		{name: "empty", in: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSkills(tt.in))
		})
	}
}

func TestProfileService_MeAndUpsert(t *testing.T) {
	s, _, u := newTestProfileService(t)
	ctx := context.Background()

	_, err := s.Me(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNoProfile)

	p, err := s.Upsert(ctx, u.ID, domain.ProfileFields{Status: "Developer", Skills: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.User.Name)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), p.Date)

	me, err := s.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, me.ID)

	_, err = s.Upsert(ctx, "ghost", domain.ProfileFields{Status: "x"})
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestProfileService_ByUser(t *testing.T) {
	s, _, u := newTestProfileService(t)
	ctx := context.Background()

	for _, id := range []string{u.ID, "garbage-id", ""} {
		_, err := s.ByUser(ctx, id)
		assert.ErrorIs(t, err, ErrProfileNotFound, id)
	}

	_, err := s.Upsert(ctx, u.ID, domain.ProfileFields{Status: "Developer"})
	require.NoError(t, err)
	p, err := s.ByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Developer", p.Status)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestProfileService_Entries(t *testing.T) {
	s, _, u := newTestProfileService(t)
	ctx := context.Background()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.AddExperience(ctx, u.ID, domain.Experience{Title: "dev", Company: "Acme", From: from})
	assert.ErrorIs(t, err, ErrNoProfile)

	_, err = s.Upsert(ctx, u.ID, domain.ProfileFields{Status: "Developer"})
	require.NoError(t, err)

	p, err := s.AddExperience(ctx, u.ID, domain.Experience{ID: "client-chosen", Title: "dev", Company: "Acme", From: from})
	require.NoError(t, err)
	require.Len(t, p.Experience, 1)
	assert.Equal(t, "id-1", p.Experience[0].ID, "ids are assigned by the service")

	_, err = s.RemoveExperience(ctx, u.ID, "id-999")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	p, err = s.RemoveExperience(ctx, u.ID, "id-1")
	require.NoError(t, err)
	assert.Empty(t, p.Experience)

	p, err = s.AddEducation(ctx, u.ID, domain.Education{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: from})
	require.NoError(t, err)
	require.Len(t, p.Education, 1)
	assert.Equal(t, "id-2", p.Education[0].ID)

	_, err = s.RemoveEducation(ctx, u.ID, "id-1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	p, err = s.RemoveEducation(ctx, u.ID, "id-2")
	require.NoError(t, err)
	assert.Empty(t, p.Education)
}

func TestProfileService_DeleteAccount(t *testing.T) {
	s, store, u := newTestProfileService(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, u.ID, domain.ProfileFields{Status: "Developer"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, u.ID))
	_, err = store.GetUser(ctx, u.ID)
	assert.Error(t, err)
	_, err = s.Me(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNoProfile)

	assert.NoError(t, s.DeleteAccount(ctx, u.ID), "repeating the delete is harmless")
}
