package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Apply(t *testing.T) {
	p := Profile{
		Company: "Acme",
		Status:  "Developer",
		Skills:  []string{"go"},
		Social:  Social{Twitter: "@old"},
	}
	p.Apply(ProfileFields{
		Status: "Senior Developer",
		Bio:    "hello",
		Social: Social{Youtube: "yt"},
	})
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Senior Developer", p.Status)
	assert.Equal(t, "hello", p.Bio)
	assert.Equal(t, []string{"go"}, p.Skills)
	assert.Equal(t, Social{Youtube: "yt"}, p.Social)

	p.Apply(ProfileFields{Skills: []string{"rust", "c"}})
	assert.Equal(t, []string{"rust", "c"}, p.Skills)
}

func TestProfile_Experience(t *testing.T) {
	var p Profile
	p.PrependExperience(Experience{ID: "1"})
	p.PrependExperience(Experience{ID: "2"})
	p.PrependExperience(Experience{ID: "3"})
	assert.Equal(t, []string{"3", "2", "1"}, experienceIDs(p.Experience))

	before := p.Experience
	assert.False(t, p.RemoveExperience("nope"))
	assert.Equal(t, []string{"3", "2", "1"}, experienceIDs(p.Experience))

	assert.True(t, p.RemoveExperience("2"))
	assert.Equal(t, []string{"3", "1"}, experienceIDs(p.Experience))
	assert.Equal(t, "2", before[1].ID, "removal must not write through to a shared backing array")
}

func TestProfile_Education(t *testing.T) {
	var p Profile
	p.PrependEducation(Education{ID: "a"})
	p.PrependEducation(Education{ID: "b"})
	assert.True(t, p.RemoveEducation("a"))
	assert.False(t, p.RemoveEducation("a"))
	assert.Len(t, p.Education, 1)
	assert.Equal(t, "b", p.Education[0].ID)
}

func experienceIDs(list []Experience) []string {
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	return ids
}
