package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
)

type userDocument struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Name     string        `bson:"name"`
	Email    string        `bson:"email"`
	Password string        `bson:"password"`
	Avatar   string        `bson:"avatar"`
	Date     time.Time     `bson:"date"`
}

func (d userDocument) toModel() users.User {
	return users.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Avatar:       d.Avatar,
		RegisteredAt: d.Date,
	}
}

type socialDocument struct {
	Youtube   string `bson:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty"`
	Linkedin  string `bson:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty"`
}

type experienceDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Company     string     `bson:"company"`
	Location    string     `bson:"location,omitempty"`
	From        time.Time  `bson:"from"`
	To          *time.Time `bson:"to,omitempty"`
	Current     bool       `bson:"current"`
	Description string     `bson:"description,omitempty"`
}

type educationDocument struct {
	ID           string     `bson:"_id"`
	School       string     `bson:"school"`
	Degree       string     `bson:"degree"`
	FieldOfStudy string     `bson:"fieldofstudy"`
	From         time.Time  `bson:"from"`
	To           *time.Time `bson:"to,omitempty"`
	Current      bool       `bson:"current"`
	Description  string     `bson:"description,omitempty"`
}

type profileDocument struct {
	ID             bson.ObjectID        `bson:"_id,omitempty"`
	User           bson.ObjectID        `bson:"user"`
	Company        string               `bson:"company,omitempty"`
	Website        string               `bson:"website,omitempty"`
	Location       string               `bson:"location,omitempty"`
	Status         string               `bson:"status,omitempty"`
	Skills         []string             `bson:"skills"`
	Bio            string               `bson:"bio,omitempty"`
	GithubUsername string               `bson:"githubusername,omitempty"`
	Experience     []experienceDocument `bson:"experience"`
	Education      []educationDocument  `bson:"education"`
	Social         socialDocument       `bson:"social"`
	Date           time.Time            `bson:"date"`
}

// profileView is a profile joined with its owner.
type profileView struct {
	profileDocument `bson:",inline"`
	Owner           userDocument `bson:"owner"`
}

func (v profileView) toModel() domain.Profile {
	p := domain.Profile{
		ID: v.ID.Hex(),
		User: domain.UserSummary{
			ID:     v.Owner.ID.Hex(),
			Name:   v.Owner.Name,
			Avatar: v.Owner.Avatar,
		},
		Company:        v.Company,
		Website:        v.Website,
		Location:       v.Location,
		Status:         v.Status,
		Skills:         v.Skills,
		Bio:            v.Bio,
		GithubUsername: v.GithubUsername,
		Experience:     make([]domain.Experience, 0, len(v.Experience)),
		Education:      make([]domain.Education, 0, len(v.Education)),
		Social:         domain.Social(v.Social),
		Date:           v.Date,
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	for _, e := range v.Experience {
		p.Experience = append(p.Experience, domain.Experience(e))
	}
	for _, e := range v.Education {
		p.Education = append(p.Education, domain.Education(e))
	}
	return p
}
