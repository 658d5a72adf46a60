// Package sqlutil holds what the SQL backed storages share: transactions and
// the JSON encoding of the profile body.
package sqlutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/goserg/devconnector/internal/domain"
)

type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

func InTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	value, err := fn(tx)
	if err != nil {
		return zero, errors.Join(err, tx.Rollback())
	}
	return value, tx.Commit()
}

type social struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// profileBody is what lands in the data column. Identity, owner and date
// live in their own columns.
type profileBody struct {
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `json:"status,omitempty"`
	Skills         []string     `json:"skills"`
	Bio            string       `json:"bio,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty"`
	Experience     []experience `json:"experience"`
	Education      []education  `json:"education"`
	Social         social       `json:"social"`
}

func EncodeProfile(p domain.Profile) ([]byte, error) {
	body := profileBody{
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Experience:     make([]experience, 0, len(p.Experience)),
		Education:      make([]education, 0, len(p.Education)),
		Social:         social(p.Social),
	}
	if body.Skills == nil {
		body.Skills = []string{}
	}
	for _, e := range p.Experience {
		body.Experience = append(body.Experience, experience(e))
	}
	for _, e := range p.Education {
		body.Education = append(body.Education, education(e))
	}
	return json.Marshal(body)
}

// DecodeProfile fills the body fields of p from data.
func DecodeProfile(data []byte, p *domain.Profile) error {
	var body profileBody
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	p.Company = body.Company
	p.Website = body.Website
	p.Location = body.Location
	p.Status = body.Status
	p.Skills = body.Skills
	p.Bio = body.Bio
	p.GithubUsername = body.GithubUsername
	p.Social = domain.Social(body.Social)
	p.Experience = make([]domain.Experience, 0, len(body.Experience))
	for _, e := range body.Experience {
		p.Experience = append(p.Experience, domain.Experience(e))
	}
	p.Education = make([]domain.Education, 0, len(body.Education))
	for _, e := range body.Education {
		p.Education = append(p.Education, domain.Education(e))
	}
	return nil
}
