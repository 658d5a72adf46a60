package web

import (
	"errors"
	"time"

	"github.com/goserg/devconnector/auth/users"
	"github.com/goserg/devconnector/internal/domain"
)

type message struct {
	Msg string `json:"msg"`
}

type errorItem struct {
	Param string `json:"param,omitempty"`
	Msg   string `json:"msg"`
}

type errorList struct {
	Errors []errorItem `json:"errors"`
}

type multierr interface {
	Unwrap() []error
}

func unwrap(err error) []error {
	var merr multierr
	if errors.As(err, &merr) {
		var errs []error
		for _, err := range merr.Unwrap() {
			errs = append(errs, unwrap(err)...)
		}
		return errs
	}
	return []error{err}
}

// newErrorList flattens err into one item per failure.
func newErrorList(err error) errorList {
	list := errorList{Errors: []errorItem{}}
	for _, err := range unwrap(err) {
		var ferr fieldError
		if errors.As(err, &ferr) {
			list.Errors = append(list.Errors, errorItem{Param: ferr.param, Msg: ferr.msg})
			continue
		}
		list.Errors = append(list.Errors, errorItem{Msg: err.Error()})
	}
	return list
}

// isValidation reports whether every failure in err is a field error.
func isValidation(err error) bool {
	for _, err := range unwrap(err) {
		var ferr fieldError
		if !errors.As(err, &ferr) {
			return false
		}
	}
	return true
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID    string    `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

func newUserResponse(u users.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Date:  u.RegisteredAt,
	}
}

type ownerResponse struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type socialResponse struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type experienceResponse struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type educationResponse struct {
	ID           string     `json:"_id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

type profileResponse struct {
	ID             string               `json:"_id"`
	User           ownerResponse        `json:"user"`
	Company        string               `json:"company,omitempty"`
	Website        string               `json:"website,omitempty"`
	Location       string               `json:"location,omitempty"`
	Status         string               `json:"status"`
	Skills         []string             `json:"skills"`
	Bio            string               `json:"bio,omitempty"`
	GithubUsername string               `json:"githubusername,omitempty"`
	Experience     []experienceResponse `json:"experience"`
	Education      []educationResponse  `json:"education"`
	Social         socialResponse       `json:"social"`
	Date           time.Time            `json:"date"`
}

func newProfileResponse(p domain.Profile) profileResponse {
	resp := profileResponse{
		ID:             p.ID,
		User:           ownerResponse(p.User),
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Experience:     make([]experienceResponse, 0, len(p.Experience)),
		Education:      make([]educationResponse, 0, len(p.Education)),
		Social:         socialResponse(p.Social),
		Date:           p.Date,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	for _, e := range p.Experience {
		resp.Experience = append(resp.Experience, experienceResponse(e))
	}
	for _, e := range p.Education {
		resp.Education = append(resp.Education, educationResponse(e))
	}
	return resp
}

func newProfileList(list []domain.Profile) []profileResponse {
	resp := make([]profileResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, newProfileResponse(p))
	}
	return resp
}
