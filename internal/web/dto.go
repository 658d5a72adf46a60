package web

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goserg/devconnector/internal/domain"
	"github.com/goserg/devconnector/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// max counts runes; bcrypt only looks at the first 72 bytes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// fieldError is a single rule violation reported back to the client.
type fieldError struct {
	param string
	msg   string
}

func (e fieldError) Error() string {
	if e.param == "" {
		return e.msg
	}
	return e.param + ": " + e.msg
}

// validateRequest checks req against its validate tags. Every violated field
// is reported; the message comes from the field's msg_<rule> tag, or its msg
// tag when the rule has none.
func validateRequest(req any) error {
	err := validate.Struct(req)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	t := reflect.Indirect(reflect.ValueOf(req)).Type()
	var errs []error
	for _, fe := range verrs {
		msg := fe.Error()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if m := f.Tag.Get("msg_" + fe.Tag()); m != "" {
				msg = m
			} else if m := f.Tag.Get("msg"); m != "" {
				msg = m
			}
		}
		errs = append(errs, fieldError{param: fe.Field(), msg: msg})
	}
	return errors.Join(errs...)
}

type registerRequest struct {
	Name     string `json:"name" form:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" form:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Password string `json:"password" form:"password" validate:"required,min=6,maxbytes=72" msg:"Your password should be 6 character or more" msg_maxbytes:"Your password should be at most 72 bytes long"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Password string `json:"password" form:"password" validate:"required" msg:"Password is required"`
}

func (r *loginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// commaList accepts either "a, b" or ["a", "b"].
type commaList string

func (l *commaList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = commaList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("skills must be a string or a list of strings")
	}
	*l = commaList(strings.Join(list, ","))
	return nil
}

type profileRequest struct {
	Company        string    `json:"company" form:"company"`
	Website        string    `json:"website" form:"website" validate:"omitempty,url" msg:"Please enter a valid URL"`
	Location       string    `json:"location" form:"location"`
	Status         string    `json:"status" form:"status" validate:"required" msg:"Status is required"`
	Skills         commaList `json:"skills" form:"skills" validate:"required" msg:"Skills is required"`
	Bio            string    `json:"bio" form:"bio"`
	GithubUsername string    `json:"githubusername" form:"githubusername"`
	Youtube        string    `json:"youtube" form:"youtube"`
	Twitter        string    `json:"twitter" form:"twitter"`
	Facebook       string    `json:"facebook" form:"facebook"`
	Linkedin       string    `json:"linkedin" form:"linkedin"`
	Instagram      string    `json:"instagram" form:"instagram"`
}

func (r profileRequest) toFields() (domain.ProfileFields, error) {
	skills := service.ParseSkills(string(r.Skills))
	if len(skills) == 0 {
		return domain.ProfileFields{}, fieldError{param: "skills", msg: "Skills is required"}
	}
	return domain.ProfileFields{
		Company:        strings.TrimSpace(r.Company),
		Website:        strings.TrimSpace(r.Website),
		Location:       strings.TrimSpace(r.Location),
		Status:         strings.TrimSpace(r.Status),
		Skills:         skills,
		Bio:            r.Bio,
		GithubUsername: strings.TrimSpace(r.GithubUsername),
		Social: domain.Social{
			Youtube:   r.Youtube,
			Twitter:   r.Twitter,
			Facebook:  r.Facebook,
			Linkedin:  r.Linkedin,
			Instagram: r.Instagram,
		},
	}, nil
}

type experienceRequest struct {
	Title       string `json:"title" form:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" form:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location" form:"location"`
	From        string `json:"from" form:"from" validate:"required" msg:"From date is required"`
	To          string `json:"to" form:"to"`
	Current     bool   `json:"current" form:"current"`
	Description string `json:"description" form:"description"`
}

func (r experienceRequest) toDomain() (domain.Experience, error) {
	from, to, err := parsePeriod(r.From, r.To, r.Current)
	if err != nil {
		return domain.Experience{}, err
	}
	return domain.Experience{
		Title:       strings.TrimSpace(r.Title),
		Company:     strings.TrimSpace(r.Company),
		Location:    strings.TrimSpace(r.Location),
		From:        from,
		To:          to,
		Current:     r.Current,
		Description: r.Description,
	}, nil
}

type educationRequest struct {
	School       string `json:"school" form:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" form:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" form:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" form:"from" validate:"required" msg:"From date is required"`
	To           string `json:"to" form:"to"`
	Current      bool   `json:"current" form:"current"`
	Description  string `json:"description" form:"description"`
}

func (r educationRequest) toDomain() (domain.Education, error) {
	from, to, err := parsePeriod(r.From, r.To, r.Current)
	if err != nil {
		return domain.Education{}, err
	}
	return domain.Education{
		School:       strings.TrimSpace(r.School),
		Degree:       strings.TrimSpace(r.Degree),
		FieldOfStudy: strings.TrimSpace(r.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      r.Current,
		Description:  r.Description,
	}, nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		t, err = time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// parsePeriod reads the from/to pair. A current entry has no end date.
func parsePeriod(fromStr, toStr string, current bool) (time.Time, *time.Time, error) {
	var errs []error
	from, err := parseDate(fromStr)
	if err != nil {
		errs = append(errs, fieldError{param: "from", msg: "From date is not a valid date"})
	}
	var to *time.Time
	if toStr != "" && !current {
		t, err := parseDate(toStr)
		if err != nil {
			errs = append(errs, fieldError{param: "to", msg: "To date is not a valid date"})
		} else {
			to = &t
		}
	}
	if len(errs) == 0 && to != nil && to.Before(from) {
		errs = append(errs, fieldError{param: "to", msg: "To date is before from date"})
	}
	if len(errs) > 0 {
		return time.Time{}, nil, errors.Join(errs...)
	}
	return from, to, nil
}
