package domain

import "time"

// UserSummary is the part of the owner's record shown next to a profile.
type UserSummary struct {
	ID     string
	Name   string
	Avatar string
}

type Social struct {
	Youtube   string
	Twitter   string
	Facebook  string
	Linkedin  string
	Instagram string
}

type Experience struct {
	ID          string
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

type Education struct {
	ID           string
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

type Profile struct {
	ID             string
	User           UserSummary
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GithubUsername string
	Experience     []Experience
	Education      []Education
	Social         Social
	Date           time.Time
}

// ProfileFields is a partial profile. Empty strings and a nil Skills slice
// leave the stored values untouched; Social always replaces the stored one.
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         []string
	Bio            string
	GithubUsername string
	Social         Social
}

// Apply merges f into p.
func (p *Profile) Apply(f ProfileFields) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Company, f.Company)
	set(&p.Website, f.Website)
	set(&p.Location, f.Location)
	set(&p.Status, f.Status)
	set(&p.Bio, f.Bio)
	set(&p.GithubUsername, f.GithubUsername)
	if f.Skills != nil {
		p.Skills = f.Skills
	}
	p.Social = f.Social
}

// PrependExperience puts e first: the list is kept most recent first.
func (p *Profile) PrependExperience(e Experience) {
	p.Experience = append([]Experience{e}, p.Experience...)
}

// RemoveExperience drops the entry with the given id and reports whether it
// was there.
func (p *Profile) RemoveExperience(id string) bool {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Profile) PrependEducation(e Education) {
	p.Education = append([]Education{e}, p.Education...)
}

func (p *Profile) RemoveEducation(id string) bool {
	for i := range p.Education {
		if p.Education[i].ID == id {
			p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}
