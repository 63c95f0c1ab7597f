package job

import (
	"strings"
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/skill"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusClosed:
		return st, nil
	}
	return "", domain.InvalidInputf("unknown job status %q", s)
}

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentFreelance  EmploymentType = "freelance"
)

func ParseEmploymentType(s string) (EmploymentType, error) {
	et := EmploymentType(strings.ToLower(strings.TrimSpace(s)))
	switch et {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentFreelance:
		return et, nil
	}
	return "", domain.InvalidInputf("unknown employment type %q", s)
}

// ExperienceLevel is ordinal and doubles as the minimum years of experience
// a seeker needs to satisfy the posting.
type ExperienceLevel int

const (
	ExperienceEntry  ExperienceLevel = 0
	ExperienceJunior ExperienceLevel = 1
	ExperienceMid    ExperienceLevel = 3
	ExperienceSenior ExperienceLevel = 5
	ExperienceLead   ExperienceLevel = 8
)

type SalaryType string

const (
	SalaryMonthly SalaryType = "monthly"
	SalaryAnnual  SalaryType = "annual"
)

func ParseSalaryType(s string) (SalaryType, error) {
	st := SalaryType(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case SalaryMonthly, SalaryAnnual:
		return st, nil
	}
	return "", domain.InvalidInputf("unknown salary type %q", s)
}

// Annualize converts amount to a yearly figure.
func Annualize(amount float64, t SalaryType) float64 {
	if t == SalaryMonthly {
		return amount * 12
	}
	return amount
}

type Salary struct {
	Amount       float64    `json:"amount"`
	Type         SalaryType `json:"type"`
	Currency     string     `json:"currency"`
	IsNegotiable bool       `json:"isNegotiable"`
}

type Location struct {
	Address     string    `json:"address"`
	Coordinates geo.Point `json:"coordinates"`
}

type Counters struct {
	Views           int64 `json:"views"`
	RightSwipeCount int64 `json:"rightSwipeCount"`
}

// Counter field paths accepted by the atomic increment.
const (
	CounterViews       = "views"
	CounterRightSwipes = "rightSwipeCount"
)

func CounterPath(field string) (string, error) {
	switch field {
	case CounterViews, CounterRightSwipes:
		return "counters." + field, nil
	}
	return "", domain.InvalidInputf("unknown counter %q", field)
}

type Posting struct {
	ID              string          `json:"-"`
	EmployerID      string          `json:"employerId"`
	Title           string          `json:"title"`
	Skills          []string        `json:"skills"`
	EmploymentType  EmploymentType  `json:"employmentType"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Salary          Salary          `json:"salary"`
	Locations       []Location      `json:"locations"`
	// Location mirrors Locations[0].Coordinates; it is the indexed geo field.
	Location  geo.Point `json:"location"`
	Status    Status    `json:"status"`
	Counters  Counters  `json:"counters"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// PrimaryLocation is the reference point used for distance scoring: the
// first listed location. Postings with several sites are scored against
// that one only.
func (p Posting) PrimaryLocation() (geo.Point, bool) {
	if len(p.Locations) == 0 {
		return geo.Point{}, false
	}
	return p.Locations[0].Coordinates, true
}

// Normalize canonicalizes skills and syncs the indexed location field.
func (p *Posting) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Skills = skill.NormalizeSet(p.Skills)
	if loc, ok := p.PrimaryLocation(); ok {
		p.Location = loc
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
}

func (p Posting) Validate() error {
	if strings.TrimSpace(p.EmployerID) == "" {
		return domain.InvalidInputf("employerId is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return domain.InvalidInputf("title is required")
	}
	if len(skill.NormalizeSet(p.Skills)) == 0 {
		return domain.InvalidInputf("at least one skill is required")
	}
	if _, err := ParseEmploymentType(string(p.EmploymentType)); err != nil {
		return err
	}
	if p.ExperienceLevel < 0 {
		return domain.InvalidInputf("experienceLevel must be >= 0")
	}
	if p.Salary.Amount < 0 {
		return domain.InvalidInputf("salary amount must be >= 0")
	}
	if _, err := ParseSalaryType(string(p.Salary.Type)); err != nil {
		return err
	}
	if len(p.Locations) == 0 {
		return domain.InvalidInputf("at least one location is required")
	}
	for _, l := range p.Locations {
		if err := l.Coordinates.Validate(); err != nil {
			return err
		}
	}
	if p.Status != "" {
		if _, err := ParseStatus(string(p.Status)); err != nil {
			return err
		}
	}
	return nil
}
