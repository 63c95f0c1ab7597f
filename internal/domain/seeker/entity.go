package seeker

import (
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/skill"
)

const (
	MinSearchRadiusKm = 1.0
	MaxSearchRadiusKm = 500.0
)

type PreferredSalary struct {
	Amount       float64        `json:"amount"`
	Type         job.SalaryType `json:"type"`
	IsNegotiable bool           `json:"isNegotiable"`
}

type Profile struct {
	ID              string   `json:"-"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experienceYears"`
	// CurrentLocation is stored under the indexed "location" field so seekers
	// can be found with the same proximity search as postings.
	CurrentLocation geo.Point       `json:"location"`
	SearchRadiusKm  float64         `json:"searchRadiusKm"`
	PreferredSalary PreferredSalary `json:"preferredSalary"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

func (p *Profile) Normalize() {
	p.Skills = skill.NormalizeSet(p.Skills)
}

func ValidateRadius(km float64) error {
	if km < MinSearchRadiusKm || km > MaxSearchRadiusKm {
		return domain.InvalidInputf("searchRadiusKm must be within [%v,%v], got %v", MinSearchRadiusKm, MaxSearchRadiusKm, km)
	}
	return nil
}

func (p Profile) Validate() error {
	if p.ExperienceYears < 0 {
		return domain.InvalidInputf("experienceYears must be >= 0")
	}
	if err := p.CurrentLocation.Validate(); err != nil {
		return err
	}
	if err := ValidateRadius(p.SearchRadiusKm); err != nil {
		return err
	}
	if p.PreferredSalary.Amount < 0 {
		return domain.InvalidInputf("preferred salary amount must be >= 0")
	}
	if _, err := job.ParseSalaryType(string(p.PreferredSalary.Type)); err != nil {
		return err
	}
	return nil
}
