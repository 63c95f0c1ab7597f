package search

import (
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/skill"
)

// Predicates narrows a candidate set. Zero values are no-ops.
type Predicates struct {
	Status          job.Status
	EmploymentType  job.EmploymentType
	ExperienceLevel *job.ExperienceLevel
	// SalaryMin and SalaryMax bound the posted amount as listed, in the
	// posting's own salary type.
	SalaryMin *float64
	SalaryMax *float64
	// Skills must ALL be present on a posting.
	Skills []string
}

func (p Predicates) Validate() error {
	if p.Status != "" {
		if _, err := job.ParseStatus(string(p.Status)); err != nil {
			return err
		}
	}
	if p.EmploymentType != "" {
		if _, err := job.ParseEmploymentType(string(p.EmploymentType)); err != nil {
			return err
		}
	}
	if p.ExperienceLevel != nil && *p.ExperienceLevel < 0 {
		return domain.InvalidInputf("experience level must be >= 0")
	}
	if p.SalaryMin != nil && *p.SalaryMin < 0 {
		return domain.InvalidInputf("salary_min must be >= 0")
	}
	if p.SalaryMax != nil && *p.SalaryMax < 0 {
		return domain.InvalidInputf("salary_max must be >= 0")
	}
	if p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin > *p.SalaryMax {
		return domain.InvalidInputf("salary_min must be <= salary_max")
	}
	return nil
}

// Filter returns the postings satisfying every predicate, preserving input
// order. Checks run status, employment type, experience level, salary range
// and then skills.
func Filter(postings []job.Posting, p Predicates) []job.Posting {
	var required []string
	if len(p.Skills) > 0 {
		required = skill.NormalizeSet(p.Skills)
	}

	out := make([]job.Posting, 0, len(postings))
	for _, posting := range postings {
		if p.Status != "" && posting.Status != p.Status {
			continue
		}
		if p.EmploymentType != "" && posting.EmploymentType != p.EmploymentType {
			continue
		}
		if p.ExperienceLevel != nil && posting.ExperienceLevel != *p.ExperienceLevel {
			continue
		}
		if p.SalaryMin != nil && posting.Salary.Amount < *p.SalaryMin {
			continue
		}
		if p.SalaryMax != nil && posting.Salary.Amount > *p.SalaryMax {
			continue
		}
		if len(required) > 0 && !skill.NewSet(posting.Skills).ContainsAll(required) {
			continue
		}
		out = append(out, posting)
	}
	return out
}
