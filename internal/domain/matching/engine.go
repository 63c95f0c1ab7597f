package matching

import (
	"math"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/seeker"
	"jobmatch/internal/domain/skill"
)

const (
	WeightSkills     = 30.0
	WeightExperience = 25.0
	WeightLocation   = 25.0
	WeightSalary     = 20.0

	// SalaryTolerance is the share of the seeker's annual expectation the job
	// must reach for the salary criterion to match.
	SalaryTolerance = 0.9
)

// Breakdown holds each criterion's contribution to the total score.
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Location   float64 `json:"location"`
	Salary     float64 `json:"salary"`
}

type Result struct {
	Score      float64        `json:"score"`
	Criteria   match.Criteria `json:"criteria"`
	Breakdown  Breakdown      `json:"breakdown"`
	DistanceKm float64        `json:"distanceKm"`
}

// Score computes the weighted compatibility between a posting and a seeker.
// It is pure: no I/O, deterministic for identical inputs.
//
// Location compares the seeker against the posting's first listed location
// only; other sites of a multi-location posting are ignored.
func Score(p job.Posting, s seeker.Profile) (Result, error) {
	jobSkills := skill.NormalizeSet(p.Skills)
	if len(jobSkills) == 0 {
		return Result{}, domain.InvalidInputf("job has no required skills")
	}
	primary, ok := p.PrimaryLocation()
	if !ok {
		return Result{}, domain.InvalidInputf("job has no location")
	}
	if err := primary.Validate(); err != nil {
		return Result{}, err
	}
	if err := s.CurrentLocation.Validate(); err != nil {
		return Result{}, err
	}
	if p.Salary.Amount < 0 || s.PreferredSalary.Amount < 0 {
		return Result{}, domain.InvalidInputf("salary amount must be >= 0")
	}

	var res Result

	seekerSkills := skill.NewSet(s.Skills)
	matched := 0
	for _, js := range jobSkills {
		if seekerSkills.Has(js) {
			matched++
		}
	}
	res.Criteria.SkillsMatchPct = float64(matched) / float64(len(jobSkills)) * 100
	res.Breakdown.Skills = res.Criteria.SkillsMatchPct * WeightSkills / 100

	res.Criteria.ExperienceMatch = s.ExperienceYears >= int(p.ExperienceLevel)
	if res.Criteria.ExperienceMatch {
		res.Breakdown.Experience = WeightExperience
	}

	res.DistanceKm = geo.HaversineDistanceKm(primary, s.CurrentLocation)
	res.Criteria.LocationMatch = res.DistanceKm <= s.SearchRadiusKm
	if res.Criteria.LocationMatch {
		res.Breakdown.Location = WeightLocation
	}

	res.Criteria.SalaryMatch = salaryMatches(p.Salary, s.PreferredSalary)
	if res.Criteria.SalaryMatch {
		res.Breakdown.Salary = WeightSalary
	}

	total := res.Breakdown.Skills + res.Breakdown.Experience + res.Breakdown.Location + res.Breakdown.Salary
	res.Score = clamp(total, 0, 100)
	return res, nil
}

func salaryMatches(offer job.Salary, pref seeker.PreferredSalary) bool {
	if pref.IsNegotiable {
		return true
	}
	jobAnnual := job.Annualize(offer.Amount, offer.Type)
	seekerAnnual := job.Annualize(pref.Amount, pref.Type)
	return jobAnnual >= SalaryTolerance*seekerAnnual
}

func clamp(v, minV, maxV float64) float64 {
	if math.IsNaN(v) {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
