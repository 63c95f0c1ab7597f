package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"jobmatch/internal/domain/skill"
)

const (
	nearbyCachePrefix = "jobs:nearby:"
	// NearbyCachePattern matches every cached nearby search.
	NearbyCachePattern = nearbyCachePrefix + "*"
	matchLockPrefix    = "matches:lock:"
)

type nearbyCacheKeyInput struct {
	Lat             string   `json:"lat"`
	Lng             string   `json:"lng"`
	RadiusKm        string   `json:"radius_km"`
	Limit           int      `json:"limit"`
	Exact           bool     `json:"exact"`
	Status          string   `json:"status"`
	EmploymentType  string   `json:"employment_type"`
	ExperienceLevel *int     `json:"experience_level"`
	SalaryMin       *float64 `json:"salary_min"`
	SalaryMax       *float64 `json:"salary_max"`
	Skills          []string `json:"skills"`
}

// NearbyCacheKey derives a stable key from normalized search parameters.
// Coordinates are rounded to ~1 m so jittery clients share entries.
func NearbyCacheKey(params NearbyParams) string {
	in := nearbyCacheKeyInput{
		Lat:            strconv.FormatFloat(params.Center.Latitude, 'f', 5, 64),
		Lng:            strconv.FormatFloat(params.Center.Longitude, 'f', 5, 64),
		RadiusKm:       strconv.FormatFloat(params.RadiusKm, 'f', 3, 64),
		Limit:          params.Limit,
		Exact:          params.Exact,
		Status:         string(params.Predicates.Status),
		EmploymentType: string(params.Predicates.EmploymentType),
		SalaryMin:      params.Predicates.SalaryMin,
		SalaryMax:      params.Predicates.SalaryMax,
		Skills:         skill.NormalizeSet(params.Predicates.Skills),
	}
	if params.Predicates.ExperienceLevel != nil {
		lvl := int(*params.Predicates.ExperienceLevel)
		in.ExperienceLevel = &lvl
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return nearbyCachePrefix + hex.EncodeToString(sum[:])
}

func MatchLockKey(pairKey string) string {
	return matchLockPrefix + pairKey
}
