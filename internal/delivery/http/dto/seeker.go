package dto

import (
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/seeker"
)

type PreferredSalaryRequest struct {
	Amount       *float64 `json:"amount" validate:"required,gte=0"`
	Type         string   `json:"type" validate:"required,oneof=monthly annual"`
	IsNegotiable bool     `json:"isNegotiable"`
}

type CreateSeekerRequest struct {
	Skills          []string               `json:"skills" validate:"omitempty,dive,required"`
	ExperienceYears int                    `json:"experienceYears" validate:"gte=0,lte=80"`
	Location        CoordinatesRequest     `json:"location"`
	SearchRadiusKm  float64                `json:"searchRadiusKm" validate:"required,gte=1,lte=500"`
	PreferredSalary PreferredSalaryRequest `json:"preferredSalary"`
}

func (r CreateSeekerRequest) Profile() seeker.Profile {
	p := seeker.Profile{
		Skills:          r.Skills,
		ExperienceYears: r.ExperienceYears,
		CurrentLocation: r.Location.Point(),
		SearchRadiusKm:  r.SearchRadiusKm,
		PreferredSalary: seeker.PreferredSalary{
			Type:         job.SalaryType(r.PreferredSalary.Type),
			IsNegotiable: r.PreferredSalary.IsNegotiable,
		},
	}
	if r.PreferredSalary.Amount != nil {
		p.PreferredSalary.Amount = *r.PreferredSalary.Amount
	}
	return p
}

type UpdateLocationRequest struct {
	Location       CoordinatesRequest `json:"location"`
	SearchRadiusKm *float64           `json:"searchRadiusKm" validate:"omitempty,gte=1,lte=500"`
}

type SeekerResponse struct {
	ID              string                 `json:"id"`
	Skills          []string               `json:"skills"`
	ExperienceYears int                    `json:"experienceYears"`
	Location        geo.Point              `json:"location"`
	SearchRadiusKm  float64                `json:"searchRadiusKm"`
	PreferredSalary seeker.PreferredSalary `json:"preferredSalary"`
	CreatedAt       string                 `json:"createdAt"`
	UpdatedAt       string                 `json:"updatedAt"`
}

func NewSeekerResponse(p seeker.Profile) SeekerResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	return SeekerResponse{
		ID:              p.ID,
		Skills:          skills,
		ExperienceYears: p.ExperienceYears,
		Location:        p.CurrentLocation,
		SearchRadiusKm:  p.SearchRadiusKm,
		PreferredSalary: p.PreferredSalary,
		CreatedAt:       formatTime(p.CreatedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
}
