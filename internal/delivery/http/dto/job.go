package dto

import (
	"time"

	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
)

type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (r CoordinatesRequest) Point() geo.Point {
	var p geo.Point
	if r.Latitude != nil {
		p.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		p.Longitude = *r.Longitude
	}
	return p
}

type SalaryRequest struct {
	Amount       *float64 `json:"amount" validate:"required,gte=0"`
	Type         string   `json:"type" validate:"required,oneof=monthly annual"`
	Currency     string   `json:"currency" validate:"omitempty,max=8"`
	IsNegotiable bool     `json:"isNegotiable"`
}

type LocationRequest struct {
	Address     string             `json:"address" validate:"max=500"`
	Coordinates CoordinatesRequest `json:"coordinates"`
}

type CreateJobRequest struct {
	Title           string            `json:"title" validate:"required,max=200"`
	Skills          []string          `json:"skills" validate:"required,min=1,dive,required"`
	EmploymentType  string            `json:"employmentType" validate:"required,oneof=full_time part_time contract internship freelance"`
	ExperienceLevel int               `json:"experienceLevel" validate:"gte=0,lte=50"`
	Salary          SalaryRequest     `json:"salary"`
	Locations       []LocationRequest `json:"locations" validate:"required,min=1,dive"`
}

// Posting builds the domain posting owned by employerID.
func (r CreateJobRequest) Posting(employerID string) job.Posting {
	p := job.Posting{
		EmployerID:      employerID,
		Title:           r.Title,
		Skills:          r.Skills,
		EmploymentType:  job.EmploymentType(r.EmploymentType),
		ExperienceLevel: job.ExperienceLevel(r.ExperienceLevel),
		Salary: job.Salary{
			Type:         job.SalaryType(r.Salary.Type),
			Currency:     r.Salary.Currency,
			IsNegotiable: r.Salary.IsNegotiable,
		},
	}
	if r.Salary.Amount != nil {
		p.Salary.Amount = *r.Salary.Amount
	}
	for _, l := range r.Locations {
		p.Locations = append(p.Locations, job.Location{Address: l.Address, Coordinates: l.Coordinates.Point()})
	}
	return p
}

type JobResponse struct {
	ID              string         `json:"id"`
	EmployerID      string         `json:"employerId"`
	Title           string         `json:"title"`
	Skills          []string       `json:"skills"`
	EmploymentType  string         `json:"employmentType"`
	ExperienceLevel int            `json:"experienceLevel"`
	Salary          job.Salary     `json:"salary"`
	Locations       []job.Location `json:"locations"`
	Status          string         `json:"status"`
	Counters        job.Counters   `json:"counters"`
	CreatedAt       string         `json:"createdAt"`
	UpdatedAt       string         `json:"updatedAt"`
}

func NewJobResponse(p job.Posting) JobResponse {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	locs := p.Locations
	if locs == nil {
		locs = []job.Location{}
	}
	return JobResponse{
		ID:              p.ID,
		EmployerID:      p.EmployerID,
		Title:           p.Title,
		Skills:          skills,
		EmploymentType:  string(p.EmploymentType),
		ExperienceLevel: int(p.ExperienceLevel),
		Salary:          p.Salary,
		Locations:       locs,
		Status:          string(p.Status),
		Counters:        p.Counters,
		CreatedAt:       formatTime(p.CreatedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
}

type NearbyJobResponse struct {
	JobResponse
	DistanceKm float64 `json:"distanceKm"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
