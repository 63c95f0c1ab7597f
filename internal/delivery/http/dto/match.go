package dto

import (
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/matching"
)

type CreateMatchRequest struct {
	JobID       string `json:"jobId" validate:"required"`
	JobSeekerID string `json:"jobSeekerId" validate:"required"`
	EmployerID  string `json:"employerId"`
}

type UpdateMatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected"`
}

type MatchResponse struct {
	ID          string         `json:"id"`
	JobID       string         `json:"jobId"`
	JobSeekerID string         `json:"jobSeekerId"`
	EmployerID  string         `json:"employerId"`
	Score       float64        `json:"score"`
	Criteria    match.Criteria `json:"criteria"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

func NewMatchResponse(m match.Result) MatchResponse {
	return MatchResponse{
		ID:          m.ID,
		JobID:       m.JobID,
		JobSeekerID: m.JobSeekerID,
		EmployerID:  m.EmployerID,
		Score:       m.Score,
		Criteria:    m.Criteria,
		Status:      string(m.Status),
		CreatedAt:   formatTime(m.CreatedAt),
		UpdatedAt:   formatTime(m.UpdatedAt),
	}
}

func NewMatchListResponse(items []match.Result) []MatchResponse {
	out := make([]MatchResponse, 0, len(items))
	for _, m := range items {
		out = append(out, NewMatchResponse(m))
	}
	return out
}

type RecommendationResponse struct {
	Job   JobResponse     `json:"job"`
	Score matching.Result `json:"score"`
}

type CandidateResponse struct {
	JobSeeker SeekerResponse  `json:"jobSeeker"`
	Score     matching.Result `json:"score"`
}
