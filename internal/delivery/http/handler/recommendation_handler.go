package handler

import (
	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type RecommendationHandler struct {
	uc     usecase.RecommendationUsecase
	limits Limits
}

func NewRecommendationHandler(uc usecase.RecommendationUsecase, limits Limits) *RecommendationHandler {
	return &RecommendationHandler{uc: uc, limits: limits}
}

func (h *RecommendationHandler) RegisterRoutes(jobs, seekers fiber.Router) {
	if jobs != nil {
		jobs.Get("/:job_id/candidates", h.CandidatesForJob)
	}
	if seekers != nil {
		seekers.Get("/:seeker_id/recommendations", h.RecommendJobs)
	}
}

func (h *RecommendationHandler) RecommendJobs(c fiber.Ctx) error {
	seekerID, err := pathParam(c, "seeker_id")
	if err != nil {
		return err
	}
	limit, err := parseLimit(c, h.limits)
	if err != nil {
		return err
	}
	minScore, err := parseMinScore(c, h.limits)
	if err != nil {
		return err
	}
	preds, err := parsePredicates(c)
	if err != nil {
		return err
	}

	recs, err := h.uc.RecommendJobs(c.Context(), seekerID, usecase.RecommendParams{
		Predicates: preds,
		Limit:      limit,
		MinScore:   minScore,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	out := make([]dto.RecommendationResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.RecommendationResponse{Job: dto.NewJobResponse(r.Posting), Score: r.Result})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *RecommendationHandler) CandidatesForJob(c fiber.Ctx) error {
	jobID, err := pathParam(c, "job_id")
	if err != nil {
		return err
	}
	limit, err := parseLimit(c, h.limits)
	if err != nil {
		return err
	}
	minScore, err := parseMinScore(c, h.limits)
	if err != nil {
		return err
	}

	cands, err := h.uc.CandidatesForJob(c.Context(), jobID, limit, minScore)
	if err != nil {
		return mapUsecaseError(err)
	}

	out := make([]dto.CandidateResponse, 0, len(cands))
	for _, cd := range cands {
		out = append(out, dto.CandidateResponse{JobSeeker: dto.NewSeekerResponse(cd.Profile), Score: cd.Result})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
