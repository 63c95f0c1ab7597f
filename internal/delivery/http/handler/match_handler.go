package handler

import (
	"context"
	"strings"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type MatchHandler struct {
	uc       usecase.MatchUsecase
	limits   Limits
	validate *validator.Validate
}

func NewMatchHandler(uc usecase.MatchUsecase, limits Limits, v *validator.Validate) *MatchHandler {
	return &MatchHandler{uc: uc, limits: limits, validate: v}
}

func (h *MatchHandler) RegisterRoutes(matches, jobs, seekers, employers fiber.Router) {
	if matches != nil {
		matches.Post("", h.CreateMatch)
		matches.Get("/:match_id", h.GetMatch)
		matches.Patch("/:match_id/status", h.UpdateStatus)
	}
	if jobs != nil {
		jobs.Get("/:job_id/matches", h.ListByJob)
		jobs.Get("/:job_id/score/:seeker_id", h.ScorePair)
	}
	if seekers != nil {
		seekers.Get("/:seeker_id/matches", h.ListByJobSeeker)
	}
	if employers != nil {
		employers.Get("/:employer_id/matches", h.ListByEmployer)
	}
}

// CreateMatch answers 201 for a new match and 200 when the pair already
// had one.
func (h *MatchHandler) CreateMatch(c fiber.Ctx) error {
	var req dto.CreateMatchRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	m, created, err := h.uc.CreateMatch(c.Context(), usecase.CreateMatchInput{
		JobID:       req.JobID,
		JobSeekerID: req.JobSeekerID,
		EmployerID:  req.EmployerID,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	if created {
		return response.Success(c, fiber.StatusCreated, "Match created", dto.NewMatchResponse(m))
	}
	return response.Success(c, fiber.StatusOK, "Match already exists", dto.NewMatchResponse(m))
}

func (h *MatchHandler) GetMatch(c fiber.Ctx) error {
	id, err := pathParam(c, "match_id")
	if err != nil {
		return err
	}
	m, err := h.uc.GetMatch(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

func (h *MatchHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := pathParam(c, "match_id")
	if err != nil {
		return err
	}
	var req dto.UpdateMatchStatusRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	st, err := match.ParseStatus(req.Status)
	if err != nil {
		return mapUsecaseError(err)
	}
	m, err := h.uc.UpdateMatchStatus(c.Context(), id, st)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Match updated", dto.NewMatchResponse(m))
}

func (h *MatchHandler) ScorePair(c fiber.Ctx) error {
	jobID, err := pathParam(c, "job_id")
	if err != nil {
		return err
	}
	seekerID, err := pathParam(c, "seeker_id")
	if err != nil {
		return err
	}
	res, err := h.uc.ScorePair(c.Context(), jobID, seekerID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *MatchHandler) ListByJob(c fiber.Ctx) error {
	return h.list(c, "job_id", h.uc.ListByJob)
}

func (h *MatchHandler) ListByJobSeeker(c fiber.Ctx) error {
	return h.list(c, "seeker_id", h.uc.ListByJobSeeker)
}

func (h *MatchHandler) ListByEmployer(c fiber.Ctx) error {
	return h.list(c, "employer_id", h.uc.ListByEmployer)
}

func (h *MatchHandler) list(c fiber.Ctx, key string, fn func(context.Context, string, usecase.ListMatchesParams) ([]match.Result, error)) error {
	id, err := pathParam(c, key)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c, h.limits)
	if err != nil {
		return err
	}
	params := usecase.ListMatchesParams{Limit: limit}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		st, err := match.ParseStatus(s)
		if err != nil {
			return mapUsecaseError(err)
		}
		params.Status = st
	}

	items, err := fn(c.Context(), id, params)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchListResponse(items))
}
