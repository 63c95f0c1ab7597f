package handler

import (
	"strings"

	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/search"
	"jobmatch/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	uc       usecase.JobUsecase
	limits   Limits
	validate *validator.Validate
}

func NewJobsHandler(uc usecase.JobUsecase, limits Limits, v *validator.Validate) *JobsHandler {
	return &JobsHandler{uc: uc, limits: limits, validate: v}
}

// RegisterRoutes mounts the posting routes. /nearby must precede /:job_id.
func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("", h.CreateJob)
	r.Get("/nearby", h.SearchNearby)
	r.Get("/:job_id", h.GetJob)
	r.Patch("/:job_id/close", h.CloseJob)
	r.Post("/:job_id/counters/:field", h.IncrementCounter)
}

func (h *JobsHandler) CreateJob(c fiber.Ctx) error {
	employerID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateJobRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	p, err := h.uc.CreateJob(c.Context(), req.Posting(employerID))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Job created", dto.NewJobResponse(p))
}

func (h *JobsHandler) GetJob(c fiber.Ctx) error {
	id, err := pathParam(c, "job_id")
	if err != nil {
		return err
	}
	p, err := h.uc.GetJob(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(p))
}

func (h *JobsHandler) CloseJob(c fiber.Ctx) error {
	id, err := pathParam(c, "job_id")
	if err != nil {
		return err
	}
	p, err := h.uc.CloseJob(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job closed", dto.NewJobResponse(p))
}

func (h *JobsHandler) IncrementCounter(c fiber.Ctx) error {
	id, err := pathParam(c, "job_id")
	if err != nil {
		return err
	}
	field, err := pathParam(c, "field")
	if err != nil {
		return err
	}
	delta, err := parseQueryIntStrict(c, "delta", 1)
	if err != nil {
		return err
	}
	if err := h.uc.IncrementCounter(c.Context(), id, field, int64(delta)); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *JobsHandler) SearchNearby(c fiber.Ctx) error {
	lat, err := requireQueryFloat(c, "lat")
	if err != nil {
		return err
	}
	lng, err := requireQueryFloat(c, "lng")
	if err != nil {
		return err
	}
	radius, err := requireQueryFloat(c, "radius_km")
	if err != nil {
		return err
	}
	limit, err := parseLimit(c, h.limits)
	if err != nil {
		return err
	}
	exact, err := parseQueryBool(c, "exact", false)
	if err != nil {
		return err
	}
	preds, err := parsePredicates(c)
	if err != nil {
		return err
	}

	items, err := h.uc.SearchNearby(c.Context(), usecase.NearbyParams{
		Center:     geo.Point{Latitude: lat, Longitude: lng},
		RadiusKm:   radius,
		Limit:      limit,
		Exact:      exact,
		Predicates: preds,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	out := make([]dto.NearbyJobResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NearbyJobResponse{JobResponse: dto.NewJobResponse(it.Posting), DistanceKm: it.DistanceKm})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

// parsePredicates reads the optional posting filters shared by the search
// and recommendation routes.
func parsePredicates(c fiber.Ctx) (search.Predicates, error) {
	var p search.Predicates

	if s := strings.TrimSpace(c.Query("status")); s != "" {
		st, err := job.ParseStatus(s)
		if err != nil {
			return p, mapUsecaseError(err)
		}
		p.Status = st
	}
	if s := strings.TrimSpace(c.Query("employment_type")); s != "" {
		et, err := job.ParseEmploymentType(s)
		if err != nil {
			return p, mapUsecaseError(err)
		}
		p.EmploymentType = et
	}
	if strings.TrimSpace(c.Query("experience_level")) != "" {
		lvl, err := parseQueryIntStrict(c, "experience_level", 0)
		if err != nil {
			return p, err
		}
		el := job.ExperienceLevel(lvl)
		p.ExperienceLevel = &el
	}

	var err error
	if p.SalaryMin, err = parseQueryFloat(c, "salary_min"); err != nil {
		return p, err
	}
	if p.SalaryMax, err = parseQueryFloat(c, "salary_max"); err != nil {
		return p, err
	}
	p.Skills = parseSkillsQuery(c.Query("skills"))

	if err := p.Validate(); err != nil {
		return p, mapUsecaseError(err)
	}
	return p, nil
}
