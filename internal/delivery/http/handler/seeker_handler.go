package handler

import (
	"jobmatch/internal/delivery/http/dto"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type SeekerHandler struct {
	uc       usecase.SeekerUsecase
	validate *validator.Validate
}

func NewSeekerHandler(uc usecase.SeekerUsecase, v *validator.Validate) *SeekerHandler {
	return &SeekerHandler{uc: uc, validate: v}
}

func (h *SeekerHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("", h.CreateProfile)
	r.Get("/:seeker_id", h.GetProfile)
	r.Patch("/:seeker_id/location", h.UpdateLocation)
}

func (h *SeekerHandler) CreateProfile(c fiber.Ctx) error {
	var req dto.CreateSeekerRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	p, err := h.uc.CreateProfile(c.Context(), req.Profile())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Profile created", dto.NewSeekerResponse(p))
}

func (h *SeekerHandler) GetProfile(c fiber.Ctx) error {
	id, err := pathParam(c, "seeker_id")
	if err != nil {
		return err
	}
	p, err := h.uc.GetProfile(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSeekerResponse(p))
}

func (h *SeekerHandler) UpdateLocation(c fiber.Ctx) error {
	id, err := pathParam(c, "seeker_id")
	if err != nil {
		return err
	}
	var req dto.UpdateLocationRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return err
	}
	p, err := h.uc.UpdateLocation(c.Context(), id, req.Location.Point(), req.SearchRadiusKm)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "Location updated", dto.NewSeekerResponse(p))
}
