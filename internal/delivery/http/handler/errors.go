package handler

import (
	"errors"
	"fmt"

	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain"
	"jobmatch/internal/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError translates domain errors into HTTP errors. Store failures
// keep their cause for logging but never expose it.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, domain.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, err.Error(), nil, err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	case errors.Is(err, domain.ErrDuplicateMatch):
		return middleware.NewAppError(fiber.StatusConflict, "Match creation already in progress", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	fields := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, fieldError{Field: fe.Namespace(), Rule: fe.Tag()})
	}
	msg := "Invalid request payload"
	if len(fields) > 0 {
		msg = fmt.Sprintf("validation error: %s - %s", fields[0].Field, fields[0].Rule)
	}
	return middleware.NewAppError(fiber.StatusBadRequest, msg, fields, err)
}
