package handler

import (
	"fmt"
	"strconv"
	"strings"

	"jobmatch/internal/config"
	"jobmatch/internal/delivery/http/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// Limits bounds list sizes and the default ranking threshold.
type Limits struct {
	Default         int
	Max             int
	DefaultMinScore float64
}

func LimitsFromConfig(cfg config.MatchConfig) Limits {
	l := Limits{Default: cfg.DefaultLimit, Max: cfg.MaxLimit, DefaultMinScore: cfg.DefaultMinScore}
	if l.Default <= 0 {
		l.Default = 20
	}
	if l.Max < l.Default {
		l.Max = l.Default
	}
	return l
}

func bindAndValidate(c fiber.Ctx, v *validator.Validate, out interface{}) error {
	if err := c.Bind().Body(out); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if err := v.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

func requireUserID(c fiber.Ctx) (string, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return "", middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func pathParam(c fiber.Ctx, key string) (string, error) {
	v := strings.TrimSpace(c.Params(key))
	if v == "" {
		return "", middleware.NewAppError(fiber.StatusBadRequest, key+" is required", nil, nil)
	}
	return v, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, badQuery(key, err)
	}
	return v, nil
}

func parseQueryFloat(c fiber.Ctx, key string) (*float64, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, badQuery(key, err)
	}
	return &v, nil
}

func requireQueryFloat(c fiber.Ctx, key string) (float64, error) {
	v, err := parseQueryFloat(c, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, key+" is required", nil, nil)
	}
	return *v, nil
}

func parseQueryBool(c fiber.Ctx, key string, defaultVal bool) (bool, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, badQuery(key, err)
	}
	return v, nil
}

// parseLimit reads ?limit, falling back to the default and capping at the
// configured maximum.
func parseLimit(c fiber.Ctx, l Limits) (int, error) {
	limit, err := parseQueryIntStrict(c, "limit", l.Default)
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "limit must be > 0", nil, nil)
	}
	if limit > l.Max {
		limit = l.Max
	}
	return limit, nil
}

func parseMinScore(c fiber.Ctx, l Limits) (float64, error) {
	v, err := parseQueryFloat(c, "min_score")
	if err != nil {
		return 0, err
	}
	if v == nil {
		return l.DefaultMinScore, nil
	}
	return *v, nil
}

func parseSkillsQuery(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func badQuery(key string, err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", key), nil, err)
}
