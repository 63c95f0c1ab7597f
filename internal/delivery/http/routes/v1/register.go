package v1

import (
	"jobmatch/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Jobs            *handler.JobsHandler
	Seekers         *handler.SeekerHandler
	Matches         *handler.MatchHandler
	Recommendations *handler.RecommendationHandler
}

// Register mounts every /api/v1 route behind auth.
func Register(r fiber.Router, h Handlers, auth fiber.Handler) {
	if r == nil {
		return
	}

	protected := r
	if auth != nil {
		protected = r.Group("", auth)
	}

	jobs := protected.Group("/jobs")
	seekers := protected.Group("/job-seekers")
	employers := protected.Group("/employers")
	matches := protected.Group("/matches")

	if h.Jobs != nil {
		h.Jobs.RegisterRoutes(jobs)
	}
	if h.Seekers != nil {
		h.Seekers.RegisterRoutes(seekers)
	}
	if h.Matches != nil {
		h.Matches.RegisterRoutes(matches, jobs, seekers, employers)
	}
	if h.Recommendations != nil {
		h.Recommendations.RegisterRoutes(jobs, seekers)
	}
}
