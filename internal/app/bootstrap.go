package app

import (
	"context"
	"fmt"
	"strings"

	"jobmatch/internal/config"
	"jobmatch/internal/delivery/http/handler"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/delivery/http/routes"
	v1 "jobmatch/internal/delivery/http/routes/v1"
	"jobmatch/internal/docstore"
	"jobmatch/internal/pkg/jwt"
	"jobmatch/internal/ws"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP surface on top of an initialized container.
func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, c)

	verifier := jwt.NewHMACVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Leeway)
	authMw := middleware.NewAuthMiddleware(verifier)

	validate := validator.New()
	limits := handler.LimitsFromConfig(cfg.Match)

	checks := map[string]handler.Checker{"store": nil, "redis": nil}
	if p, ok := c.Store.(docstore.Pinger); ok {
		checks["store"] = p
	}
	if c.Cache.Available() {
		checks["redis"] = c.Cache
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(checks),
		v1.Handlers{
			Jobs:            handler.NewJobsHandler(c.Jobs, limits, validate),
			Seekers:         handler.NewSeekerHandler(c.Seekers, validate),
			Matches:         handler.NewMatchHandler(c.Matches, limits, validate),
			Recommendations: handler.NewRecommendationHandler(c.Recommendations, limits),
		},
		authMw.Middleware(),
		ws.NewHandler(c.Hub, verifier, c.Logger),
	)
	registry.Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and the HTTP app and starts the hub. The
// returned cleanup stops the hub and releases the container.
func Bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, func(context.Context) error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	cleanup := func(ctx context.Context) error {
		stopHub()
		return c.Close(ctx)
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(c.Logger)
	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
