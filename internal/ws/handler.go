package ws

import (
	"net/http"
	"strings"

	"jobmatch/internal/logger"
	"jobmatch/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	verifier jwt.Verifier
	logger   *zap.Logger
}

// NewHandler serves the match event stream. With a nil verifier every
// connection is anonymous and receives all events.
func NewHandler(hub *Hub, verifier jwt.Verifier, log *zap.Logger) *Handler {
	return &Handler{hub: hub, verifier: verifier, logger: logger.OrNop(log).Named("ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleMatchesWS upgrades to a websocket scoped to the token subject.
// Browsers cannot set headers on upgrade, so access_token is accepted as a
// query parameter too.
func (h *Handler) HandleMatchesWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	subject := ""
	if h.verifier != nil {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = strings.TrimSpace(c.Query("access_token"))
		}
		if token == "" {
			return fiber.ErrUnauthorized
		}
		claims, err := h.verifier.ValidateToken(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		subject = claims.UserID()
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(h.hub, conn, subject)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
