package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geofence"
	"github.com/arnold/goalfence-api/internal/poller"
	"github.com/arnold/goalfence-api/internal/presence"
	"github.com/arnold/goalfence-api/internal/reconcile"
	"github.com/arnold/goalfence-api/internal/services"
	"github.com/arnold/goalfence-api/internal/storage"
)

// Handler carries the dependencies of the HTTP and WebSocket endpoints.
type Handler struct {
	Repo           *storage.Repository
	Goals          *services.GoalService
	Coordinator    *geofence.Coordinator
	Monitor        *geofence.LocalMonitor
	Presence       *presence.StateStore
	Poller         *poller.Poller
	Positions      *poller.LatestPosition
	Syncer         *reconcile.Syncer
	Cache          *reconcile.Cache
	Hub            *Hub
	JWTSecret      string
	PassphraseHash string
	UploadDir      string
	Logger         *zap.Logger
}

// refresh runs a sync check right after a foreground write, so clients and
// the monitored region set see the change without waiting for the next tick.
func (h *Handler) refresh(c *fiber.Ctx) {
	if _, err := h.Syncer.Check(c.UserContext()); err != nil {
		h.Logger.Warn("Sync after write failed", zap.Error(err))
	}
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": msg,
	})
}
