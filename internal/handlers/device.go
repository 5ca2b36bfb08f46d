package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geofence"
	"github.com/arnold/goalfence-api/internal/models"
)

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "Token is required")
	}

	if err := h.Repo.SaveDeviceToken(c.UserContext(), req.Token); err != nil {
		return internalError(c, "Failed to save token")
	}

	return c.JSON(fiber.Map{"success": true})
}

// SetPermissions records the location grants the device reports and re-syncs
// monitoring, which only runs with both grants.
func (h *Handler) SetPermissions(c *fiber.Ctx) error {
	var req models.LocationPermissions
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.Repo.SaveLocationPermissions(c.UserContext(), req); err != nil {
		return internalError(c, "Failed to save permissions")
	}
	h.Positions.SetForeground(req.Foreground)

	set, err := h.Coordinator.Sync(c.UserContext())
	return h.monitoringResponse(c, fiber.Map{"permissions": req}, set, err)
}

// Resume is called when the app comes back to the foreground.
func (h *Handler) Resume(c *fiber.Ctx) error {
	h.Syncer.Resume()
	if _, err := h.Coordinator.Sync(c.UserContext()); err != nil && !errors.Is(err, geofence.ErrPermissionDenied) {
		h.Logger.Warn("Region sync on resume failed", zap.Error(err))
	}
	return c.JSON(fiber.Map{"success": true})
}
