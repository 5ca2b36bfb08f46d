package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/geofence"
	"github.com/arnold/goalfence-api/internal/models"
)

type setHomeRequest struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	UseCurrent bool     `json:"useCurrent"`
}

func (h *Handler) GetHome(c *fiber.Ctx) error {
	home, err := h.Repo.Home(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to load home")
	}
	return c.JSON(fiber.Map{"home": home})
}

// SetHome saves the home point, either from the body or from the device's
// current position. Saving succeeds even if monitoring cannot start.
func (h *Handler) SetHome(c *fiber.Ctx) error {
	var req setHomeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var home *models.Coordinate
	if req.UseCurrent {
		pos, err := h.Positions.CurrentPosition(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Current position is not available yet",
			})
		}
		home = &pos
	} else if req.Latitude != nil && req.Longitude != nil {
		home = geo.Clean(&models.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
	}
	if home == nil {
		return badRequest(c, "A valid latitude and longitude are required")
	}

	set, err := h.Coordinator.SetHome(c.UserContext(), *home)
	return h.monitoringResponse(c, fiber.Map{"home": home}, set, err)
}

func (h *Handler) ClearHome(c *fiber.Ctx) error {
	set, err := h.Coordinator.ClearHome(c.UserContext())
	return h.monitoringResponse(c, fiber.Map{"home": nil}, set, err)
}

// monitoringResponse reports the region set after a change. A missing
// permission is not a failure of the request itself.
func (h *Handler) monitoringResponse(c *fiber.Ctx, body fiber.Map, set geofence.RegionSet, err error) error {
	body["regions"] = set.Regions
	body["monitoring"] = "ok"
	switch {
	case errors.Is(err, geofence.ErrPermissionDenied):
		body["monitoring"] = "permission_denied"
	case err != nil:
		h.Logger.Error("Failed to update monitoring", zap.Error(err))
		return internalError(c, "Failed to update monitoring")
	}
	return c.JSON(body)
}
