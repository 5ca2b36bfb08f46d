package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/models"
)

func (h *Handler) GetGeofence(c *fiber.Ctx) error {
	return c.JSON(h.Coordinator.Status())
}

func (h *Handler) SetMonitoring(c *fiber.Ctx) error {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return badRequest(c, "enabled is required")
	}

	set, err := h.Coordinator.SetEnabled(c.UserContext(), *req.Enabled)
	return h.monitoringResponse(c, fiber.Map{"enabled": *req.Enabled}, set, err)
}

// PostGeofenceEvent accepts an Enter/Exit callback reported by the device.
// It always answers 202: processing is asynchronous and a failure must never
// surface to the host as a failed invocation.
func (h *Handler) PostGeofenceEvent(c *fiber.Ctx) error {
	var ev models.EventRecord
	if err := c.BodyParser(&ev); err != nil {
		h.Logger.Warn("Unreadable geofence event", zap.Error(err))
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": false})
	}

	queued := h.Monitor.Deliver(ev)
	if !queued {
		h.Logger.Debug("Geofence event not queued",
			zap.String("region", ev.RegionID),
			zap.String("event", string(ev.EventType)))
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": queued})
}

type positionRequest struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ObservedAt time.Time `json:"observedAt"`
}

// PostPosition takes a device fix. It feeds the region monitor and returns a
// fresh foreground sample.
func (h *Handler) PostPosition(c *fiber.Ctx) error {
	var req positionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pos := geo.Clean(&models.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude})
	if pos == nil {
		return badRequest(c, "A valid latitude and longitude are required")
	}

	h.Positions.Report(*pos, req.ObservedAt)
	events := h.Monitor.Observe(*pos)
	status := h.Poller.Sample(c.UserContext())

	return c.JSON(fiber.Map{
		"status": status,
		"events": events,
	})
}

// GetPresence returns the persisted per-region presence and the latest
// foreground sample.
func (h *Handler) GetPresence(c *fiber.Ctx) error {
	state, err := h.Presence.All(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to load presence")
	}
	return c.JSON(fiber.Map{
		"regions": state,
		"status":  h.Poller.Last(),
	})
}
