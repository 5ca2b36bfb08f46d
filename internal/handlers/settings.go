package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/services"
)

func (h *Handler) GetReminder(c *fiber.Ctx) error {
	hhmm, err := h.Goals.ReminderTime(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to load reminder time")
	}
	return c.JSON(fiber.Map{"timeHHMM": hhmm})
}

func (h *Handler) SetReminder(c *fiber.Ctx) error {
	var req struct {
		TimeHHMM string `json:"timeHHMM"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	err := h.Goals.SetReminderTime(c.UserContext(), req.TimeHHMM)
	if errors.Is(err, services.ErrInvalidReminder) {
		return badRequest(c, "Reminder time must be HH:MM")
	}
	if err != nil {
		return internalError(c, "Failed to save reminder time")
	}
	return c.JSON(fiber.Map{"timeHHMM": req.TimeHHMM})
}

// GetDailySetup tells the client whether to prompt for today's goals. A due
// prompt rolls over the previous days' goals first.
func (h *Handler) GetDailySetup(c *fiber.Ctx) error {
	st, err := h.Goals.DailySetup(c.UserContext())
	if err != nil {
		h.Logger.Error("Failed to check daily setup", zap.Error(err))
		return internalError(c, "Failed to check daily setup")
	}
	if st.RolledOver > 0 {
		h.refresh(c)
	}
	return c.JSON(st)
}

func (h *Handler) CompleteDailySetup(c *fiber.Ctx) error {
	var req models.CompleteDailySetupRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	added, err := h.Goals.CompleteDailySetup(c.UserContext(), req.Todos)
	if err != nil {
		h.Logger.Error("Failed to finish daily setup", zap.Error(err))
		return internalError(c, "Failed to finish daily setup")
	}

	h.refresh(c)
	return c.JSON(fiber.Map{"goals": added})
}

func (h *Handler) Rollover(c *fiber.Ctx) error {
	n, err := h.Goals.Rollover(c.UserContext())
	if err != nil {
		h.Logger.Error("Failed to roll over goals", zap.Error(err))
		return internalError(c, "Failed to roll over goals")
	}

	h.refresh(c)
	return c.JSON(fiber.Map{"rolledOver": n})
}
