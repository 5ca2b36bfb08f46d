package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/services"
)

// GetGoals returns the foreground cache, refreshed from storage first.
func (h *Handler) GetGoals(c *fiber.Ctx) error {
	h.refresh(c)
	snap := h.Cache.Get()
	return c.JSON(fiber.Map{
		"goals":   snap.Goals,
		"version": snap.Version,
	})
}

func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	goal, err := h.Goals.Add(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrInvalidGoal):
		return badRequest(c, "Goal text is required")
	case errors.Is(err, services.ErrDuplicateGoal):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Goal already exists",
		})
	case err != nil:
		h.Logger.Error("Failed to add goal", zap.Error(err))
		return internalError(c, "Failed to create goal")
	}

	h.refresh(c)
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) DeleteGoal(c *fiber.Ctx) error {
	err := h.Goals.Remove(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrGoalNotFound) {
		return notFound(c, "Goal not found")
	}
	if err != nil {
		h.Logger.Error("Failed to remove goal", zap.Error(err))
		return internalError(c, "Failed to delete goal")
	}

	h.refresh(c)
	return c.JSON(fiber.Map{"success": true})
}

// CompleteGoal is the tap-to-complete path.
func (h *Handler) CompleteGoal(c *fiber.Ctx) error {
	rec, err := h.Goals.Complete(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrGoalNotFound) {
		return notFound(c, "Goal not found")
	}
	if err != nil {
		h.Logger.Error("Failed to complete goal", zap.Error(err))
		return internalError(c, "Failed to complete goal")
	}

	h.refresh(c)
	return c.JSON(rec)
}

func (h *Handler) GetRecords(c *fiber.Ctx) error {
	h.refresh(c)
	snap := h.Cache.Get()
	return c.JSON(fiber.Map{
		"records": snap.Records,
		"version": snap.Version,
	})
}

func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	var req models.UpdateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rec, err := h.Goals.UpdateRecord(c.UserContext(), c.Params("id"), req)
	if errors.Is(err, services.ErrRecordNotFound) {
		return notFound(c, "Record not found")
	}
	if err != nil {
		h.Logger.Error("Failed to update record", zap.Error(err))
		return internalError(c, "Failed to update record")
	}

	h.refresh(c)
	return c.JSON(rec)
}

func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	err := h.Goals.RemoveRecord(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrRecordNotFound) {
		return notFound(c, "Record not found")
	}
	if err != nil {
		h.Logger.Error("Failed to remove record", zap.Error(err))
		return internalError(c, "Failed to delete record")
	}

	h.refresh(c)
	return c.JSON(fiber.Map{"success": true})
}

// UploadRecordPhoto stores an image for a completed record and points the
// record's photoUri at it.
func (h *Handler) UploadRecordPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "No image file provided")
	}

	// Validate file type
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowed[ext] {
		return badRequest(c, "Only jpg, png, and webp images are allowed")
	}

	// Limit to 5MB
	if file.Size > 5*1024*1024 {
		return badRequest(c, "Image must be under 5MB")
	}

	if err := os.MkdirAll(h.UploadDir, 0755); err != nil {
		return internalError(c, "Failed to create uploads directory")
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveFile(file, filepath.Join(h.UploadDir, filename)); err != nil {
		return internalError(c, "Failed to save image")
	}

	photoURI := fmt.Sprintf("/uploads/%s", filename)
	rec, err := h.Goals.UpdateRecord(c.UserContext(), c.Params("id"), models.UpdateRecordRequest{PhotoURI: &photoURI})
	if errors.Is(err, services.ErrRecordNotFound) {
		_ = os.Remove(filepath.Join(h.UploadDir, filename))
		return notFound(c, "Record not found")
	}
	if err != nil {
		h.Logger.Error("Failed to attach photo", zap.Error(err))
		return internalError(c, "Failed to update record")
	}

	h.refresh(c)
	return c.JSON(rec)
}

func (h *Handler) GetUnachievedStats(c *fiber.Ctx) error {
	stats, err := h.Goals.UnachievedStats(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to load stats")
	}
	return c.JSON(fiber.Map{"stats": stats})
}
