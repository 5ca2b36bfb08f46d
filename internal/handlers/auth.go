package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnold/goalfence-api/internal/middleware"
)

type deviceLoginRequest struct {
	Passphrase string `json:"passphrase"`
	DeviceID   string `json:"deviceId"`
}

// DeviceLogin exchanges the device passphrase for a session token. A device
// keeps its id across logins when it sends it back.
func (h *Handler) DeviceLogin(c *fiber.Ctx) error {
	var req deviceLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Passphrase == "" {
		return badRequest(c, "Passphrase is required")
	}

	if h.PassphraseHash == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Device login is not configured",
		})
	}

	// Check passphrase
	if err := bcrypt.CompareHashAndPassword([]byte(h.PassphraseHash), []byte(req.Passphrase)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		deviceID = uuid.New()
	}

	token, err := middleware.GenerateToken(h.JWTSecret, deviceID)
	if err != nil {
		return internalError(c, "Failed to generate token")
	}

	h.Logger.Info("Device logged in", zap.String("device", deviceID.String()))
	return c.JSON(fiber.Map{
		"token":    token,
		"deviceId": deviceID,
	})
}
