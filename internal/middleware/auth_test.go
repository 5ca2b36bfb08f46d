package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtected(t *testing.T) {
	const secret = "test-secret"
	deviceID := uuid.New()

	app := fiber.New()
	app.Get("/", Protected(secret), func(c *fiber.Ctx) error {
		return c.SendString(GetDeviceID(c).String())
	})

	token, err := GenerateToken(secret, deviceID)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", token, fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + mustToken(t, "other", deviceID), fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func mustToken(t *testing.T, secret string, id uuid.UUID) string {
	t.Helper()
	tok, err := GenerateToken(secret, id)
	require.NoError(t, err)
	return tok
}
