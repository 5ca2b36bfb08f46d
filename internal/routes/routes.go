package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arnold/goalfence-api/internal/handlers"
	"github.com/arnold/goalfence-api/internal/middleware"
)

func Setup(app *fiber.App, h *handlers.Handler, gatherer prometheus.Gatherer) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Static("/uploads", h.UploadDir)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/device", h.DeviceLogin)

	protected := api.Group("/", middleware.Protected(h.JWTSecret))

	protected.Get("/home", h.GetHome)
	protected.Put("/home", h.SetHome)
	protected.Delete("/home", h.ClearHome)

	goals := protected.Group("/goals")
	goals.Get("/", h.GetGoals)
	goals.Post("/", h.CreateGoal)
	goals.Delete("/:id", h.DeleteGoal)
	goals.Post("/:id/complete", h.CompleteGoal)

	records := protected.Group("/records")
	records.Get("/", h.GetRecords)
	records.Patch("/:id", h.UpdateRecord)
	records.Delete("/:id", h.DeleteRecord)
	records.Post("/:id/photo", h.UploadRecordPhoto)

	protected.Get("/stats/unachieved", h.GetUnachievedStats)

	protected.Get("/settings/reminder", h.GetReminder)
	protected.Put("/settings/reminder", h.SetReminder)

	protected.Get("/daily-setup", h.GetDailySetup)
	protected.Post("/daily-setup/done", h.CompleteDailySetup)
	protected.Post("/daily-setup/rollover", h.Rollover)

	protected.Post("/positions", h.PostPosition)
	protected.Get("/presence", h.GetPresence)

	geofence := protected.Group("/geofence")
	geofence.Get("/", h.GetGeofence)
	geofence.Post("/monitoring", h.SetMonitoring)
	geofence.Post("/events", h.PostGeofenceEvent)

	protected.Put("/device/permissions", h.SetPermissions)
	protected.Post("/device-token", h.RegisterDeviceToken)
	protected.Post("/app/resume", h.Resume)

	// WebSocket for sync and presence updates
	app.Use("/ws", h.WebSocketUpgrade())
	app.Get("/ws", websocket.New(h.HandleWebSocket))
}
