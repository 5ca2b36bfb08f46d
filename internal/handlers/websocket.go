package handlers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/middleware"
)

// Event types sent over WebSocket
const (
	EventGoalsSynced    = "goals_synced"
	EventPresenceStatus = "presence_status"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// connection wraps a websocket connection with its device ID
type connection struct {
	conn     *websocket.Conn
	deviceID uuid.UUID
}

// Hub fans events out to every connected client.
type Hub struct {
	mu     sync.Mutex
	conns  map[*connection]bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{conns: make(map[*connection]bool), logger: logger}
}

func (h *Hub) register(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	h.logger.Debug("WS register", zap.String("device", conn.deviceID.String()), zap.Int("total", len(h.conns)))
}

func (h *Hub) unregister(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	h.logger.Debug("WS unregister", zap.String("device", conn.deviceID.String()), zap.Int("remaining", len(h.conns)))
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast sends an event to all connections. Writes are serialized since a
// websocket connection supports one writer at a time.
func (h *Hub) Broadcast(event WSEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conns) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("WS broadcast marshal error", zap.Error(err))
		return
	}

	for c := range h.conns {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("WS write error", zap.Error(err))
		}
	}
}

func (h *Hub) send(conn *connection, event WSEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("WS marshal error", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := conn.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		h.logger.Debug("WS write error", zap.Error(err))
	}
}

// WebSocketUpgrade is the middleware that checks the upgrade request and validates JWT
func (h *Handler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(h.JWTSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("deviceId", claims.DeviceID)
		return c.Next()
	}
}

// HandleWebSocket registers the client, sends it the cached goals and asks
// for an immediate sync.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	deviceID, ok := c.Locals("deviceId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c, deviceID: deviceID}
	h.Hub.register(conn)
	defer h.Hub.unregister(conn)

	h.Hub.send(conn, WSEvent{Type: EventGoalsSynced, Data: h.Cache.Get()})
	h.Syncer.Resume()

	// Keep connection alive: read messages (client sends pings/keepalives)
	for {
		_, _, err := c.ReadMessage()
		if err != nil {
			break
		}
	}
}
