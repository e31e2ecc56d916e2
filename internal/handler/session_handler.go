package handler

import (
	"errors"

	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/service"
	"exploresync-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionHandler exposes the websocket entrypoint plus a couple of REST
// snapshots for clients that land on a group page before their socket is up.
type SessionHandler struct {
	hub       *session.Hub
	locations *service.LocationService
	logger    logger.ILogger
}

func NewSessionHandler(hub *session.Hub, locations *service.LocationService, log logger.ILogger) *SessionHandler {
	return &SessionHandler{
		hub:       hub,
		locations: locations,
		logger:    log,
	}
}

// ServeWs upgrades the request and hands the connection to the hub. The
// connection joins a group later via the join event; the handshake itself
// carries no identity.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("SessionHandler", "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		session.ServeWs(h.hub, conn)
		h.logger.Info("SessionHandler", "WebSocket session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
	})(c)
}

// GetGroupLocations returns the stored last known positions of a group's
// members.
func (h *SessionHandler) GetGroupLocations(c *fiber.Ctx) error {
	groupId := c.Params("id")

	locations, err := h.locations.GroupLocations(c.UserContext(), groupId)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": locations})
}

// GetOnlineUsers returns the usernames currently connected to a group room.
func (h *SessionHandler) GetOnlineUsers(c *fiber.Ctx) error {
	groupId := c.Params("id")
	return c.JSON(fiber.Map{"onlineUsers": h.hub.Registry().MembersOf(groupId)})
}

// RegisterRoutes registers the session routes.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	groups := router.Group("/groups")
	groups.Get("/:id/locations", h.GetGroupLocations)
	groups.Get("/:id/online", h.GetOnlineUsers)

	// WebSocket
	router.Get("/ws", h.ServeWs)
}
