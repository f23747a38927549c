package http

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/duchoang-vn/chatdesk-server/internal/chat"
	"github.com/duchoang-vn/chatdesk-server/internal/proto"
)

// APIHandlers provides the read-only query endpoints consumed by the
// presentation layer, plus the administrative mutations.
type APIHandlers struct {
	registry *chat.Registry
	history  *chat.History
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(registry *chat.Registry, history *chat.History, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		registry: registry,
		history:  history,
		log:      logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomsResponse lists the rooms that currently have occupants.
type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// OccupantsResponse lists the usernames currently in a room.
type OccupantsResponse struct {
	Room      string   `json:"room"`
	Occupants []string `json:"occupants"`
}

// MessagesResponse carries a room's logged messages.
type MessagesResponse struct {
	Room     string                 `json:"room"`
	Messages []proto.MessagePayload `json:"messages"`
}

// StatsResponse summarizes registry state for the admin panel.
type StatsResponse struct {
	ActiveRooms       int `json:"active_rooms"`
	KnownParticipants int `json:"known_participants"`
}

// ParticipantResponse is the wire form of a participant record.
type ParticipantResponse struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	CurrentRoom string `json:"current_room,omitempty"`
}

// UpdateRoleRequest changes a participant's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateStatusRequest changes a participant's presence status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListRooms handles GET /api/rooms.
func (h *APIHandlers) ListRooms(c *gin.Context) {
	rooms := h.registry.ActiveRooms()
	sort.Strings(rooms)
	c.JSON(http.StatusOK, RoomsResponse{Rooms: rooms})
}

// RoomOccupants handles GET /api/rooms/:room/occupants.
func (h *APIHandlers) RoomOccupants(c *gin.Context) {
	room := c.Param("room")
	occupants := h.registry.Occupants(room)
	sort.Strings(occupants)
	c.JSON(http.StatusOK, OccupantsResponse{Room: room, Occupants: occupants})
}

// RoomMessages handles GET /api/rooms/:room/messages?limit=N. Without a
// limit the full log is returned.
func (h *APIHandlers) RoomMessages(c *gin.Context) {
	room := c.Param("room")

	var msgs []chat.Message
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		msgs = h.history.Recent(room, limit)
	} else {
		msgs = h.history.All(room)
	}

	payloads := make([]proto.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		payloads = append(payloads, messagePayload(m))
	}
	c.JSON(http.StatusOK, MessagesResponse{Room: room, Messages: payloads})
}

// Stats handles GET /api/stats.
func (h *APIHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		ActiveRooms:       len(h.registry.ActiveRooms()),
		KnownParticipants: h.registry.TotalKnownParticipants(),
	})
}

// GetParticipant handles GET /api/users/:username.
func (h *APIHandlers) GetParticipant(c *gin.Context) {
	username := c.Param("username")

	user, ok := h.registry.Lookup(username)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown participant"})
		return
	}
	c.JSON(http.StatusOK, ParticipantResponse{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Status:      string(user.Status),
		CurrentRoom: user.CurrentRoom,
	})
}

// UpdateRole handles PUT /api/users/:username/role. Unknown participants are
// absorbed as a no-op, matching the registry contract.
func (h *APIHandlers) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	role, ok := chat.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown role"})
		return
	}

	h.registry.SetRole(c.Param("username"), role)
	c.Status(http.StatusNoContent)
}

// UpdateStatus handles PUT /api/users/:username/status.
func (h *APIHandlers) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status, ok := chat.ParseStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown status"})
		return
	}

	h.registry.SetStatus(c.Param("username"), status)
	c.Status(http.StatusNoContent)
}

// Reset handles POST /api/admin/reset. Clears all rooms, participants, and
// history.
func (h *APIHandlers) Reset(c *gin.Context) {
	h.registry.Reset()
	h.history.Reset()
	h.log.Info().Msg("registry and history reset")
	c.Status(http.StatusNoContent)
}
