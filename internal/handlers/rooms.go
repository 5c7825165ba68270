package handlers

import (
	"net/http"

	"github.com/relaychat/relay/internal/chat"
)

// RoomListResponse represents the rooms list response.
type RoomListResponse struct {
	Rooms []chat.RoomSummary `json:"rooms"`
	Total int                `json:"total"`
}

// Rooms handles listing all known rooms in creation order.
func (h *Handler) Rooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.coord.Rooms()
	h.JSON(w, http.StatusOK, RoomListResponse{
		Rooms: rooms,
		Total: len(rooms),
	})
}
