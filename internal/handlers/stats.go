package handlers

import "net/http"

// Stats returns aggregate coordinator counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.coord.Snapshot())
}
