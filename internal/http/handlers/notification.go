package handlers

import (
	"net/http"

	"hrpipeline/internal/http/middleware"
	"hrpipeline/internal/http/response"
	"hrpipeline/internal/notify"
)

type NotificationHandler struct {
	sink *notify.StoreSink
}

func NewNotificationHandler(sink *notify.StoreSink) *NotificationHandler {
	return &NotificationHandler{sink: sink}
}

// List returns the authenticated user's own notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	notifications, err := h.sink.ListFor(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.sink.MarkRead(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}
