package handlers

import (
	"net/http"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/middleware"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.ListForUser(r.Context(), middleware.UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"count":         len(notifications),
		"notifications": notifications,
	})
}

func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["id"]
	if err := h.service.MarkRead(r.Context(), middleware.UserID(r), notificationID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.ClearForUser(r.Context(), middleware.UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "deletedCount": deleted})
}
