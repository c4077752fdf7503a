package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/middleware"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/services"

	"github.com/gorilla/mux"
)

type ActivityHandler struct {
	activities *services.ActivityService
	groups     *services.GroupService
}

func NewActivityHandler(activities *services.ActivityService, groups *services.GroupService) *ActivityHandler {
	return &ActivityHandler{activities: activities, groups: groups}
}

func (h *ActivityHandler) LogActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID  string                 `json:"groupId"`
		Action   string                 `json:"action"`
		Details  string                 `json:"details"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Invalid request payload"})
		return
	}

	entry, err := h.activities.Log(r.Context(), req.GroupID, middleware.UserID(r), models.ActivityAction(req.Action), req.Details, req.Metadata)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "activity": entry})
}

func (h *ActivityHandler) GetActivitiesByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	// Membership gate before touching the log.
	if _, err := h.groups.GetGroup(r.Context(), middleware.UserID(r), groupID); err != nil {
		respondError(w, err)
		return
	}

	limit := int64(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	activities, err := h.activities.ListByGroup(r.Context(), groupID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if activities == nil {
		activities = []models.ActivityLog{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"count":      len(activities),
		"activities": activities,
	})
}

func (h *ActivityHandler) ClearActivities(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]

	if _, err := h.groups.GetGroup(r.Context(), middleware.UserID(r), groupID); err != nil {
		respondError(w, err)
		return
	}

	deleted, err := h.activities.ClearGroup(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "deleted": deleted})
}
