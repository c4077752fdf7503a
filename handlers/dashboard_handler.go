package handlers

import (
	"net/http"
	"strconv"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/middleware"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context(), middleware.UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": stats})
}

func (h *DashboardHandler) GetRecentActivities(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	activities, err := h.dashboard.RecentActivities(r.Context(), middleware.UserID(r), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if activities == nil {
		activities = []models.ActivityLog{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(activities), "activities": activities})
}

// GetOverview assembles the composite home-screen payload. Partial upstream
// failures degrade to empty sections, so this endpoint always returns 200.
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview := h.dashboard.BuildOverview(r.Context(), middleware.UserID(r))
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "overview": overview})
}
