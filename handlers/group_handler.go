package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/middleware"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/services"

	"github.com/gorilla/mux"
)

type GroupHandler struct {
	groups *services.GroupService
}

func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Subject     string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Invalid request payload"})
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), middleware.UserID(r), req.Name, req.Description, req.Subject)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "group": group})
}

func (h *GroupHandler) GetMyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ActiveGroupsForUser(r.Context(), middleware.UserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(groups), "groups": groups})
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(r.Context(), middleware.UserID(r), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": group})
}

func (h *GroupHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.groups.Members(r.Context(), middleware.UserID(r), mux.Vars(r)["groupId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": len(members), "members": members})
}

func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessCode string `json:"accessCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Invalid request payload"})
		return
	}

	group, err := h.groups.JoinByAccessCode(r.Context(), middleware.UserID(r), middleware.UserEmail(r), req.AccessCode)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "group": group})
}

func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var patch services.GroupPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Invalid request payload"})
		return
	}

	if err := h.groups.UpdateGroup(r.Context(), middleware.UserID(r), mux.Vars(r)["groupId"], patch); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Group updated"})
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeleteGroup(r.Context(), middleware.UserID(r), mux.Vars(r)["groupId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Group deleted"})
}

func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.LeaveGroup(r.Context(), middleware.UserID(r), mux.Vars(r)["groupId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Left group"})
}
