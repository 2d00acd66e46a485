package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/outreach-engine/internal/service"
	"github.com/outreach-engine/internal/types"
)

// handleCreateProfile handles POST /api/profiles - Create a user profile
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID               string           `json:"id"`
		MissionStatement string           `json:"missionStatement"`
		IntentType       types.IntentType `json:"intentType"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.IntentType == "" {
		req.IntentType = types.IntentValidation
	}

	profile, err := s.profileService.Create(r.Context(), &service.CreateProfileInput{
		ID:               req.ID,
		MissionStatement: req.MissionStatement,
		IntentType:       req.IntentType,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// handleGetProfile handles GET /api/profiles/:id - Get profile by ID
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	profileID := vars["id"]

	if profileID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Profile ID required", nil)
		return
	}

	profile, err := s.profileService.Get(r.Context(), profileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
