package api

import (
	"net/http"
	"strconv"

	"github.com/outreach-engine/internal/types"
)

// handleFeedbackQueue handles GET /api/feedback/queue - Outreach attempts
// whose feedback window has elapsed
func (s *Server) handleFeedbackQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	items, err := s.feedbackService.Queue(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// handleFeedbackSwipe handles POST /api/feedback/swipe - Record an outcome
// for a pending attempt
func (s *Server) handleFeedbackSwipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		AttemptID string            `json:"attemptId"`
		Outcome   types.OutcomeType `json:"outcome"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.AttemptID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "attemptId is required", nil)
		return
	}

	attempt, err := s.feedbackService.RecordOutcome(r.Context(), userID, req.AttemptID, req.Outcome)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, attempt)
}
