package api

import (
	"net/http"

	"github.com/outreach-engine/internal/service"
	"github.com/outreach-engine/internal/types"
)

// handleDraftsFeed handles GET /api/feed/drafts - The user's DRAFT_READY
// contacts with research context
func (s *Server) handleDraftsFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)

	feed, err := s.outreachService.GetDraftsFeed(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, feed)
}

// handleSend handles POST /api/action/send - Mark a draft as sent and
// schedule its feedback window
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		ContactID   string            `json:"contactId"`
		MessageBody string            `json:"messageBody"`
		StrategyTag types.StrategyTag `json:"strategyTag"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.ContactID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "contactId is required", nil)
		return
	}

	var override *service.SendOverride
	if req.MessageBody != "" || req.StrategyTag != "" {
		override = &service.SendOverride{
			MessageBody: req.MessageBody,
			StrategyTag: req.StrategyTag,
		}
	}

	result, err := s.outreachService.Send(r.Context(), userID, req.ContactID, override)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
