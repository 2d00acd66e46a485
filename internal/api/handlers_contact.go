package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/outreach-engine/internal/types"
)

// parsePagination reads limit/offset query params with defaults
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	return limit, offset
}

// handleListContacts handles GET /api/contacts/list - List the user's
// contacts, optionally filtered by ?status=
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)

	var status *types.ContactStatus
	if v := r.URL.Query().Get("status"); v != "" {
		parsed := types.ContactStatus(v)
		switch parsed {
		case types.StatusNew, types.StatusResearching, types.StatusDraftReady, types.StatusSent, types.StatusArchived:
			status = &parsed
		default:
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid status filter: "+v, nil)
			return
		}
	}

	page, err := s.contactService.List(r.Context(), userID, status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// handleArchiveContact handles POST /api/contacts/:id/archive
func (s *Server) handleArchiveContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	contactID := vars["id"]

	if contactID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Contact ID required", nil)
		return
	}

	contact, err := s.contactService.Archive(r.Context(), userID, contactID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}
