package api

import (
	"net/http"
)

// handleAnalyticsDashboard handles GET /api/analytics/dashboard - Per-user
// outreach performance aggregates
func (s *Server) handleAnalyticsDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := s.analyticsService.GetDashboard(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}
