package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// maxUploadBytes caps the CSV upload size (8 MiB)
const maxUploadBytes = 8 << 20

// handleIngestUpload handles POST /api/ingest/upload - Upload a connections
// CSV and start background enrichment
func (s *Server) handleIngestUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Expected multipart form with a 'file' field", nil)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Missing 'file' field", nil)
		return
	}
	defer file.Close()

	result, err := s.ingestService.Upload(r.Context(), userID, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, result)
}

// handleIngestStatus handles GET /api/ingest/status/:id - Poll enrichment
// job progress
func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	jobID := vars["id"]

	if jobID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Job ID required", nil)
		return
	}

	job, err := s.ingestService.JobStatus(r.Context(), userID, jobID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}
