package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meghanahima/Resume-Matches-sub000/internal/db"
)

// handleListJobPostings returns a page of job postings, newest first.
func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	page := parseQueryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	postings, total, err := s.postings.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		s.logger.Error("failed to list job postings", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list job postings")
		return
	}
	if postings == nil {
		postings = []db.JobPostingRow{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"postings": postings,
		"total":    total,
		"page":     page,
	})
}

// handleCreateJobPosting inserts a posting. Every cached ranking is stale the
// moment the collection changes, so the cache is flushed.
func (s *Server) handleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodePostingInput(w, r)
	if !ok {
		return
	}

	row, err := s.postings.Create(r.Context(), input)
	if err != nil {
		s.logger.Error("failed to create job posting", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create job posting")
		return
	}

	s.matcher.InvalidateAll()
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"posting": row,
	})
}

// handleUpdateJobPosting replaces a posting's fields.
func (s *Server) handleUpdateJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job posting id")
		return
	}

	input, ok := s.decodePostingInput(w, r)
	if !ok {
		return
	}

	row, err := s.postings.Update(r.Context(), id, input)
	if err != nil {
		s.logger.Error("failed to update job posting",
			zap.String("id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to update job posting")
		return
	}
	if row == nil {
		s.errorResponse(w, http.StatusNotFound, "job posting not found")
		return
	}

	s.matcher.InvalidateAll()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"posting": row,
	})
}

// handleDeleteJobPosting removes a posting.
func (s *Server) handleDeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job posting id")
		return
	}

	deleted, err := s.postings.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to delete job posting",
			zap.String("id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to delete job posting")
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "job posting not found")
		return
	}

	s.matcher.InvalidateAll()
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// decodePostingInput reads and validates the posting payload, writing the
// error response itself on failure.
func (s *Server) decodePostingInput(w http.ResponseWriter, r *http.Request) (*db.JobPostingInput, bool) {
	var input db.JobPostingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := s.validate.Struct(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "title and company are required")
		return nil, false
	}
	return &input, true
}

// parseQueryInt reads an integer query parameter with a fallback.
func parseQueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
