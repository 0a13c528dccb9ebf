package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
)

// MatchRequest is the pagination payload for the match endpoint. Both fields
// are optional; zero values fall back to page 1 and the default page size.
type MatchRequest struct {
	Page  int `json:"page" validate:"omitempty,min=1"`
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// MatchResponse is the success envelope for the match endpoint.
type MatchResponse struct {
	Success    bool                   `json:"success"`
	Matches    []matching.RankedMatch `json:"matches"`
	Pagination matching.Pagination    `json:"pagination"`
}

// handleMatchJobs runs (or serves from cache) the ranking pipeline for a
// resume and returns one page of matches.
func (s *Server) handleMatchJobs(w http.ResponseWriter, r *http.Request) {
	resumeID := r.PathValue("resumeId")
	if resumeID == "" {
		s.errorResponse(w, http.StatusBadRequest, "resume id is required")
		return
	}

	var req MatchRequest
	// An empty body is fine, the defaults apply.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "page must be >= 1 and limit between 1 and 100")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = matching.DefaultPageLimit
	}

	page, err := s.matcher.Match(r.Context(), resumeID, req.Page, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, matching.ErrResumeNotFound):
			s.errorResponse(w, http.StatusNotFound, "resume not found")
		case errors.Is(err, matching.ErrResumeNotParsed):
			s.errorResponse(w, http.StatusNotFound, "resume has not been parsed yet")
		default:
			s.logger.Error("match pipeline failed",
				zap.String("resume_id", resumeID),
				zap.Error(err))
			s.errorResponse(w, http.StatusInternalServerError, "failed to match jobs")
		}
		return
	}

	matches := page.Matches
	if matches == nil {
		matches = []matching.RankedMatch{}
	}
	s.jsonResponse(w, http.StatusOK, MatchResponse{
		Success:    true,
		Matches:    matches,
		Pagination: page.Pagination,
	})
}
