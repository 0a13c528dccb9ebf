package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
	"github.com/meghanahima/Resume-Matches-sub000/internal/skills"
)

// ResumeStore serves candidate profiles from the resumes table. Implements
// matching.ResumeStore.
type ResumeStore struct {
	db *DB
}

// NewResumeStore creates a resume store over the given connection.
func NewResumeStore(database *DB) *ResumeStore {
	return &ResumeStore{db: database}
}

// GetCandidate fetches a resume's parsed data and derives the candidate
// profile the pipeline matches against. Missing resume and missing parsed
// data are distinguished so the caller can report both as descriptive 404s.
func (s *ResumeStore) GetCandidate(ctx context.Context, resumeID string) (*matching.CandidateProfile, error) {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return nil, matching.ErrResumeNotFound
	}

	var parsedInfo []byte
	err = s.db.pool.QueryRow(ctx,
		`SELECT parsed_info FROM resumes WHERE id = $1`,
		id,
	).Scan(&parsedInfo)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, matching.ErrResumeNotFound
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	return CandidateFromParsedInfo(resumeID, parsedInfo)
}

// CandidateFromParsedInfo builds a CandidateProfile from the stored jsonb
// blob. Skills are normalized here so the rest of the pipeline only ever sees
// canonical tokens.
func CandidateFromParsedInfo(resumeID string, parsedInfo []byte) (*matching.CandidateProfile, error) {
	if len(parsedInfo) == 0 || string(parsedInfo) == "null" {
		return nil, matching.ErrResumeNotParsed
	}

	var parsed ParsedInfo
	if err := json.Unmarshal(parsedInfo, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse resume data: %w", err)
	}

	raw := make([]string, 0, len(parsed.Skills))
	for _, s := range parsed.Skills {
		raw = append(raw, s.Skill)
	}

	education := make([]string, 0, len(parsed.Education))
	for _, e := range parsed.Education {
		if e.Degree != "" {
			education = append(education, e.Degree)
		}
	}

	return &matching.CandidateProfile{
		ID:              resumeID,
		Skills:          skills.NormalizeAll(raw),
		ExperienceCount: len(parsed.Experience),
		Education:       education,
	}, nil
}
