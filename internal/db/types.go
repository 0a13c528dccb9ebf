package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Resume is a stored resume row. ParsedInfo is the jsonb blob produced by the
// external extraction service; it is nil until extraction has run.
type Resume struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	FileName   *string         `json:"file_name,omitempty"`
	ParsedInfo json.RawMessage `json:"parsed_info,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ParsedInfo is the matching-relevant shape of the extracted resume data.
type ParsedInfo struct {
	Skills     []ParsedSkill      `json:"skills"`
	Experience []ParsedExperience `json:"experience"`
	Education  []ParsedEducation  `json:"education"`
}

// ParsedSkill is one extracted skill entry.
type ParsedSkill struct {
	Skill string `json:"skill"`
}

// ParsedExperience is one extracted position entry.
type ParsedExperience struct {
	Position string `json:"position"`
	Company  string `json:"company"`
}

// ParsedEducation is one extracted degree entry.
type ParsedEducation struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
}

// JobPostingRow is a stored job posting. Skills is jsonb and heterogeneous:
// a delimited string or an array, depending on the ingesting portal.
type JobPostingRow struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Skills      json.RawMessage `json:"skills,omitempty"`
	Description string          `json:"description"`
	Portal      *string         `json:"portal,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// JobPostingInput is the payload for creating or updating a posting.
type JobPostingInput struct {
	Title       string          `json:"title" validate:"required"`
	Company     string          `json:"company" validate:"required"`
	Skills      json.RawMessage `json:"skills"`
	Description string          `json:"description"`
	Portal      *string         `json:"portal,omitempty"`
}
