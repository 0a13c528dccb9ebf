// Package matching implements the job-matching and ranking pipeline: skill
// overlap scoring over the full posting collection, oracle-assisted refinement
// of the top candidates, and pagination over the merged result.
package matching

import (
	"encoding/json"
	"errors"
)

// ErrResumeNotFound indicates the resume id does not exist upstream.
var ErrResumeNotFound = errors.New("resume not found")

// ErrResumeNotParsed indicates the resume exists but has no parsed data to
// match against.
var ErrResumeNotParsed = errors.New("resume has no parsed information")

// CandidateProfile is the matching-relevant view of a parsed resume. It is
// built once per ranking request and immutable for its duration.
type CandidateProfile struct {
	ID              string   `json:"id"`
	Skills          []string `json:"skills"` // normalized canonical set
	ExperienceCount int      `json:"experienceCount"`
	Education       []string `json:"education"`
}

// JobPosting is a job record as stored by the postings collaborator. Skills is
// kept raw because the stored shape is heterogeneous: a delimited string or an
// array, depending on the portal it was scraped from.
type JobPosting struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Skills      json.RawMessage `json:"skills"`
	Description string          `json:"description"`
	Portal      string          `json:"portal,omitempty"`
}

// PreliminaryMatch is a posting that survived skill-overlap filtering.
type PreliminaryMatch struct {
	JobPosting
	ProcessedSkills []string `json:"processedSkills"`
	MatchingSkills  []string `json:"matchingSkills"`
	SkillMatchScore float64  `json:"skillMatchScore"`
}

// RankedMatch is the unit that is cached and paginated. FinalMatchScore is
// always defined; AIMatchScore is nil when refinement was unavailable, in
// which case Notice explains the degradation.
type RankedMatch struct {
	PreliminaryMatch
	AIMatchScore    *float64 `json:"aiMatchScore"`
	FinalMatchScore float64  `json:"finalMatchScore"`
	MatchReason     string   `json:"matchReason,omitempty"`
	Notice          string   `json:"notice,omitempty"`
}

// Pagination describes the slice of the ranked set being returned.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalMatches int  `json:"totalMatches"`
	HasMore      bool `json:"hasMore"`
}

// Page is one paginated view over a candidate's ranked result set.
type Page struct {
	Matches    []RankedMatch `json:"matches"`
	Pagination Pagination    `json:"pagination"`
}
