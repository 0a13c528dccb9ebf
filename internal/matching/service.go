package matching

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ResumeStore fetches the candidate profile derived from a stored parsed
// resume. Implementations return ErrResumeNotFound / ErrResumeNotParsed for
// the two fatal precondition failures.
type ResumeStore interface {
	GetCandidate(ctx context.Context, resumeID string) (*CandidateProfile, error)
}

// PostingStore bulk-fetches the posting collection for matching. The store is
// expected to do projection, filtering and stable ordering server-side; the
// overlap computation itself happens here.
type PostingStore interface {
	ListForMatching(ctx context.Context) ([]JobPosting, error)
}

// ResultCache is the per-candidate result cache consumed by the service.
// Implemented by internal/cache.
type ResultCache interface {
	Get(candidateID string) ([]RankedMatch, bool)
	Set(candidateID string, results []RankedMatch)
	Invalidate(candidateID string)
	InvalidateAll()
}

// DefaultPageLimit is the page size used when the caller does not specify one.
const DefaultPageLimit = 10

// Service is the ranking orchestrator. One Match call either serves a cached
// ranked set or runs the full pipeline: preliminary matching over every
// posting, oracle refinement of the top slice, sort, cache, paginate.
type Service struct {
	resumes  ResumeStore
	postings PostingStore
	engine   *Engine
	cache    ResultCache
	group    singleflight.Group
	logger   *zap.Logger
}

// NewService wires the orchestrator.
func NewService(resumes ResumeStore, postings PostingStore, engine *Engine, cache ResultCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resumes:  resumes,
		postings: postings,
		engine:   engine,
		cache:    cache,
		logger:   logger,
	}
}

// Match returns one page of ranked matches for a resume. Concurrent requests
// for the same resume during a cache miss are coalesced: the second caller
// waits on the first computation instead of launching a duplicate.
func (s *Service) Match(ctx context.Context, resumeID string, page, limit int) (*Page, error) {
	if cached, ok := s.cache.Get(resumeID); ok {
		s.logger.Debug("serving ranked matches from cache",
			zap.String("resume_id", resumeID),
			zap.Int("total", len(cached)))
		return paginate(cached, page, limit), nil
	}

	v, err, shared := s.group.Do(resumeID, func() (any, error) {
		return s.rank(ctx, resumeID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("coalesced duplicate ranking request",
			zap.String("resume_id", resumeID))
	}

	return paginate(v.([]RankedMatch), page, limit), nil
}

// InvalidateAll drops every cached ranking. Called whenever job-posting data
// is mutated elsewhere in the system.
func (s *Service) InvalidateAll() {
	s.cache.InvalidateAll()
}

// Invalidate drops the cached ranking for one candidate.
func (s *Service) Invalidate(resumeID string) {
	s.cache.Invalidate(resumeID)
}

// rank runs the full pipeline for one candidate and caches the result.
func (s *Service) rank(ctx context.Context, resumeID string) ([]RankedMatch, error) {
	// A request queued behind the in-flight computation re-checks the cache:
	// the first flight has already stored its result.
	if cached, ok := s.cache.Get(resumeID); ok {
		return cached, nil
	}

	candidate, err := s.resumes.GetCandidate(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	postings, err := s.postings.ListForMatching(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job postings: %w", err)
	}

	prelim := PreliminaryMatches(candidate.Skills, postings)
	s.logger.Info("preliminary matching complete",
		zap.String("resume_id", resumeID),
		zap.Int("postings", len(postings)),
		zap.Int("matches", len(prelim)))

	ranked := s.engine.Refine(ctx, *candidate, prelim)

	// Postings below the refinement cutoff stay in the result set with their
	// preliminary score, so pagination covers the complete ranking.
	if len(prelim) > len(ranked) {
		for _, match := range prelim[len(ranked):] {
			ranked = append(ranked, RankedMatch{
				PreliminaryMatch: match,
				FinalMatchScore:  match.SkillMatchScore,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalMatchScore > ranked[j].FinalMatchScore
	})

	s.cache.Set(resumeID, ranked)
	return ranked, nil
}

// paginate slices the ranked set. Out-of-range pages return an empty match
// list with the pagination metadata intact.
func paginate(results []RankedMatch, page, limit int) *Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	total := len(results)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Page{
		Matches: results[start:end],
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalMatches: total,
			HasMore:      (page-1)*limit+limit < total,
		},
	}
}
