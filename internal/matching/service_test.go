package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResumeStore struct {
	candidates map[string]*CandidateProfile
	err        error
	calls      int
}

func (f *fakeResumeStore) GetCandidate(_ context.Context, resumeID string) (*CandidateProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.candidates[resumeID]
	if !ok {
		return nil, ErrResumeNotFound
	}
	return c, nil
}

type fakePostingStore struct {
	postings []JobPosting
	err      error
	calls    int
}

func (f *fakePostingStore) ListForMatching(_ context.Context) ([]JobPosting, error) {
	f.calls++
	return f.postings, f.err
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]RankedMatch
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]RankedMatch)}
}

func (f *fakeCache) Get(id string) ([]RankedMatch, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.entries[id]
	return r, ok
}

func (f *fakeCache) Set(id string, results []RankedMatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[id] = results
}

func (f *fakeCache) Invalidate(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
}

func (f *fakeCache) InvalidateAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string][]RankedMatch)
}

func newTestService(resumes *fakeResumeStore, postings *fakePostingStore, gen *fakeGenerator) (*Service, *fakeCache) {
	cache := newFakeCache()
	engine := NewEngine(gen, testConfig(), nil)
	return NewService(resumes, postings, engine, cache, nil), cache
}

func testCandidate() *CandidateProfile {
	return &CandidateProfile{
		ID:              "resume-1",
		Skills:          []string{"python", "react"},
		ExperienceCount: 2,
		Education:       []string{"BSc"},
	}
}

func TestService_MatchRunsPipelineAndCaches(t *testing.T) {
	resumes := &fakeResumeStore{candidates: map[string]*CandidateProfile{"resume-1": testCandidate()}}
	postings := &fakePostingStore{postings: []JobPosting{
		posting("a", "Backend", `"Python, Django"`),
		posting("b", "Frontend", `["react","node"]`),
		posting("c", "JVM", `["java"]`),
	}}
	gen := &fakeGenerator{responses: []func(string) (string, error){
		scoresJSON(90, 40),
	}}
	svc, cache := newTestService(resumes, postings, gen)

	page, err := svc.Match(context.Background(), "resume-1", 1, 10)
	require.NoError(t, err)

	// Job c is excluded; a and b survive, ordered by blended final score.
	require.Len(t, page.Matches, 2)
	assert.Equal(t, "a", page.Matches[0].ID)
	assert.Equal(t, 2, page.Pagination.TotalMatches)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasMore)

	_, ok := cache.Get("resume-1")
	assert.True(t, ok, "ranked set must be cached after a miss")

	// Second request is served from cache: no new store or oracle calls.
	_, err = svc.Match(context.Background(), "resume-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, resumes.calls)
	assert.Equal(t, 1, postings.calls)
	assert.Equal(t, 1, gen.calls)
}

func TestService_ResumeNotFound(t *testing.T) {
	svc, _ := newTestService(
		&fakeResumeStore{candidates: map[string]*CandidateProfile{}},
		&fakePostingStore{},
		&fakeGenerator{},
	)

	_, err := svc.Match(context.Background(), "missing", 1, 10)
	assert.ErrorIs(t, err, ErrResumeNotFound)
}

func TestService_PostingStoreErrorPropagates(t *testing.T) {
	svc, _ := newTestService(
		&fakeResumeStore{candidates: map[string]*CandidateProfile{"resume-1": testCandidate()}},
		&fakePostingStore{err: errors.New("store down")},
		&fakeGenerator{},
	)

	_, err := svc.Match(context.Background(), "resume-1", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load job postings")
}

func TestService_InvalidateAllForcesRecompute(t *testing.T) {
	resumes := &fakeResumeStore{candidates: map[string]*CandidateProfile{"resume-1": testCandidate()}}
	postings := &fakePostingStore{postings: []JobPosting{posting("a", "Backend", `["python"]`)}}
	gen := &fakeGenerator{responses: []func(string) (string, error){
		scoresJSON(90),
		scoresJSON(90),
	}}
	svc, _ := newTestService(resumes, postings, gen)

	_, err := svc.Match(context.Background(), "resume-1", 1, 10)
	require.NoError(t, err)

	svc.InvalidateAll()

	_, err = svc.Match(context.Background(), "resume-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, postings.calls, "invalidation must trigger a fresh pipeline run")
}

func TestService_CoalescesConcurrentRequests(t *testing.T) {
	resumes := &fakeResumeStore{candidates: map[string]*CandidateProfile{"resume-1": testCandidate()}}
	postings := &fakePostingStore{postings: []JobPosting{posting("a", "Backend", `["python"]`)}}

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gen := &fakeGenerator{responses: []func(string) (string, error){
		func(string) (string, error) {
			once.Do(func() { close(started) })
			<-release
			return `[{"matchScore": 90, "matchReason": "ok"}]`, nil
		},
		func(string) (string, error) {
			return "", errors.New("duplicate refinement run")
		},
	}}
	svc, _ := newTestService(resumes, postings, gen)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Match(context.Background(), "resume-1", 1, 10)
		}(i)
	}

	<-started
	time.Sleep(20 * time.Millisecond) // let the second request queue on the flight
	close(release)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, 1, gen.calls, "concurrent requests for one resume must share a single computation")
}

func TestService_RemainderBeyondTopKKeptWithSkillScore(t *testing.T) {
	var many []JobPosting
	for i := 0; i < 5; i++ {
		many = append(many, posting(string(rune('a'+i)), "Job", `["python"]`))
	}
	resumes := &fakeResumeStore{candidates: map[string]*CandidateProfile{"resume-1": testCandidate()}}
	postings := &fakePostingStore{postings: many}
	gen := &fakeGenerator{responses: []func(string) (string, error){
		scoresJSON(90, 90),
	}}

	cache := newFakeCache()
	cfg := testConfig()
	cfg.TopK = 2
	svc := NewService(resumes, postings, NewEngine(gen, cfg, nil), cache, nil)

	page, err := svc.Match(context.Background(), "resume-1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 5, page.Pagination.TotalMatches)

	refined := 0
	for _, m := range page.Matches {
		if m.AIMatchScore != nil {
			refined++
		} else {
			assert.Equal(t, m.SkillMatchScore, m.FinalMatchScore)
		}
	}
	assert.Equal(t, 2, refined)
}

func TestPaginate(t *testing.T) {
	results := make([]RankedMatch, 25)
	for i := range results {
		results[i].FinalMatchScore = float64(100 - i)
	}

	tests := []struct {
		name        string
		page, limit int
		wantLen     int
		wantPages   int
		wantHasMore bool
	}{
		{"first page", 1, 10, 10, 3, true},
		{"middle page", 2, 10, 10, 3, true},
		{"last partial page", 3, 10, 5, 3, false},
		{"past the end", 4, 10, 0, 3, false},
		{"defaults applied", 0, 0, 10, 3, true},
		{"exact boundary", 5, 5, 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := paginate(results, tt.page, tt.limit)
			assert.Len(t, page.Matches, tt.wantLen)
			assert.Equal(t, tt.wantPages, page.Pagination.TotalPages)
			assert.Equal(t, 25, page.Pagination.TotalMatches)
			assert.Equal(t, tt.wantHasMore, page.Pagination.HasMore)
		})
	}
}

func TestPaginate_SliceContract(t *testing.T) {
	results := make([]RankedMatch, 7)
	for i := range results {
		results[i].MatchReason = string(rune('a' + i))
	}

	page := paginate(results, 2, 3)
	require.Len(t, page.Matches, 3)
	// results[(p-1)*L : (p-1)*L+L]
	assert.Equal(t, "d", page.Matches[0].MatchReason)
	assert.Equal(t, "f", page.Matches[2].MatchReason)
}
