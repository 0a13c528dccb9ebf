package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/meghanahima/Resume-Matches-sub000/internal/oracle"
	"github.com/meghanahima/Resume-Matches-sub000/internal/prompts"
)

// RefineConfig holds the batching and blending parameters of the refinement
// engine. The defaults mirror the shipped behavior; the blend/ordering
// contracts hold for any configured values.
type RefineConfig struct {
	TopK             int           // how many preliminary matches are refined
	BatchSize        int           // jobs per oracle request
	Cooldown         time.Duration // pause between batches
	SkillWeight      float64       // weight of the preliminary score in the blend
	AIWeight         float64       // weight of the oracle score in the blend
	DescriptionLimit int           // max description characters sent per job
}

// DefaultRefineConfig returns the standard refinement parameters.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		TopK:             100,
		BatchSize:        5,
		Cooldown:         500 * time.Millisecond,
		SkillWeight:      0.6,
		AIWeight:         0.4,
		DescriptionLimit: 300,
	}
}

// Degradation notices attached to skill-only results.
const (
	noticeBudgetExhausted = "AI scoring skipped: request budget exhausted"
	noticeOracleFailed    = "AI scoring unavailable: oracle request failed"
	noticeNoScore         = "AI scoring unavailable: oracle returned no score for this job"
)

// batchScore mirrors one element of the oracle's positional response array.
type batchScore struct {
	MatchScore  float64 `json:"matchScore"`
	MatchReason string  `json:"matchReason"`
}

// Engine refines preliminary matches through the scoring oracle. Batches run
// strictly sequentially: the request budget and the key pool are process-wide,
// and concurrent batches would race on both.
type Engine struct {
	generator oracle.Generator
	config    RefineConfig
	logger    *zap.Logger
}

// NewEngine creates a refinement engine over the given oracle client.
func NewEngine(generator oracle.Generator, config RefineConfig, logger *zap.Logger) *Engine {
	if config.BatchSize <= 0 {
		config = DefaultRefineConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Refine scores the top-K preliminary matches through the oracle and blends
// the result with the preliminary signal. Partial failure never empties the
// output: jobs the oracle could not score fall back to their skill-match score
// with a notice attached, and an unrecoverable batch failure stops further
// oracle calls while retaining everything scored so far.
func (e *Engine) Refine(ctx context.Context, candidate CandidateProfile, prelim []PreliminaryMatch) []RankedMatch {
	top := prelim
	if len(top) > e.config.TopK {
		top = top[:e.config.TopK]
	}

	ranked := make([]RankedMatch, 0, len(top))
	halted := false

	for start := 0; start < len(top); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(top) {
			end = len(top)
		}
		batch := top[start:end]

		if halted {
			ranked = append(ranked, skillOnly(batch, noticeOracleFailed)...)
			continue
		}

		if start > 0 {
			if err := e.cooldown(ctx); err != nil {
				// Context gone; degrade the rest rather than hang.
				halted = true
				ranked = append(ranked, skillOnly(batch, noticeOracleFailed)...)
				continue
			}
		}

		scores, err := e.scoreBatch(ctx, candidate, batch)
		switch {
		case err == nil:
			ranked = append(ranked, e.blend(batch, scores)...)
		case errors.Is(err, oracle.ErrBudgetExhausted):
			// Local budget, not an oracle failure: keep processing, later
			// windows may have budget again.
			e.logger.Debug("refinement batch skipped, budget exhausted",
				zap.Int("batch_start", start))
			ranked = append(ranked, skillOnly(batch, noticeBudgetExhausted)...)
		default:
			e.logger.Warn("refinement batch failed, halting oracle calls",
				zap.Int("batch_start", start),
				zap.Error(err))
			halted = true
			ranked = append(ranked, skillOnly(batch, noticeOracleFailed)...)
		}
	}

	return ranked
}

// cooldown waits the inter-batch pause without busy-looping.
func (e *Engine) cooldown(ctx context.Context) error {
	timer := time.NewTimer(e.config.Cooldown)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scoreBatch sends one batch to the oracle and parses the positional response.
func (e *Engine) scoreBatch(ctx context.Context, candidate CandidateProfile, batch []PreliminaryMatch) ([]batchScore, error) {
	prompt := e.buildPrompt(candidate, batch)

	raw, err := e.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := oracle.ValidateBatchScores(raw); err != nil {
		return nil, err
	}

	var scores []batchScore
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, fmt.Errorf("failed to parse oracle batch response: %w", err)
	}

	return scores, nil
}

// blend merges oracle scores into the batch. Jobs past the end of a short
// response fall back to skill-only with a notice.
func (e *Engine) blend(batch []PreliminaryMatch, scores []batchScore) []RankedMatch {
	out := make([]RankedMatch, 0, len(batch))
	for i, match := range batch {
		if i >= len(scores) {
			out = append(out, RankedMatch{
				PreliminaryMatch: match,
				FinalMatchScore:  match.SkillMatchScore,
				Notice:           noticeNoScore,
			})
			continue
		}

		ai := clampScore(scores[i].MatchScore)
		out = append(out, RankedMatch{
			PreliminaryMatch: match,
			AIMatchScore:     &ai,
			FinalMatchScore:  match.SkillMatchScore*e.config.SkillWeight + ai*e.config.AIWeight,
			MatchReason:      scores[i].MatchReason,
		})
	}
	return out
}

// buildPrompt renders the batch scoring prompt for the oracle.
func (e *Engine) buildPrompt(candidate CandidateProfile, batch []PreliminaryMatch) string {
	var jobs strings.Builder
	for i, match := range batch {
		fmt.Fprintf(&jobs, "%d. Title: %s\n   Company: %s\n   Required skills: %s\n   Description: %s\n",
			i+1,
			match.Title,
			match.Company,
			strings.Join(match.ProcessedSkills, ", "),
			truncateDescription(match.Description, e.config.DescriptionLimit),
		)
	}

	education := strings.Join(candidate.Education, "; ")
	if education == "" {
		education = "Not specified"
	}

	template := prompts.MustGet("matching.json", "score-job-batch")
	return prompts.Format(template, map[string]string{
		"Skills":          strings.Join(candidate.Skills, ", "),
		"ExperienceCount": strconv.Itoa(candidate.ExperienceCount),
		"Education":       education,
		"Jobs":            jobs.String(),
	})
}

// skillOnly maps a batch to skill-score-only results with the given notice.
func skillOnly(batch []PreliminaryMatch, notice string) []RankedMatch {
	out := make([]RankedMatch, 0, len(batch))
	for _, match := range batch {
		out = append(out, RankedMatch{
			PreliminaryMatch: match,
			FinalMatchScore:  match.SkillMatchScore,
			Notice:           notice,
		})
	}
	return out
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// truncateDescription strips HTML from portal-scraped descriptions and bounds
// the text sent to the oracle.
func truncateDescription(description string, limit int) string {
	text := description
	if strings.Contains(description, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")

	if limit > 0 && len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
