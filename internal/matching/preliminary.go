package matching

import (
	"sort"

	"github.com/meghanahima/Resume-Matches-sub000/internal/skills"
)

// denominatorOffset avoids division by zero for postings with no listed skills
// and slightly penalizes postings that list very few skills.
const denominatorOffset = 0.1

// PreliminaryMatches scores every posting against the candidate's normalized
// skill set and returns the postings with a positive overlap, sorted by score
// descending. Ties keep the original posting order so repeated runs over the
// same data paginate identically.
func PreliminaryMatches(candidateSkills []string, postings []JobPosting) []PreliminaryMatch {
	candidateSet := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		candidateSet[skills.Normalize(s)] = true
	}

	matches := make([]PreliminaryMatch, 0, len(postings))
	for _, posting := range postings {
		processed := skills.ParseField(posting.Skills)
		if len(processed) == 0 {
			continue
		}

		var matched []string
		for _, s := range processed {
			if candidateSet[s] {
				matched = append(matched, s)
			}
		}

		score := float64(len(matched)) / (float64(len(processed)) + denominatorOffset) * 100
		if score <= 0 {
			continue
		}

		matches = append(matches, PreliminaryMatch{
			JobPosting:      posting,
			ProcessedSkills: processed,
			MatchingSkills:  matched,
			SkillMatchScore: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SkillMatchScore > matches[j].SkillMatchScore
	})

	return matches
}
