package matching

import (
	"encoding/json"
	"math"
	"testing"
)

func posting(id, title string, skillsJSON string) JobPosting {
	return JobPosting{
		ID:     id,
		Title:  title,
		Skills: json.RawMessage(skillsJSON),
	}
}

func TestPreliminaryMatches_Scenario(t *testing.T) {
	candidate := []string{"python", "react"}
	postings := []JobPosting{
		posting("a", "Backend Engineer", `"Python, Django"`),
		posting("b", "Frontend Engineer", `["react","node"]`),
		posting("c", "Java Engineer", `["java"]`),
	}

	matches := PreliminaryMatches(candidate, postings)

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2 (job c must be excluded)", len(matches))
	}

	// Both A and B match 1 of 2 skills: (1 / 2.1) * 100 ≈ 47.6.
	want := 1.0 / 2.1 * 100
	for _, m := range matches {
		if math.Abs(m.SkillMatchScore-want) > 1e-9 {
			t.Errorf("job %s score = %v, want %v", m.ID, m.SkillMatchScore, want)
		}
	}

	// Equal scores keep original posting order.
	if matches[0].ID != "a" || matches[1].ID != "b" {
		t.Errorf("tie ordering = [%s %s], want [a b]", matches[0].ID, matches[1].ID)
	}
}

func TestPreliminaryMatches_NoOverlapExcluded(t *testing.T) {
	matches := PreliminaryMatches([]string{"go"}, []JobPosting{
		posting("x", "Designer", `["figma","sketch"]`),
	})
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestPreliminaryMatches_ScoreBounds(t *testing.T) {
	postings := []JobPosting{
		posting("full", "Perfect", `["go","docker"]`),
		posting("partial", "Partial", `["go","java","rust","scala","c"]`),
	}
	matches := PreliminaryMatches([]string{"go", "docker"}, postings)

	for _, m := range matches {
		if m.SkillMatchScore < 0 || m.SkillMatchScore > 100 {
			t.Errorf("job %s score %v outside [0,100]", m.ID, m.SkillMatchScore)
		}
	}
	if matches[0].ID != "full" {
		t.Errorf("expected higher-overlap posting first, got %s", matches[0].ID)
	}
}

func TestPreliminaryMatches_Deterministic(t *testing.T) {
	candidate := []string{"python", "react", "sql"}
	postings := []JobPosting{
		posting("1", "A", `"python; sql"`),
		posting("2", "B", `["react"]`),
		posting("3", "C", `"SQL, Python, React"`),
	}

	first := PreliminaryMatches(candidate, postings)
	second := PreliminaryMatches(candidate, postings)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].SkillMatchScore != second[i].SkillMatchScore {
			t.Errorf("non-deterministic at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestPreliminaryMatches_NormalizesCandidateSkills(t *testing.T) {
	// Candidate skills arrive denormalized when built straight from storage.
	matches := PreliminaryMatches([]string{"  Node.js ", "JS"}, []JobPosting{
		posting("n", "Node Dev", `["node","javascript"]`),
	})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if len(matches[0].MatchingSkills) != 2 {
		t.Errorf("matching skills = %v, want both node and javascript", matches[0].MatchingSkills)
	}
}

func TestPreliminaryMatches_EmptySkillFieldSkipped(t *testing.T) {
	matches := PreliminaryMatches([]string{"go"}, []JobPosting{
		posting("empty", "No skills", `""`),
		posting("null", "Null skills", `null`),
		posting("bad", "Bad shape", `123`),
		posting("good", "Go job", `["go"]`),
	})
	if len(matches) != 1 || matches[0].ID != "good" {
		t.Fatalf("expected only the well-formed posting to match, got %v", matches)
	}
}
