package db

import (
	"errors"
	"testing"

	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
)

func TestCandidateFromParsedInfo(t *testing.T) {
	parsed := []byte(`{
		"skills": [{"skill": "Python"}, {"skill": "JS"}, {"skill": "python"}],
		"experience": [
			{"position": "Engineer", "company": "Acme"},
			{"position": "Senior Engineer", "company": "Globex"}
		],
		"education": [{"degree": "BSc Computer Science", "institution": "MIT"}]
	}`)

	candidate, err := CandidateFromParsedInfo("resume-1", parsed)
	if err != nil {
		t.Fatalf("CandidateFromParsedInfo: %v", err)
	}

	if candidate.ID != "resume-1" {
		t.Errorf("ID = %q, want resume-1", candidate.ID)
	}
	// Normalized and deduplicated: python, javascript.
	if len(candidate.Skills) != 2 {
		t.Fatalf("Skills = %v, want 2 normalized entries", candidate.Skills)
	}
	if candidate.Skills[0] != "python" || candidate.Skills[1] != "javascript" {
		t.Errorf("Skills = %v, want [python javascript]", candidate.Skills)
	}
	if candidate.ExperienceCount != 2 {
		t.Errorf("ExperienceCount = %d, want 2", candidate.ExperienceCount)
	}
	if len(candidate.Education) != 1 || candidate.Education[0] != "BSc Computer Science" {
		t.Errorf("Education = %v", candidate.Education)
	}
}

func TestCandidateFromParsedInfo_Missing(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"sql null", []byte("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CandidateFromParsedInfo("resume-1", tt.input)
			if !errors.Is(err, matching.ErrResumeNotParsed) {
				t.Errorf("error = %v, want ErrResumeNotParsed", err)
			}
		})
	}
}

func TestCandidateFromParsedInfo_Malformed(t *testing.T) {
	_, err := CandidateFromParsedInfo("resume-1", []byte(`{"skills": "not-a-list"`))
	if err == nil {
		t.Fatal("expected an error for malformed parsed_info")
	}
}

func TestCandidateFromParsedInfo_EmptySections(t *testing.T) {
	candidate, err := CandidateFromParsedInfo("resume-1", []byte(`{"skills": []}`))
	if err != nil {
		t.Fatalf("CandidateFromParsedInfo: %v", err)
	}
	if len(candidate.Skills) != 0 || candidate.ExperienceCount != 0 {
		t.Errorf("expected empty profile, got %+v", candidate)
	}
}
