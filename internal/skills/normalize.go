// Package skills provides canonicalization of free-text skill tokens so that
// skill-set comparisons behave consistently across resumes and job postings.
package skills

import (
	"encoding/json"
	"strings"
)

// skillAliases maps common skill name variants to canonical names.
// All keys and values are lowercase; Normalize lowercases before lookup.
var skillAliases = map[string]string{
	"js":          "javascript",
	"java script": "javascript",
	"ts":          "typescript",
	"node.js":     "node",
	"node js":     "node",
	"nodejs":      "node",
	"react.js":    "react",
	"reactjs":     "react",
	"vue.js":      "vue",
	"vuejs":       "vue",
	"golang":      "go",
	"go lang":     "go",
	"k8s":         "kubernetes",
	"postgres":    "postgresql",
	"mongo":       "mongodb",
	"c sharp":     "c#",
	"dot net":     ".net",
	"ml":          "machine learning",
	"ai":          "artificial intelligence",
}

// Normalize returns the canonical form of a single skill token: trimmed,
// lowercased, with known aliases resolved. Empty or whitespace-only input
// yields an empty string; callers are expected to filter those out.
func Normalize(skill string) string {
	normalized := strings.ToLower(strings.TrimSpace(skill))
	if normalized == "" {
		return ""
	}
	if canonical, ok := skillAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// NormalizeAll normalizes every token in a list, dropping empties and
// duplicates while preserving first-occurrence order.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, s := range raw {
		n := Normalize(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// isSplitDelimiter matches the separators observed in portal-scraped skill
// strings, e.g. "Python, Django; REST (APIs)".
func isSplitDelimiter(r rune) bool {
	switch r {
	case ',', ';', '(', ')', '/', '|':
		return true
	}
	return false
}

// ParseField coerces the heterogeneous skills field of a job posting into a
// normalized token list. Postings store skills either as a delimited string or
// as an array; the raw JSON value is accepted here so every read site goes
// through the same coercion. Unrecognized shapes coerce to an empty list
// rather than failing the posting.
func ParseField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		return NormalizeAll(asList)
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return NormalizeAll(strings.FieldsFunc(asString, isSplitDelimiter))
	}

	return nil
}
