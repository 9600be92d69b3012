package search

import (
	"strings"
	"unicode"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

// Score contributions
const (
	titlePhraseScore       = 100
	titleTokenScore        = 20
	contentPhraseScore     = 50
	contentOccurrenceScore = 2
	descriptionPhraseScore = 30

	titleFieldBoost       = 1.5
	descriptionFieldBoost = 1.2

	highRelevanceScore   = 100
	mediumRelevanceScore = 50

	snippetRadius = 50
	ellipsis      = "..."
)

// calculateScore ranks doc against the literal query. field is the index
// field that produced the candidate and selects the boost.
func calculateScore(doc indexing.DocumentRecord, query, field string) float64 {
	q := strings.ToLower(query)
	tokens := strings.Fields(q)
	title := strings.ToLower(doc.Title)
	content := strings.ToLower(doc.Content)
	description := strings.ToLower(doc.Description)

	score := 0.0

	if strings.Contains(title, q) {
		score += titlePhraseScore
	}
	for _, token := range tokens {
		if strings.Contains(title, token) {
			score += titleTokenScore
		}
	}

	if strings.Contains(content, q) {
		score += contentPhraseScore
	}
	for _, token := range tokens {
		score += float64(strings.Count(content, token) * contentOccurrenceScore)
	}

	if strings.Contains(description, q) {
		score += descriptionPhraseScore
	}

	switch field {
	case FieldTitle:
		score *= titleFieldBoost
	case FieldDescription:
		score *= descriptionFieldBoost
	}

	return score
}

func determineRelevance(score float64) Relevance {
	switch {
	case score >= highRelevanceScore:
		return RelevanceHigh
	case score >= mediumRelevanceScore:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// extractMatches returns the title match and a content window around the
// first occurrence of the query
func extractMatches(doc indexing.DocumentRecord, query string) []Match {
	matches := []Match{}
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(doc.Title), q) {
		matches = append(matches, Match{
			Field:   FieldTitle,
			Text:    doc.Title,
			Context: doc.Title,
		})
	}

	content := []rune(doc.Content)
	needle := []rune(q)
	idx := indexFold(content, needle)
	if idx < 0 {
		return matches
	}

	start := max(0, idx-snippetRadius)
	end := min(len(content), idx+len(needle)+snippetRadius)

	snippet := string(content[start:end])
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(content) {
		snippet += ellipsis
	}

	matches = append(matches, Match{
		Field:   FieldContent,
		Text:    string(content[idx : idx+len(needle)]),
		Context: snippet,
	})
	return matches
}

// indexFold returns the rune offset of the first case-insensitive
// occurrence of needle (already lowercased) in haystack, or -1
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
