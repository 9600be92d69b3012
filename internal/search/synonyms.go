package search

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed synonyms.json
var defaultSynonymsJSON []byte

// Synonym maps a domain acronym or jargon term to full-phrase equivalents
type Synonym struct {
	Term       string   `json:"term"`
	Expansions []string `json:"expansions"`
}

// Synonyms is an ordered synonym table. Order decides the order of the
// generated query variants.
type Synonyms []Synonym

// DefaultSynonyms returns the built-in synonym table
func DefaultSynonyms() Synonyms {
	synonyms, err := ParseSynonyms(defaultSynonymsJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded synonyms are invalid: %v", err))
	}
	return synonyms
}

// LoadSynonyms reads a synonym table from a JSON file
func LoadSynonyms(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms: %w", err)
	}
	return ParseSynonyms(data)
}

// ParseSynonyms decodes a JSON array of {term, expansions} entries.
// Terms are lowercased since they are matched against the lowercased query.
func ParseSynonyms(data []byte) (Synonyms, error) {
	var synonyms Synonyms
	if err := json.Unmarshal(data, &synonyms); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms: %w", err)
	}
	for i, s := range synonyms {
		term := strings.ToLower(strings.TrimSpace(s.Term))
		if term == "" {
			return nil, fmt.Errorf("synonym entry %d has an empty term", i)
		}
		synonyms[i].Term = term
	}
	return synonyms, nil
}

// Expand returns the query variants to probe, literal query first.
// Every synonym term found in the lowercased query adds one variant per
// expansion with the first occurrence of the term replaced. Queries of
// more than three words also get an "important words" variant.
func (s Synonyms) Expand(query string) []string {
	variants := []string{query}
	seen := map[string]bool{query: true}

	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	lower := strings.ToLower(query)
	for _, synonym := range s {
		if !strings.Contains(lower, synonym.Term) {
			continue
		}
		for _, expansion := range synonym.Expansions {
			add(strings.Replace(lower, synonym.Term, expansion, 1))
		}
	}

	words := strings.Fields(query)
	if len(words) > 3 {
		var important []string
		for _, w := range words {
			if len([]rune(w)) > 3 {
				important = append(important, w)
				if len(important) == 3 {
					break
				}
			}
		}
		add(strings.Join(important, " "))
	}

	return variants
}
