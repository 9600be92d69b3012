package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSynonyms(t *testing.T) {
	synonyms := DefaultSynonyms()
	require.NotEmpty(t, synonyms)

	terms := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		terms = append(terms, s.Term)
		assert.NotEmpty(t, s.Expansions, "term %s", s.Term)
	}
	assert.Equal(t, []string{"ssr", "ssg", "isr", "csr", "rsc", "seo", "api", "middleware", "error", "auth", "cache"}, terms)
}

func TestExpand(t *testing.T) {
	synonyms := Synonyms{
		{Term: "ssr", Expansions: []string{"server-side rendering", "getServerSideProps"}},
		{Term: "auth", Expansions: []string{"authentication", "login"}},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "no synonym",
			query: "routing",
			want:  []string{"routing"},
		},
		{
			name:  "synonym replaced in lowercased query",
			query: "SSR data",
			want:  []string{"SSR data", "server-side rendering data", "getServerSideProps data"},
		},
		{
			name:  "only first occurrence replaced",
			query: "ssr vs ssr",
			want:  []string{"ssr vs ssr", "server-side rendering vs ssr", "getServerSideProps vs ssr"},
		},
		{
			name:  "three words get no reduction",
			query: "use the router",
			want:  []string{"use the router"},
		},
		{
			name:  "long query adds important words",
			query: "how can I configure auth with cookies here",
			want: []string{
				"how can I configure auth with cookies here",
				"how can i configure authentication with cookies here",
				"how can i configure login with cookies here",
				"configure auth with",
			},
		},
		{
			name:  "query equal to term",
			query: "auth",
			want:  []string{"auth", "authentication", "login"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, synonyms.Expand(tt.query))
		})
	}
}

func TestExpand_ImportantWordsEmpty(t *testing.T) {
	// Every word is short, so no reduction variant is added
	assert.Equal(t, []string{"a b c d e"}, Synonyms{}.Expand("a b c d e"))
}

func TestLoadSynonyms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"term":" PPR ","expansions":["partial prerendering"]}]`), 0644))

	synonyms, err := LoadSynonyms(path)
	require.NoError(t, err)
	require.Len(t, synonyms, 1)
	assert.Equal(t, "ppr", synonyms[0].Term)
	assert.Equal(t, []string{"PPR", "partial prerendering"}, synonyms.Expand("PPR"))
}

func TestParseSynonyms_Invalid(t *testing.T) {
	_, err := ParseSynonyms([]byte(`{"ssr": []}`))
	assert.Error(t, err)

	_, err = ParseSynonyms([]byte(`[{"term":"  ","expansions":["x"]}]`))
	assert.Error(t, err)
}

func TestLoadSynonyms_MissingFile(t *testing.T) {
	_, err := LoadSynonyms(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
