package search

import (
	"fmt"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

// mockIndex answers probes from a fixed variant -> hits table
type mockIndex struct {
	hits      map[string][]Hit
	probes    []string
	limits    []int
	added     []string
	searchErr error
	closed    bool
}

func newMockIndex(hits map[string][]Hit) *mockIndex {
	if hits == nil {
		hits = map[string][]Hit{}
	}
	return &mockIndex{hits: hits}
}

func (m *mockIndex) Add(doc indexing.DocumentRecord) error {
	if m.closed {
		return fmt.Errorf("index closed")
	}
	m.added = append(m.added, doc.ID)
	return nil
}

func (m *mockIndex) Search(text string, limit int) ([]Hit, error) {
	if m.closed {
		return nil, fmt.Errorf("index closed")
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.probes = append(m.probes, text)
	m.limits = append(m.limits, limit)
	return m.hits[text], nil
}

func (m *mockIndex) DocCount() (uint64, error) {
	return uint64(len(m.added)), nil
}

func (m *mockIndex) Close() error {
	if m.closed {
		return fmt.Errorf("already closed")
	}
	m.closed = true
	return nil
}
