package cache

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by a Backend for absent or expired keys
var ErrNotFound = errors.New("cache key not found")

// Backend is an external key/value store with expiring entries.
// Patterns use glob syntax: '*' matches any run of characters and '?'
// matches one character.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

var _ Backend = (*MemoryBackend)(nil)

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryBackend keeps entries in process memory
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(item.expires) {
		delete(m.items, key)
		return nil, ErrNotFound
	}
	return item.value, nil
}

func (m *MemoryBackend) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{
		value:   append([]byte(nil), value...),
		expires: m.now().Add(ttl),
	}
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

func (m *MemoryBackend) DeletePattern(ctx context.Context, pattern string) error {
	re, err := globRegexp(pattern)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		if re.MatchString(key) {
			delete(m.items, key)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// globRegexp compiles a '*' / '?' glob into an anchored regexp
func globRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
