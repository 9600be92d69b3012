package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultTTL is used when Set is called without a ttl
	DefaultTTL = time.Hour

	keyPrefix    = "search"
	keySeparator = "_"
)

// Status is the outcome of a cache read
type Status int

const (
	Miss Status = iota
	Hit
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// entry is the stored envelope around a payload
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	TTL       int64           `json:"ttl"`       // seconds
}

// Cache is a best-effort result cache in front of a Backend.
// Backend failures never surface as errors: reads report Unavailable and
// writes are dropped. A Cache without a backend is always Unavailable.
type Cache struct {
	backend    Backend
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Cache
type Option func(*Cache)

// WithDefaultTTL overrides DefaultTTL
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock sets the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache over backend; backend may be nil
func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:    backend,
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a backend is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.backend != nil
}

// Get decodes the payload stored under key into dst.
// Expired entries are evicted and reported as a Miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) Status {
	if !c.Enabled() {
		return Unavailable
	}

	raw, err := c.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Miss
	}
	if err != nil {
		log.Printf("Warning: cache read failed: %v", err)
		return Unavailable
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.evict(ctx, key)
		return Miss
	}

	age := c.now().UnixMilli() - e.Timestamp
	if age > e.TTL*1000 {
		c.evict(ctx, key)
		return Miss
	}

	if err := json.Unmarshal(e.Data, dst); err != nil {
		c.evict(ctx, key)
		return Miss
	}
	return Hit
}

// Set stores payload under key. ttl <= 0 uses the default ttl.
// Failures are logged and dropped.
func (c *Cache) Set(ctx context.Context, key string, payload any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	// Entries carry whole seconds, rounded up
	seconds := int64((ttl + time.Second - 1) / time.Second)
	ttl = time.Duration(seconds) * time.Second

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Warning: cache payload for %s not serializable: %v", key, err)
		return
	}

	raw, err := json.Marshal(entry{
		Data:      data,
		Timestamp: c.now().UnixMilli(),
		TTL:       seconds,
	})
	if err != nil {
		log.Printf("Warning: cache entry for %s not serializable: %v", key, err)
		return
	}

	if err := c.backend.SetEx(ctx, key, raw, ttl); err != nil {
		log.Printf("Warning: cache write failed: %v", err)
	}
}

// Clear deletes every key matching the glob pattern, or every key when
// pattern is empty
func (c *Cache) Clear(ctx context.Context, pattern string) {
	if !c.Enabled() {
		return
	}
	if pattern == "" {
		pattern = "*"
	}
	if err := c.backend.DeletePattern(ctx, pattern); err != nil {
		log.Printf("Warning: cache clear failed: %v", err)
	}
}

func (c *Cache) evict(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, key); err != nil {
		log.Printf("Warning: cache eviction failed: %v", err)
	}
}

// Key builds the cache key of a search. The query is trimmed and
// lowercased; filters are serialized as sorted name:value pairs and nil
// values are left out.
func Key(query string, filters map[string]any) string {
	names := make([]string, 0, len(filters))
	for name, value := range filters {
		if value != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s:%v", name, filters[name]))
	}

	return fmt.Sprintf("%s:%s:%s", keyPrefix, strings.ToLower(strings.TrimSpace(query)), strings.Join(pairs, keySeparator))
}
