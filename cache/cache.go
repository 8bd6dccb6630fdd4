// Package cache provides the staleness-aware parse cache in front of the
// dialect readers. It is the entry point collaborators use: live-tail
// consumers call Parse on every poll tick, and an unchanged file costs one
// stat instead of a full re-parse.
package cache

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/reader"
	"github.com/sonnes/replay/reader/claude"
	"github.com/sonnes/replay/reader/codex"
	"github.com/sonnes/replay/reader/gemini"
)

// DefaultCapacity bounds the process-wide default cache.
const DefaultCapacity = 64

// key identifies one parsed snapshot of a file: its resolved path and the
// modification time observed just before parsing.
type key struct {
	path  string
	mtime int64
}

// Cache memoizes fully normalized sessions keyed on (resolved path, mtime).
// Entries whose mtime no longer matches the file on disk are purged on the
// next access to that path; when the cache is full, the oldest entry by
// insertion order is evicted (a bounded map, not strict LRU).
//
// A single mutex serializes the whole check / parse / evict / insert
// sequence, so concurrent pollers never parse the same miss twice and never
// corrupt the bounded map.
type Cache struct {
	mu       sync.Mutex
	capacity int
	stat     func(path string) (time.Time, error)
	entries  map[key]*core.Session
	order    []key
}

// Option configures a Cache.
type Option func(*Cache)

// WithStat overrides how modification times are read. Tests inject a fake
// clock source so staleness and eviction are deterministic.
func WithStat(stat func(path string) (time.Time, error)) Option {
	return func(c *Cache) { c.stat = stat }
}

// New creates a Cache holding at most capacity sessions.
func New(capacity int, opts ...Option) *Cache {
	c := &Cache{
		capacity: capacity,
		stat:     statMtime,
		entries:  make(map[key]*core.Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func statMtime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Parse returns the normalized session for the file at path, from cache when
// the file is unchanged since it was last parsed. It fails only on I/O
// errors; content-level anomalies are absorbed by the readers.
func (c *Cache) Parse(path string) (*core.Session, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		resolved = path
	}

	// A failed stat keys the entry on mtime 0. The open inside the reader
	// will surface the real error for missing files; for anything else this
	// just forces effectively uncached behavior.
	var mtime int64
	if t, err := c.stat(resolved); err == nil {
		mtime = t.UnixNano()
	}
	k := key{path: resolved, mtime: mtime}

	c.mu.Lock()
	defer c.mu.Unlock()

	if session, ok := c.entries[k]; ok {
		return session, nil
	}

	session, err := parseFile(resolved)
	if err != nil {
		return nil, err
	}

	c.purgeStale(resolved, mtime)
	c.evictOldest()
	c.entries[k] = session
	c.order = append(c.order, k)
	return session, nil
}

// purgeStale removes entries for the same path cached under a different
// mtime: the file changed since they were inserted.
func (c *Cache) purgeStale(path string, mtime int64) {
	kept := c.order[:0]
	for _, k := range c.order {
		if k.path == path && k.mtime != mtime {
			delete(c.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
}

// evictOldest drops entries in insertion order until there is room for one
// more.
func (c *Cache) evictOldest() {
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len reports the number of cached sessions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// parseFile detects the dialect and runs the matching reader.
func parseFile(path string) (*core.Session, error) {
	format, err := reader.DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return readerFor(format).ReadFile(path)
}

func readerFor(format reader.Format) reader.Reader {
	switch format {
	case reader.FormatClaude:
		return &claude.Reader{}
	case reader.FormatGemini:
		return &gemini.Reader{}
	default:
		return &codex.Reader{}
	}
}

// defaultCache is the process-wide shared cache behind the package-level
// functions. It has no teardown; it lives for the life of the process.
var defaultCache = New(DefaultCapacity)

// Parse parses path through the process-wide default cache.
func Parse(path string) (*core.Session, error) {
	return defaultCache.Parse(path)
}

// DetectFormat classifies path without fully parsing it, for callers that
// only need to branch on the dialect.
func DetectFormat(path string) (reader.Format, error) {
	return reader.DetectFormat(path)
}
