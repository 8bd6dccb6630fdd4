package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/replay/core"
)

// fakeStat is a controllable mtime source keyed by resolved path.
type fakeStat struct {
	mtimes map[string]time.Time
}

func newFakeStat() *fakeStat {
	return &fakeStat{mtimes: make(map[string]time.Time)}
}

func (f *fakeStat) set(path string, t time.Time) {
	resolved, _ := filepath.Abs(path)
	f.mtimes[resolved] = t
}

func (f *fakeStat) stat(path string) (time.Time, error) {
	t, ok := f.mtimes[path]
	if !ok {
		return time.Time{}, os.ErrNotExist
	}
	return t, nil
}

func writeSession(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const claudeLine = `{"type":"user","sessionId":"sess-1","timestamp":"2025-06-01T10:00:00Z","message":{"role":"user","content":"hi"}}`

func TestParseHitReturnsSameSession(t *testing.T) {
	dir := t.TempDir()
	path := writeSession(t, dir, "a.jsonl", claudeLine)

	fs := newFakeStat()
	fs.set(path, time.Unix(100, 0))
	c := New(4, WithStat(fs.stat))

	first, err := c.Parse(path)
	require.NoError(t, err)
	second, err := c.Parse(path)
	require.NoError(t, err)

	// Unchanged mtime: the identical session pointer comes back.
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "sess-1", first.ID)
}

func TestParseInvalidatesOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	path := writeSession(t, dir, "a.jsonl", claudeLine)

	fs := newFakeStat()
	fs.set(path, time.Unix(100, 0))
	c := New(4, WithStat(fs.stat))

	first, err := c.Parse(path)
	require.NoError(t, err)

	// Append a line and bump the mtime.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n" + `{"type":"assistant","sessionId":"sess-1","requestId":"r1","timestamp":"2025-06-01T10:00:05Z","message":{"usage":{"output_tokens":5},"content":[{"type":"text","text":"hello"}]}}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	fs.set(path, time.Unix(200, 0))

	second, err := c.Parse(path)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, second.Events, 2)

	// The stale snapshot is gone; only the fresh one remains.
	assert.Equal(t, 1, c.Len())
}

func TestEvictionIsBoundedInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	fs := newFakeStat()
	c := New(2, WithStat(fs.stat))

	var paths []string
	for i := range 3 {
		path := writeSession(t, dir, fmt.Sprintf("s%d.jsonl", i), claudeLine)
		fs.set(path, time.Unix(100, 0))
		paths = append(paths, path)
	}

	_, err := c.Parse(paths[0])
	require.NoError(t, err)
	_, err = c.Parse(paths[1])
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	// Re-reading the first entry does not refresh its position.
	first, err := c.Parse(paths[0])
	require.NoError(t, err)

	// Inserting a third evicts the oldest by insertion: paths[0].
	_, err = c.Parse(paths[2])
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	refetched, err := c.Parse(paths[0])
	require.NoError(t, err)
	assert.NotSame(t, first, refetched)
}

func TestParseMissingFile(t *testing.T) {
	c := New(4, WithStat(newFakeStat().stat))
	_, err := c.Parse(filepath.Join(t.TempDir(), "gone.jsonl"))
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestParseEndToEndFallbackDialect(t *testing.T) {
	// Minimal three-line rollout: metadata, shell call, result.
	content := `{"timestamp":"2025-07-10T08:00:00Z","type":"session_meta","payload":{"id":"e2e"}}
{"timestamp":"2025-07-10T08:00:01Z","type":"response_item","item":{"type":"function_call","name":"shell","arguments":"{\"command\":[\"ls\"]}"}}
{"timestamp":"2025-07-10T08:00:02Z","type":"response_item","item":{"type":"function_call_output","output":"main.go"}}`

	dir := t.TempDir()
	path := writeSession(t, dir, "rollout-e2e.jsonl", content)
	fs := newFakeStat()
	fs.set(path, time.Unix(100, 0))

	s, err := New(4, WithStat(fs.stat)).Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "e2e", s.ID)
	assert.Equal(t, "2025-07-10T08:00:00Z", s.StartTime)
	assert.Len(t, s.Agents, 1)
	require.Len(t, s.Events, 2)
	assert.Equal(t, core.EventBash, s.Events[0].Type)
	assert.Equal(t, core.EventToolResult, s.Events[1].Type)
}

func TestParseDispatchesByFormat(t *testing.T) {
	dir := t.TempDir()
	fs := newFakeStat()
	c := New(8, WithStat(fs.stat))

	claudePath := writeSession(t, dir, "c.jsonl", claudeLine)
	codexPath := writeSession(t, dir, "rollout.jsonl", `{"timestamp":"2025-07-10T08:00:00Z","type":"session_meta","payload":{"id":"cx-1"}}`)
	geminiPath := writeSession(t, dir, "logs.json", `{"sessionId":"gm-1","messages":[{"role":"user","timestamp":"2025-05-20T09:00:00Z","parts":[{"text":"hi"}]}]}`)
	for _, p := range []string{claudePath, codexPath, geminiPath} {
		fs.set(p, time.Unix(100, 0))
	}

	s, err := c.Parse(claudePath)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", s.ID)

	s, err = c.Parse(codexPath)
	require.NoError(t, err)
	assert.Equal(t, "cx-1", s.ID)

	s, err = c.Parse(geminiPath)
	require.NoError(t, err)
	assert.Equal(t, "gm-1", s.ID)

	assert.Equal(t, 3, c.Len())
}
