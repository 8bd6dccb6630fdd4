package html

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/replay/core"
)

func testSession() *core.Session {
	s := core.NewSession("sess-1")
	s.Slug = "fix-build"
	s.StartTime = "2025-06-01T10:00:00Z"
	s.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan", Usage: core.Usage{InputTokens: 1200, OutputTokens: 300}})
	s.AddAgent(&core.Agent{ID: "w1", Name: "worker", IsSubagent: true, Color: "magenta"})
	s.Events = []core.Event{
		{Timestamp: "2025-06-01T10:00:00Z", Type: core.EventUser, AgentID: "main", Content: "fix the build"},
		{Timestamp: "2025-06-01T10:00:02Z", Type: core.EventText, AgentID: "main", Content: "Running `go build` now."},
		{Timestamp: "2025-06-01T10:00:04Z", Type: core.EventBash, AgentID: "w1", ToolName: "Bash", Content: "go build ./..."},
	}
	return s
}

func renderPage(t *testing.T, s *core.Session) string {
	t.Helper()
	var buf strings.Builder
	require.NoError(t, New().Render(&buf, s))
	return buf.String()
}

func TestRenderPage(t *testing.T) {
	out := renderPage(t, testSession())

	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, "fix-build")
	assert.Contains(t, out, "Main")
	assert.Contains(t, out, "worker")

	// Markdown in text events converts; inline code becomes <code>.
	assert.Contains(t, out, "<code>go build</code>")

	// Tool events render preformatted and escaped.
	assert.Contains(t, out, "<pre>go build ./...</pre>")
}

func TestRenderEscapesContent(t *testing.T) {
	s := core.NewSession("s")
	s.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan"})
	s.Events = []core.Event{
		{Timestamp: "2025-06-01T10:00:00Z", Type: core.EventUser, AgentID: "main", Content: "use <script>alert(1)</script> carefully"},
	}

	out := renderPage(t, s)
	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestRenderUsageFooter(t *testing.T) {
	out := renderPage(t, testSession())
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "300")
}

func TestRenderIndex(t *testing.T) {
	entries := []IndexEntry{
		{ID: "sess-1", Project: "app", Format: "claude", Href: "/session/sess-1", ModTime: time.Now().Add(-time.Hour)},
		{ID: "rollout-2", Project: "2025", Format: "codex", Href: "/session/rollout-2", ModTime: time.Now(), Active: true},
	}

	var buf strings.Builder
	require.NoError(t, New().RenderIndex(&buf, entries))
	out := buf.String()

	assert.Contains(t, out, "/session/sess-1")
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "1h ago")
	assert.Contains(t, out, "rollout-2")
}

func TestColorClass(t *testing.T) {
	assert.Equal(t, "text-cyan-500", colorClass("cyan"))
	assert.Equal(t, "text-slate-400", colorClass("unknown"))
}
