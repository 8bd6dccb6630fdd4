package terminal

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/replay/core"
)

func testSession() *core.Session {
	s := core.NewSession("sess-1")
	s.Slug = "fix-build"
	s.Version = "1.0.30"
	s.Branch = "main"
	s.StartTime = "2025-06-01T10:00:00Z"
	s.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan", Usage: core.Usage{InputTokens: 1234, OutputTokens: 567}})
	s.AddAgent(&core.Agent{ID: "w1", Name: "worker", IsSubagent: true, Color: "magenta", Usage: core.Usage{InputTokens: 266}})
	s.Events = []core.Event{
		{Timestamp: "2025-06-01T10:00:00Z", Type: core.EventUser, AgentID: "main", Content: "fix the build"},
		{Timestamp: "2025-06-01T10:00:02Z", Type: core.EventBash, AgentID: "main", ToolName: "Bash", Content: "go build ./..."},
		{Timestamp: "2025-06-01T10:00:05Z", Type: core.EventText, AgentID: "w1", Content: "exploring"},
		{Timestamp: "2025-06-01T10:00:09Z", Type: core.EventText, AgentID: "main", Content: "done"},
	}
	return s
}

func render(t *testing.T, s *core.Session) string {
	t.Helper()
	var buf strings.Builder
	r := &Renderer{Width: 100}
	require.NoError(t, r.Render(&buf, s))
	return ansi.Strip(buf.String())
}

func TestRenderHeader(t *testing.T) {
	out := render(t, testSession())

	assert.Contains(t, out, "fix-build")
	assert.Contains(t, out, "1.0.30")
	assert.Contains(t, out, "(main)")
}

func TestRenderRuns(t *testing.T) {
	out := render(t, testSession())

	// One badge per run; the sub-agent gets the arrow prefix.
	assert.Equal(t, 2, strings.Count(out, "Main\n"))
	assert.Contains(t, out, "⇒ worker")

	assert.Contains(t, out, "10:00:00 ❯ fix the build")
	assert.Contains(t, out, "10:00:02 $ Bash go build ./...")
	assert.Contains(t, out, "10:00:05 • exploring")
}

func TestRenderUsageTotals(t *testing.T) {
	out := render(t, testSession())

	// Totals aggregate across agents, formatted with separators.
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "567")
	assert.Contains(t, out, "INPUT")
	assert.Contains(t, out, "OUTPUT")
	assert.NotContains(t, out, "CACHE READ")
}

func TestRenderNoUsageOmitsFooter(t *testing.T) {
	s := core.NewSession("empty")
	s.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan"})
	s.Events = []core.Event{{Timestamp: "2025-06-01T10:00:00Z", Type: core.EventText, AgentID: "main", Content: "hi"}}

	out := render(t, s)
	assert.NotContains(t, out, "INPUT")
}

func TestRenderUserPromptCleaned(t *testing.T) {
	s := core.NewSession("s")
	s.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan"})
	s.Events = []core.Event{{
		Timestamp: "2025-06-01T10:00:00Z",
		Type:      core.EventUser,
		AgentID:   "main",
		Content:   "<command-name>/commit</command-name><command-args>-m fix</command-args>",
	}}

	out := render(t, s)
	assert.Contains(t, out, "/commit -m fix")
	assert.NotContains(t, out, "command-name")
}

func TestGlyphs(t *testing.T) {
	assert.Equal(t, "❯", glyph(core.EventUser))
	assert.Equal(t, "$", glyph(core.EventBash))
	assert.Equal(t, "✗", glyph(core.EventError))
	assert.Equal(t, "•", glyph(core.EventType("mystery")))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestClock(t *testing.T) {
	assert.Equal(t, "10:00:05", clock("2025-06-01T10:00:05Z"))
	assert.Equal(t, "--:--:--", clock(""))
	assert.Equal(t, "bogus", clock("bogus"))
}
