// Package terminal renders session timelines as ANSI-colored event lines,
// grouped into per-agent runs.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/sonnes/replay/core"
)

const defaultWidth = 100

// Renderer pretty-prints a session timeline to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the session as a colored timeline to w.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	width := r.termWidth()

	writeHeader(w, s)

	for _, run := range core.GroupRuns(s.Events) {
		agent := s.Agent(run.AgentID)
		writeRun(w, agent, run, width)
	}

	writeUsage(w, s)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeHeader renders the session metadata block.
func writeHeader(w io.Writer, s *core.Session) {
	title := s.Slug
	if title == "" {
		title = "Session " + s.ID
	}
	fmt.Fprintln(w, styleTitle.Render(title))

	var parts []string
	if s.StartTime != "" {
		if t, err := time.Parse(time.RFC3339Nano, s.StartTime); err == nil {
			parts = append(parts, core.RelativeTime(t))
		} else {
			parts = append(parts, s.StartTime)
		}
	}
	if s.Version != "" {
		parts = append(parts, s.Version)
	}
	if s.Branch != "" {
		parts = append(parts, "("+s.Branch+")")
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, styleMeta.Render(strings.Join(parts, "  ")))
	}
	fmt.Fprintln(w)
}

// writeRun renders one agent's block of consecutive events: a colored badge
// line followed by one line per event.
func writeRun(w io.Writer, agent *core.Agent, run core.Run, width int) {
	badge := run.AgentID
	color := "white"
	if agent != nil {
		badge = agent.Name
		color = agent.Color
		if agent.IsSubagent {
			badge = "⇒ " + badge
		}
	}
	fmt.Fprintln(w, agentStyle(color).Render(badge))

	contentWidth := width - 14
	if contentWidth < 40 {
		contentWidth = 40
	}

	for _, e := range run.Events {
		line := fmt.Sprintf("%s %s %s",
			styleTimestamp.Render(clock(e.Timestamp)),
			glyph(e.Type),
			eventLine(e, contentWidth))
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w)
}

// eventLine builds the one-line content summary for an event.
func eventLine(e core.Event, width int) string {
	content := e.Content
	switch e.Type {
	case core.EventUser:
		content = core.CleanPrompt(content)
	case core.EventThink:
		return styleThinking.Render(truncate(firstLine(content), width))
	}

	if e.ToolName != "" {
		detail := firstLine(content)
		if detail == "" {
			detail = e.FilePath
		}
		return styleStat.Render(e.ToolName) + " " + styleMeta.Render(truncate(detail, width-len(e.ToolName)-1))
	}
	return truncate(firstLine(content), width)
}

// glyph returns the timeline marker for an event type.
func glyph(t core.EventType) string {
	switch t {
	case core.EventUser:
		return "❯"
	case core.EventThink:
		return "·"
	case core.EventBash:
		return "$"
	case core.EventFileCreate:
		return "+"
	case core.EventFileUpdate:
		return "~"
	case core.EventFileRead:
		return "○"
	case core.EventToolCall:
		return "⚙"
	case core.EventToolResult:
		return "→"
	case core.EventWebSearch:
		return "⌕"
	case core.EventSpawn:
		return "⇒"
	case core.EventError:
		return "✗"
	case core.EventComplete:
		return "✓"
	default:
		return "•"
	}
}

// writeUsage renders per-agent token counters in two rows: values then labels.
func writeUsage(w io.Writer, s *core.Session) {
	var total core.Usage
	for _, a := range s.Agents {
		total.Add(a.Usage)
	}
	if total.IsZero() {
		return
	}

	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", 40)))

	type stat struct {
		value int
		label string
	}
	stats := []stat{
		{total.InputTokens, "INPUT"},
		{total.OutputTokens, "OUTPUT"},
	}
	if total.CacheReadTokens > 0 {
		stats = append(stats, stat{total.CacheReadTokens, "CACHE READ"})
	}

	var values, labels []string
	for _, st := range stats {
		formatted := formatNumber(st.value)
		colWidth := max(len(formatted), len(st.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, formatted))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, st.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

// clock extracts the HH:MM:SS portion of an RFC 3339 timestamp, falling back
// to the raw value when it doesn't parse.
func clock(timestamp string) string {
	if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		return t.Format("15:04:05")
	}
	if timestamp == "" {
		return "--:--:--"
	}
	return timestamp
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// formatNumber renders n with thousands separators (e.g. 1,234,567).
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
