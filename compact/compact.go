// Package compact provides a Transformer that replaces verbose tool output
// with short summaries for compact timeline viewing.
package compact

import (
	"fmt"
	"strings"

	"github.com/sonnes/replay/core"
)

// Config controls the compact transformer behavior.
type Config struct {
	StripThinking bool
}

// Compactor replaces tool output events' content with line-count summaries
// and optionally drops thinking events.
type Compactor struct {
	stripThinking bool
}

// New creates a Compactor from the given config.
func New(cfg Config) *Compactor {
	return &Compactor{stripThinking: cfg.StripThinking}
}

// Transform implements core.Transformer.
func (c *Compactor) Transform(s *core.Session) error {
	events := s.Events[:0]
	for _, e := range s.Events {
		if c.stripThinking && e.Type == core.EventThink {
			continue
		}
		switch e.Type {
		case core.EventToolResult:
			e.Content = lineSummary("output", e.Content)
		case core.EventError:
			e.Content = lineSummary("error", e.Content)
		}
		events = append(events, e)
	}
	s.Events = events
	return nil
}

// lineSummary returns a summary like "[output: 245 lines]" or "[error: 1 line]".
func lineSummary(label, s string) string {
	n := countLines(s)
	if n == 1 {
		return fmt.Sprintf("[%s: 1 line]", label)
	}
	return fmt.Sprintf("[%s: %d lines]", label, n)
}

// countLines returns the number of lines in s.
// An empty string has 0 lines. A string with no newline has 1 line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n") + 1
	if strings.HasSuffix(s, "\n") {
		n--
	}
	return n
}
