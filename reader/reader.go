// Package reader provides shared machinery for parsing agent session logs:
// the loosely-typed record reader, the format detector, and the interface
// that every dialect reader implements.
package reader

import "github.com/sonnes/replay/core"

// Reader parses one dialect's session files into the unified timeline model.
type Reader interface {
	// ReadFile parses a single session file at the given path. It fails only
	// on I/O errors; malformed records are skipped.
	ReadFile(path string) (*core.Session, error)
}

// Format identifies one of the supported transcript dialects.
type Format string

const (
	// FormatClaude is Claude Code's JSONL transcript format
	// (~/.claude/projects/<project>/<sessionID>.jsonl).
	FormatClaude Format = "claude"

	// FormatCodex is Codex CLI's JSONL rollout format
	// (~/.codex/sessions/YYYY/MM/DD/rollout-*.jsonl). It doubles as the
	// fallback for files that match no dialect marker.
	FormatCodex Format = "codex"

	// FormatGemini is Gemini CLI's session format: legacy whole-document
	// JSON (~/.gemini/tmp/<hash>/logs.json) or the newer JSONL variant.
	FormatGemini Format = "gemini"
)
