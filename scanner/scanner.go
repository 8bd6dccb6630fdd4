// Package scanner discovers agent session files on disk across the three
// CLIs' home directory layouts, producing lightweight summaries without
// parsing transcript content.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sonnes/replay/reader"
)

// activeWindow is how recently a file must have been written to count as a
// live session.
const activeWindow = 2 * time.Minute

// Summary is lightweight metadata for one discovered session file.
type Summary struct {
	ID      string        `json:"id"`
	Path    string        `json:"path"`
	Project string        `json:"project"`
	Format  reader.Format `json:"format"`
	ModTime time.Time     `json:"mod_time"`
	Active  bool          `json:"active"`
}

// Scanner enumerates session files. Zero-value roots default to the CLIs'
// standard locations under the user's home directory; tests override them.
type Scanner struct {
	// ClaudeDir overrides ~/.claude/projects.
	ClaudeDir string
	// CodexDir overrides ~/.codex/sessions.
	CodexDir string
	// GeminiDir overrides ~/.gemini/tmp.
	GeminiDir string

	// Now overrides the clock used for the active check. Nil means time.Now.
	Now func() time.Time
}

// Scan walks all roots and returns summaries sorted newest-first. Unreadable
// roots and files are skipped, not fatal: a missing ~/.codex just means that
// CLI was never installed.
func (s *Scanner) Scan() []Summary {
	var summaries []Summary
	summaries = append(summaries, s.scanRoot(s.claudeDir(), reader.FormatClaude)...)
	summaries = append(summaries, s.scanRoot(s.codexDir(), reader.FormatCodex)...)
	summaries = append(summaries, s.scanRoot(s.geminiDir(), reader.FormatGemini)...)

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ModTime.After(summaries[j].ModTime)
	})
	return summaries
}

// Lookup finds a discovered session by id or path.
func (s *Scanner) Lookup(idOrPath string) (Summary, bool) {
	for _, sum := range s.Scan() {
		if sum.ID == idOrPath || sum.Path == idOrPath {
			return sum, true
		}
	}
	return Summary{}, false
}

func (s *Scanner) scanRoot(root string, format reader.Format) []Summary {
	if root == "" {
		return nil
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var summaries []Summary
	filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !sessionFile(path, format) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		summaries = append(summaries, Summary{
			ID:      sessionID(path),
			Path:    path,
			Project: projectName(root, path),
			Format:  format,
			ModTime: info.ModTime(),
			Active:  now().Sub(info.ModTime()) < activeWindow,
		})
		return nil
	})
	return summaries
}

// sessionFile reports whether path looks like a transcript for the dialect.
// Sub-agent companion files are excluded: they merge into their parent.
func sessionFile(path string, format reader.Format) bool {
	name := filepath.Base(path)
	switch format {
	case reader.FormatClaude:
		return strings.HasSuffix(name, ".jsonl") &&
			!strings.Contains(path, string(filepath.Separator)+"subagents"+string(filepath.Separator))
	case reader.FormatCodex:
		return strings.HasPrefix(name, "rollout-") && strings.HasSuffix(name, ".jsonl")
	case reader.FormatGemini:
		return name == "logs.json" ||
			(strings.HasPrefix(name, "session-") && strings.HasSuffix(name, ".jsonl"))
	}
	return false
}

// projectName derives a human label from the path's first directory under
// the root: the project dir for Claude, the hash dir for Gemini, the year
// for Codex's date layout — close enough for grouping in listings.
func projectName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

func (s *Scanner) claudeDir() string {
	if s.ClaudeDir != "" {
		return s.ClaudeDir
	}
	return homeSub(".claude", "projects")
}

func (s *Scanner) codexDir() string {
	if s.CodexDir != "" {
		return s.CodexDir
	}
	return homeSub(".codex", "sessions")
}

func (s *Scanner) geminiDir() string {
	if s.GeminiDir != "" {
		return s.GeminiDir
	}
	return homeSub(".gemini", "tmp")
}

func homeSub(parts ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home}, parts...)...)
}

// sessionID derives a display id from the file name. Gemini's logs.json is
// named identically in every session dir, so the containing hash dir is the
// only distinguishing name.
func sessionID(path string) string {
	base := filepath.Base(path)
	if base == "logs.json" {
		return filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
