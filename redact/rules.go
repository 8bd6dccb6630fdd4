// Package redact sanitizes secrets and file paths from session events before
// they leave the local machine, e.g. when the replay server runs in public
// mode.
package redact

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Rule detects sensitive data in a string and provides a replacement.
type Rule interface {
	Name() string
	Detect(s string) []Match
	Replacement(m Match) string
}

// Match represents a detected occurrence within a string.
type Match struct {
	Start int
	End   int
	Value string
}

type regexRule struct {
	name    string
	pattern *regexp.Regexp
}

func (r *regexRule) Name() string { return r.name }

func (r *regexRule) Detect(s string) []Match {
	locs := r.pattern.FindAllStringIndex(s, -1)
	matches := make([]Match, len(locs))
	for i, loc := range locs {
		matches[i] = Match{Start: loc[0], End: loc[1], Value: s[loc[0]:loc[1]]}
	}
	return matches
}

func (r *regexRule) Replacement(_ Match) string {
	return "[REDACTED]"
}

// SecretRules returns the built-in secret detection rules.
func SecretRules() []Rule {
	return []Rule{
		&regexRule{
			name: "credential_assignment",
			pattern: regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|secret[_-]?key|access[_-]?token|auth[_-]?token` +
				`|password|passwd|pwd|bearer|authorization|private[_-]?key` +
				`|client[_-]?secret|refresh[_-]?token|session[_-]?token` +
				`|database[_-]?url|connection[_-]?string|dsn` +
				`|aws[_-]?secret)\s*[=:]\s*\S+`),
		},
		&regexRule{
			name:    "provider_token",
			pattern: regexp.MustCompile(`(?:ghp_|gho_|github_pat_|xox[bpsar]-|sk-|sk_live_|sk_test_|glpat-|AKIA)[A-Za-z0-9_-]{10,}`),
		},
		&regexRule{
			name:    "private_key",
			pattern: regexp.MustCompile(`-----BEGIN [A-Z ]+PRIVATE KEY-----`),
		},
		&regexRule{
			name:    "connection_string",
			pattern: regexp.MustCompile(`(?:postgres|mongodb|mysql|redis)://[^\s"'` + "`" + `]+`),
		},
		&regexRule{
			name:    "jwt",
			pattern: regexp.MustCompile(`eyJ[A-Za-z0-9\-_]{20,}`),
		},
	}
}

// pathRule rewrites absolute file paths to "…/<basename>" so transcripts can
// be shared without leaking directory layouts or usernames.
type pathRule struct{}

var pathPattern = regexp.MustCompile(`(?:[A-Z]:\\|/(?:home|Users|mnt|var|etc|opt|tmp)/)\S+`)

func (pathRule) Name() string { return "path" }

func (pathRule) Detect(s string) []Match {
	locs := pathPattern.FindAllStringIndex(s, -1)
	matches := make([]Match, len(locs))
	for i, loc := range locs {
		matches[i] = Match{Start: loc[0], End: loc[1], Value: s[loc[0]:loc[1]]}
	}
	return matches
}

func (pathRule) Replacement(m Match) string {
	p := strings.TrimRight(m.Value, `",'` + "`" + `;:)]}>`)
	return fmt.Sprintf("…/%s", filepath.Base(p))
}

// PathRules returns the built-in path rewriting rules.
func PathRules() []Rule {
	return []Rule{pathRule{}}
}
