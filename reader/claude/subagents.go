package claude

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/reader"
)

// subagent pairs a discovered sub-agent with its raw records, ready to be
// folded into the parent timeline.
type subagent struct {
	agent   *core.Agent
	records []reader.Record
}

// discoverSubagents locates companion files for sub-agents spawned during
// the session. Claude Code writes them to a directory named after either the
// transcript file stem or the embedded session id:
//
//	<dir>/<stem>/subagents/agent-*.jsonl
//	<dir>/<sessionID>/subagents/agent-*.jsonl
//
// The first candidate directory that exists wins. Files are processed in
// name order so color assignment is deterministic regardless of readdir
// order. A missing directory is the common case and not an error.
func discoverSubagents(mainPath, sessionID string) ([]subagent, error) {
	dir := filepath.Dir(mainPath)
	candidates := []string{
		filepath.Join(dir, stem(mainPath), "subagents"),
		filepath.Join(dir, sessionID, "subagents"),
	}

	var files []string
	for _, c := range candidates {
		if info, err := os.Stat(c); err != nil || !info.IsDir() {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(c, "agent-*.jsonl"))
		if err == nil {
			files = matches
		}
		break
	}
	sort.Strings(files)

	var subagents []subagent
	for _, file := range files {
		records, err := reader.ReadLines(file)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			continue
		}

		id := records[0].Str("agentId")
		if id == "" {
			id = strings.TrimPrefix(stem(file), "agent-")
		}
		name := id
		if len(name) > 7 {
			name = name[:7]
		}

		subagents = append(subagents, subagent{
			agent: &core.Agent{
				ID:         id,
				Name:       name,
				IsSubagent: true,
				Color:      core.PaletteColor(len(subagents)),
			},
			records: records,
		})
	}
	return subagents, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
