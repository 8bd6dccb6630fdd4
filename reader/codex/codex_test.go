package codex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/replay/core"
)

func readTestdata(t *testing.T, name string) *core.Session {
	t.Helper()
	r := &Reader{}
	s, err := r.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return s
}

func TestReadFileRollout(t *testing.T) {
	s := readTestdata(t, "rollout.jsonl")

	assert.Equal(t, "0198c5c1-rollout", s.ID)
	assert.Equal(t, "gpt-5-codex", s.Version)
	assert.Equal(t, "2025-07-10T08:00:00.000Z", s.StartTime)

	require.Len(t, s.Events, 4)

	assert.Equal(t, core.EventUser, s.Events[0].Type)
	assert.Equal(t, "list the go files", s.Events[0].Content)

	shell := s.Events[1]
	assert.Equal(t, core.EventBash, shell.Type)
	assert.Equal(t, "shell", shell.ToolName)
	assert.Contains(t, shell.Content, "ls *.go")

	result := s.Events[2]
	assert.Equal(t, core.EventToolResult, result.Type)
	assert.Equal(t, "main.go\nutil.go\n", result.Content)

	assert.Equal(t, core.EventText, s.Events[3].Type)
	assert.Equal(t, "There are two Go files.", s.Events[3].Content)
}

func TestTokenCountsAreCumulativeDeltas(t *testing.T) {
	s := readTestdata(t, "rollout.jsonl")

	// Two token_count deltas both count; cached_input_tokens maps to cache reads.
	main := s.Agent("main")
	require.NotNil(t, main)
	assert.Equal(t, 1000, main.InputTokens)
	assert.Equal(t, 57, main.OutputTokens)
	assert.Equal(t, 300, main.CacheReadTokens)
}

func TestReadFileLegacy(t *testing.T) {
	s := readTestdata(t, "legacy.jsonl")

	// Session id falls back to the file stem when no meta record exists.
	assert.Equal(t, "legacy", s.ID)

	require.Len(t, s.Events, 2)
	assert.Equal(t, core.EventUser, s.Events[0].Type)
	assert.Equal(t, "hello", s.Events[0].Content)
	assert.Equal(t, core.EventText, s.Events[1].Type)
	assert.Equal(t, "Hi there.\nHow can I help?", s.Events[1].Content)
}

func TestClassifyTool(t *testing.T) {
	tests := []struct {
		name string
		want core.EventType
	}{
		{"shell", core.EventBash},
		{"write_file", core.EventFileCreate},
		{"create_file", core.EventFileCreate},
		{"edit_file", core.EventFileUpdate},
		{"patch", core.EventFileUpdate},
		{"read_file", core.EventFileRead},
		{"update_plan", core.EventToolCall},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyTool(tt.name), tt.name)
	}
}

func TestLongOutputTruncated(t *testing.T) {
	long := strings.Repeat("x", 5000)
	line := `{"timestamp":"2025-07-10T08:00:00Z","type":"response_item","item":{"type":"function_call_output","output":"` + long + `"}}`
	path := filepath.Join(t.TempDir(), "rollout-big.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(line), 0o644))

	r := &Reader{}
	s, err := r.ReadFile(path)
	require.NoError(t, err)

	require.Len(t, s.Events, 1)
	assert.Len(t, s.Events[0].Content, maxOutputLen)
}

func TestEmptyArgumentsFallBackToToolName(t *testing.T) {
	line := `{"timestamp":"2025-07-10T08:00:00Z","type":"response_item","item":{"type":"function_call","name":"shell","arguments":""}}`
	path := filepath.Join(t.TempDir(), "rollout-noargs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(line), 0o644))

	r := &Reader{}
	s, err := r.ReadFile(path)
	require.NoError(t, err)

	require.Len(t, s.Events, 1)
	assert.Equal(t, "shell", s.Events[0].Content)
}
