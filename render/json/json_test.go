package json

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/replay/core"
)

func TestRenderRoundTrips(t *testing.T) {
	s := core.NewSession("sess-1")
	s.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan", Usage: core.Usage{InputTokens: 10}})
	s.Events = []core.Event{
		{Timestamp: "2025-06-01T10:00:00Z", Type: core.EventUser, AgentID: "main", Content: "hi"},
	}

	var buf strings.Builder
	require.NoError(t, New().Render(&buf, s))

	var decoded core.Session
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &decoded))
	assert.Equal(t, "sess-1", decoded.ID)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, core.EventUser, decoded.Events[0].Type)
	assert.Equal(t, 10, decoded.Agents["main"].InputTokens)
}

func TestRenderOmitsEmptyFields(t *testing.T) {
	s := core.NewSession("sess-1")
	s.Events = []core.Event{{Timestamp: "2025-06-01T10:00:00Z", Type: core.EventText, AgentID: "main"}}

	var buf strings.Builder
	require.NoError(t, New().Render(&buf, s))

	out := buf.String()
	assert.NotContains(t, out, "tool_name")
	assert.NotContains(t, out, "input_tokens")
	assert.NotContains(t, out, "slug")
}

func TestRenderIndented(t *testing.T) {
	s := core.NewSession("sess-1")

	var buf strings.Builder
	require.NoError(t, (&Renderer{Indent: true}).Render(&buf, s))
	assert.Contains(t, buf.String(), "\n  \"id\"")
}
