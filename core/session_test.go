package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeSortsAndResolvesStart(t *testing.T) {
	s := NewSession("s1")
	s.AddAgent(&Agent{ID: "main", Name: "Main"})
	s.AddAgent(&Agent{ID: "a1", Name: "worker", IsSubagent: true})

	// Deliberately out of order, with a sub-agent event interleaved.
	s.Events = []Event{
		{Timestamp: "2025-06-01T10:00:05Z", Type: EventText, AgentID: "main"},
		{Timestamp: "2025-06-01T10:00:01Z", Type: EventUser, AgentID: "main"},
		{Timestamp: "2025-06-01T10:00:03Z", Type: EventBash, AgentID: "a1"},
	}
	s.Finalize()

	require.Len(t, s.Events, 3)
	assert.Equal(t, EventUser, s.Events[0].Type)
	assert.Equal(t, EventBash, s.Events[1].Type)
	assert.Equal(t, EventText, s.Events[2].Type)

	assert.Equal(t, "2025-06-01T10:00:01Z", s.StartTime)
	assert.Equal(t, "2025-06-01T10:00:01Z", s.Agent("main").SpawnTime)
	assert.Equal(t, "2025-06-01T10:00:03Z", s.Agent("a1").SpawnTime)
}

func TestFinalizeIsStableForEqualTimestamps(t *testing.T) {
	s := NewSession("s1")
	s.AddAgent(&Agent{ID: "main"})
	s.Events = []Event{
		{Timestamp: "2025-06-01T10:00:00Z", AgentID: "main", Content: "first"},
		{Timestamp: "2025-06-01T10:00:00Z", AgentID: "main", Content: "second"},
		{Timestamp: "2025-06-01T10:00:00Z", AgentID: "main", Content: "third"},
	}
	s.Finalize()

	assert.Equal(t, "first", s.Events[0].Content)
	assert.Equal(t, "second", s.Events[1].Content)
	assert.Equal(t, "third", s.Events[2].Content)
}

func TestFinalizeKeepsRecordedStartTime(t *testing.T) {
	s := NewSession("s1")
	s.StartTime = "2025-06-01T09:00:00Z"
	s.AddAgent(&Agent{ID: "main"})
	s.Events = []Event{{Timestamp: "2025-06-01T10:00:00Z", AgentID: "main"}}
	s.Finalize()

	assert.Equal(t, "2025-06-01T09:00:00Z", s.StartTime)
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewSession("s1")
	s.AddAgent(&Agent{ID: "main", Usage: Usage{InputTokens: 10}})
	s.Events = []Event{{Timestamp: "2025-06-01T10:00:00Z", AgentID: "main", Content: "hello"}}

	clone := s.Clone()
	clone.Events[0].Content = "changed"
	clone.Agent("main").InputTokens = 999
	clone.AddAgent(&Agent{ID: "extra"})

	assert.Equal(t, "hello", s.Events[0].Content)
	assert.Equal(t, 10, s.Agent("main").InputTokens)
	assert.Nil(t, s.Agent("extra"))
}

func TestPaletteColorWraps(t *testing.T) {
	require.NotEmpty(t, Palette)
	assert.Equal(t, Palette[0], PaletteColor(0))
	assert.Equal(t, Palette[1], PaletteColor(1))
	assert.Equal(t, Palette[0], PaletteColor(len(Palette)))
}
