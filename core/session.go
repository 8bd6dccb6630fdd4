// Package core defines the unified timeline model — a normalized
// representation of CLI agent session logs that all readers produce and all
// renderers consume.
package core

import "sort"

// EventType enumerates the kinds of events that appear in a timeline.
type EventType string

const (
	EventSpawn      EventType = "spawn"
	EventThink      EventType = "think"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventFileCreate EventType = "file_create"
	EventFileUpdate EventType = "file_update"
	EventFileRead   EventType = "file_read"
	EventBash       EventType = "bash"
	EventWebSearch  EventType = "web_search"
	EventText       EventType = "text"
	EventError      EventType = "error"
	EventComplete   EventType = "complete"
	EventUser       EventType = "user"
)

// Event is one atomic occurrence in an agent's timeline. Timestamps are kept
// in their dialect-native string form; all three dialects write RFC 3339
// timestamps, which sort correctly as plain strings.
type Event struct {
	Timestamp string    `json:"timestamp"`
	Type      EventType `json:"type"`
	AgentID   string    `json:"agent_id"`
	ToolName  string    `json:"tool_name,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	Usage
	Content string `json:"content,omitempty"`
}

// Agent is one logical actor: the main agent or a spawned sub-agent. Token
// counters are cumulative and only ever increase during a parse.
type Agent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsSubagent bool   `json:"is_subagent,omitempty"`
	Color      string `json:"color"`
	SpawnTime  string `json:"spawn_time,omitempty"`
	Usage
}

// Palette holds the display colors assigned round-robin to sub-agents,
// wrapping when agents outnumber entries. The main agent's color is fixed
// per dialect and never drawn from the palette.
var Palette = []string{"magenta", "yellow", "green", "red", "blue", "white"}

// PaletteColor returns the palette color for the i-th discovered sub-agent.
func PaletteColor(i int) string {
	return Palette[i%len(Palette)]
}

// Session is the top-level container for one transcript file. It is built up
// by a dialect reader and immutable afterwards; callers that need to mutate a
// Session (e.g. for redaction) must work on a Clone.
type Session struct {
	ID        string            `json:"id"`
	Slug      string            `json:"slug,omitempty"`
	Version   string            `json:"version,omitempty"`
	Branch    string            `json:"branch,omitempty"`
	StartTime string            `json:"start_time,omitempty"`
	Agents    map[string]*Agent `json:"agents"`
	Events    []Event           `json:"events"`
}

// NewSession creates a Session with an empty agent registry.
func NewSession(id string) *Session {
	return &Session{
		ID:     id,
		Agents: make(map[string]*Agent),
	}
}

// AddAgent registers an agent and returns it.
func (s *Session) AddAgent(a *Agent) *Agent {
	s.Agents[a.ID] = a
	return a
}

// Agent returns the agent with the given id, or nil.
func (s *Session) Agent(id string) *Agent {
	return s.Agents[id]
}

// Finalize sorts all events by timestamp (stable, so records that share a
// timestamp keep file order), resolves the session start time from the
// earliest event when no recorded start was found, and stamps each agent's
// spawn time with its first event. Readers call this exactly once, after the
// main records and any sub-agent records have been processed.
func (s *Session) Finalize() {
	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].Timestamp < s.Events[j].Timestamp
	})

	if s.StartTime == "" && len(s.Events) > 0 {
		s.StartTime = s.Events[0].Timestamp
	}

	for _, e := range s.Events {
		if a := s.Agents[e.AgentID]; a != nil && a.SpawnTime == "" {
			a.SpawnTime = e.Timestamp
		}
	}
}

// Clone returns a deep copy of the session. Agents and events are copied so
// transformers can mutate the clone without touching the cached original.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:        s.ID,
		Slug:      s.Slug,
		Version:   s.Version,
		Branch:    s.Branch,
		StartTime: s.StartTime,
		Agents:    make(map[string]*Agent, len(s.Agents)),
		Events:    make([]Event, len(s.Events)),
	}
	for id, a := range s.Agents {
		cp := *a
		out.Agents[id] = &cp
	}
	copy(out.Events, s.Events)
	return out
}
