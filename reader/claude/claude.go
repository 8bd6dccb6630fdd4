// Package claude reads Claude Code session logs (JSONL in ~/.claude/projects/)
// into the unified timeline model, including spawned sub-agent transcripts
// recorded in companion files.
package claude

import (
	"fmt"
	"strings"

	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/reader"
)

// Reader reads Claude Code JSONL session files.
type Reader struct{}

// toolTypes maps Claude Code tool names to event types. Unmapped tools
// classify as a generic tool_call.
var toolTypes = map[string]core.EventType{
	"Bash":      core.EventBash,
	"Read":      core.EventFileRead,
	"Write":     core.EventFileCreate,
	"Edit":      core.EventFileUpdate,
	"Glob":      core.EventToolCall,
	"Grep":      core.EventToolCall,
	"WebSearch": core.EventWebSearch,
	"WebFetch":  core.EventWebSearch,
	"Task":      core.EventSpawn,
}

// ReadFile parses a Claude Code JSONL session file together with any
// sub-agent companion files, merging all events into one timeline.
func (r *Reader) ReadFile(path string) (*core.Session, error) {
	records, err := reader.ReadLines(path)
	if err != nil {
		return nil, err
	}

	session := core.NewSession("unknown")
	session.AddAgent(&core.Agent{ID: "main", Name: "Main", Color: "cyan"})

	subagents, err := discoverSubagents(path, sessionID(path, records))
	if err != nil {
		return nil, err
	}
	for _, sa := range subagents {
		session.AddAgent(sa.agent)
	}

	processRecords(session, records, "main")
	for _, sa := range subagents {
		processRecords(session, sa.records, sa.agent.ID)
	}

	// Session metadata comes from the first message record that carries it.
	for _, rec := range records {
		switch rec.Str("type") {
		case "user", "assistant":
			if rec.Str("sessionId") == "" {
				continue
			}
			session.ID = rec.Str("sessionId")
			session.Slug = rec.Str("slug")
			session.Version = rec.Str("version")
			session.Branch = rec.Str("gitBranch")
			session.StartTime = rec.Str("timestamp")
		}
		if session.ID != "unknown" {
			break
		}
	}

	session.Finalize()
	return session, nil
}

// processRecords routes one file's records into events on the session,
// attributed to the given agent. Each file gets its own usage ledger: request
// ids never span files.
func processRecords(session *core.Session, records []reader.Record, agentID string) {
	agent := session.Agent(agentID)
	ledger := core.NewLedger()

	for _, rec := range records {
		timestamp := rec.Str("timestamp")

		switch rec.Str("type") {
		case "user":
			processUser(session, rec, agentID, timestamp)
		case "assistant":
			processAssistant(session, rec, agent, agentID, timestamp, ledger)
		}
	}
}

// processUser handles a user record: a human text message, or tool results
// that Claude Code reports wrapped in a user turn.
func processUser(session *core.Session, rec reader.Record, agentID, timestamp string) {
	content := rec.Map("message")["content"]

	if text, ok := content.(string); ok {
		if strings.TrimSpace(text) != "" {
			session.Events = append(session.Events, core.Event{
				Timestamp: timestamp,
				Type:      core.EventUser,
				AgentID:   agentID,
				Content:   text,
			})
		}
		return
	}

	blocks, ok := content.([]any)
	if !ok {
		return
	}
	for _, b := range blocks {
		raw, ok := b.(map[string]any)
		if !ok {
			continue
		}
		block := reader.Record(raw)
		if block.Str("type") != "tool_result" {
			continue
		}
		eventType := core.EventToolResult
		if isError, _ := block["is_error"].(bool); isError {
			eventType = core.EventError
		}
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      eventType,
			AgentID:   agentID,
			Content:   extractResultText(block["content"]),
		})
	}
}

// processAssistant handles an assistant record: usage accounting plus
// thinking, text, and tool_use content blocks. Claude Code streams one
// logical response as several records sharing a requestId, each repeating
// the request's usage totals — the ledger makes sure the agent is credited
// once and exactly one event carries the tokens.
func processAssistant(session *core.Session, rec reader.Record, agent *core.Agent, agentID, timestamp string, ledger *core.Ledger) {
	msg := rec.Map("message")
	usageMap := msg.Map("usage")
	requestID := rec.Str("requestId")

	usage := core.Usage{
		InputTokens:     usageMap.Int("input_tokens"),
		OutputTokens:    usageMap.Int("output_tokens"),
		CacheReadTokens: usageMap.Int("cache_read_input_tokens"),
	}
	if requestID != "" {
		ledger.Credit(agent, requestID, usage)
	}

	for _, b := range msg.List("content") {
		raw, ok := b.(map[string]any)
		if !ok {
			continue
		}
		block := reader.Record(raw)

		switch block.Str("type") {
		case "thinking":
			text := block.Str("thinking")
			if strings.TrimSpace(text) == "" {
				continue
			}
			session.Events = append(session.Events, core.Event{
				Timestamp: timestamp,
				Type:      core.EventThink,
				AgentID:   agentID,
				Usage:     ledger.Attribute(requestID, usage),
				Content:   text,
			})

		case "text":
			text := strings.TrimSpace(block.Str("text"))
			if text == "" {
				continue
			}
			session.Events = append(session.Events, core.Event{
				Timestamp: timestamp,
				Type:      core.EventText,
				AgentID:   agentID,
				Content:   text,
			})

		case "tool_use":
			session.Events = append(session.Events, toolUseEvent(block, agentID, timestamp, ledger.Attribute(requestID, usage)))
		}
	}
}

// toolUseEvent builds the event for a tool_use block: classify the tool,
// pull out the most descriptive input field, and carry the file path for
// file-oriented tools.
func toolUseEvent(block reader.Record, agentID, timestamp string, usage core.Usage) core.Event {
	name := block.Str("name")
	if name == "" {
		name = "unknown"
	}
	input := block.Map("input")

	eventType, ok := toolTypes[name]
	if !ok {
		eventType = core.EventToolCall
	}

	var filePath, description string
	switch name {
	case "Read", "Write", "Edit":
		filePath = input.Str("file_path")
	case "Bash":
		description = input.Str("description")
		if description == "" {
			description = input.Str("command")
		}
	case "Task":
		description = input.Str("description")
	case "Glob", "Grep":
		description = input.Str("pattern")
	case "WebSearch":
		description = input.Str("query")
	case "WebFetch":
		description = input.Str("url")
	default:
		if len(input) > 0 {
			description = fmt.Sprintf("%v", map[string]any(input))
		}
	}

	content := description
	if content == "" {
		content = filePath
	}

	return core.Event{
		Timestamp: timestamp,
		Type:      eventType,
		AgentID:   agentID,
		ToolName:  name,
		FilePath:  filePath,
		Usage:     usage,
		Content:   content,
	}
}

// extractResultText flattens tool_result content, which is either a string
// or a list of {"type":"text","text":...} blocks.
func extractResultText(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			raw, ok := item.(map[string]any)
			if !ok {
				continue
			}
			block := reader.Record(raw)
			if block.Str("type") == "text" {
				parts = append(parts, block.Str("text"))
			}
		}
		return strings.Join(parts, "\n")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// sessionID extracts the embedded session id from the records, falling back
// to the file name. Used to locate the sub-agent companion directory.
func sessionID(path string, records []reader.Record) string {
	for _, rec := range records {
		if id := rec.Str("sessionId"); id != "" {
			return id
		}
	}
	return stem(path)
}
