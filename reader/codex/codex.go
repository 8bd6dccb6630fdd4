// Package codex reads OpenAI Codex CLI session logs (JSONL rollouts in
// ~/.codex/sessions/) into the unified timeline model.
package codex

import (
	"path/filepath"
	"strings"

	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/reader"
)

// Reader reads Codex CLI JSONL rollout files.
//
// Each line has a "type" field: "session_meta", "event_msg", or
// "response_item". Legacy files use type "message" with a "role" field
// instead. Best-effort assumptions, since the format evolves:
//
//   - "response_item" lines contain item.type of "message" (role + content)
//     or "function_call" / "function_call_output" (tool invocation, result).
//   - "event_msg" lines with payload.type "token_count" carry token usage in
//     payload.info.last_token_usage. These are cumulative deltas, not
//     request-scoped repeats, so each one counts.
//   - "session_meta" provides the session timestamp and model name.
type Reader struct{}

// maxOutputLen caps tool output content; maxArgsLen caps tool-call arguments.
const (
	maxOutputLen = 2000
	maxArgsLen   = 500
)

// ReadFile parses a single Codex rollout file.
func (r *Reader) ReadFile(path string) (*core.Session, error) {
	records, err := reader.ReadLines(path)
	if err != nil {
		return nil, err
	}

	session := core.NewSession(stem(path))
	main := session.AddAgent(&core.Agent{ID: "main", Name: "Codex", Color: "green"})
	ledger := core.NewLedger()

	for _, rec := range records {
		timestamp := rec.Str("timestamp")

		switch rec.Str("type") {
		case "session_meta":
			session.StartTime = timestamp
			payload := rec.Map("payload")
			if id := payload.Str("id"); id != "" {
				session.ID = id
			}
			if model := payload.Str("model"); model != "" {
				session.Version = model
			}

		case "response_item":
			processItem(session, rec.Map("item"), timestamp)

		case "message":
			// Legacy format: role directly on the record.
			if !rec.Has("role") {
				continue
			}
			content := extractContent(rec["content"])
			switch rec.Str("role") {
			case "user":
				session.Events = append(session.Events, core.Event{
					Timestamp: timestamp,
					Type:      core.EventUser,
					AgentID:   "main",
					Content:   content,
				})
			case "assistant":
				session.Events = append(session.Events, core.Event{
					Timestamp: timestamp,
					Type:      core.EventText,
					AgentID:   "main",
					Content:   content,
				})
			}

		case "event_msg":
			payload := rec.Map("payload")
			if payload == nil {
				payload = rec.Map("msg")
			}
			if payload.Str("type") != "token_count" {
				continue
			}
			usage := payload.Map("info").Map("last_token_usage")
			cache := usage.Int("cached_input_tokens")
			if cache == 0 {
				cache = usage.Int("cache_read_input_tokens")
			}
			ledger.Credit(main, "", core.Usage{
				InputTokens:     usage.Int("input_tokens"),
				OutputTokens:    usage.Int("output_tokens"),
				CacheReadTokens: cache,
			})

		case "turn_context":
			if model := rec.Map("payload").Str("model"); model != "" {
				session.Version = model
			}
		}
	}

	session.Finalize()
	return session, nil
}

// processItem handles one response_item payload: a conversation message, a
// tool invocation, or a tool result.
func processItem(session *core.Session, item reader.Record, timestamp string) {
	if item == nil {
		return
	}

	switch item.Str("type") {
	case "message":
		content := extractContent(item["content"])
		eventType := core.EventText
		if item.Str("role") == "user" {
			eventType = core.EventUser
		}
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      eventType,
			AgentID:   "main",
			Content:   content,
		})

	case "function_call":
		name := item.Str("name")
		if name == "" {
			name = "unknown"
		}
		content := truncate(item.Str("arguments"), maxArgsLen)
		if content == "" {
			content = name
		}
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      classifyTool(name),
			AgentID:   "main",
			ToolName:  name,
			Content:   content,
		})

	case "function_call_output":
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      core.EventToolResult,
			AgentID:   "main",
			Content:   truncate(item.Str("output"), maxOutputLen),
		})
	}
}

// classifyTool maps Codex tool names to event types.
func classifyTool(name string) core.EventType {
	switch name {
	case "shell":
		return core.EventBash
	case "write_file", "create_file":
		return core.EventFileCreate
	case "edit_file", "patch":
		return core.EventFileUpdate
	case "read_file":
		return core.EventFileRead
	default:
		return core.EventToolCall
	}
}

// extractContent flattens a Codex content field, which is either a plain
// string or a list of blocks carrying "text" or "content". Unknown block
// shapes are skipped.
func extractContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, block := range c {
			switch b := block.(type) {
			case string:
				if b != "" {
					parts = append(parts, b)
				}
			case map[string]any:
				text := reader.Record(b).Str("text")
				if text == "" {
					text = reader.Record(b).Str("content")
				}
				if text != "" {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// stem returns the file name without its extension, the default session id.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
