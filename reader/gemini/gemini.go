// Package gemini reads Gemini CLI session logs into the unified timeline model.
package gemini

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/reader"
)

// Reader reads Gemini CLI session files.
//
// Gemini CLI stores legacy sessions as whole-document JSON
// (~/.gemini/tmp/<hash>/logs.json) containing a messages array. A JSONL
// variant (session-*.jsonl) is being introduced with "type" fields of
// "session_metadata", "user", "gemini", and "message_update". Both layouts
// normalize to the identical Session shape. functionCall and
// functionResponse parts denote tool invocation and result respectively.
type Reader struct{}

const (
	maxOutputLen = 2000
	maxArgsLen   = 500
)

// ReadFile parses a single Gemini session file, dispatching on extension:
// ".json" is the legacy document layout, anything else the JSONL variant.
func (r *Reader) ReadFile(path string) (*core.Session, error) {
	session := core.NewSession(stem(path))
	main := session.AddAgent(&core.Agent{ID: "main", Name: "Gemini", Color: "blue"})

	var err error
	if filepath.Ext(path) == ".json" {
		err = readDocument(path, session)
	} else {
		err = readLines(path, session, main)
	}
	if err != nil {
		return nil, err
	}

	session.Finalize()
	return session, nil
}

// readDocument parses the legacy whole-document JSON layout.
func readDocument(path string, session *core.Session) error {
	doc, err := reader.ReadDocument(path)
	if err != nil {
		// A corrupt document degrades to an empty session rather than a
		// failed parse; only I/O errors are fatal.
		if _, statErr := os.Stat(path); statErr != nil {
			return err
		}
		return nil
	}

	var messages []any
	switch v := doc.(type) {
	case reader.Record:
		messages = v.List("messages")
		if messages == nil {
			messages = v.List("history")
		}
		if id := v.Str("sessionId"); id != "" {
			session.ID = id
		}
		session.StartTime = v.Str("startTime")
		if session.StartTime == "" {
			session.StartTime = v.Str("createTime")
		}
	case []any:
		messages = v
	}

	for _, m := range messages {
		raw, ok := m.(map[string]any)
		if !ok {
			continue
		}
		msg := reader.Record(raw)

		timestamp := msg.Str("timestamp")
		if timestamp == "" {
			timestamp = msg.Str("createTime")
		}

		for _, p := range msg.List("parts") {
			rawPart, ok := p.(map[string]any)
			if !ok {
				continue
			}
			processPart(session, reader.Record(rawPart), msg.Str("role"), timestamp)
		}
	}
	return nil
}

// processPart emits events for one message part: text, functionCall, or
// functionResponse. A single part may carry several of them.
func processPart(session *core.Session, part reader.Record, role, timestamp string) {
	if text := part.Str("text"); strings.TrimSpace(text) != "" {
		eventType := core.EventText
		if role == "user" {
			eventType = core.EventUser
		}
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      eventType,
			AgentID:   "main",
			Content:   text,
		})
	}

	if fc := part.Map("functionCall"); fc != nil {
		name := fc.Str("name")
		if name == "" {
			name = "unknown"
		}
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      classifyTool(name),
			AgentID:   "main",
			ToolName:  name,
			Content:   marshalArgs(fc["args"], name),
		})
	}

	if fr := part.Map("functionResponse"); fr != nil {
		var content string
		if resp := fr["response"]; resp != nil {
			data, err := json.Marshal(resp)
			if err == nil {
				content = truncate(string(data), maxOutputLen)
			}
		}
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      core.EventToolResult,
			AgentID:   "main",
			Content:   content,
		})
	}
}

// readLines parses the newer JSONL layout.
func readLines(path string, session *core.Session, main *core.Agent) error {
	records, err := reader.ReadLines(path)
	if err != nil {
		return err
	}

	ledger := core.NewLedger()

	for _, rec := range records {
		timestamp := rec.Str("timestamp")

		switch rec.Str("type") {
		case "session_metadata":
			if id := rec.Str("sessionId"); id != "" {
				session.ID = id
			}
			session.StartTime = rec.Str("startTime")
			if session.StartTime == "" {
				session.StartTime = timestamp
			}

		case "user", "gemini":
			eventType := core.EventText
			if rec.Str("type") == "user" {
				eventType = core.EventUser
			}
			processContentBlocks(session, rec, eventType, timestamp)

		case "message_update":
			tokens := rec.Map("tokens")
			ledger.Credit(main, "", core.Usage{
				InputTokens:  tokens.Int("input"),
				OutputTokens: tokens.Int("output"),
			})
		}
	}
	return nil
}

// processContentBlocks walks a JSONL record's content array, collecting text
// parts into one event and emitting tool-call events for embedded
// functionCall blocks.
func processContentBlocks(session *core.Session, rec reader.Record, eventType core.EventType, timestamp string) {
	var textParts []string

	for _, b := range rec.List("content") {
		switch block := b.(type) {
		case string:
			if strings.TrimSpace(block) != "" {
				textParts = append(textParts, block)
			}
		case map[string]any:
			br := reader.Record(block)
			if text := br.Str("text"); strings.TrimSpace(text) != "" {
				textParts = append(textParts, text)
			}
			if fc := br.Map("functionCall"); fc != nil {
				name := fc.Str("name")
				if name == "" {
					name = "unknown"
				}
				session.Events = append(session.Events, core.Event{
					Timestamp: timestamp,
					Type:      classifyShell(name),
					AgentID:   "main",
					ToolName:  name,
					Content:   marshalArgs(fc["args"], name),
				})
			}
		}
	}

	if len(textParts) > 0 {
		session.Events = append(session.Events, core.Event{
			Timestamp: timestamp,
			Type:      eventType,
			AgentID:   "main",
			Content:   strings.Join(textParts, "\n"),
		})
	}
}

// classifyTool maps Gemini tool names to event types by name heuristics,
// since Gemini tools are free-form strings like "read_file" or "edit".
func classifyTool(name string) core.EventType {
	lower := strings.ToLower(name)
	switch {
	case name == "run_shell" || name == "shell":
		return core.EventBash
	case strings.Contains(lower, "edit") || strings.Contains(lower, "update"):
		return core.EventFileUpdate
	case strings.Contains(lower, "read"):
		return core.EventFileRead
	case strings.Contains(lower, "write") || strings.Contains(lower, "create"):
		return core.EventFileCreate
	default:
		return core.EventToolCall
	}
}

// classifyShell is the narrower classification used for functionCall blocks
// embedded in JSONL content, which only distinguish shell commands.
func classifyShell(name string) core.EventType {
	if name == "run_shell" || name == "shell" {
		return core.EventBash
	}
	return core.EventToolCall
}

// marshalArgs serializes tool-call arguments, truncated, falling back to the
// tool name when there are none.
func marshalArgs(args any, name string) string {
	if args == nil {
		return name
	}
	data, err := json.Marshal(args)
	if err != nil || string(data) == "{}" || string(data) == "null" {
		return name
	}
	return truncate(string(data), maxArgsLen)
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
