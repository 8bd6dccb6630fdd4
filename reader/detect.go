package reader

import "path/filepath"

// Detector classifies session files into dialects.
//
// The zero value scans the whole file, which favors precision: markers can
// appear arbitrarily deep when a transcript opens with summary or snapshot
// records. Callers identifying very large files in bulk can set MaxScanLines
// to bound the scan.
type Detector struct {
	// MaxScanLines caps how many records the line scan inspects.
	// Zero means no cap.
	MaxScanLines int
}

// DetectFormat classifies a session file using the default (unbounded) detector.
func DetectFormat(path string) (Format, error) {
	return Detector{}.Detect(path)
}

// Detect returns the dialect of the file at path. It fails only when the
// file cannot be read; unrecognizable content falls back to FormatCodex,
// the most structurally minimal of the three schemas.
func (d Detector) Detect(path string) (Format, error) {
	// Gemini CLI stores legacy sessions as whole-document JSON. Classify by
	// structural shape; on parse failure fall through to line scanning.
	if filepath.Ext(path) == ".json" {
		if doc, err := ReadDocument(path); err == nil {
			if f, ok := classifyDocument(doc); ok {
				return f, nil
			}
		}
	}

	records, err := ReadLines(path)
	if err != nil {
		return "", err
	}

	for i, rec := range records {
		if d.MaxScanLines > 0 && i >= d.MaxScanLines {
			break
		}
		if f, ok := classifyRecord(rec); ok {
			return f, nil
		}
	}
	return FormatCodex, nil
}

// classifyDocument inspects a whole-document JSON shape. Gemini's legacy
// layout is either {"messages": [...]} or a bare list whose first element
// carries a role from the known set.
func classifyDocument(doc any) (Format, bool) {
	switch v := doc.(type) {
	case Record:
		if v.Has("messages") {
			return FormatGemini, true
		}
	case []any:
		if len(v) == 0 {
			return "", false
		}
		if first, ok := v[0].(map[string]any); ok {
			switch Record(first).Str("role") {
			case "user", "model":
				return FormatGemini, true
			}
		}
	}
	return "", false
}

// classifyRecord matches one record against the known dialect markers.
// The first unambiguous match wins.
func classifyRecord(rec Record) (Format, bool) {
	switch rec.Str("type") {
	case "file-history-snapshot":
		return FormatClaude, true

	case "user", "assistant", "progress":
		// Claude Code stamps every message record with a sessionId. Gemini's
		// JSONL variant also uses type "user", but never carries one.
		if rec.Has("sessionId") {
			return FormatClaude, true
		}
		if rec.Str("type") == "user" && rec.Has("content") {
			return FormatGemini, true
		}

	case "session_meta", "response_item", "event_msg", "turn_context":
		return FormatCodex, true

	case "message":
		// Codex legacy: type=message with a role field.
		if rec.Has("role") {
			return FormatCodex, true
		}

	case "session_metadata":
		return FormatGemini, true

	case "gemini":
		if rec.Has("content") {
			return FormatGemini, true
		}
	}
	return "", false
}
