package reader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxLineSize is the maximum JSONL line size (1 MB). Tool results can exceed
// the default 64 KB bufio.Scanner buffer.
const maxLineSize = 1 << 20

// Record is one raw parsed unit from a source file: one line's JSON object,
// or one element of a document's array. Accessors tolerate missing keys and
// wrong types, returning zero values, because the source schemas evolve
// independently of this code.
type Record map[string]any

// Str returns the string value at key, or "".
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer value at key, or 0. JSON numbers decode as
// float64, so a conversion is always needed.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Map returns the nested object at key, or nil.
func (r Record) Map(key string) Record {
	m, _ := r[key].(map[string]any)
	return Record(m)
}

// List returns the array at key, or nil.
func (r Record) List(key string) []any {
	l, _ := r[key].([]any)
	return l
}

// Has reports whether key is present at all.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// ReadLines reads a line-delimited JSON file into records, one per non-empty
// line. Lines that fail to decode are dropped silently: live files are read
// mid-write, so a half-written trailing line is expected, not an error.
// Only I/O failures (missing file, permissions) are reported.
func ReadLines(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	var records []Record
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan session file: %w", err)
	}
	return records, nil
}

// ReadDocument reads a whole-document JSON file, used for Gemini's legacy
// layout. The result is either a Record (top-level object) or a []any
// (top-level array). Decode errors surface so the format detector can fall
// back to line scanning.
func ReadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session document: %w", err)
	}
	if m, ok := doc.(map[string]any); ok {
		return Record(m), nil
	}
	return doc, nil
}
