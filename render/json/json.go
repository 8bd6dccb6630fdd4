// Package json renders sessions as JSON (serializes the unified model as-is).
package json

import (
	"encoding/json"
	"io"

	"github.com/sonnes/replay/core"
)

// Renderer renders a session to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// New creates a JSON Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the session as one JSON document to w.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(s)
}
