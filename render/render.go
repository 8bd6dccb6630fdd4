// Package render defines the interface for rendering normalized sessions
// into various output formats.
package render

import (
	"io"

	"github.com/sonnes/replay/core"
)

// Renderer writes a session to the given writer in a specific format.
type Renderer interface {
	Render(w io.Writer, s *core.Session) error
}
