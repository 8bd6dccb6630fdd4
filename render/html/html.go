// Package html renders session timelines as standalone HTML pages styled
// with Tailwind CSS v4 (CDN) and syntax highlighting via goldmark + chroma.
package html

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sonnes/replay/core"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

//go:embed templates/*.html
var content embed.FS

// Renderer renders a session to a standalone HTML page.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax
// highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
	)

	tmpl := template.Must(
		template.New("page.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl}
}

// IndexEntry is one row of the session listing page.
type IndexEntry struct {
	ID      string
	Project string
	Format  string
	Href    string
	ModTime time.Time
	Active  bool
}

// pageData is the top-level template data passed to page.html.
type pageData struct {
	Session *core.Session
	Runs    []runData
	Usage   core.Usage
}

// runData is one agent's block of consecutive events.
type runData struct {
	AgentName  string
	ColorClass string
	Subagent   bool
	Events     []eventData
}

// eventData is the per-event template data.
type eventData struct {
	Time     string
	Type     string
	ToolName string
	FilePath string
	Body     template.HTML
}

// indexData is the template data passed to index.html.
type indexData struct {
	Entries []IndexEntry
}

// RenderIndex writes an HTML page listing the given sessions to w.
func (r *Renderer) RenderIndex(w io.Writer, entries []IndexEntry) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", indexData{Entries: entries})
}

// Render writes the session as a complete HTML page to w.
func (r *Renderer) Render(w io.Writer, s *core.Session) error {
	var runs []runData
	for _, run := range core.GroupRuns(s.Events) {
		rd := runData{AgentName: run.AgentID, ColorClass: colorClass("white")}
		if agent := s.Agent(run.AgentID); agent != nil {
			rd.AgentName = agent.Name
			rd.ColorClass = colorClass(agent.Color)
			rd.Subagent = agent.IsSubagent
		}
		for _, e := range run.Events {
			body, err := r.renderBody(e)
			if err != nil {
				return fmt.Errorf("render %s event: %w", e.Type, err)
			}
			rd.Events = append(rd.Events, eventData{
				Time:     clock(e.Timestamp),
				Type:     string(e.Type),
				ToolName: e.ToolName,
				FilePath: e.FilePath,
				Body:     body,
			})
		}
		runs = append(runs, rd)
	}

	var usage core.Usage
	for _, a := range s.Agents {
		usage.Add(a.Usage)
	}

	return r.tmpl.ExecuteTemplate(w, "page.html", pageData{
		Session: s,
		Runs:    runs,
		Usage:   usage,
	})
}

// renderBody converts an event's content to HTML. Text and thinking events
// carry markdown; everything else renders as preformatted text.
func (r *Renderer) renderBody(e core.Event) (template.HTML, error) {
	switch e.Type {
	case core.EventText, core.EventThink:
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(e.Content), &buf); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil

	case core.EventUser:
		cleaned := core.CleanPrompt(e.Content)
		return template.HTML("<p>" + template.HTMLEscapeString(cleaned) + "</p>"), nil

	default:
		if strings.TrimSpace(e.Content) == "" {
			return "", nil
		}
		return template.HTML("<pre>" + template.HTMLEscapeString(e.Content) + "</pre>"), nil
	}
}

// colorClass maps the model's agent color names to Tailwind text classes.
func colorClass(color string) string {
	switch color {
	case "red":
		return "text-red-500"
	case "green":
		return "text-emerald-500"
	case "yellow":
		return "text-amber-500"
	case "blue":
		return "text-blue-500"
	case "magenta":
		return "text-fuchsia-500"
	case "cyan":
		return "text-cyan-500"
	default:
		return "text-slate-400"
	}
}

func clock(timestamp string) string {
	if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		return t.Format("15:04:05")
	}
	return timestamp
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"reltime": core.RelativeTime,
		"number": func(n int) string {
			s := fmt.Sprintf("%d", n)
			if len(s) <= 3 {
				return s
			}
			var b strings.Builder
			lead := len(s) % 3
			if lead > 0 {
				b.WriteString(s[:lead])
			}
			for i := lead; i < len(s); i += 3 {
				if b.Len() > 0 {
					b.WriteByte(',')
				}
				b.WriteString(s[i : i+3])
			}
			return b.String()
		},
	}
}
