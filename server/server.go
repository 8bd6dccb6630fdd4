// Package server provides the local HTTP server for browsing and live-tailing
// agent sessions: JSON endpoints for clients, server-sent events for live
// replay, and HTML pages for humans.
package server

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sonnes/replay/cache"
	"github.com/sonnes/replay/core"
	"github.com/sonnes/replay/redact"
	htmlrender "github.com/sonnes/replay/render/html"
	"github.com/sonnes/replay/scanner"
)

// defaultPollInterval is how often live streams check a session file for
// changes. Parsing an unchanged file is a cache hit, so polling stays cheap.
const defaultPollInterval = 2 * time.Second

// Config controls the server.
type Config struct {
	Scanner *scanner.Scanner
	Cache   *cache.Cache

	// Public enables redaction of secrets and paths in everything sent to
	// clients, and replaces file paths in listings with opaque aliases.
	Public bool

	// PollInterval overrides how often live streams re-check files.
	PollInterval time.Duration
}

// Server serves session timelines over HTTP.
type Server struct {
	scanner  *scanner.Scanner
	cache    *cache.Cache
	public   bool
	poll     time.Duration
	redactor *redact.Redactor
	renderer *htmlrender.Renderer

	mu      sync.Mutex
	aliases map[string]string // opaque alias → real path, public mode only
}

// New creates a Server from the given config.
func New(cfg Config) *Server {
	s := &Server{
		scanner:  cfg.Scanner,
		cache:    cfg.Cache,
		public:   cfg.Public,
		poll:     cfg.PollInterval,
		renderer: htmlrender.New(),
		aliases:  make(map[string]string),
	}
	if s.scanner == nil {
		s.scanner = &scanner.Scanner{}
	}
	if s.cache == nil {
		s.cache = cache.New(cache.DefaultCapacity)
	}
	if s.poll <= 0 {
		s.poll = defaultPollInterval
	}
	if s.public {
		s.redactor = redact.New(redact.Config{Secrets: true, Paths: true})
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/session/{id...}", s.handleSession)
	mux.HandleFunc("GET /api/live/{id...}", s.handleLive)
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /session/{id...}", s.handlePage)
	return mux
}

// handleSessions lists discovered sessions as JSON.
func (s *Server) handleSessions(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, s.summaries())
}

// handleSession parses and returns one full session.
func (s *Server) handleSession(w http.ResponseWriter, req *http.Request) {
	session, _, ok := s.load(w, req)
	if !ok {
		return
	}
	writeJSON(w, session)
}

// handleLive streams a session over server-sent events: one "full" snapshot,
// then "delta" events whenever the file grows.
func (s *Server) handleLive(w http.ResponseWriter, req *http.Request) {
	session, path, ok := s.load(w, req)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	writeSSE(w, "full", session)
	flusher.Flush()

	lastCount := len(session.Events)
	lastMtime := mtime(path)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-req.Context().Done():
			return
		case <-ticker.C:
		}

		current := mtime(path)
		if current == lastMtime {
			continue
		}
		lastMtime = current

		session, err := s.parse(path)
		if err != nil {
			slog.Error("live reparse", "path", path, "error", err)
			continue
		}
		if len(session.Events) <= lastCount {
			continue
		}

		writeSSE(w, "delta", map[string]any{
			"events":       session.Events[lastCount:],
			"agents":       session.Agents,
			"total_events": len(session.Events),
		})
		flusher.Flush()
		lastCount = len(session.Events)
	}
}

// handleIndex renders the HTML session listing.
func (s *Server) handleIndex(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		http.NotFound(w, req)
		return
	}

	summaries := s.summaries()
	entries := make([]htmlrender.IndexEntry, len(summaries))
	for i, sum := range summaries {
		// In public mode Path already holds the alias, the only reference
		// that resolves.
		ref := sum.ID
		if s.public {
			ref = sum.Path
		}
		entries[i] = htmlrender.IndexEntry{
			ID:      sum.ID,
			Project: sum.Project,
			Format:  string(sum.Format),
			Href:    "/session/" + ref,
			ModTime: sum.ModTime,
			Active:  sum.Active,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderIndex(w, entries); err != nil {
		slog.Error("render index", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handlePage renders one session as an HTML timeline.
func (s *Server) handlePage(w http.ResponseWriter, req *http.Request) {
	session, _, ok := s.load(w, req)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, session); err != nil {
		slog.Error("render session", "session_id", session.ID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// load resolves the request's session reference, parses it, and applies
// public-mode redaction. On failure it writes the HTTP error itself.
func (s *Server) load(w http.ResponseWriter, req *http.Request) (*core.Session, string, bool) {
	path, ok := s.resolve(req.PathValue("id"))
	if !ok {
		http.NotFound(w, req)
		return nil, "", false
	}
	session, err := s.parse(path)
	if err != nil {
		slog.Error("parse session", "path", path, "error", err)
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, "", false
	}
	return session, path, true
}

// resolve maps a session reference — an alias (public mode), a file path, or
// a discovered session id — to the transcript path.
func (s *Server) resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}

	s.mu.Lock()
	real, aliased := s.aliases[ref]
	s.mu.Unlock()
	if aliased {
		return real, true
	}

	// Aliases are the only accepted reference in public mode: real paths
	// must not be guessable.
	if s.public {
		return "", false
	}

	if _, err := os.Stat(ref); err == nil {
		return ref, true
	}
	if sum, ok := s.scanner.Lookup(ref); ok {
		return sum.Path, true
	}
	return "", false
}

// parse runs a path through the cache and redacts a clone in public mode.
// The cached session itself is never mutated.
func (s *Server) parse(path string) (*core.Session, error) {
	session, err := s.cache.Parse(path)
	if err != nil {
		return nil, err
	}
	if s.redactor == nil {
		return session, nil
	}
	clone := session.Clone()
	if err := core.Chain(clone, s.redactor); err != nil {
		return nil, fmt.Errorf("redact: %w", err)
	}
	return clone, nil
}

// summaries lists scanner results, aliasing paths in public mode.
func (s *Server) summaries() []scanner.Summary {
	summaries := s.scanner.Scan()
	if !s.public {
		return summaries
	}
	for i := range summaries {
		summaries[i].Path = s.alias(summaries[i].Path)
	}
	return summaries
}

// alias returns a stable opaque handle for a path and remembers the mapping.
func (s *Server) alias(path string) string {
	sum := md5.Sum([]byte(path))
	short := hex.EncodeToString(sum[:])[:12]

	s.mu.Lock()
	s.aliases[short] = path
	s.mu.Unlock()
	return short
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode event", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func mtime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
