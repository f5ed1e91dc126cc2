package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/apillai/callwatch/internal/aggregate"
	"github.com/apillai/callwatch/internal/registry"
	"github.com/apillai/callwatch/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write
	// operation. This prevents goroutine leaks when clients are slow or
	// disconnected. Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// sseRefreshInterval is how often the SSE stream re-reads the persisted
	// files and pushes a fresh snapshot to the client.
	sseRefreshInterval = 2 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "callwatch"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Server handles HTTP requests for the callwatch dashboard and API.
//
// The server is a pure reader of the engine's persisted files plus the one
// operator write (registering a link). It never shares memory with the
// scheduler: every request re-reads the link list, event files, or heartbeat
// file, so it always observes the last durably written state.
//
// Endpoints:
//   - GET  /: embedded dashboard page
//   - GET  /api/links: tracked links
//   - POST /api/links: register a new link (add-if-absent)
//   - GET  /api/history?link=: full observation history for one link
//   - GET  /api/summary?link=: hourly/daily/weekday aggregates for one link
//   - GET  /api/heartbeat: cycle count and last cycle time
//   - GET  /api/sse?link=: Server-Sent Events snapshot stream
type Server struct {
	registry   *registry.Registry
	events     *store.EventStore
	heartbeat  *store.HeartbeatStore
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// The server is not started until [Server.Start] is called. assets may be
// nil, in which case no dashboard page is served (API only). An empty title
// defaults to "callwatch".
func NewServer(reg *registry.Registry, events *store.EventStore, heartbeat *store.HeartbeatStore, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	return &Server{
		registry:  reg,
		events:    events,
		heartbeat: heartbeat,
		port:      port,
		assets:    assets,
		title:     title,
		logger:    logger,
	}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server runs until the context is cancelled, at which
// point it initiates a graceful shutdown with a 5-second timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/links", s.handleLinks)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/heartbeat", s.handleHeartbeat)
	mux.HandleFunc("/api/sse", s.handleSSE)

	if s.assets != nil {
		mux.HandleFunc("/", s.handleDashboard)
	}

	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler: mux,
		// BaseContext derives all request contexts from the server context,
		// so cancelling ctx also ends long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleLinks lists the tracked links (GET) or registers a new one (POST).
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, map[string]any{"links": s.registry.Load()})

	case http.MethodPost:
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		link := strings.TrimSpace(body.URL)
		if err := registry.ValidateURL(link); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		err := s.registry.Add(link)
		switch {
		case errors.Is(err, registry.ErrExists):
			// a no-op, not an error: the link is already tracked
			s.writeJSON(w, http.StatusOK, map[string]any{"added": false, "link": link})
		case err != nil:
			s.logger.Error("failed to register link", "link", link, "error", err)
			http.Error(w, "failed to register link", http.StatusInternalServerError)
		default:
			s.logger.Info("link registered", "link", link)
			s.writeJSON(w, http.StatusCreated, map[string]any{"added": true, "link": link})
		}

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleHistory returns a link's full observation history in insertion order.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	link := r.URL.Query().Get("link")
	if link == "" {
		http.Error(w, "link query parameter is required", http.StatusBadRequest)
		return
	}

	observations := s.events.Read(link)
	if observations == nil {
		observations = []store.Observation{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"link":         link,
		"observations": observations,
	})
}

// handleSummary returns the hourly/daily/weekday aggregates for one link.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	link := r.URL.Query().Get("link")
	if link == "" {
		http.Error(w, "link query parameter is required", http.StatusBadRequest)
		return
	}

	summary := aggregate.Summarize(s.events.Read(link))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"link":    link,
		"summary": summary,
	})
}

// heartbeatResponse is the JSON shape of the engine's liveness signal.
// Pending is true until the first cycle completes; the dashboard shows a
// pending state rather than an error.
type heartbeatResponse struct {
	PollCount int    `json:"poll_count"`
	LastPoll  string `json:"last_poll,omitempty"`
	Pending   bool   `json:"pending"`
}

func (s *Server) readHeartbeat() heartbeatResponse {
	count, lastPoll, ok := s.heartbeat.Read()
	if !ok {
		return heartbeatResponse{Pending: true}
	}
	return heartbeatResponse{
		PollCount: count,
		LastPoll:  lastPoll.Format(store.TimeLayout),
	}
}

// handleHeartbeat returns the engine's liveness signal.
func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.readHeartbeat())
}

// ssePayload is one snapshot pushed on the SSE stream. Link fields are only
// populated when the client asked to follow a specific link.
type ssePayload struct {
	Heartbeat    heartbeatResponse  `json:"heartbeat"`
	Link         string             `json:"link,omitempty"`
	Observations int                `json:"observations,omitempty"`
	Latest       *store.Observation `json:"latest,omitempty"`
}

func (s *Server) snapshot(link string) ssePayload {
	payload := ssePayload{Heartbeat: s.readHeartbeat()}
	if link != "" {
		history := s.events.Read(link)
		payload.Link = link
		payload.Observations = len(history)
		if len(history) > 0 {
			latest := history[len(history)-1]
			payload.Latest = &latest
		}
	}
	return payload
}

// handleSSE streams snapshots of the persisted state via Server-Sent Events.
//
// Each tick re-reads the heartbeat file (and, when a link is given, that
// link's event file) and pushes the snapshot, so the stream is still driven
// purely by durable state. Write deadlines prevent goroutine leaks when
// clients are slow or disconnected.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// ResponseController provides deadline-aware write and flush operations.
	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	link := r.URL.Query().Get("link")

	push := func() error {
		data, err := json.Marshal(s.snapshot(link))
		if err != nil {
			return nil
		}
		return writeAndFlush(data)
	}

	if err := push(); err != nil {
		return
	}

	ticker := time.NewTicker(sseRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := push(); err != nil {
				return
			}
		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
