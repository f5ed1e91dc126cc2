package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/apillai/callwatch/internal/registry"
	"github.com/apillai/callwatch/internal/store"
)

const defaultLink = "https://www.example.com/default"

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	reg := registry.New(filepath.Join(dir, "all_links.txt"), defaultLink)
	events, err := store.NewEventStore(dir)
	if err != nil {
		t.Fatalf("NewEventStore() error = %v", err)
	}
	heartbeat := store.NewHeartbeatStore(filepath.Join(dir, "heartbeat.txt"))

	return NewServer(reg, events, heartbeat, 0, nil, "", testLogger())
}

func decodeJSON(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandleLinks_GetReturnsDefault(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleLinks(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Links []string `json:"links"`
	}
	decodeJSON(t, rec.Body, &resp)
	if len(resp.Links) != 1 || resp.Links[0] != defaultLink {
		t.Errorf("links = %v, want [%s]", resp.Links, defaultLink)
	}
}

func TestHandleLinks_PostRegisters(t *testing.T) {
	s := newTestServer(t)

	body := strings.NewReader(`{"url": "https://a.example.com"}`)
	rec := httptest.NewRecorder()
	s.handleLinks(rec, httptest.NewRequest(http.MethodPost, "/api/links", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp struct {
		Added bool `json:"added"`
	}
	decodeJSON(t, rec.Body, &resp)
	if !resp.Added {
		t.Error("added = false, want true")
	}

	// the new link must be visible to subsequent loads
	links := s.registry.Load()
	if len(links) != 1 || links[0] != "https://a.example.com" {
		t.Errorf("registry after POST = %v", links)
	}
}

func TestHandleLinks_PostDuplicateIsNoOp(t *testing.T) {
	s := newTestServer(t)

	post := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"url": "https://a.example.com"}`)
		s.handleLinks(rec, httptest.NewRequest(http.MethodPost, "/api/links", body))
		return rec
	}

	if rec := post(); rec.Code != http.StatusCreated {
		t.Fatalf("first POST status = %d, want %d", rec.Code, http.StatusCreated)
	}

	rec := post()
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate POST status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Added bool `json:"added"`
	}
	decodeJSON(t, rec.Body, &resp)
	if resp.Added {
		t.Error("added = true for duplicate, want false")
	}
}

func TestHandleLinks_PostRejectsBadURLs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"empty url", `{"url": ""}`},
		{"no scheme", `{"url": "example.com"}`},
		{"bad scheme", `{"url": "ftp://example.com"}`},
		{"no host", `{"url": "https://"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := httptest.NewRecorder()
			s.handleLinks(rec, httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleHistory_RequiresLink(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleHistory_EmptyAndPopulated(t *testing.T) {
	s := newTestServer(t)
	link := "https://a.example.com"

	get := func() (int, []store.Observation) {
		rec := httptest.NewRecorder()
		s.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history?link="+link, nil))
		var resp struct {
			Observations []store.Observation `json:"observations"`
		}
		decodeJSON(t, rec.Body, &resp)
		return rec.Code, resp.Observations
	}

	code, obs := get()
	if code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if len(obs) != 0 {
		t.Errorf("observations = %d, want 0 before any append", len(obs))
	}

	at := time.Date(2025, 6, 3, 10, 0, 0, 0, time.Local)
	if err := s.events.Append(link, store.Observation{Timestamp: at, AvailableForCall: true}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if _, obs = get(); len(obs) != 1 {
		t.Fatalf("observations = %d, want 1", len(obs))
	}
	if !obs[0].AvailableForCall || obs[0].OnCall {
		t.Errorf("observation = %+v, want available=true on_call=false", obs[0])
	}
}

func TestHandleSummary(t *testing.T) {
	s := newTestServer(t)
	link := "https://a.example.com"

	at := time.Date(2025, 6, 3, 10, 0, 0, 0, time.Local)
	if err := s.events.Append(link, store.Observation{Timestamp: at, AvailableForCall: true, OnCall: true}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	rec := httptest.NewRecorder()
	s.handleSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary?link="+link, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Summary struct {
			TotalObservations int `json:"total_observations"`
			Hourly            []struct {
				Hour             int `json:"hour"`
				AvailableForCall int `json:"available_for_call"`
			} `json:"hourly"`
		} `json:"summary"`
	}
	decodeJSON(t, rec.Body, &resp)
	if resp.Summary.TotalObservations != 1 {
		t.Errorf("total_observations = %d, want 1", resp.Summary.TotalObservations)
	}
	if len(resp.Summary.Hourly) != 24 {
		t.Fatalf("hourly buckets = %d, want 24", len(resp.Summary.Hourly))
	}
	if resp.Summary.Hourly[10].AvailableForCall != 1 {
		t.Errorf("hourly[10].available_for_call = %d, want 1", resp.Summary.Hourly[10].AvailableForCall)
	}
}

func TestHandleHeartbeat_PendingBeforeFirstCycle(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHeartbeat(rec, httptest.NewRequest(http.MethodGet, "/api/heartbeat", nil))

	var resp heartbeatResponse
	decodeJSON(t, rec.Body, &resp)
	if !resp.Pending {
		t.Error("pending = false before first cycle, want true")
	}
	if resp.PollCount != 0 {
		t.Errorf("poll_count = %d, want 0", resp.PollCount)
	}
}

func TestHandleHeartbeat_AfterCycle(t *testing.T) {
	s := newTestServer(t)

	at := time.Date(2025, 6, 3, 12, 0, 0, 0, time.Local)
	if err := s.heartbeat.Write(5, at); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rec := httptest.NewRecorder()
	s.handleHeartbeat(rec, httptest.NewRequest(http.MethodGet, "/api/heartbeat", nil))

	var resp heartbeatResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Pending {
		t.Error("pending = true after a cycle, want false")
	}
	if resp.PollCount != 5 {
		t.Errorf("poll_count = %d, want 5", resp.PollCount)
	}
	if resp.LastPoll != "2025-06-03 12:00:00" {
		t.Errorf("last_poll = %q, want %q", resp.LastPoll, "2025-06-03 12:00:00")
	}
}

func TestHandleSSE_PushesSnapshot(t *testing.T) {
	s := newTestServer(t)
	if err := s.heartbeat.Write(3, time.Now()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handleSSE(rec, req)
	}()

	// let the initial push land, then disconnect
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handleSSE did not return after client disconnect")
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("body = %q, want SSE data frame", body)
	}
	if !strings.Contains(body, `"poll_count":3`) {
		t.Errorf("body = %q, want heartbeat snapshot with poll_count 3", body)
	}
}

func TestHandleDashboard_TitleSubstitution(t *testing.T) {
	s := newTestServer(t)
	s.title = "My <Tracker>"
	s.assets = fstest.MapFS{
		"assets/index.html": &fstest.MapFile{Data: []byte("<title>{{.Title}}</title>")},
	}

	rec := httptest.NewRecorder()
	s.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "My &lt;Tracker&gt;") {
		t.Errorf("body = %q, want HTML-escaped title", body)
	}
	if strings.Contains(body, "{{.Title}}") {
		t.Errorf("body = %q, placeholder not substituted", body)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	// shutdown is asynchronous; give it a moment
	time.Sleep(100 * time.Millisecond)
}
