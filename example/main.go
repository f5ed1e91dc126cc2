package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/apillai/callwatch"
)

// httpSession probes the mock server over plain HTTP instead of rendering
// the page in a browser: it maps a /profile/ URL to the matching /labels/
// route and decodes the current button labels from JSON.
type httpSession struct {
	ctx context.Context
	url string
}

func (s *httpSession) Navigate(url string) error {
	s.url = strings.Replace(url, "/profile/", "/labels/", 1)
	return nil
}

func (s *httpSession) WaitVisible(selector string) error { return nil }

func (s *httpSession) Texts(selector string) ([]string, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var labels []string
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, err
	}
	return labels, nil
}

func (s *httpSession) Close() error { return nil }

type httpBrowser struct{}

func (httpBrowser) NewSession(ctx context.Context) (callwatch.Session, error) {
	return &httpSession{ctx: ctx}, nil
}

func main() {
	// start the mock profile site (see mock_server.go)
	go StartMockProfileServer(":9999")
	time.Sleep(100 * time.Millisecond)

	dataDir := "example_tracking_data"

	cw, err := callwatch.New(
		callwatch.WithDataDir(dataDir),
		callwatch.WithDefaultLink("http://localhost:9999/profile/saalivaagana"),
		callwatch.WithPollInterval(10*time.Second),
		callwatch.WithProbeTimeout(5*time.Second),
		callwatch.WithPort(8080),
		callwatch.WithTitle("CallWatch Demo"),
		callwatch.WithBrowser(httpBrowser{}),
		callwatch.WithObservationCallback(func(obs callwatch.Observation) {
			if obs.AvailableForCall {
				slog.Info("profile available", "link", obs.Link)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create callwatch", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   CallWatch Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   A mock profile on :9999 cycles between available,   ║")
	fmt.Println("  ║   on a call, and offline every 20-60 seconds.         ║")
	fmt.Println("  ║   Observations accumulate in example_tracking_data/.  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cw.Start(ctx); err != nil {
		slog.Error("callwatch error", "error", err)
		os.Exit(1)
	}
}
