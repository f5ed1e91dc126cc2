// Standalone mock profile server for testing the CLI with real Chrome.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/callwatch add http://localhost:9999/profile/saalivaagana
//	go run ./cmd/callwatch serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

var profileStates = [][]string{
	{"Call Now"},
	{"Join Q"},
	{},
}

type mockState struct {
	stateIdx     int
	nextChangeAt time.Time
}

func main() {
	fmt.Println("Mock profile server starting on :9999")
	fmt.Println("Profiles cycle through: available → on call → offline")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		states = make(map[string]*mockState)
		mu     sync.Mutex
	)

	http.HandleFunc("/profile/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/profile/"):]

		mu.Lock()
		state, exists := states[name]
		if !exists {
			state = &mockState{
				stateIdx:     0,
				nextChangeAt: time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second),
			}
			states[name] = state
		}

		if time.Now().After(state.nextChangeAt) {
			state.stateIdx = (state.stateIdx + 1) % len(profileStates)
			state.nextChangeAt = time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
			slog.Info("profile state change", "profile", name, "labels", profileStates[state.stateIdx])
		}
		labels := profileStates[state.stateIdx]
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body><h1>%s</h1>", name)
		for _, label := range labels {
			fmt.Fprintf(w, `<button class="profile_green_btn">%s</button>`, label)
		}
		fmt.Fprint(w, "</body></html>")
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("mock server error", "error", err)
		os.Exit(1)
	}
}
