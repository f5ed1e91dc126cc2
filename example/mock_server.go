package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// profileStates are the label sets a mock profile cycles through. The first
// entry means available for a call, the second means busy on a call, the
// third means offline.
var profileStates = [][]string{
	{"Call Now"},
	{"Join Q"},
	{},
}

// mockState tracks the current state and next change time for one profile.
type mockState struct {
	stateIdx     int
	nextChangeAt time.Time
}

// StartMockProfileServer runs a mock profile site whose pages cycle through
// availability states every 20-60 seconds.
//
// Two routes are served per profile name:
//
//	/profile/{name}        HTML page with button.profile_green_btn elements,
//	                       for probing with the real headless Chrome browser
//	/labels/{name}         the current button labels as a JSON array, for
//	                       probing with the HTTP-backed demo browser
//
// Call this in a goroutine before starting the watcher.
func StartMockProfileServer(addr string) {
	var (
		states = make(map[string]*mockState)
		mu     sync.Mutex
	)

	labelsFor := func(name string) []string {
		mu.Lock()
		defer mu.Unlock()

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
		return profileStates[state.stateIdx]
	}

	http.HandleFunc("/profile/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/profile/"):]
		labels := labelsFor(name)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body><h1>%s</h1>", name)
		for _, label := range labels {
			fmt.Fprintf(w, `<button class="profile_green_btn">%s</button>`, label)
		}
		fmt.Fprint(w, "</body></html>")
	})

	http.HandleFunc("/labels/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/labels/"):]
		labels := labelsFor(name)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(labels); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
