package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// HeartbeatStore persists the scheduler's liveness signal: the number of
// completed cycles and the completion time of the most recent cycle.
//
// Only the scheduler writes the heartbeat; everyone else is a reader. The
// file is replaced atomically on every write, so a concurrent reader sees
// either the previous complete heartbeat or the new one, never a torn mix.
type HeartbeatStore struct {
	path string
}

// NewHeartbeatStore creates a [HeartbeatStore] backed by the file at path.
// The file is created on the first write; it is not required to exist.
func NewHeartbeatStore(path string) *HeartbeatStore {
	return &HeartbeatStore{path: path}
}

// Path returns the location of the backing heartbeat file.
func (s *HeartbeatStore) Path() string {
	return s.path
}

// Write overwrites the persisted heartbeat with the given cycle count and
// completion time. The replacement goes through a temp file and rename so
// the update is atomic at the file level.
func (s *HeartbeatStore) Write(count int, lastPoll time.Time) error {
	content := fmt.Sprintf("%d\n%s\n", count, lastPoll.Format(TimeLayout))

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write temp heartbeat: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace heartbeat file: %w", err)
	}
	return nil
}

// Read returns the persisted cycle count and last cycle completion time.
//
// Read never fails: a missing, partial, or corrupt heartbeat file yields
// (0, zero time, false), the same as a heartbeat that was never written.
func (s *HeartbeatStore) Read() (count int, lastPoll time.Time, ok bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, time.Time{}, false
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return 0, time.Time{}, false
	}

	count, err = strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || count < 0 {
		return 0, time.Time{}, false
	}

	lastPoll, err = time.ParseInLocation(TimeLayout, strings.TrimSpace(lines[1]), time.Local)
	if err != nil {
		return 0, time.Time{}, false
	}

	return count, lastPoll, true
}
