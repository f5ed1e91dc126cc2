package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in event files and the heartbeat
// file. It sorts lexicographically in chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// header is the fixed column header written when an event file is created.
var header = []string{"datetime", "available_for_call", "on_call"}

// Observation is a single timestamped pair of availability signals for one
// link in one polling cycle.
//
// Observations are immutable once written. A failed probe produces no
// Observation at all, so aggregate counts reflect only successful samples.
type Observation struct {
	// Timestamp is when the observation was recorded.
	Timestamp time.Time `json:"timestamp"`

	// AvailableForCall reports whether any matching control on the page
	// carried a "call"-like label.
	AvailableForCall bool `json:"available_for_call"`

	// OnCall reports whether any matching control carried a "join q" label.
	OnCall bool `json:"on_call"`
}

// EventStore persists per-link observation history as CSV files in a single
// directory, one file per tracked link.
//
// The store assumes a single writer per link (the scheduler). Writers to
// different links are independent: each link has its own backing file and no
// shared lock is needed.
type EventStore struct {
	dir string
}

// NewEventStore creates an [EventStore] rooted at dir, creating the
// directory if it does not exist.
func NewEventStore(dir string) (*EventStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	return &EventStore{dir: dir}, nil
}

// Key returns the filesystem-safe file name for a link's event file.
//
// The encoding is injective: every byte outside [A-Za-z0-9.-] is replaced by
// "_XX" (uppercase hex), including "_" itself, so two distinct URLs can never
// map to the same file.
func Key(link string) string {
	var b strings.Builder
	b.Grow(len(link) + 8)
	for i := 0; i < len(link); i++ {
		c := link[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	return b.String() + ".csv"
}

// Path returns the full path of the event file backing the given link.
// The file may not exist yet; it is created lazily on first append.
func (s *EventStore) Path(link string) string {
	return filepath.Join(s.dir, Key(link))
}

// Append adds one observation row to the link's event file, creating the
// file with its column header on first use. The row is flushed and synced
// before Append returns, so it is durable once the call succeeds.
func (s *EventStore) Append(link string, obs Observation) error {
	path := s.Path(link)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat event file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := []string{
		obs.Timestamp.Format(TimeLayout),
		boolField(obs.AvailableForCall),
		boolField(obs.OnCall),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write observation: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush observation: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync event file: %w", err)
	}
	return nil
}

// Read returns the link's full observation history in insertion order.
//
// A link with no recorded observations yields an empty slice. Unreadable
// files and malformed rows degrade to missing data rather than an error:
// rows that cannot be parsed are skipped.
func (s *EventStore) Read(link string) []Observation {
	f, err := os.Open(s.Path(link))
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return nil
	}

	obs := make([]Observation, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == header[0] {
			continue
		}
		if len(rec) < 3 {
			continue
		}
		ts, err := time.ParseInLocation(TimeLayout, rec[0], time.Local)
		if err != nil {
			continue
		}
		obs = append(obs, Observation{
			Timestamp:        ts,
			AvailableForCall: rec[1] == "1",
			OnCall:           rec[2] == "1",
		})
	}
	return obs
}

// boolField encodes a signal as the 1/0 column value used in event files.
func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
