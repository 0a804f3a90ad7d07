// Package predlog holds the session-scoped prediction log.
package predlog

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/service"
)

// Header is the fixed CSV export header.
const Header = "Batch Number,Prediction,Source,Timestamp"

// TimestampLayout formats entry timestamps in exports.
const TimestampLayout = time.RFC3339

// Observer is notified after each mutation.
type Observer interface {
	ObserveLogEntry(entry model.LogEntry, size int)
	ObserveLogCleared()
}

// Store is an append-only, goroutine-safe log. Entries are kept in insertion
// order and read newest-first.
type Store struct {
	now      func() time.Time
	observer Observer
	entries  []model.LogEntry
	mu       sync.RWMutex
}

var (
	_ service.LogAppender = (*Store)(nil)
	_ service.LogReader   = (*Store)(nil)
)

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the wall clock used to timestamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver attaches a mutation observer.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New creates an empty log.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append timestamps and records an entry. Duplicates are allowed.
func (s *Store) Append(in service.LogInput) model.LogEntry {
	entry := model.LogEntry{
		BatchNumber: in.BatchNumber,
		Prediction:  in.Prediction,
		Source:      in.Source,
		Timestamp:   s.now(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	size := len(s.entries)
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveLogEntry(entry, size)
	}
	return entry
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveLogCleared()
	}
}

// Entries returns a newest-first copy of the log.
func (s *Store) Entries() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LogEntry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// WriteCSV writes the header and one fully quoted row per entry, newest first.
// An empty log produces only the header.
func (s *Store) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, e := range s.Entries() {
		fields := []string{
			e.BatchNumber,
			e.Prediction.Title(),
			string(e.Source),
			e.Timestamp.Format(TimestampLayout),
		}
		for i, f := range fields {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(quote(f)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(f string) string {
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
