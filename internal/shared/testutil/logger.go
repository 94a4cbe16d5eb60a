package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog.Handler keeping every record in memory
type LogRecorder struct {
	level slog.Level
	store *recordStore
	attrs []slog.Attr
}

type recordStore struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogRecorder records entries at level and above
func NewLogRecorder(level slog.Level) *LogRecorder {
	return &LogRecorder{level: level, store: &recordStore{}}
}

// Logger returns a logger writing into the recorder
func (h *LogRecorder) Logger() *slog.Logger {
	return slog.New(h)
}

func (h *LogRecorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, r)
	return nil
}

func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

// WithGroup is not needed by the code under test; groups are flattened.
func (h *LogRecorder) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of the recorded entries
func (h *LogRecorder) Records() []slog.Record {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]slog.Record(nil), h.store.records...)
}

// Count returns how many records have the given level and message
func (h *LogRecorder) Count(level slog.Level, msg string) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level == level && r.Message == msg {
			n++
		}
	}
	return n
}

// Attr returns the value of key on the first record with msg
func (h *LogRecorder) Attr(msg, key string) (slog.Value, bool) {
	for _, r := range h.Records() {
		if r.Message != msg {
			continue
		}
		var (
			v     slog.Value
			found bool
		)
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				v, found = a.Value, true
				return false
			}
			return true
		})
		if found {
			return v, true
		}
	}
	return slog.Value{}, false
}
