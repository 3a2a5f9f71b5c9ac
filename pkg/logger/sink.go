package logger

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one persisted log line.
type Entry struct {
	Level     string
	Message   string
	Meta      json.RawMessage
	Timestamp time.Time
}

// EntryStore persists log entries. The logs repository implements it.
type EntryStore interface {
	SaveLog(ctx context.Context, entry Entry) error
}

// Sink is a zerolog.LevelWriter that copies lines at or above a threshold
// into an EntryStore from a background goroutine. Write never blocks; lines
// are dropped when the buffer is full.
type Sink struct {
	store     EntryStore
	threshold zerolog.Level
	entries   chan Entry
	dropped   atomic.Int64
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

func NewSink(store EntryStore, level string, bufferSize int) *Sink {
	threshold, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		threshold = zerolog.WarnLevel
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}

	s := &Sink{
		store:     store,
		threshold: threshold,
		entries:   make(chan Entry, bufferSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Sink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.NoLevel, p)
}

func (s *Sink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < s.threshold {
		return len(p), nil
	}

	entry, ok := parseEntry(p)
	if !ok {
		return len(p), nil
	}
	if lvl, err := zerolog.ParseLevel(entry.Level); err == nil && lvl < s.threshold {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return len(p), nil
	}
	select {
	case s.entries <- entry:
	default:
		s.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped reports how many lines were discarded because the buffer was full
// or the sink was already closed.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

// Close drains buffered entries and stops the writer goroutine. Lines
// written afterwards are dropped.
func (s *Sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *Sink) run() {
	defer s.wg.Done()
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		// a failing store must not log back into itself
		_ = s.store.SaveLog(ctx, entry)
		cancel()
	}
}

func parseEntry(p []byte) (Entry, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(p, &fields); err != nil {
		return Entry{}, false
	}

	entry := Entry{Timestamp: time.Now().UTC()}
	if raw, ok := fields[zerolog.LevelFieldName]; ok {
		_ = json.Unmarshal(raw, &entry.Level)
		delete(fields, zerolog.LevelFieldName)
	}
	if raw, ok := fields[zerolog.MessageFieldName]; ok {
		_ = json.Unmarshal(raw, &entry.Message)
		delete(fields, zerolog.MessageFieldName)
	}
	if raw, ok := fields[zerolog.TimestampFieldName]; ok {
		var ts string
		if json.Unmarshal(raw, &ts) == nil {
			if parsed, err := time.Parse(zerolog.TimeFieldFormat, ts); err == nil {
				entry.Timestamp = parsed
			}
		}
		delete(fields, zerolog.TimestampFieldName)
	}

	if len(fields) > 0 {
		meta, err := json.Marshal(fields)
		if err == nil {
			entry.Meta = meta
		}
	}
	return entry, true
}
