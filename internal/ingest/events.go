package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType names one phase of the ingest pipeline.
type EventType string

const (
	EventParse     EventType = "parse"
	EventNormalize EventType = "normalize"
	EventWrite     EventType = "write"
	EventError     EventType = "error"
)

// EventLevel is the severity of one logged event.
type EventLevel string

const (
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// Event is one line of the ingest event log.
type Event struct {
	Timestamp time.Time  `json:"ts"`
	Level     EventLevel `json:"level"`
	Event     EventType  `json:"event"`
	Phase     string     `json:"phase,omitempty"`
	Machines  int        `json:"machines,omitempty"`
	Roms      int        `json:"roms,omitempty"`
	Edges     int        `json:"edges,omitempty"`
	Duration  int64      `json:"duration_ms,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// EventLogger writes one JSONL event per ingest phase. A nil *EventLogger
// is a valid no-op logger, so callers never need to branch on whether
// event logging was requested.
type EventLogger struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	path string
}

// NewEventLogger creates an ingest-<timestamp>.jsonl file under outputDir.
func NewEventLogger(outputDir string) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}

	name := fmt.Sprintf("ingest-%s.jsonl", time.Now().Format("20060102-150405"))
	path := filepath.Join(outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{file: f, enc: json.NewEncoder(f), path: path}, nil
}

// NullLogger returns the no-op event logger.
func NullLogger() *EventLogger { return nil }

func (l *EventLogger) log(e Event) {
	if l == nil || l.file == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.enc.Encode(e)
}

// LogPhase records a completed phase and its row counts.
func (l *EventLogger) LogPhase(event EventType, phase string, machines, roms, edges int, duration time.Duration) {
	l.log(Event{
		Level:    LevelInfo,
		Event:    event,
		Phase:    phase,
		Machines: machines,
		Roms:     roms,
		Edges:    edges,
		Duration: duration.Milliseconds(),
	})
}

// LogError records a phase failure.
func (l *EventLogger) LogError(event EventType, err error) {
	l.log(Event{
		Level: LevelError,
		Event: EventError,
		Phase: string(event),
		Error: err.Error(),
	})
}

// Close closes the underlying file.
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the event log's file path, or "" for a nil logger.
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
