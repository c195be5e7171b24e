// Package audit provides the append-only JSON-Lines audit trail of
// inspection verdicts.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
)

// Status is the recorded outcome of one inspection.
type Status string

const (
	StatusClean   Status = "CLEAN"
	StatusBlocked Status = "BLOCKED"
)

// Event is one audit record. Events are written exactly once and never
// mutated or deleted.
type Event struct {
	Timestamp  string `json:"timestamp"`
	Filename   string `json:"filename"`
	Status     Status `json:"status"`
	Reason     string `json:"reason"`
	FileHash   string `json:"file_hash_sha256"`
	ScanEngine string `json:"scan_engine"`
}

// NewEvent builds an event stamped with the current UTC time and the scan
// engine version.
func NewEvent(filename string, status Status, reason, fileHash string) Event {
	return Event{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Filename:   filename,
		Status:     status,
		Reason:     reason,
		FileHash:   fileHash,
		ScanEngine: config.ScanEngineVersion,
	}
}

// Logger appends events to a JSONL file. It is safe for concurrent use:
// inspections of different files may run alongside transformations that log
// their own events, so every append happens under an internal write lock on
// a file opened in append mode.
type Logger struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewLogger opens (or creates) the audit log at path in append-only mode.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}

	return &Logger{path: path, file: file}, nil
}

// Record appends one event as a single JSON line.
func (l *Logger) Record(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// Path returns the location of the audit log file.
func (l *Logger) Path() string {
	return l.path
}

// Close releases the underlying file handle.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadEvents loads every event from an audit log file, oldest first. Used by
// reporting, never by the write path.
func ReadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var events []Event
	for _, line := range splitLines(data) {
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("corrupt audit log line: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
