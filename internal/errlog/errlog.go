// Package errlog appends explorer failures to a line-oriented log file in
// the legacy "2006-01-02 15:04:05 message" format, which downstream
// tooling still parses. Operational logging stays on slog; this sink only
// exists for compatibility.
package errlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger is an append-only error log sink.
type Logger struct {
	mu   sync.Mutex
	path string

	nowFunc func() time.Time
}

// New creates a sink writing to path. The file is created on first append.
func New(path string) *Logger {
	return &Logger{path: path, nowFunc: time.Now}
}

// Append writes one timestamped line. Lines are CRLF-terminated to match
// the legacy log format.
func (l *Logger) Append(message string) error {
	if l == nil || l.path == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\r\n", l.nowFunc().Format("2006-01-02 15:04:05"), message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append error log: %w", err)
	}
	return nil
}
