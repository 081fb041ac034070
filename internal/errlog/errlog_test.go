package errlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogger_AppendFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx-update.log")
	logger := New(path)
	logger.nowFunc = func() time.Time {
		return time.Date(2026, 8, 28, 10, 15, 42, 0, time.UTC)
	}

	if err := logger.Append("official full address error connection refused"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := logger.Append("second line"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	want := "2026-08-28 10:15:42 official full address error connection refused\r\n" +
		"2026-08-28 10:15:42 second line\r\n"
	if string(data) != want {
		t.Errorf("unexpected log content:\n%q\nwant:\n%q", string(data), want)
	}
}

func TestLogger_NilAndEmptyPathAreNoops(t *testing.T) {
	var nilLogger *Logger
	if err := nilLogger.Append("dropped"); err != nil {
		t.Errorf("nil logger should be a no-op, got %v", err)
	}
	if err := New("").Append("dropped"); err != nil {
		t.Errorf("empty path should be a no-op, got %v", err)
	}
}
