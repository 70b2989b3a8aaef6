package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.slog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.slog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(NewStateChangeEvent("sess-1", "DISCONNECTED", "IDLE", "connected"))
	logger.Log(NewExchangeEvent("sess-1", "FETC", "FETC?", "1.234,5.678", time.Millisecond))
	logger.Log(NewExchangeEvent("sess-2", "*IDN", "*IDN?", "KEITHLEY,2461,0,1.7.12b", time.Millisecond))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var events []Event
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		events = append(events, event)
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Category != CategoryState {
		t.Errorf("first event category: got %v, want %v", events[0].Category, CategoryState)
	}
	if events[1].Exchange == nil || events[1].Exchange.Received != "1.234,5.678" {
		t.Errorf("second event exchange payload mismatch: %+v", events[1].Exchange)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.slog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(NewErrorEvent("sess-1", "timeout", "FETC?"))
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("got %d events after two append sessions, want 2", count)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.slog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const goroutines = 8
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				logger.Log(NewFrameEvent("sess-1", DirectionOut, []byte("*OPC?\n")))
			}
		}()
	}
	wg.Wait()

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != goroutines*perGoroutine {
		t.Errorf("got %d events, want %d", count, goroutines*perGoroutine)
	}
}

func TestFileLoggerLogAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.slog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}

	// Must not panic or write
	logger.Log(NewErrorEvent("sess-1", "late", ""))
}
