package log

import (
	"os"
	"sync"
)

// FileLogger appends session events to a CBOR log file. Safe for
// concurrent use; events from concurrent sessions interleave but each
// event is written whole.
type FileLogger struct {
	mu     sync.Mutex
	file   *os.File
	closed bool
}

// NewFileLogger opens path for appending, creating it with mode 0644 if
// needed. An existing log grows; it is never truncated.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f}, nil
}

// Log appends one event. Encoding and write errors are dropped: a
// failing log file must not fail the session it observes. Each event is
// marshalled first and written with a single Write call.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_, _ = l.file.Write(data)
}

// Close flushes and closes the file. Further Log calls are ignored.
// Close is idempotent.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
