package ioctx

import (
	"sync"
	"time"
)

// RawModeSetter toggles a terminal's raw/cooked mode. Implementations
// typically wrap a *term.State-managing type from the terminal library
// in use; RecordableInput and ReplayableInput forward toggle requests to
// one so they remain drop-in substitutes for the underlying input.
type RawModeSetter interface {
	SetRawMode(enabled bool) error
}

// RecordableInput transparently wraps a live input stream: every chunk
// read is forwarded to the caller unchanged and also appended to an
// in-memory session log with a timestamp relative to construction time.
// Safe for concurrent Read and Save calls.
type RecordableInput struct {
	mu     sync.Mutex
	src    ReadCloser
	raw    RawModeSetter
	start  time.Time
	events []InputEvent
}

// ReadCloser is the minimal surface RecordableInput wraps: a reader that
// can be closed when the session ends.
type ReadCloser interface {
	Read(p []byte) (int, error)
	Close() error
}

// NewRecordableInput wraps src, recording every read. raw may be nil if
// the underlying source has no raw-mode concept (e.g. in tests).
func NewRecordableInput(src ReadCloser, raw RawModeSetter) *RecordableInput {
	return &RecordableInput{src: src, raw: raw, start: time.Now()}
}

// Read forwards to the wrapped source, appending a timestamped event for
// every non-empty chunk before returning it to the caller.
func (r *RecordableInput) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.mu.Lock()
		r.events = append(r.events, InputEvent{
			TimestampMs: time.Since(r.start).Milliseconds(),
			Data:        string(p[:n]),
		})
		r.mu.Unlock()
	}
	return n, err
}

// Close closes the wrapped source.
func (r *RecordableInput) Close() error {
	return r.src.Close()
}

// SetRawMode forwards the raw-mode toggle to the wrapped raw-mode
// setter, if one was supplied.
func (r *RecordableInput) SetRawMode(enabled bool) error {
	if r.raw == nil {
		return nil
	}
	return r.raw.SetRawMode(enabled)
}

// Save serializes the events recorded so far to path as a Session,
// atomically (see SaveSession).
func (r *RecordableInput) Save(path string) error {
	r.mu.Lock()
	events := make([]InputEvent, len(r.events))
	copy(events, r.events)
	started := r.start
	r.mu.Unlock()

	return SaveSession(path, Session{
		Version:   SessionVersion,
		StartedAt: started,
		Events:    events,
	})
}
