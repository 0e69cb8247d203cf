package ioctx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionVersion is the format version written to every saved session.
// Present so future formats can be migrated.
const SessionVersion = "1"

// InputEvent is a single recorded keystroke chunk: data, and the delay
// since session start at which it was received.
type InputEvent struct {
	TimestampMs int64  `json:"timestampMs"`
	Data        string `json:"data"`
}

// Session is an ordered, timestamped list of keystroke events recorded
// from an input stream, plus the format version and wall-clock start
// time the events are relative to. Timestamps within Events are
// monotonically non-decreasing.
type Session struct {
	Version   string       `json:"version"`
	StartedAt time.Time    `json:"timestamp"`
	Events    []InputEvent `json:"events"`
}

// SaveSession serializes sess as JSON and writes it to path atomically:
// a temp file is written in the same directory and then renamed into
// place, so a crash mid-write never leaves a partial session file.
func SaveSession(path string, sess Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("ioctx: marshal session: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("ioctx: create temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ioctx: write temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ioctx: close temp session file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ioctx: rename session file into place: %w", err)
	}
	return nil
}

// LoadSession reads and parses a session file previously written by
// SaveSession. A missing or unparsable session file is a framework
// error (per the replay-mode "session file required" rule), so the
// caller is expected to treat a non-nil error here as fatal.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("ioctx: read session file %q: %w", path, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("ioctx: parse session file %q: %w", path, err)
	}
	return sess, nil
}
