package ioctx

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// TeeWriter mirrors every write to a real output and to a log file. Each
// line written to the file is prefixed with an RFC3339 timestamp; empty
// lines and continuation lines within a chunk are not re-prefixed.
// Escape-sequence stripping for the file copy is controlled by
// StripANSI; the terminal copy always keeps the original bytes.
type TeeWriter struct {
	mu          sync.Mutex
	real        io.Writer
	file        *os.File
	StripANSI   bool
	atLineStart bool
}

// NewTeeWriter opens (creating or appending to) the file at path and
// returns a TeeWriter mirroring writes to real and that file.
func NewTeeWriter(real io.Writer, path string, stripANSI bool) (*TeeWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &TeeWriter{
		real:        real,
		file:        f,
		StripANSI:   stripANSI,
		atLineStart: true,
	}, nil
}

// Write mirrors p to the real output unmodified, then writes a
// timestamped, optionally escape-stripped copy to the log file.
func (t *TeeWriter) Write(p []byte) (int, error) {
	n, err := t.real.Write(p)
	if err != nil {
		return n, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fileData := p
	if t.StripANSI {
		fileData = []byte(ansi.Strip(string(p)))
	}
	t.writeTimestamped(fileData)

	return n, nil
}

func (t *TeeWriter) writeTimestamped(data []byte) {
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		hasNewline := idx >= 0

		var content []byte
		if hasNewline {
			content = data[:idx]
			data = data[idx+1:]
		} else {
			content = data
			data = nil
		}

		if t.atLineStart && len(content) > 0 {
			t.file.WriteString(time.Now().Format(time.RFC3339) + " ")
		}
		t.file.Write(content)

		if hasNewline {
			t.file.Write([]byte{'\n'})
			t.atLineStart = true
		} else {
			t.atLineStart = false
		}
	}
}

// Close releases the log file. Safe to call more than once.
func (t *TeeWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
