package ioctx

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/justapithecus/optree/obslog"
)

// Mode is the I/O context's operating mode. It is immutable for the
// lifetime of a Context.
type Mode string

const (
	// ModeInteractive drives Ops directly against the live terminal.
	ModeInteractive Mode = "interactive"
	// ModeRecord wraps live input in a RecordableInput and saves the
	// session when the scheduler's stack empties.
	ModeRecord Mode = "record"
	// ModeReplay drives Ops from a previously recorded session, then
	// hands off to live input once the session is exhausted.
	ModeReplay Mode = "replay"
	// ModeTest lets the caller inject arbitrary input/output, bypassing
	// the live process streams entirely.
	ModeTest Mode = "test"
)

// DefaultStartupDelay is how long StartReplay waits before delivering
// the first event, giving any interactive TUI time to attach listeners.
const DefaultStartupDelay = 300 * time.Millisecond

// Config configures Context assembly. Fields left zero take the
// defaults described per field.
type Config struct {
	// Mode selects which of interactive/record/replay/test assembly
	// rules apply. Required.
	Mode Mode

	// SessionFile is the path events are saved to (record mode) or
	// loaded from (replay mode). Required for both; ignored otherwise.
	SessionFile string

	// LogFile, if set, tees Out through a TeeWriter writing timestamped
	// lines to this path.
	LogFile string

	// StripANSI controls whether escape sequences are stripped from the
	// LogFile copy. The terminal copy is never stripped.
	StripANSI bool

	// LiveIn/LiveOut override the live process streams. Default to
	// os.Stdin/os.Stdout. Tests and mode=test callers typically set
	// these explicitly.
	LiveIn  ReadCloser
	LiveOut io.Writer

	// RawMode is forwarded raw-mode toggle requests by the
	// record/replay input wrappers. May be nil.
	RawMode RawModeSetter

	// Logger overrides the default structured logger (os.Stderr JSON).
	Logger *obslog.Logger

	// StartupDelay overrides DefaultStartupDelay for replay mode.
	StartupDelay time.Duration
}

// Context is the aggregate of input stream, output stream, mode tag,
// and logger that every Op's Run receives. The mode is immutable once
// built.
type Context struct {
	In   io.Reader
	Out  io.Writer
	Mode Mode
	Log  *obslog.Logger

	recordable   *RecordableInput
	replayable   *ReplayableInput
	tee          *TeeWriter
	startupDelay time.Duration
	sessionFile  string
}

// New assembles a Context per cfg, implementing the mode dispatch table:
// interactive and test pass live/injected streams through unchanged;
// record wraps the input in a RecordableInput; replay loads SessionFile
// (a missing session file path in record or replay mode, or an
// unparsable session file in replay mode, is a framework error,
// returned here rather than surfaced as an Outcome).
func New(cfg Config) (*Context, error) {
	liveIn := cfg.LiveIn
	if liveIn == nil {
		liveIn = os.Stdin
	}
	liveOut := cfg.LiveOut
	if liveOut == nil {
		liveOut = os.Stdout
	}

	var out io.Writer = liveOut
	var tee *TeeWriter
	if cfg.LogFile != "" {
		t, err := NewTeeWriter(liveOut, cfg.LogFile, cfg.StripANSI)
		if err != nil {
			return nil, fmt.Errorf("ioctx: open log file: %w", err)
		}
		tee = t
		out = t
	}

	logger := cfg.Logger
	if logger == nil {
		logger = obslog.New()
	}

	startupDelay := cfg.StartupDelay
	if startupDelay == 0 {
		startupDelay = DefaultStartupDelay
	}

	ctx := &Context{
		Out:          out,
		Mode:         cfg.Mode,
		Log:          logger,
		tee:          tee,
		startupDelay: startupDelay,
	}

	switch cfg.Mode {
	case ModeInteractive, ModeTest:
		ctx.In = liveIn

	case ModeRecord:
		if cfg.SessionFile == "" {
			return nil, fmt.Errorf("ioctx: record mode requires a session file")
		}
		rec := NewRecordableInput(liveIn, cfg.RawMode)
		ctx.recordable = rec
		ctx.sessionFile = cfg.SessionFile
		ctx.In = rec

	case ModeReplay:
		if cfg.SessionFile == "" {
			return nil, fmt.Errorf("ioctx: replay mode requires a session file")
		}
		sess, err := LoadSession(cfg.SessionFile)
		if err != nil {
			return nil, fmt.Errorf("ioctx: load session for replay: %w", err)
		}
		repl := NewReplayableInput(sess, liveIn, cfg.RawMode)
		ctx.replayable = repl
		ctx.sessionFile = cfg.SessionFile
		ctx.In = repl

	default:
		return nil, fmt.Errorf("ioctx: unknown mode %q", cfg.Mode)
	}

	return ctx, nil
}

// NewTestContext builds a Context directly from injected streams,
// bypassing Config assembly entirely — for mode=test per spec §4.6.
func NewTestContext(in io.Reader, out io.Writer) *Context {
	return &Context{In: in, Out: out, Mode: ModeTest, Log: obslog.Noop()}
}

// Recordable returns the record-mode input wrapper, or nil outside
// record mode.
func (c *Context) Recordable() *RecordableInput { return c.recordable }

// Replayable returns the replay-mode input wrapper, or nil outside
// replay mode.
func (c *Context) Replayable() *ReplayableInput { return c.replayable }

// StartupDelay is how long the scheduler should wait before instructing
// Replayable to begin emission.
func (c *Context) StartupDelay() time.Duration { return c.startupDelay }

// SessionFile is the path record mode saves to (or replay mode loaded
// from), as configured. Empty outside those two modes.
func (c *Context) SessionFile() string { return c.sessionFile }

// Close releases the context's owned resources (currently just the tee
// log file, if one was configured).
func (c *Context) Close() error {
	if c.tee != nil {
		return c.tee.Close()
	}
	return nil
}
