package ioctx

import (
	"bytes"
	"sync"
	"time"
)

// ReplayableInput loads a previously recorded Session and emits its
// events at their recorded inter-arrival times, then transparently
// switches to forwarding a live input stream. The switch happens
// exactly once and is irreversible.
//
// Consumers pull data via Read, mirroring the non-push input semantics
// TUI libraries expect; a new readable notification arrives on the
// channel returned by Readable whenever buffered data becomes available
// so consumers know when to call Read.
type ReplayableInput struct {
	mu       sync.Mutex
	events   []InputEvent
	live     ReadCloser
	raw      RawModeSetter
	buf      bytes.Buffer
	readable chan struct{}
	switched bool
	timers   []*time.Timer
}

// NewReplayableInput builds a ReplayableInput from a previously
// serialized session and the live input to switch to once replay is
// exhausted.
func NewReplayableInput(sess Session, live ReadCloser, raw RawModeSetter) *ReplayableInput {
	return &ReplayableInput{
		events:   sess.Events,
		live:     live,
		raw:      raw,
		readable: make(chan struct{}, 1),
	}
}

// Readable returns a channel that receives a notification whenever new
// data has been buffered for Read to consume. The channel is buffered
// with capacity 1, so bursts collapse into a single pending
// notification rather than blocking the deliverer.
func (r *ReplayableInput) Readable() <-chan struct{} {
	return r.readable
}

// StartReplay schedules delivery of each event at
// startupDelay+event.TimestampMs, using wall-clock scheduling against
// the recorded delays (approximate, not sample-accurate, per the
// framework's documented intent). Once the last event has been
// delivered, the input switches to forwarding the live stream.
func (r *ReplayableInput) StartReplay(startupDelay time.Duration) {
	r.mu.Lock()
	events := r.events
	r.mu.Unlock()

	for i, ev := range events {
		ev := ev
		last := i == len(events)-1
		delay := startupDelay + time.Duration(ev.TimestampMs)*time.Millisecond
		timer := time.AfterFunc(delay, func() {
			r.deliver(ev.Data)
			if last {
				r.switchToLive()
			}
		})
		r.timers = append(r.timers, timer)
	}

	if len(events) == 0 {
		r.timers = append(r.timers, time.AfterFunc(startupDelay, r.switchToLive))
	}
}

func (r *ReplayableInput) deliver(data string) {
	r.mu.Lock()
	r.buf.WriteString(data)
	r.mu.Unlock()

	select {
	case r.readable <- struct{}{}:
	default:
	}
}

func (r *ReplayableInput) switchToLive() {
	r.mu.Lock()
	r.switched = true
	r.mu.Unlock()

	select {
	case r.readable <- struct{}{}:
	default:
	}
}

// Read returns buffered replayed data first; once the live switch has
// happened and the replay buffer is drained, it forwards to the live
// stream. Before either is available it returns (0, nil) — callers are
// expected to wait on Readable() rather than busy-poll Read.
func (r *ReplayableInput) Read(p []byte) (int, error) {
	r.mu.Lock()
	if r.buf.Len() > 0 {
		n, err := r.buf.Read(p)
		r.mu.Unlock()
		return n, err
	}
	switched := r.switched
	r.mu.Unlock()

	if switched {
		return r.live.Read(p)
	}
	return 0, nil
}

// Close stops any pending replay timers and closes the live stream.
func (r *ReplayableInput) Close() error {
	for _, t := range r.timers {
		t.Stop()
	}
	return r.live.Close()
}

// SetRawMode ignores toggle requests while replay is in progress — the
// scheduler owns timing during that phase — and forwards them to the
// underlying setter once the live switch has occurred.
func (r *ReplayableInput) SetRawMode(enabled bool) error {
	r.mu.Lock()
	switched := r.switched
	r.mu.Unlock()

	if !switched {
		return nil
	}
	if r.raw == nil {
		return nil
	}
	return r.raw.SetRawMode(enabled)
}
