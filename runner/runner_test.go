package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *ioctx.Context {
	return ioctx.NewTestContext(strings.NewReader(""), &bytes.Buffer{})
}

// tailOp returns next (a plain Op, or nil to terminate with value) when run.
type tailOp struct {
	op.Base
	name  string
	next  op.Op
	value any
	runs  *[]string
}

func (o *tailOp) Name() string { return o.name }

func (o *tailOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	if o.runs != nil {
		*o.runs = append(*o.runs, o.name)
	}
	if o.next != nil {
		return o.Succeed(o.next)
	}
	return o.Succeed(o.value)
}

// TestTailCallChain covers scenario 1: A->B->C via plain-Op tail calls,
// each Op run exactly once.
func TestTailCallChain(t *testing.T) {
	var runs []string
	c := &tailOp{name: "C", value: 99, runs: &runs}
	b := &tailOp{name: "B", next: c, runs: &runs}
	a := &tailOp{name: "A", next: b, runs: &runs}

	r := New(a, testContext())
	outcome := r.Run(context.Background())

	require.True(t, outcome.OK())
	v, ok := op.As[int](outcome)
	require.True(t, ok)
	assert.Equal(t, 99, v)
	assert.Equal(t, []string{"A", "B", "C"}, runs)
}

// handlerParentOp delegates to child once, then on the second run (when
// the handler re-invokes it) succeeds with a terminal value.
type handlerParentOp struct {
	op.Base
	name    string
	child   op.Op
	invoked bool
	runs    *[]string
}

func (o *handlerParentOp) Name() string { return o.name }

func (o *handlerParentOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	if o.runs != nil {
		*o.runs = append(*o.runs, o.name)
	}
	if !o.invoked {
		o.invoked = true
		return o.HandleOutcome(o.child, op.DefaultHandler(o))
	}
	return o.Succeed(42)
}

type succeedOp struct {
	op.Base
	name  string
	value any
	runs  *[]string
}

func (o *succeedOp) Name() string { return o.name }

func (o *succeedOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	if o.runs != nil {
		*o.runs = append(*o.runs, o.name)
	}
	return o.Succeed(o.value)
}

// TestParentWithDefaultHandlerRerun covers scenario 2: A delegates to B
// with the default ("return this") handler; A is run twice, B once.
func TestParentWithDefaultHandlerRerun(t *testing.T) {
	var runs []string
	b := &succeedOp{name: "B", value: 7, runs: &runs}
	a := &handlerParentOp{name: "A", child: b, runs: &runs}

	r := New(a, testContext())
	outcome := r.Run(context.Background())

	require.True(t, outcome.OK())
	v, ok := op.As[int](outcome)
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, []string{"A", "B", "A"}, runs)
}

// customHandlerOp delegates to child with a handler that ignores the
// child's outcome and terminates with a fixed value, recording the
// order handlers fire in.
type customHandlerOp struct {
	op.Base
	name         string
	child        op.Op
	terminalName string
	terminal     any
	order        *[]string
}

func (o *customHandlerOp) Name() string { return o.name }

func (o *customHandlerOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	order := o.order
	terminalName := o.terminalName
	terminal := o.terminal
	return o.HandleOutcome(o.child, func(op.Outcome) op.Op {
		*order = append(*order, o.name)
		return &succeedOp{name: terminalName, value: terminal}
	})
}

// TestDeepUnwindWithCustomHandlers covers scenario 3: A delegates to B
// with handler h_a, B delegates to C with handler h_b; C succeeds. h_b
// must fire strictly before h_a.
func TestDeepUnwindWithCustomHandlers(t *testing.T) {
	var order []string
	c := &succeedOp{name: "C", value: 1}
	b := &customHandlerOp{name: "B", child: c, terminalName: "N_b", terminal: "from-b", order: &order}
	a := &customHandlerOp{name: "A", child: b, terminalName: "N_a", terminal: "from-a", order: &order}

	r := New(a, testContext())
	outcome := r.Run(context.Background())

	require.True(t, outcome.OK())
	v, ok := op.As[string](outcome)
	require.True(t, ok)
	assert.Equal(t, "from-a", v)
	assert.Equal(t, []string{"B", "A"}, order)
}

// TestCancellationFlowsAsValue covers scenario 4: a child's
// Failure<canceled> is routed through the parent's handler as a plain
// value, never as a panic/exception, and the parent can branch on it.
func TestCancellationFlowsAsValue(t *testing.T) {
	child := &cancelingOp{name: "child"}
	var sawCancel bool
	parent := &branchingParentOp{
		name:  "parent",
		child: child,
		handler: func(o op.Outcome) op.Op {
			sawCancel = o.Is(op.FailureCanceled)
			return &succeedOp{name: "fallback", value: "handled"}
		},
	}

	r := New(parent, testContext())
	outcome := r.Run(context.Background())

	require.True(t, outcome.OK())
	assert.True(t, sawCancel)
	v, ok := op.As[string](outcome)
	require.True(t, ok)
	assert.Equal(t, "handled", v)
}

type cancelingOp struct {
	op.Base
	name string
}

func (o *cancelingOp) Name() string { return o.name }

func (o *cancelingOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	return o.Cancel()
}

type branchingParentOp struct {
	op.Base
	name    string
	child   op.Op
	handler func(op.Outcome) op.Op
}

func (o *branchingParentOp) Name() string { return o.name }

func (o *branchingParentOp) Run(_ context.Context, _ *ioctx.Context) op.Outcome {
	return o.HandleOutcome(o.child, o.handler)
}

// TestInvariantTopMustBeOpAtStepEntry documents that a Handler frame at
// the top of the stack at step entry is a fatal framework error, not a
// recoverable Outcome.
func TestInvariantTopMustBeOpAtStepEntry(t *testing.T) {
	r := New(&succeedOp{name: "noop", value: nil}, testContext())
	r.stack.replaceTop(handlerEntry("x", func(op.Outcome) op.Op { return nil }))

	assert.Panics(t, func() {
		r.step(context.Background())
	})
}

// TestReplaceTailCallDoesNotGrowStack asserts the stack depth invariant:
// a tail call replaces the top frame rather than pushing.
func TestReplaceTailCallDoesNotGrowStack(t *testing.T) {
	b := &tailOp{name: "B", value: 1}
	a := &tailOp{name: "A", next: b}

	r := New(a, testContext())
	require.Equal(t, 1, r.stack.depth())
	r.step(context.Background())
	assert.Equal(t, 1, r.stack.depth())
}

// TestHandlerGrowsStackByOne asserts the stack depth invariant for the
// PUSH path: delegating to a child via HandleOutcome grows the stack by
// exactly one (the handler replaces the parent frame, the child is
// pushed on top).
func TestHandlerGrowsStackByOne(t *testing.T) {
	child := &succeedOp{name: "child", value: 1}
	parent := &customHandlerOp{name: "parent", child: child, terminalName: "n", terminal: 1, order: &[]string{}}

	r := New(parent, testContext())
	require.Equal(t, 1, r.stack.depth())
	r.step(context.Background())
	assert.Equal(t, 2, r.stack.depth())
}

// TestRecordReplayRoundTrip covers scenario 5: reading a synthetic
// keystroke stream through a record-mode context, saving the session,
// then replaying it and observing the same bytes in the recorded order.
func TestRecordReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sessionPath := dir + "/session.json"

	src := &scriptedReader{chunks: []scriptedChunk{
		{at: 0, data: "abc"},
		{at: 40 * time.Millisecond, data: "\n"},
	}}

	recCtx, err := ioctx.New(ioctx.Config{
		Mode:        ioctx.ModeRecord,
		SessionFile: sessionPath,
		LiveIn:      src,
		LiveOut:     &bytes.Buffer{},
	})
	require.NoError(t, err)

	readAllFrom(recCtx.In, 4)
	require.NoError(t, recCtx.Recordable().Save(sessionPath))

	sess, err := ioctx.LoadSession(sessionPath)
	require.NoError(t, err)
	require.Len(t, sess.Events, 2)
	assert.Equal(t, "abc", sess.Events[0].Data)
	assert.Equal(t, "\n", sess.Events[1].Data)
	assert.LessOrEqual(t, sess.Events[0].TimestampMs, sess.Events[1].TimestampMs)

	live := &scriptedReader{chunks: []scriptedChunk{{at: 0, data: "live"}}}
	replCtx, err := ioctx.New(ioctx.Config{
		Mode:        ioctx.ModeReplay,
		SessionFile: sessionPath,
		LiveIn:      live,
		LiveOut:     &bytes.Buffer{},
	})
	require.NoError(t, err)

	repl := replCtx.Replayable()
	repl.StartReplay(10 * time.Millisecond)

	var got []byte
	deadline := time.After(2 * time.Second)
	for len(got) < 4 {
		select {
		case <-repl.Readable():
			buf := make([]byte, 16)
			n, _ := repl.Read(buf)
			got = append(got, buf[:n]...)
		case <-deadline:
			t.Fatal("timed out waiting for replay events")
		}
	}
	assert.Equal(t, "abc\n", string(got))
}

type scriptedChunk struct {
	at   time.Duration
	data string
}

// scriptedReader delivers each chunk's bytes once at least its
// scheduled offset has elapsed since construction; it is a minimal
// ReadCloser stand-in for tests, not a general-purpose reader.
type scriptedReader struct {
	start   time.Time
	started bool
	chunks  []scriptedChunk
	idx     int
}

func (s *scriptedReader) Read(p []byte) (int, error) {
	if !s.started {
		s.start = time.Now()
		s.started = true
	}
	if s.idx >= len(s.chunks) {
		return 0, nil
	}
	c := s.chunks[s.idx]
	if time.Since(s.start) < c.at {
		return 0, nil
	}
	n := copy(p, c.data)
	s.idx++
	return n, nil
}

func (s *scriptedReader) Close() error { return nil }

func readAllFrom(r interface{ Read([]byte) (int, error) }, want int) {
	buf := make([]byte, 16)
	got := 0
	deadline := time.Now().Add(2 * time.Second)
	for got < want && time.Now().Before(deadline) {
		n, _ := r.Read(buf)
		got += n
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}
