package op

import (
	"context"

	"github.com/justapithecus/optree/ioctx"
)

// Op is a single bounded unit of work: a stable name for observability,
// and an asynchronous Run that yields an Outcome.
//
// Run must never panic past its own boundary: callers (the scheduler)
// recover a panic into Failure<unknownError>, but a well-behaved Op
// catches its own recoverable errors and returns them as typed failures.
// Run must route all I/O through the supplied context, never through
// global streams, so record/replay and tee output see every byte.
type Op interface {
	// Name returns a stable, human-readable identifier used for logging
	// and stack snapshots.
	Name() string

	// Run performs the Op's work and returns exactly one Outcome. io is
	// never nil; callers supply a default context pointing at the live
	// process streams when the caller has none of its own.
	Run(ctx context.Context, io *ioctx.Context) Outcome
}

// Continuation bundles a child Op with a handler: the function the
// scheduler invokes with the child's Outcome once the child finishes,
// producing the next Op to run. Returning a Continuation from Run (inside
// a Success) requests the delegate-with-continuation protocol; returning
// a plain Op requests a tail call. See runner.Runner for the state
// machine that interprets both.
//
// Handler must be total: every possible child Outcome must map to some
// Op. A handler that panics is a programmer error, not a recoverable
// Outcome — the scheduler lets it propagate.
type Continuation struct {
	Op      Op
	Handler func(Outcome) Op
}

// Base is embedded by concrete Ops to get the standard Outcome
// constructors as methods, matching the "succeed / fail / cancel /
// failWithUnknownError / handleOutcome" helper set Ops are expected to
// use instead of constructing Outcome values by hand.
type Base struct{}

// Succeed returns a Success Outcome carrying v.
func (Base) Succeed(v any) Outcome { return Succeed(v) }

// Fail returns a Failure Outcome with the given tag and optional debug
// string.
func (Base) Fail(tag FailureTag, debug ...string) Outcome { return Fail(tag, debug...) }

// Cancel returns a Failure<canceled> Outcome.
func (Base) Cancel() Outcome { return Cancel() }

// FailWithUnknownError returns a Failure<unknownError> Outcome.
func (Base) FailWithUnknownError(msg ...string) Outcome { return FailWithUnknownError(msg...) }

// HandleOutcome returns a Success Outcome wrapping a Continuation that
// runs child next and resumes with handler once child finishes. If
// handler is omitted, the default handler is supplied by the caller
// (conventionally "return this", re-running the parent with its own
// captured state) — Base cannot supply that default itself since it does
// not know the parent's identity; concrete Ops pass handler explicitly,
// using DefaultHandler to build the "return this" closure.
func (Base) HandleOutcome(child Op, handler func(Outcome) Op) Outcome {
	return Succeed(Continuation{Op: child, Handler: handler})
}

// DefaultHandler returns a handler that ignores the child's Outcome and
// always returns parent, realizing the framework's "re-run the parent"
// convention. Callers that need the child's Outcome should write their
// own handler instead.
func DefaultHandler(parent Op) func(Outcome) Op {
	return func(Outcome) Op { return parent }
}
