// Package runner implements the OpRunner scheduler: a single
// heterogeneous stack of Op-or-Handler frames stepped until empty,
// realizing both the delegate-with-continuation ("PUSH") and tail-call
// ("REPLACE") protocols described by op.Op and op.Continuation.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// Runner drives a root Op to completion. It is single-use: construct a
// new Runner per top-level interaction.
type Runner struct {
	stack *stack
	io    *ioctx.Context
}

// New builds a Runner with root as the initial (and only) stack frame.
func New(root op.Op, io *ioctx.Context) *Runner {
	return &Runner{stack: newStack(root), io: io}
}

// Run drives the stack to empty, stepping once per iteration, and
// returns the last Outcome produced before the stack emptied. In replay
// mode it first arranges for replay emission to begin after the
// context's configured startup delay; in record mode it saves the
// recorded session once the stack empties.
func (r *Runner) Run(ctx context.Context) op.Outcome {
	if repl := r.io.Replayable(); repl != nil {
		repl.StartReplay(r.io.StartupDelay())
	}

	var last op.Outcome
	for !r.stack.empty() {
		outcome, produced := r.step(ctx)
		if produced {
			last = outcome
		}
	}

	if rec := r.io.Recordable(); rec != nil {
		if path := r.io.SessionFile(); path != "" {
			if err := rec.Save(path); err != nil {
				r.io.Log.Error("runner: failed to save session", map[string]any{
					"sessionFile": path,
					"error":       err.Error(),
				})
			}
		}
	}

	return last
}

// Step performs exactly one scheduler transition and reports whether
// work remains on the stack, so tests can inspect the stack between
// transitions. It does not start replay or save a recorded session;
// Run does both.
func (r *Runner) Step(ctx context.Context) bool {
	if r.stack.empty() {
		return false
	}
	r.step(ctx)
	return !r.stack.empty()
}

// step performs one iteration of the scheduler's loop: run the Op on
// top of the stack, interpret its Outcome as PUSH, REPLACE, or
// pop-and-resume-handler, and mutate the stack accordingly. produced is
// true when an Outcome reached the bottom of the stack (i.e. was about
// to be returned to Run or dropped as terminal); that Outcome is
// reported so Run can track the last meaningful result.
func (r *Runner) step(ctx context.Context) (outcome op.Outcome, produced bool) {
	top := r.stack.peek()
	if !top.isOp() {
		panic(fmt.Sprintf("runner: invariant violated: top of stack is a handler (of %s), not an Op", top.parentName))
	}

	start := time.Now()
	name := top.runOp.Name()
	depth := r.stack.depth()

	r.io.Log.Debug("op: starting", map[string]any{
		"name":  name,
		"depth": depth,
		"stack": r.stack.names(),
	})

	result := r.runSafely(ctx, top.runOp)

	r.io.Log.Debug("op: finished", map[string]any{
		"name":     name,
		"depth":    depth,
		"ok":       result.OK(),
		"duration": time.Since(start).String(),
	})

	if result.OK() {
		if cont, ok := op.As[op.Continuation](result); ok {
			r.stack.replaceTop(handlerEntry(name, cont.Handler))
			r.stack.push(opEntry(cont.Op))
			return op.Outcome{}, false
		}
		if next, ok := op.As[op.Op](result); ok {
			r.stack.replaceTop(opEntry(next))
			return op.Outcome{}, false
		}
	}

	// Success with a plain (non-Op, non-Continuation) value, or any
	// Failure: the current Op is finished.
	r.stack.pop()
	if !r.stack.empty() && r.stack.peek().isHandler() {
		h := r.stack.pop()
		next := h.handler(result)
		r.stack.push(opEntry(next))
		return result, false
	}

	return result, true
}

// runSafely invokes op's Run, converting a panic into
// Failure<unknownError> so a misbehaving Op cannot take the whole
// scheduler down with it.
func (r *Runner) runSafely(ctx context.Context, o op.Op) (result op.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.io.Log.Error("op: panicked", map[string]any{
				"name":  o.Name(),
				"panic": fmt.Sprintf("%v", rec),
			})
			result = op.FailWithUnknownError(fmt.Sprintf("%v", rec))
		}
	}()
	return o.Run(ctx, r.io)
}
