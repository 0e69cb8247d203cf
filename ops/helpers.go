package ops

import (
	"context"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// terminalOp is a trivial Op that returns a fixed Outcome when run. It
// lets a handler forward an already-computed Outcome (including a
// Failure, so cancellation propagates rather than being swallowed) as
// the next Op in a tail call, without re-running any work.
type terminalOp struct {
	name    string
	outcome op.Outcome
}

func terminal(name string, outcome op.Outcome) op.Op {
	return terminalOp{name: name, outcome: outcome}
}

func (t terminalOp) Name() string { return t.name }

func (t terminalOp) Run(context.Context, *ioctx.Context) op.Outcome { return t.outcome }
