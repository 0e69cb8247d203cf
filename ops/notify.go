package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/justapithecus/optree/adapter"
	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// NotifyFailureUnavailable covers any error returned by the configured
// adapter's Publish call.
const NotifyFailureUnavailable op.FailureTag = "unavailable"

// NotifyOp publishes a one-line completion event through whichever
// adapter.Adapter (webhook or redis) the caller configured. It is a
// leaf Op intended to sit at the tail of a larger Op chain, reporting
// on the Outcome of whatever ran before it.
type NotifyOp struct {
	op.Base
	OpName  string
	Adapter adapter.Adapter
	Event   adapter.NotificationEvent
}

// Name implements op.Op.
func (o *NotifyOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "NotifyOp"
}

// Run implements op.Op.
func (o *NotifyOp) Run(ctx context.Context, _ *ioctx.Context) op.Outcome {
	if o.Adapter == nil {
		return o.FailWithUnknownError("notify: no adapter configured")
	}

	event := o.Event
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	if err := o.Adapter.Publish(ctx, &event); err != nil {
		return o.Fail(NotifyFailureUnavailable, fmt.Sprintf("notify: publish: %v", err))
	}
	return o.Succeed(event)
}

// NotifyForOutcome builds the NotificationEvent a NotifyOp should
// publish to report on a completed Op's result.
func NotifyForOutcome(opName string, outcome op.Outcome, attempt int) adapter.NotificationEvent {
	event := adapter.NotificationEvent{
		OpName:    opName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Attempt:   attempt,
	}
	if outcome.OK() {
		event.Outcome = "success"
		return event
	}
	tag, _ := outcome.Failure()
	event.Outcome = string(tag)
	event.Detail = outcome.Debug()
	return event
}
