// Package adapter defines the notification-sink boundary NotifyOp
// publishes through.
//
// Adapters publish a one-line Op-completion event to a downstream
// system. The caller that configures a root Op owns adapter lifecycle;
// NotifyOp itself only publishes.
package adapter

import "context"

// NotificationEvent is the payload NotifyOp publishes when an Op
// finishes — just enough to identify which Op finished, how, and when.
type NotificationEvent struct {
	OpName    string `json:"op_name"`
	Outcome   string `json:"outcome"` // "success" or the failure tag
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339
	Attempt   int    `json:"attempt"`
}

// Adapter publishes notification events to a downstream system.
// Implementations must be safe for single-use per notification.
type Adapter interface {
	// Publish sends event to the downstream system, respecting context
	// cancellation and deadlines.
	Publish(ctx context.Context, event *NotificationEvent) error

	// Close releases adapter resources.
	Close() error
}
