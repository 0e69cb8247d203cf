// Package iox provides small resource-cleanup helpers shared by Ops that
// own a response body, socket, or other io.Closer — FetchOp, S3TransferOp,
// and the webhook adapter all defer through this package rather than
// writing `_ = c.Close()` at each call site.
package iox

import "io"

// DiscardClose closes c and discards the error. Use in defer statements
// where a close failure on an already-consumed body or connection is
// unactionable:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c. Designed for
// t.Cleanup and b.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error. Use for non-Close
// cleanup calls (e.g. Flush) where errors are unactionable:
//
//	defer iox.DiscardErr(w.Flush)
func DiscardErr(fn func() error) { _ = fn() }
