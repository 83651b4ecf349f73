// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"sync"
)

// HandlerContext is the ephemeral per-invocation handle passed to a
// procedure's Handler (spec.md §3). It is only valid for the lifetime of
// the invocation; the readable/writable it can be paired with become inert
// once the owning stream transitions past Open.
type HandlerContext struct {
	State     any
	Metadata  []byte
	From      SessionID
	SessionID SessionID
	StreamID  StreamID

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	abortOnce sync.Once
	onAbort   func(code, message string)
}

func newHandlerContext(parent context.Context, onAbort func(code, message string)) *HandlerContext {
	ctx, cancel := context.WithCancel(parent)
	return &HandlerContext{ctx: ctx, cancel: cancel, onAbort: onAbort}
}

// Done returns a channel closed once the invocation has been cancelled for
// any reason: peer cancel, peer disconnect past grace, local Cancel, local
// Uncaught, or natural stream close (spec.md §5). Cancellation is
// observable but advisory: the framework itself enforces termination by
// dropping the writable and declining further reads.
func (hc *HandlerContext) Done() <-chan struct{} { return hc.ctx.Done() }

// Context returns the per-invocation context, suitable for passing to
// downstream blocking calls.
func (hc *HandlerContext) Context() context.Context { return hc.ctx }

// Cancel emits a CANCEL abort for this stream. Idempotent: a second call
// (after cancel, or after the peer already aborted) is a no-op.
func (hc *HandlerContext) Cancel(reason string) {
	hc.abort(CodeCancel, reason)
}

// Uncaught synthesizes an UNCAUGHT_ERROR result and aborts the stream, for
// use when the handler encounters an error it cannot recover from. Like
// Cancel, a second call is a no-op.
func (hc *HandlerContext) Uncaught(err error) {
	msg := "uncaught error"
	if err != nil {
		msg = err.Error()
	}
	hc.abort(CodeUncaughtError, msg)
}

func (hc *HandlerContext) abort(code, message string) {
	hc.abortOnce.Do(func() {
		hc.cancel()
		if hc.onAbort != nil {
			hc.onAbort(code, message)
		}
	})
}

// finish releases ctx resources once the invocation naturally completes
// without cancellation, avoiding a context leak warning from vet.
func (hc *HandlerContext) finish() { hc.cancel() }
