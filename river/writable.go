// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"errors"
	"sync"
)

// ErrWritableClosed is returned by Write after Close or after the writable
// has become non-writable (peer cancel, local cancel/uncaught, or session
// destruction).
var ErrWritableClosed = errors.New("river: write to a closed or aborted writable")

// Writable is the paired sink for a Readable on the peer side. write and
// close are wired by the stream state machine to emit the corresponding
// framed messages; Writable itself only enforces the close-once and
// write-after-close contracts (spec.md §4.5, §8).
type Writable[T any] struct {
	mu             sync.Mutex
	closed         bool
	writable       bool
	writeFn        func(T) error
	closeFn        func() error
	closeRequested bool
	onCloseRequest []func()
}

func newWritable[T any](writeFn func(T) error, closeFn func() error) *Writable[T] {
	return &Writable[T]{writable: true, writeFn: writeFn, closeFn: closeFn}
}

// Write sends v to the peer's Readable. Order is preserved: writes on a
// writable appear on the peer readable in invocation order.
func (w *Writable[T]) Write(v T) error {
	w.mu.Lock()
	if w.closed || !w.writable {
		w.mu.Unlock()
		return ErrWritableClosed
	}
	w.mu.Unlock()
	return w.writeFn(v)
}

// Close idempotently emits a graceful half-close.
func (w *Writable[T]) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.writable = false
	w.mu.Unlock()
	return w.closeFn()
}

// IsWritable reports whether Write would currently be accepted.
func (w *Writable[T]) IsWritable() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writable && !w.closed
}

// OnCloseRequest registers fn to be invoked when the peer signals that it
// would like this writable to stop producing. If a close request has
// already been observed, fn runs immediately (mirrors the cancellation
// token rule in spec.md §9: listeners registered after fire run
// immediately with "aborted" semantics).
func (w *Writable[T]) OnCloseRequest(fn func()) {
	w.mu.Lock()
	already := w.closeRequested
	if !already {
		w.onCloseRequest = append(w.onCloseRequest, fn)
	}
	w.mu.Unlock()
	if already {
		fn()
	}
}

// requestClose is called by the stream state machine when the peer signals
// it wants no more data. It is idempotent and fires every registered
// callback exactly once.
func (w *Writable[T]) requestClose() {
	w.mu.Lock()
	if w.closeRequested {
		w.mu.Unlock()
		return
	}
	w.closeRequested = true
	fns := w.onCloseRequest
	w.onCloseRequest = nil
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// abort marks the writable permanently non-writable without emitting a
// close frame: used when the stream transitions to Aborted (peer cancel,
// local cancel/uncaught, or session destruction). Writes after abort send
// nothing and return ErrWritableClosed (spec.md §4.4).
func (w *Writable[T]) abort() {
	w.mu.Lock()
	w.writable = false
	w.closed = true
	w.mu.Unlock()
}
