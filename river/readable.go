// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyLocked is returned by Iterate, Collect, and Break when a
// Readable's one-shot consumer lock has already been taken.
var ErrAlreadyLocked = errors.New("river: readable is already locked by a previous iterator, collect, or break")

// codeReadableBroken is the framework marker used when a consumer calls
// Break: a closed union member alongside the procedure's declared error
// schema, per spec.md §4.5.
const codeReadableBroken = "READABLE_BROKEN"

// ReadResult is one step of a Readable[T]: either a value, a terminal
// error, or end-of-stream (Done, with no error).
type ReadResult[T any] struct {
	Value T
	Err   *Error
	Done  bool
}

// Readable presents a lazy, single-consumer sequence of values pushed by
// the stream state machine. It can be iterated once; acquiring a consumer
// (via Iterate, Collect, or Break) locks it, and a second attempt fails
// with ErrAlreadyLocked (spec.md §4.5, §8).
type Readable[T any] struct {
	mu       sync.Mutex
	items    []T
	closed   bool   // writer half-closed: queued items still drain, then Done
	terminal *Error // set by abort(); delivered exactly once, then Done
	locked   bool
	signal   chan struct{}

	// onBreak, when non-nil, is invoked after Break() poisons the
	// readable: it tells the owning stream to notify the peer's Writable
	// via FlagCloseRequest (spec.md §4.5).
	onBreak func()
}

func newReadable[T any](onBreak func()) *Readable[T] {
	return &Readable[T]{signal: make(chan struct{}, 1), onBreak: onBreak}
}

func (r *Readable[T]) wake() {
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// push enqueues a value from the stream state machine. It is a no-op once
// the writer half has closed or the readable has been aborted.
func (r *Readable[T]) push(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.terminal != nil {
		return
	}
	r.items = append(r.items, v)
	r.wake()
}

// closeWrite marks the writer half closed: values already queued are still
// yielded in order, then the reader observes Done (spec.md §4.5 "writer
// close with non-empty queue: queue is drained then end-of-stream").
func (r *Readable[T]) closeWrite() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.terminal != nil {
		return
	}
	r.closed = true
	r.wake()
}

// abort delivers a single terminal error, discarding anything queued
// (bidirectional cancellation drops buffered in-flight messages, spec.md
// §4.4). A second call is a no-op: cancel-after-cancel never re-emits.
func (r *Readable[T]) abort(err *Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminal != nil {
		return
	}
	r.terminal = err
	r.items = nil
	r.wake()
}

func (r *Readable[T]) lock() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked {
		return ErrAlreadyLocked
	}
	r.locked = true
	return nil
}

// Iterate acquires the one-shot consumer lock and returns an iterator.
func (r *Readable[T]) Iterate(context.Context) (*ReadableIterator[T], error) {
	if err := r.lock(); err != nil {
		return nil, err
	}
	return &ReadableIterator[T]{r: r}, nil
}

// Collect locks the readable and drains it to completion, returning every
// value yielded before Done or a terminal error.
func (r *Readable[T]) Collect(ctx context.Context) ([]T, *Error, error) {
	if err := r.lock(); err != nil {
		return nil, nil, err
	}
	it := &ReadableIterator[T]{r: r}
	var out []T
	for {
		res := it.next(ctx)
		if res.Done {
			return out, nil, nil
		}
		if res.Err != nil {
			return out, res.Err, nil
		}
		out = append(out, res.Value)
	}
}

// Break locks the readable (returning ErrAlreadyLocked, and changing
// nothing, if it is already locked) and poisons it: queued
// values are discarded, the next read yields Err(READABLE_BROKEN), and
// subsequent reads report end-of-stream.
func (r *Readable[T]) Break() error {
	if err := r.lock(); err != nil {
		return err
	}
	r.abort(NewError(codeReadableBroken, "readable broken by consumer"))
	if r.onBreak != nil {
		r.onBreak()
	}
	return nil
}

// ReadableIterator is a take-once consumer handle produced by
// [Readable.Iterate].
type ReadableIterator[T any] struct {
	r     *Readable[T]
	ended bool
}

// Next blocks until a value, a terminal error, end-of-stream, or ctx
// cancellation. Once Done or an error has been observed, subsequent calls
// return Done immediately.
func (it *ReadableIterator[T]) Next(ctx context.Context) ReadResult[T] {
	return it.next(ctx)
}

func (it *ReadableIterator[T]) next(ctx context.Context) ReadResult[T] {
	if it.ended {
		return ReadResult[T]{Done: true}
	}
	r := it.r
	for {
		r.mu.Lock()
		if len(r.items) > 0 {
			v := r.items[0]
			r.items = r.items[1:]
			r.mu.Unlock()
			return ReadResult[T]{Value: v}
		}
		if r.terminal != nil {
			e := r.terminal
			it.ended = true
			r.mu.Unlock()
			return ReadResult[T]{Err: e}
		}
		if r.closed {
			it.ended = true
			r.mu.Unlock()
			return ReadResult[T]{Done: true}
		}
		r.mu.Unlock()
		select {
		case <-ctx.Done():
			it.ended = true
			return ReadResult[T]{Err: NewError(CodeCancel, ctx.Err().Error())}
		case <-r.signal:
		}
	}
}
