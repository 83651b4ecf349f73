// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"encoding/json"
	"sync"
)

// StreamState is one state of the per-(session, streamId) state machine
// (spec.md §3).
type StreamState int

const (
	StreamInit StreamState = iota
	StreamOpen
	StreamClientHalfClosed
	StreamServerHalfClosed
	StreamClosed
	StreamAborted
)

func (s StreamState) String() string {
	switch s {
	case StreamInit:
		return "init"
	case StreamOpen:
		return "open"
	case StreamClientHalfClosed:
		return "client-half-closed"
	case StreamServerHalfClosed:
		return "server-half-closed"
	case StreamClosed:
		return "closed"
	case StreamAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// stream is the per-(session, streamId) state: one concrete representation
// used symmetrically from either the server's or the client's point of
// view. "in" is whatever this side receives from the peer after open; "out"
// is whatever this side sends after open. Exactly which of in/out is
// non-nil is decided by the side (server vs client) and the procedure's
// Kind: see newStream (spec.md §3, §4.4).
//
// A session owns its streams exclusively and mutates this struct only from
// its own event loop goroutine (spec.md §5); the mutex below exists solely
// to let handler goroutines read the current state/done-ness without
// crossing back onto the session loop, and to let Writable callbacks
// (invoked from handler goroutines) hand writes off safely.
type stream struct {
	id            StreamID
	session       *Session
	kind          ProcedureKind
	serviceName   string
	procedureName string
	isServerSide  bool

	in  *Readable[json.RawMessage]
	out *Writable[json.RawMessage]

	// inputValidate, when non-nil, validates each inbound data message
	// against the procedure's declared input schema before it reaches in
	// (server side only; set by dispatch.go after open validation).
	inputValidate func(json.RawMessage) error

	hc *HandlerContext

	mu              sync.Mutex
	state           StreamState
	localHalfClosed bool
	peerHalfClosed  bool
	done            chan struct{}
	finishOnce      sync.Once
}

func newStream(id StreamID, sess *Session, kind ProcedureKind, service, procedure string, isServerSide bool) *stream {
	st := &stream{
		id:            id,
		session:       sess,
		kind:          kind,
		serviceName:   service,
		procedureName: procedure,
		isServerSide:  isServerSide,
		state:         StreamInit,
		done:          make(chan struct{}),
	}

	wantsIn := (isServerSide && kind.hasInput()) || (!isServerSide)
	wantsOut := isServerSide || (!isServerSide && kind.hasInput())

	// A half with no channel can never independently signal close with a
	// real FlagStreamClosed frame, so it starts vacuously closed: otherwise
	// rpc/subscription streams (whichever side lacks a channel) would never
	// reach StreamClosed and would never be reaped from s.streams.
	st.localHalfClosed = !wantsOut
	st.peerHalfClosed = !wantsIn

	if wantsIn {
		st.in = newReadable[json.RawMessage](st.requestPeerStopProducing)
	}
	if wantsOut {
		st.out = newWritable(st.emit, st.emitClose)
	}
	return st
}

func (st *stream) setOpen() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.state == StreamInit {
		st.state = StreamOpen
	}
}

// emit is the Writable write callback: it hands the payload to the owning
// session to frame and send.
func (st *stream) emit(payload json.RawMessage) error {
	return st.session.sendStreamData(st.id, payload)
}

// emitClose is the Writable close callback: emits a graceful half-close and
// updates local bookkeeping, closing the stream if the peer is already
// half-closed too.
func (st *stream) emitClose() error {
	st.mu.Lock()
	if st.state == StreamAborted || st.state == StreamClosed {
		st.mu.Unlock()
		return nil
	}
	st.localHalfClosed = true
	bothClosed := st.peerHalfClosed
	if bothClosed {
		st.state = StreamClosed
	} else if st.isServerSide {
		st.state = StreamServerHalfClosed
	} else {
		st.state = StreamClientHalfClosed
	}
	finished := st.state == StreamClosed
	st.mu.Unlock()
	if finished {
		st.finish()
	}
	return st.session.sendStreamClosed(st.id)
}

// onPeerHalfClose handles an inbound FlagStreamClosed: the corresponding
// readable (if any) observes end-of-stream once drained.
func (st *stream) onPeerHalfClose() {
	if st.in != nil {
		st.in.closeWrite()
	}
	st.mu.Lock()
	st.peerHalfClosed = true
	bothClosed := st.localHalfClosed
	if bothClosed {
		st.state = StreamClosed
	}
	finished := bothClosed
	st.mu.Unlock()
	if finished {
		st.finish()
	}
}

// requestPeerStopProducing is the Readable onBreak callback: the local
// consumer gave up on reading, so tell the peer's Writable to stop (spec.md
// §4.5). It is advisory, so it's skipped once the stream is already
// terminal.
func (st *stream) requestPeerStopProducing() {
	switch st.currentState() {
	case StreamClosed, StreamAborted:
		return
	}
	_ = st.session.sendStreamCloseRequest(st.id)
}

// onPeerCloseRequest handles an inbound FlagCloseRequest: the peer's reader
// gave up, so the local writable (if any) is told to stop producing.
func (st *stream) onPeerCloseRequest() {
	if st.out != nil {
		st.out.requestClose()
	}
}

// onPeerData handles an inbound data message.
func (st *stream) onPeerData(payload json.RawMessage) {
	if st.in != nil {
		st.in.push(payload)
	}
}

// onPeerCancel handles an inbound FlagStreamCancel: bidirectional and
// terminal (spec.md §4.4) — both local readable and writable become inert,
// with no frame sent back (the peer already knows).
func (st *stream) onPeerCancel(wireErr *Error) {
	st.abortLocal(wireErr, false)
}

// localCancel implements HandlerContext.Cancel/Uncaught and client-side
// abort signal firing: it notifies the peer and aborts local state.
func (st *stream) localCancel(wireErr *Error) {
	st.abortLocal(wireErr, true)
}

// sessionDestroyed implements the UNEXPECTED_DISCONNECT path (spec.md §4.3,
// §4.4): no frame is sent, since the session (and its connection) is gone.
// cause is the session-level error that triggered destruction (grace expiry,
// explicit Close, or an invariant violation); every live stream resolves
// with it.
func (st *stream) sessionDestroyed(cause *Error) {
	if cause == nil {
		cause = NewError(CodeUnexpectedDisconnect, "session destroyed")
	}
	st.abortLocal(cause, false)
}

func (st *stream) abortLocal(wireErr *Error, notifyPeer bool) {
	st.mu.Lock()
	if st.state == StreamAborted || st.state == StreamClosed {
		st.mu.Unlock()
		return
	}
	st.state = StreamAborted
	st.mu.Unlock()

	if st.in != nil {
		st.in.abort(wireErr)
	}
	if st.out != nil {
		st.out.abort()
	}
	if st.hc != nil {
		st.hc.cancel()
	}
	if notifyPeer {
		_ = st.session.sendStreamCancel(st.id, wireErr)
	}
	st.finish()
}

// finish closes done at most once. Two independent transitions (a
// graceful mutual half-close observed on the session loop, and an abort
// fired concurrently from a handler goroutine) can both compute "this
// stream just became terminal" from state captured before either side's
// unlock; finishOnce collapses that race into a single close.
func (st *stream) finish() {
	st.finishOnce.Do(func() { close(st.done) })
}

func (st *stream) currentState() StreamState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}
