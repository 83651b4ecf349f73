// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riverrpc/river/internal/backoff"
	"github.com/riverrpc/river/internal/idgen"
	"github.com/riverrpc/river/internal/lru"
	"github.com/riverrpc/river/log"
	"golang.org/x/time/rate"
)

// SessionState is one state of the per-peer session lifecycle (spec.md §3).
type SessionState int

const (
	SessionNoConnection SessionState = iota
	SessionHandshaking
	SessionConnected
	SessionPendingReconnect
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionNoConnection:
		return "no-connection"
	case SessionHandshaking:
		return "handshaking"
	case SessionConnected:
		return "connected"
	case SessionPendingReconnect:
		return "pending-reconnect"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const protocolVersion = 1

// ErrSessionMismatch is returned by Reconnect when the peer's session id on
// the new physical connection does not match the cached remote id: per
// spec.md §4.3, this forces a brand new session rather than resuming the old
// one. The caller must discard this Session (its streams are already
// aborted) and establish a fresh one.
var ErrSessionMismatch = errors.New("river: remote session id mismatch on reconnect, new session required")

// ErrSessionClosed is returned by session operations attempted after the
// session has been destroyed.
var ErrSessionClosed = errors.New("river: session is closed")

// SessionOptions configures a Session's ambient behavior. Zero value uses
// the defaults documented in SPEC_FULL.md §9 (heartbeat 15s, grace 60s,
// tombstone cap 256).
type SessionOptions struct {
	HeartbeatInterval   time.Duration
	GraceDuration       time.Duration
	MaxMissedHeartbeats int
	MaxTombstones       int

	HandshakeMetadata json.RawMessage
	ValidateHandshake func(ctx context.Context, metadata json.RawMessage) error

	Observer SessionObserver
	Logger   log.Logger

	// OnInboundOpen, when non-nil, is invoked on the session's own loop
	// goroutine for every inbound FlagStreamOpen message; it is how a
	// server wires procedure dispatch into a session (dispatch.go) without
	// this file depending on Registry directly.
	OnInboundOpen func(sess *Session, msg *Message)

	// RateLimiter, when non-nil, is consulted for every inbound message of
	// this session (a Server hands one shared limiter to all of its
	// sessions); messages beyond the limit are dropped with a
	// MessageSendFailure-class protocol event rather than reaching
	// dispatch (SPEC_FULL.md §11/§12).
	RateLimiter *rate.Limiter
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 15 * time.Second
	}
	if o.GraceDuration <= 0 {
		o.GraceDuration = 60 * time.Second
	}
	if o.MaxMissedHeartbeats <= 0 {
		o.MaxMissedHeartbeats = 3
	}
	if o.MaxTombstones <= 0 {
		o.MaxTombstones = 256
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	if o.Logger == nil {
		o.Logger = log.Nop{}
	}
	return o
}

// Session is a logical connection between two peer ids that survives
// transient transport disconnects (spec.md §3, §4.3). All mutable state
// below the "loop-owned state" marker is touched only from run's goroutine;
// everything else is immutable after construction or independently
// synchronized.
type Session struct {
	opts  SessionOptions
	codec Codec

	localID  SessionID
	remoteID SessionID
	peerID   PeerID
	isServer bool

	work      chan func()
	closed    chan struct{}
	closeOnce sync.Once

	backoff *backoff.Backoff

	// --- loop-owned state: mutated only inside run() ---
	state            SessionState
	conn             Connection
	connGen          uint64
	outboundSeq      uint64
	lastRecvSeq      uint64
	haveLastRecvSeq  bool
	sendBuffer       []*Message
	streams          map[StreamID]*stream
	tombstones       *lru.Set[StreamID]
	missedHeartbeats int
	heartbeatTicker  *time.Ticker
	graceTimer       *time.Timer
}

func newSession(isServer bool, codec Codec, opts SessionOptions) *Session {
	opts = opts.withDefaults()
	return &Session{
		opts:       opts,
		codec:      codec,
		localID:    SessionID(idgen.New()),
		isServer:   isServer,
		work:       make(chan func(), 64),
		closed:     make(chan struct{}),
		backoff:    backoff.New(200*time.Millisecond, 30*time.Second),
		state:      SessionNoConnection,
		streams:    make(map[StreamID]*stream),
		tombstones: lru.New[StreamID](opts.MaxTombstones),
	}
}

// ID returns the session's local id.
func (s *Session) ID() SessionID { return s.localID }

// Done returns a channel closed once the session has been destroyed, for
// callers (e.g. Server) that want to reap bookkeeping tied to its lifetime.
func (s *Session) Done() <-chan struct{} { return s.closed }

// State reports the session's current lifecycle state. Safe to call from
// any goroutine: it hands off to the loop.
func (s *Session) State() SessionState {
	st := SessionClosed
	s.submitWait(func() { st = s.state })
	return st
}

// submit enqueues fn to run on the session's loop goroutine, without
// waiting for it to run. It is a no-op if the session is already closed.
func (s *Session) submit(fn func()) {
	select {
	case s.work <- fn:
	case <-s.closed:
	}
}

// submitWait runs fn on the loop goroutine and blocks until it completes.
func (s *Session) submitWait(fn func()) {
	done := make(chan struct{})
	s.submit(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-s.closed:
	}
}

// Connect performs the client-side handshake over conn and starts the
// session loop. peerID identifies the remote endpoint at the transport
// layer.
func (s *Session) Connect(ctx context.Context, conn Connection) error {
	s.peerID = conn.PeerID()
	s.state = SessionHandshaking
	out := HandshakeMessage{
		ProtocolVersion: protocolVersion,
		SessionID:       s.localID,
		Metadata:        s.opts.HandshakeMetadata,
	}
	if err := writeHandshake(ctx, conn, out); err != nil {
		s.emitProtocolError(ProtocolErrorHandshakeFailed, "send handshake", err)
		return fmt.Errorf("river: send handshake: %w", err)
	}
	in, err := readHandshake(ctx, conn)
	if err != nil {
		s.emitProtocolError(ProtocolErrorHandshakeFailed, "read handshake reply", err)
		return fmt.Errorf("river: read handshake reply: %w", err)
	}
	if s.opts.ValidateHandshake != nil {
		if err := s.opts.ValidateHandshake(ctx, in.Metadata); err != nil {
			s.emitProtocolError(ProtocolErrorHandshakeFailed, "reject handshake metadata", err)
			return fmt.Errorf("river: handshake metadata rejected: %w", err)
		}
	}
	s.remoteID = in.SessionID
	s.startLoop(conn)
	return nil
}

// Accept performs the server-side handshake over conn (reading the peer's
// handshake first, then replying) and starts the session loop.
func (s *Session) Accept(ctx context.Context, conn Connection) error {
	s.peerID = conn.PeerID()
	s.state = SessionHandshaking
	in, err := readHandshake(ctx, conn)
	if err != nil {
		s.emitProtocolError(ProtocolErrorHandshakeFailed, "read handshake", err)
		return fmt.Errorf("river: read handshake: %w", err)
	}
	if s.opts.ValidateHandshake != nil {
		if err := s.opts.ValidateHandshake(ctx, in.Metadata); err != nil {
			s.emitProtocolError(ProtocolErrorHandshakeFailed, "reject handshake metadata", err)
			return fmt.Errorf("river: handshake metadata rejected: %w", err)
		}
	}
	s.remoteID = in.SessionID
	out := HandshakeMessage{
		ProtocolVersion:  protocolVersion,
		SessionID:        s.localID,
		ExpectedRemoteID: in.SessionID,
		Metadata:         s.opts.HandshakeMetadata,
	}
	if err := writeHandshake(ctx, conn, out); err != nil {
		s.emitProtocolError(ProtocolErrorHandshakeFailed, "send handshake reply", err)
		return fmt.Errorf("river: send handshake reply: %w", err)
	}
	s.startLoop(conn)
	return nil
}

// Reconnect attaches a new physical connection to an existing session that
// is PendingReconnect (or NoConnection, for a client retry loop), replaying
// the send buffer in seq order once the handshake re-validates. Returns
// ErrSessionMismatch if the peer's session id no longer matches: the old
// session's streams are already being destroyed (or have been) and the
// caller must start over with a new Session.
func (s *Session) Reconnect(ctx context.Context, conn Connection) error {
	in, err := readOrSendReconnectHandshake(ctx, conn, s)
	if err != nil {
		return err
	}
	if in.SessionID != s.remoteID {
		s.submit(func() { s.destroy(NewError(CodeUnexpectedDisconnect, "remote session id changed")) })
		return ErrSessionMismatch
	}
	s.submitWait(func() {
		s.conn = conn
		s.connGen++
		s.state = SessionConnected
		s.missedHeartbeats = 0
		if s.graceTimer != nil {
			s.graceTimer.Stop()
		}
		s.opts.Observer.OnSessionTransition(s.localID, s.state)
		s.startReader(conn, s.connGen)
		s.replayLocked()
	})
	return nil
}

// readOrSendReconnectHandshake performs the same two handshake frames as
// Connect/Accept do initially: every physical connection, including a
// resumed one, exchanges a fresh handshake frame (spec.md §4.3 "On first
// send or receive for a peer id"), carrying ExpectedRemoteID so either side
// can detect a changed remote identity.
func readOrSendReconnectHandshake(ctx context.Context, conn Connection, s *Session) (HandshakeMessage, error) {
	out := HandshakeMessage{
		ProtocolVersion:  protocolVersion,
		SessionID:        s.localID,
		ExpectedRemoteID: s.remoteID,
		Metadata:         s.opts.HandshakeMetadata,
	}
	if s.isServer {
		in, err := readHandshake(ctx, conn)
		if err != nil {
			return HandshakeMessage{}, err
		}
		if err := writeHandshake(ctx, conn, out); err != nil {
			return HandshakeMessage{}, err
		}
		return in, nil
	}
	if err := writeHandshake(ctx, conn, out); err != nil {
		return HandshakeMessage{}, err
	}
	return readHandshake(ctx, conn)
}

func (s *Session) startLoop(conn Connection) {
	s.conn = conn
	s.state = SessionConnected
	s.opts.Observer.OnSessionTransition(s.localID, s.state)
	s.heartbeatTicker = time.NewTicker(s.opts.HeartbeatInterval)
	go s.run()
	s.startReader(conn, s.connGen)
}

// startReader launches the per-connection read loop. gen pins it to one
// physical connection: after a reconnect bumps connGen, a stale reader
// observes the mismatch and exits instead of racing the new one.
func (s *Session) startReader(conn Connection, gen uint64) {
	go func() {
		ctx := context.Background()
		for {
			frame, err := conn.Read(ctx)
			if err != nil {
				s.submit(func() { s.onConnectionLost(conn, gen, err) })
				return
			}
			msg, err := s.codec.Decode(frame)
			if err != nil {
				s.emitProtocolError(ProtocolErrorInvariantViolation, "decode frame", err)
				continue
			}
			s.submit(func() { s.handleIncoming(conn, gen, msg) })
		}
	}()
}

// run is the session's single serialized event loop (spec.md §5): every
// mutation of loop-owned state happens here.
func (s *Session) run() {
	for {
		select {
		case fn := <-s.work:
			fn()
		case <-s.heartbeatTickerC():
			s.sendHeartbeat()
		case <-s.graceTimerC():
			s.expireGrace()
		case <-s.closed:
			return
		}
	}
}

func (s *Session) heartbeatTickerC() <-chan time.Time {
	if s.heartbeatTicker == nil {
		return nil
	}
	return s.heartbeatTicker.C
}

func (s *Session) graceTimerC() <-chan time.Time {
	if s.graceTimer == nil {
		return nil
	}
	return s.graceTimer.C
}

func (s *Session) onConnectionLost(conn Connection, gen uint64, cause error) {
	if gen != s.connGen || s.state == SessionClosed {
		return
	}
	s.opts.Logger.Warn("river: connection lost", "session", s.localID, "cause", cause)
	s.conn = nil
	s.state = SessionPendingReconnect
	s.opts.Observer.OnSessionTransition(s.localID, s.state)
	s.graceTimer = time.NewTimer(s.opts.GraceDuration)
}

func (s *Session) expireGrace() {
	if s.state != SessionPendingReconnect {
		return
	}
	s.destroy(NewError(CodeUnexpectedDisconnect, "grace period expired without reconnect"))
}

// destroy tears the session down: every open stream resolves with the given
// terminal error (spec.md §3 "on session destruction, all its streams
// transition to Aborted"), and the loop exits.
func (s *Session) destroy(cause *Error) {
	if s.state == SessionClosed {
		return
	}
	s.state = SessionClosed
	s.opts.Observer.OnSessionTransition(s.localID, s.state)
	for _, st := range s.streams {
		st.sessionDestroyed(cause)
	}
	s.streams = make(map[StreamID]*stream)
	if s.heartbeatTicker != nil {
		s.heartbeatTicker.Stop()
	}
	if s.graceTimer != nil {
		s.graceTimer.Stop()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.closeOnce.Do(func() { close(s.closed) })
}

// Close tears the session down explicitly (spec.md §3 "or on explicit
// close"), as opposed to grace-period expiry.
func (s *Session) Close() error {
	s.submitWait(func() { s.destroy(NewError(CodeUnexpectedDisconnect, "session closed")) })
	return nil
}

func (s *Session) sendHeartbeat() {
	msg := &Message{ControlFlags: FlagAckOnly}
	if err := s.sendLocked(msg); err != nil {
		s.emitProtocolError(ProtocolErrorMessageSendFailure, "heartbeat encode", err)
		s.missedHeartbeats++
	} else {
		s.missedHeartbeats = 0
	}
	if s.missedHeartbeats >= s.opts.MaxMissedHeartbeats && s.state == SessionConnected {
		s.conn = nil
		s.state = SessionPendingReconnect
		s.opts.Observer.OnSessionTransition(s.localID, s.state)
		s.graceTimer = time.NewTimer(s.opts.GraceDuration)
	}
}

// sendLocked assigns seq, stashes msg in the send buffer, and attempts to
// write it if currently connected. Must run on the loop goroutine.
func (s *Session) sendLocked(msg *Message) error {
	msg.From = s.localID
	msg.To = s.remoteID
	msg.Seq = s.outboundSeq
	s.outboundSeq++
	msg.Ack = s.lastRecvSeq
	s.sendBuffer = append(s.sendBuffer, msg)
	return s.tryFlush(msg)
}

func (s *Session) tryFlush(msg *Message) error {
	if s.conn == nil {
		return nil
	}
	frame, err := s.codec.Encode(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.conn.Write(ctx, frame); err != nil {
		return err
	}
	return nil
}

// replayLocked re-drains the send buffer in seq order over the current
// connection (spec.md §4.3 send-buffer replay on reconnect). Must run on
// the loop goroutine.
func (s *Session) replayLocked() {
	for _, msg := range s.sendBuffer {
		if err := s.tryFlush(msg); err != nil {
			s.emitProtocolError(ProtocolErrorMessageSendFailure, "replay", err)
			return
		}
	}
}

// releaseAcked drops buffered messages with seq <= ack.
func (s *Session) releaseAcked(ack uint64) {
	i := 0
	for ; i < len(s.sendBuffer); i++ {
		if s.sendBuffer[i].Seq > ack {
			break
		}
	}
	s.sendBuffer = s.sendBuffer[i:]
}

func (s *Session) handleIncoming(conn Connection, gen uint64, msg *Message) {
	if gen != s.connGen || s.state == SessionClosed {
		return
	}
	if s.opts.RateLimiter != nil && !s.opts.RateLimiter.Allow() {
		s.emitProtocolError(ProtocolErrorMessageSendFailure, "inbound rate limit exceeded", nil)
		return
	}
	s.releaseAcked(msg.Ack)

	if s.haveLastRecvSeq && msg.Seq <= s.lastRecvSeq {
		// Already processed: the peer replays its unacked send buffer after
		// a reconnect, which can resend messages this side has seen.
		return
	}
	if s.haveLastRecvSeq && msg.Seq != s.lastRecvSeq+1 {
		s.emitProtocolError(ProtocolErrorInvariantViolation, "non-contiguous seq", fmt.Errorf("got %d, want %d", msg.Seq, s.lastRecvSeq+1))
		s.destroy(NewError(CodeUnexpectedDisconnect, "invariant violation: seq gap"))
		return
	}
	s.lastRecvSeq = msg.Seq
	s.haveLastRecvSeq = true
	s.missedHeartbeats = 0

	if s.opts.RateLimiter != nil && !s.opts.RateLimiter.Allow() {
		s.emitProtocolError(ProtocolErrorMessageSendFailure, "inbound rate limit exceeded", nil)
		return
	}
	if msg.IsControlOnly() {
		return
	}

	switch {
	case msg.ControlFlags.Has(FlagStreamOpen):
		s.handleOpen(msg)
	case msg.ControlFlags.Has(FlagStreamCancel):
		s.handleCancel(msg)
	case msg.ControlFlags.Has(FlagStreamClosed):
		s.handleHalfClose(msg)
	case msg.ControlFlags.Has(FlagCloseRequest):
		s.handleCloseRequest(msg)
	default:
		s.handleData(msg)
	}
}

func (s *Session) handleOpen(msg *Message) {
	if s.tombstones.Contains(msg.StreamID) {
		return
	}
	if _, exists := s.streams[msg.StreamID]; exists {
		// duplicate open for an id already answered this connection: the
		// first invalid open already tombstoned it, or it's a legitimate
		// existing stream — either way, drop.
		return
	}
	if s.opts.OnInboundOpen == nil {
		s.tombstones.Add(msg.StreamID)
		s.sendStreamCancelLocked(msg.StreamID, NewError(CodeInvalidRequest, "this session does not serve procedures"))
		return
	}
	s.opts.OnInboundOpen(s, msg)
}

func (s *Session) handleData(msg *Message) {
	st, ok := s.streams[msg.StreamID]
	if !ok {
		if s.tombstones.Contains(msg.StreamID) {
			return
		}
		s.tombstones.Add(msg.StreamID)
		s.sendStreamCancelLocked(msg.StreamID, NewError(CodeInvalidRequest, "missing stream open bit"))
		return
	}
	st.mu.Lock()
	peerClosed := st.peerHalfClosed
	st.mu.Unlock()
	if peerClosed {
		s.tombstones.Add(msg.StreamID)
		s.sendStreamCancelLocked(msg.StreamID, NewError(CodeInvalidRequest, "stream is closed"))
		return
	}
	if st.in == nil {
		s.tombstones.Add(msg.StreamID)
		s.sendStreamCancelLocked(msg.StreamID, NewError(CodeInvalidRequest, "unexpected control payload"))
		return
	}
	if st.inputValidate != nil {
		if err := st.inputValidate(msg.Payload); err != nil {
			s.tombstones.Add(msg.StreamID)
			s.sendStreamCancelLocked(msg.StreamID, NewError(CodeInvalidRequest, "input payload failed validation: "+err.Error()))
			return
		}
	}
	st.onPeerData(msg.Payload)
}

func (s *Session) handleHalfClose(msg *Message) {
	st, ok := s.streams[msg.StreamID]
	if !ok {
		return
	}
	st.onPeerHalfClose()
	s.reapIfClosed(st)
}

func (s *Session) handleCloseRequest(msg *Message) {
	st, ok := s.streams[msg.StreamID]
	if !ok {
		return
	}
	st.onPeerCloseRequest()
}

func (s *Session) handleCancel(msg *Message) {
	st, ok := s.streams[msg.StreamID]
	if !ok {
		return
	}
	var wireErr Error
	if len(msg.Payload) > 0 {
		_ = unmarshalJSON(msg.Payload, &wireErr)
	}
	if wireErr.Code == "" {
		wireErr = Error{Code: CodeCancel, Message: "cancelled by peer"}
	}
	st.onPeerCancel(&wireErr)
	delete(s.streams, st.id)
	s.tombstones.Add(st.id)
}

func (s *Session) reapIfClosed(st *stream) {
	if st.currentState() == StreamClosed {
		delete(s.streams, st.id)
	}
}

// registerStream inserts st into the session's stream table. Must run on
// the loop goroutine.
func (s *Session) registerStream(st *stream) {
	s.streams[st.id] = st
}

// sendStreamData, sendStreamClosed, and sendStreamCancel are called from
// stream.go's Writable callbacks and abort path, potentially from a handler
// goroutine; they hand off to the loop via submitWait so sendBuffer/seq
// stay single-writer.
func (s *Session) sendStreamData(id StreamID, payload json.RawMessage) error {
	var sendErr error
	s.submitWait(func() {
		sendErr = s.sendLocked(&Message{StreamID: id, Payload: payload})
		if sendErr != nil {
			s.emitProtocolError(ProtocolErrorMessageSendFailure, "stream data", sendErr)
			sendErr = nil // message-send failure is not fatal to the caller (spec.md §4.1)
		}
	})
	return sendErr
}

func (s *Session) sendStreamClosed(id StreamID) error {
	s.submitWait(func() {
		if err := s.sendLocked(&Message{StreamID: id, ControlFlags: FlagStreamClosed}); err != nil {
			s.emitProtocolError(ProtocolErrorMessageSendFailure, "stream close", err)
		}
		if st, ok := s.streams[id]; ok {
			s.reapIfClosed(st)
		}
	})
	return nil
}

// sendStreamCloseRequest is called from Readable.Break (via the stream's
// onBreak callback), potentially from a handler goroutine, to tell the
// peer's Writable to stop producing (spec.md §4.5).
func (s *Session) sendStreamCloseRequest(id StreamID) error {
	s.submitWait(func() {
		if err := s.sendLocked(&Message{StreamID: id, ControlFlags: FlagCloseRequest}); err != nil {
			s.emitProtocolError(ProtocolErrorMessageSendFailure, "stream close-request", err)
		}
	})
	return nil
}

// sendStreamCancel is for use by code NOT already on the loop goroutine
// (stream.go's abortLocal, reached from handler goroutines): it hands off
// via submitWait.
func (s *Session) sendStreamCancel(id StreamID, wireErr *Error) error {
	s.submitWait(func() { s.sendStreamCancelLocked(id, wireErr) })
	return nil
}

// sendStreamCancelLocked frames and sends a StreamCancel message. Unlike
// sendStreamCancel, it must only be called from code already running on the
// loop goroutine (handleOpen, handleData, dispatcher.onInboundOpen): calling
// submitWait from the loop goroutine itself would deadlock, since nothing
// would be left to drain s.work.
func (s *Session) sendStreamCancelLocked(id StreamID, wireErr *Error) {
	payload, err := marshalJSON(wireErr)
	if err != nil {
		s.emitProtocolError(ProtocolErrorMessageSendFailure, "encode stream cancel", err)
		return
	}
	if err := s.sendLocked(&Message{StreamID: id, ControlFlags: FlagStreamCancel, Payload: payload}); err != nil {
		s.emitProtocolError(ProtocolErrorMessageSendFailure, "stream cancel", err)
	}
}

// openOutboundStream creates and registers a client-initiated stream,
// sending the StreamOpen frame with the given init payload.
func (s *Session) openOutboundStream(kind ProcedureKind, service, procedure string, init json.RawMessage) (*stream, error) {
	if s.State() == SessionClosed {
		return nil, ErrSessionClosed
	}
	id := StreamID(idgen.New())
	st := newStream(id, s, kind, service, procedure, false)
	st.setOpen()
	s.submitWait(func() {
		s.registerStream(st)
		if err := s.sendLocked(&Message{
			StreamID:      id,
			ControlFlags:  FlagStreamOpen,
			ServiceName:   service,
			ProcedureName: procedure,
			Payload:       init,
		}); err != nil {
			s.emitProtocolError(ProtocolErrorMessageSendFailure, "stream open", err)
		}
	})
	return st, nil
}

func (s *Session) emitProtocolError(kind ProtocolErrorKind, message string, cause error) {
	s.opts.Logger.Warn("river: protocol error", "kind", kind, "message", message, "cause", cause)
	s.opts.Observer.OnProtocolError(&ProtocolError{Kind: kind, Session: s.localID, Message: message, Cause: cause})
}

func writeHandshake(ctx context.Context, conn Connection, hs HandshakeMessage) error {
	frame, err := json.Marshal(hs)
	if err != nil {
		return err
	}
	return conn.Write(ctx, frame)
}

func readHandshake(ctx context.Context, conn Connection) (HandshakeMessage, error) {
	frame, err := conn.Read(ctx)
	if err != nil {
		return HandshakeMessage{}, err
	}
	var hs HandshakeMessage
	if err := json.Unmarshal(frame, &hs); err != nil {
		return HandshakeMessage{}, err
	}
	return hs, nil
}
