// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import "context"

// PeerID identifies a remote endpoint at the transport layer, independent
// of any River session identity. A transport may reconnect a PeerID to a
// new physical Connection; the session layer (not the transport) is
// responsible for recovering from any resulting reordering (spec.md §4.2).
type PeerID string

// Connection is a framed duplex byte channel to one peer. Frame boundaries
// are preserved end to end. Implementations must be safe for concurrent
// Read/Write/Close calls from independent goroutines (Read is expected to
// be called from exactly one reader loop; Write may be called concurrently
// with that loop).
type Connection interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, frame []byte) error
	Close() error
	PeerID() PeerID
}

// Transport abstracts how physical connections to peers are accepted or
// dialed. The core never assumes in-order cross-connection delivery:
// reordering recovery is the session's job (spec.md §4.2).
type Transport interface {
	// Accept blocks until a new Connection is available, or ctx is done.
	Accept(ctx context.Context) (Connection, error)
	// Close shuts down the transport, unblocking any pending Accept.
	Close() error
}

// Dialer is implemented by client-side transports that actively connect to
// a known address, as opposed to server-side transports that Accept.
type Dialer interface {
	Dial(ctx context.Context, addr string) (Connection, error)
}

// ProtocolErrorKind enumerates the session-level observable error kinds
// from spec.md §4.2/§7.
type ProtocolErrorKind string

const (
	ProtocolErrorMessageSendFailure ProtocolErrorKind = "MessageSendFailure"
	ProtocolErrorHandshakeFailed    ProtocolErrorKind = "HandshakeFailed"
	ProtocolErrorInvariantViolation ProtocolErrorKind = "InvariantViolation"
)

// ProtocolError is an observable session-level event, not a fatal Go error:
// the session that emits one generally continues running (the exception is
// InvariantViolation and a persistent HandshakeFailed, which tear the
// session down — see session.go).
type ProtocolError struct {
	Kind    ProtocolErrorKind
	Session SessionID
	Message string
	Cause   error
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// SessionObserver receives session-level events. It is an external
// collaborator (spec.md §1): the core never depends on a concrete logging
// or tracing sink, only this interface. A nil *SessionObserver field means
// events are dropped.
type SessionObserver interface {
	OnProtocolError(err *ProtocolError)
	OnSessionTransition(id SessionID, state SessionState)
}

// NopObserver implements SessionObserver by discarding every event.
type NopObserver struct{}

func (NopObserver) OnProtocolError(*ProtocolError)                {}
func (NopObserver) OnSessionTransition(SessionID, SessionState) {}
