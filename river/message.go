// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import "encoding/json"

// SessionID identifies one half of a session's dual identity: a local id and
// a remote id, both freshly minted random ids at handshake time. Keeping it
// a distinct type from StreamID and string prevents accidental mixing at
// call sites.
type SessionID string

// StreamID identifies a single procedure invocation, scoped to a session.
type StreamID string

// MessageID uniquely identifies a single envelope.
type MessageID string

// ControlFlags is a bitset of the wire-visible control bits on a [Message].
// Bit positions are part of the external contract (spec.md §6) and must
// never change.
type ControlFlags uint8

const (
	// FlagStreamOpen marks a message that opens a new stream. ServiceName
	// and ProcedureName must be set on any message carrying this bit.
	FlagStreamOpen ControlFlags = 1 << iota
	// FlagStreamClosed marks the sender's half of the stream as closed
	// (a graceful, non-error half-close).
	FlagStreamClosed
	// FlagStreamCancel marks an abortive close; Payload carries an Error.
	FlagStreamCancel
	// FlagAckOnly marks a message that carries no application payload, only
	// an ack/heartbeat.
	FlagAckOnly
	// FlagCloseRequest marks a request from a readable's consumer (Break)
	// asking the peer's writable to stop producing (spec.md §4.5). It is
	// advisory: it changes no half-close state on either side and the peer
	// may keep producing; the sender's own Readable is already poisoned by
	// Break and drops whatever still arrives.
	FlagCloseRequest
)

// Has reports whether f contains all the bits in other.
func (f ControlFlags) Has(other ControlFlags) bool { return f&other == other }

// Message is the session-level envelope. Every non-internal message carries
// a StreamID; FlagStreamOpen implies ServiceName and ProcedureName are set;
// Seq values form a gap-free, strictly increasing sequence per session
// direction; Ack is non-decreasing. See spec.md §3.
type Message struct {
	ID            MessageID       `json:"id"`
	From          SessionID       `json:"from"`
	To            SessionID       `json:"to"`
	Seq           uint64          `json:"seq"`
	Ack           uint64          `json:"ack"`
	StreamID      StreamID        `json:"streamId"`
	ControlFlags  ControlFlags    `json:"controlFlags"`
	ServiceName   string          `json:"serviceName,omitempty"`
	ProcedureName string          `json:"procedureName,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// IsControlOnly reports whether m carries no application payload: a bare
// heartbeat/ack message.
func (m *Message) IsControlOnly() bool {
	return m.ControlFlags.Has(FlagAckOnly) && len(m.Payload) == 0
}

// HandshakeMessage is exchanged once per physical connection, before any
// Message traffic. See spec.md §4.3 and §6.
type HandshakeMessage struct {
	ProtocolVersion    int             `json:"protocolVersion"`
	SessionID          SessionID       `json:"sessionId"`
	ExpectedRemoteID   SessionID       `json:"expectedRemoteId,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
}
