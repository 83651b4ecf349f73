// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

// Codec is the abstract value<->byte-sequence boundary for the wire
// envelope. Encode may fail (e.g. transient allocation failure); the core
// treats that as a message-send failure, never a fatal session error: the
// message is dropped, a MessageSendFailure protocol event is emitted, and
// the session continues (spec.md §4.1, §7).
type Codec interface {
	Encode(msg *Message) ([]byte, error)
	Decode(frame []byte) (*Message, error)
}
