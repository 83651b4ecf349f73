// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/riverrpc/river"
)

// BinaryCodec is a length-prefixed envelope codec for transports that want
// to avoid JSON overhead on the envelope itself; the opaque Payload field
// inside Message is still whatever bytes the application/procedure layer
// produced (SPEC_FULL.md §4.1). Field layout, in order: a 1-byte format tag
// (reserved, always 1), then the envelope fields in declaration order:
// string and byte fields length-prefixed with a uint32, Seq and Ack as
// fixed 8-byte integers, ControlFlags as a single byte.
type BinaryCodec struct{}

var _ river.Codec = BinaryCodec{}

const binaryFormatTag = 1

func (BinaryCodec) Encode(msg *river.Message) ([]byte, error) {
	var buf []byte
	buf = append(buf, binaryFormatTag)
	buf = appendString(buf, string(msg.ID))
	buf = appendString(buf, string(msg.From))
	buf = appendString(buf, string(msg.To))
	buf = appendUint64(buf, msg.Seq)
	buf = appendUint64(buf, msg.Ack)
	buf = appendString(buf, string(msg.StreamID))
	buf = append(buf, byte(msg.ControlFlags))
	buf = appendString(buf, msg.ServiceName)
	buf = appendString(buf, msg.ProcedureName)
	buf = appendBytes(buf, msg.Payload)
	return buf, nil
}

func (BinaryCodec) Decode(frame []byte) (*river.Message, error) {
	if len(frame) == 0 || frame[0] != binaryFormatTag {
		return nil, fmt.Errorf("wire: unrecognized binary envelope format tag")
	}
	r := &reader{buf: frame[1:]}
	msg := &river.Message{}
	id, err := r.string()
	if err != nil {
		return nil, err
	}
	msg.ID = river.MessageID(id)
	from, err := r.string()
	if err != nil {
		return nil, err
	}
	msg.From = river.SessionID(from)
	to, err := r.string()
	if err != nil {
		return nil, err
	}
	msg.To = river.SessionID(to)
	if msg.Seq, err = r.uint64(); err != nil {
		return nil, err
	}
	if msg.Ack, err = r.uint64(); err != nil {
		return nil, err
	}
	streamID, err := r.string()
	if err != nil {
		return nil, err
	}
	msg.StreamID = river.StreamID(streamID)
	flags, err := r.byte()
	if err != nil {
		return nil, err
	}
	msg.ControlFlags = river.ControlFlags(flags)
	if msg.ServiceName, err = r.string(); err != nil {
		return nil, err
	}
	if msg.ProcedureName, err = r.string(); err != nil {
		return nil, err
	}
	payload, err := r.bytes()
	if err != nil {
		return nil, err
	}
	msg.Payload = payload
	return msg, nil
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBytes(buf []byte, b []byte) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(b)))
	buf = append(buf, tmp[:]...)
	return append(buf, b...)
}

func appendString(buf []byte, s string) []byte {
	return appendBytes(buf, []byte(s))
}

type reader struct {
	buf []byte
}

func (r *reader) uint64() (uint64, error) {
	if len(r.buf) < 8 {
		return 0, fmt.Errorf("wire: truncated uint64")
	}
	v := binary.BigEndian.Uint64(r.buf[:8])
	r.buf = r.buf[8:]
	return v, nil
}

func (r *reader) byte() (byte, error) {
	if len(r.buf) < 1 {
		return 0, fmt.Errorf("wire: truncated byte")
	}
	b := r.buf[0]
	r.buf = r.buf[1:]
	return b, nil
}

func (r *reader) bytes() ([]byte, error) {
	if len(r.buf) < 4 {
		return nil, fmt.Errorf("wire: truncated length prefix")
	}
	n := binary.BigEndian.Uint32(r.buf[:4])
	r.buf = r.buf[4:]
	if uint64(len(r.buf)) < uint64(n) {
		return nil, fmt.Errorf("wire: truncated payload")
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out, nil
}

func (r *reader) string() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
