// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import "fmt"

// Error codes wire-visible to peers, per spec.md §4.4 and §7. A stream
// delivers at most one of these to each side's reader.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUncaughtError        = "UNCAUGHT_ERROR"
	CodeUnexpectedDisconnect = "UNEXPECTED_DISCONNECT"
	CodeCancel               = "CANCEL"
)

// Error is the wire shape of a failed [Result], analogous to the teacher
// SDK's jsonrpc.Error but scoped to River's fixed four-code taxonomy plus
// any application-declared error union members carried in Extras.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Extras  any    `json:"extras,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil river.Error>"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError constructs an *Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Result is the `{ok, payload}` shape from spec.md §6. Exactly one of Value
// or Err is meaningful, selected by Ok.
type Result[T any] struct {
	Ok    bool
	Value T
	Err   *Error
}

// OkResult constructs a successful Result.
func OkResult[T any](v T) Result[T] { return Result[T]{Ok: true, Value: v} }

// ErrResult constructs a failed Result.
func ErrResult[T any](err *Error) Result[T] { return Result[T]{Ok: false, Err: err} }

// MarshalJSON implements the `{ok: bool, payload: ...}` wire shape.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Ok {
		return marshalJSON(struct {
			Ok      bool `json:"ok"`
			Payload T    `json:"payload"`
		}{true, r.Value})
	}
	return marshalJSON(struct {
		Ok      bool   `json:"ok"`
		Payload *Error `json:"payload"`
	}{false, r.Err})
}

// UnmarshalJSON implements the `{ok: bool, payload: ...}` wire shape.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var wire struct {
		Ok      bool            `json:"ok"`
		Payload wireRawMessage  `json:"payload"`
	}
	if err := unmarshalJSON(data, &wire); err != nil {
		return err
	}
	r.Ok = wire.Ok
	if wire.Ok {
		return unmarshalJSON(wire.Payload, &r.Value)
	}
	var e Error
	if err := unmarshalJSON(wire.Payload, &e); err != nil {
		return err
	}
	r.Err = &e
	return nil
}
