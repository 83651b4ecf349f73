// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"encoding/json"
	"time"

	"github.com/riverrpc/river/log"
	"golang.org/x/time/rate"
)

// HandshakeOptions configures what handshake metadata a side sends and, on
// the receiving side, how it is validated (spec.md §6).
type HandshakeOptions struct {
	// Construct builds the metadata payload a Client sends at handshake.
	Construct func(ctx context.Context) (json.RawMessage, error)
	// Validate checks metadata received from the peer; returning an error
	// rejects the handshake (spec.md §4.3).
	Validate func(ctx context.Context, metadata json.RawMessage) error
}

// ServerOptions configures a Server (spec.md §6, SPEC_FULL.md §4.6/§11).
type ServerOptions struct {
	HandshakeOptions HandshakeOptions

	Middlewares []Middleware

	HeartbeatInterval             time.Duration
	GraceDuration                 time.Duration
	MaxMissedHeartbeats           int
	MaxAbortedStreamTombstonesPerSession int

	Observer SessionObserver
	Logger   log.Logger

	// RateLimiter, when non-nil, is consulted once per inbound message
	// before it reaches session processing; exceeding it raises a
	// MessageSendFailure-class protocol event and drops the message,
	// protecting dispatch from a peer flooding stream opens (SPEC_FULL.md
	// §11/§12 — additive hardening, not named in spec.md).
	RateLimiter *rate.Limiter
}

func (o ServerOptions) sessionOptions(onOpen func(sess *Session, msg *Message)) SessionOptions {
	return SessionOptions{
		HeartbeatInterval:   o.HeartbeatInterval,
		GraceDuration:       o.GraceDuration,
		MaxMissedHeartbeats: o.MaxMissedHeartbeats,
		MaxTombstones:       o.MaxAbortedStreamTombstonesPerSession,
		ValidateHandshake:   o.HandshakeOptions.Validate,
		Observer:            o.Observer,
		Logger:              o.Logger,
		OnInboundOpen:       onOpen,
	}
}

// ClientOptions configures a Client (spec.md §6).
type ClientOptions struct {
	HandshakeOptions HandshakeOptions

	// EagerlyConnect, when true, dials/handshakes at construction time
	// rather than waiting for an explicit Connect call.
	EagerlyConnect bool

	HeartbeatInterval   time.Duration
	GraceDuration       time.Duration
	MaxMissedHeartbeats int

	Observer SessionObserver
	Logger   log.Logger
}

func (o ClientOptions) sessionOptions() SessionOptions {
	return SessionOptions{
		HeartbeatInterval:   o.HeartbeatInterval,
		GraceDuration:       o.GraceDuration,
		MaxMissedHeartbeats: o.MaxMissedHeartbeats,
		Observer:            o.Observer,
		Logger:              o.Logger,
	}
}
