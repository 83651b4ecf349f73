// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package backoff implements exponential backoff with jitter, used by the
// client's reconnect loop. Grounded on the teacher SDK's
// streamableClientConn retry loop (mcp/streamable.go
// startEventStreamReceiver/startMessageWriter), which hand-rolls the same
// shape; River keeps that shape as a small reusable package instead of
// pulling in github.com/jpillora/backoff (see DESIGN.md).
package backoff

import (
	"math/rand"
	"time"
)

// Backoff tracks exponential-backoff-with-jitter state across retries.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration

	current time.Duration
	rnd     *rand.Rand
}

// New returns a Backoff starting at initial, capped at max.
func New(initial, max time.Duration) *Backoff {
	return &Backoff{
		Initial: initial,
		Max:     max,
		current: initial,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the delay to wait before the next attempt and advances the
// internal state toward Max.
func (b *Backoff) Next() time.Duration {
	d := b.current
	jitter := time.Duration(0)
	if d > 0 {
		jitter = time.Duration(b.rnd.Int63n(int64(d/2) + 1))
	}
	delay := d + jitter
	b.current *= 2
	if b.current > b.Max {
		b.current = b.Max
	}
	return delay
}

// Reset returns the backoff to its initial delay, used after a successful
// reconnect.
func (b *Backoff) Reset() {
	b.current = b.Initial
}
