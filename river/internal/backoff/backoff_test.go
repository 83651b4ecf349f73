// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"testing"
	"time"
)

func TestBackoffGrowsTowardMax(t *testing.T) {
	b := New(10*time.Millisecond, 100*time.Millisecond)
	var last time.Duration
	for i := 0; i < 10; i++ {
		d := b.Next()
		if d < 0 {
			t.Fatalf("Next() returned negative delay: %v", d)
		}
		last = d
	}
	// After enough doublings current should have saturated at Max; the
	// jittered delay returned can exceed Max by up to current/2, but it
	// must never run away unboundedly.
	if last > 200*time.Millisecond {
		t.Fatalf("Next() = %v, expected backoff to have capped near Max", last)
	}
}

func TestBackoffResetReturnsToInitial(t *testing.T) {
	b := New(10*time.Millisecond, 1*time.Second)
	for i := 0; i < 5; i++ {
		b.Next()
	}
	b.Reset()
	d := b.Next()
	// With jitter in [0, initial/2], the first delay after Reset is bounded
	// by 1.5x the initial delay.
	if d > 15*time.Millisecond {
		t.Fatalf("Next() after Reset = %v, want <= 1.5x initial (15ms)", d)
	}
}
