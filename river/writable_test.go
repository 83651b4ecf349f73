// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import "testing"

func TestWritableWriteInvokesWriteFn(t *testing.T) {
	var got []int
	w := newWritable(func(v int) error {
		got = append(got, v)
		return nil
	}, func() error { return nil })
	if err := w.Write(1); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(2); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got = %v, want [1 2]", got)
	}
}

func TestWritableCloseIsIdempotent(t *testing.T) {
	closes := 0
	w := newWritable(func(int) error { return nil }, func() error {
		closes++
		return nil
	})
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if closes != 1 {
		t.Fatalf("closeFn invoked %d times, want 1", closes)
	}
}

func TestWritableWriteAfterCloseFails(t *testing.T) {
	w := newWritable(func(int) error { return nil }, func() error { return nil })
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Write(1); err != ErrWritableClosed {
		t.Fatalf("Write after Close err = %v, want ErrWritableClosed", err)
	}
}

func TestWritableAbortMakesFurtherWritesFailWithoutClosing(t *testing.T) {
	closes := 0
	w := newWritable(func(int) error { return nil }, func() error {
		closes++
		return nil
	})
	w.abort()
	if w.IsWritable() {
		t.Fatal("IsWritable() after abort, want false")
	}
	if err := w.Write(1); err != ErrWritableClosed {
		t.Fatalf("Write after abort err = %v, want ErrWritableClosed", err)
	}
	if closes != 0 {
		t.Fatalf("closeFn invoked %d times after abort, want 0 (abort must not emit a close frame)", closes)
	}
}

func TestWritableIsWritableReflectsState(t *testing.T) {
	w := newWritable(func(int) error { return nil }, func() error { return nil })
	if !w.IsWritable() {
		t.Fatal("fresh Writable should be writable")
	}
	_ = w.Close()
	if w.IsWritable() {
		t.Fatal("Writable should not be writable after Close")
	}
}

func TestWritableOnCloseRequestFiresOnceEvenIfRegisteredLate(t *testing.T) {
	w := newWritable(func(int) error { return nil }, func() error { return nil })

	var firstCalls, lateCalls int
	w.OnCloseRequest(func() { firstCalls++ })
	w.requestClose()
	w.requestClose() // idempotent: must not fire firstCalls a second time

	// A listener registered after the request already fired must still run,
	// immediately, exactly once.
	w.OnCloseRequest(func() { lateCalls++ })

	if firstCalls != 1 {
		t.Fatalf("firstCalls = %d, want 1", firstCalls)
	}
	if lateCalls != 1 {
		t.Fatalf("lateCalls = %d, want 1", lateCalls)
	}
}
