// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package lru

import "testing"

func TestSetContainsAndAdd(t *testing.T) {
	s := New[string](0)
	if s.Contains("a") {
		t.Fatal("empty set should not contain anything")
	}
	s.Add("a")
	if !s.Contains("a") {
		t.Fatal("set should contain a after Add")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestSetAddIsIdempotent(t *testing.T) {
	s := New[string](0)
	s.Add("a")
	s.Add("a")
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate Add", s.Len())
	}
}

func TestSetFIFOEviction(t *testing.T) {
	s := New[int](3)
	s.Add(1)
	s.Add(2)
	s.Add(3)
	s.Add(4) // evicts 1
	if s.Contains(1) {
		t.Fatal("oldest key should have been evicted")
	}
	for _, k := range []int{2, 3, 4} {
		if !s.Contains(k) {
			t.Fatalf("key %d should still be present", k)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestSetUnboundedWhenCapacityZero(t *testing.T) {
	s := New[int](0)
	for i := 0; i < 1000; i++ {
		s.Add(i)
	}
	if s.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000 for an unbounded set", s.Len())
	}
}
