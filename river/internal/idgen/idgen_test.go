// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package idgen

import "testing"

func TestNewIsNonEmptyAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if id == "" {
			t.Fatal("New() returned an empty id")
		}
		if seen[id] {
			t.Fatalf("New() produced a duplicate id: %q", id)
		}
		seen[id] = true
	}
}
