// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package idgen generates the random ids River mints for sessions, streams,
// and messages. Grounded on the teacher SDK's crypto/rand-backed randText
// helper (mcp/util.go), generalized to a reusable package since River needs
// three distinct id flavors rather than one.
package idgen

import (
	"crypto/rand"
	"encoding/base32"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns a fresh random identifier with no particular structure,
// suitable for session ids, stream ids, or message ids.
func New() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is broken,
		// which is unrecoverable for a process that needs unguessable ids.
		panic("river/internal/idgen: crypto/rand unavailable: " + err.Error())
	}
	return encoding.EncodeToString(b[:])
}
