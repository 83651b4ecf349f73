// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package util holds small net helpers shared by transports. Adapted from
// the teacher SDK's internal/util/net.go.
package util

import (
	"net"
	"net/netip"
	"strings"
)

// IsLoopback reports whether addr (host, or host:port) names a loopback
// address, used by transport/riverunix to flag non-local peers since a
// unix-domain-socket listener can still be exposed via a bind-mounted path.
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.Trim(addr, "[]")
	}
	if host == "localhost" {
		return true
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return ip.IsLoopback()
}
