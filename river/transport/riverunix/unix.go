// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package riverunix implements river.Transport/river.Connection over
// unix-domain sockets, length-prefixed framing over net.Conn (SPEC_FULL.md
// §4.2). A second framing style alongside transport/riverws's
// message-oriented WebSocket framing.
package riverunix

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/riverrpc/river"
	"github.com/riverrpc/river/internal/util"
)

const maxFrameSize = 64 << 20 // 64 MiB, a generous ceiling against a peer sending a bogus length prefix

// ClientTransport dials a unix-domain socket path.
type ClientTransport struct{}

var _ river.Dialer = ClientTransport{}

func (ClientTransport) Dial(ctx context.Context, addr string) (river.Connection, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", addr)
	if err != nil {
		return nil, fmt.Errorf("riverunix: dial: %w", err)
	}
	return &unixConn{conn: conn, peer: river.PeerID(addr)}, nil
}

// ServerTransport listens on a unix-domain socket path.
type ServerTransport struct {
	ln net.Listener
}

var _ river.Transport = (*ServerTransport)(nil)

// Listen creates a ServerTransport bound to path.
func Listen(path string) (*ServerTransport, error) {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("riverunix: listen: %w", err)
	}
	return &ServerTransport{ln: ln}, nil
}

func (t *ServerTransport) Accept(ctx context.Context) (river.Connection, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := t.ln.Accept()
		ch <- result{conn, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		peer := river.PeerID(r.conn.RemoteAddr().String())
		if peer == "" || peer == "@" {
			// Unix sockets commonly report an empty/abstract remote
			// address; fall back to a per-connection placeholder so
			// logs/observers still have something stable to key on.
			peer = river.PeerID(fmt.Sprintf("unix-peer-%p", r.conn))
		}
		return &unixConn{conn: r.conn, peer: peer}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *ServerTransport) Close() error { return t.ln.Close() }

// unixConn implements river.Connection with 4-byte-big-endian
// length-prefixed frames over net.Conn.
type unixConn struct {
	conn net.Conn
	peer river.PeerID
	mu   sync.Mutex
	closeOnce sync.Once
}

var _ river.Connection = (*unixConn)(nil)

func (c *unixConn) Read(ctx context.Context) ([]byte, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()

	var header [4]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("riverunix: read length prefix: %w", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("riverunix: frame of %d bytes exceeds max %d", n, maxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, fmt.Errorf("riverunix: read frame body: %w", err)
	}
	return buf, nil
}

func (c *unixConn) Write(ctx context.Context, frame []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(frame)))
	if _, err := c.conn.Write(header[:]); err != nil {
		return fmt.Errorf("riverunix: write length prefix: %w", err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("riverunix: write frame body: %w", err)
	}
	return nil
}

func (c *unixConn) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.conn.Close() })
	return err
}

func (c *unixConn) PeerID() river.PeerID { return c.peer }

// IsLoopbackPeer reports whether peer names a loopback address, useful for
// servers that want to restrict a unix listener's bind-mounted path to
// local callers only.
func IsLoopbackPeer(peer river.PeerID) bool { return util.IsLoopback(string(peer)) }
