// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package riverws implements river.Transport/river.Connection over
// WebSocket, grounded directly on the teacher SDK's mcp/websocket.go
// (gorilla/websocket, subprotocol negotiation, context-aware read/write,
// close-once), generalized from framing jsonrpc.Message to framing opaque
// river wire frames.
package riverws

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riverrpc/river"
)

const subprotocol = "river"

// ClientTransport dials a WebSocket server URL.
type ClientTransport struct {
	Dialer *websocket.Dialer
	Header http.Header
}

var _ river.Dialer = (*ClientTransport)(nil)

func (t *ClientTransport) Dial(ctx context.Context, addr string) (river.Connection, error) {
	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	dialer.Subprotocols = []string{subprotocol}
	conn, resp, err := dialer.DialContext(ctx, addr, t.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("riverws: dial failed: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("riverws: dial failed: %w", err)
	}
	return &wsConn{conn: conn, peer: river.PeerID(addr)}, nil
}

// wsConn implements river.Connection over a *websocket.Conn.
type wsConn struct {
	conn      *websocket.Conn
	peer      river.PeerID
	mu        sync.Mutex
	closeOnce sync.Once
}

var _ river.Connection = (*wsConn)(nil)

func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()

	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("riverws: read error: %w", err)
	}
	if messageType != websocket.BinaryMessage {
		return nil, fmt.Errorf("riverws: unexpected websocket message type %d (expected binary)", messageType)
	}
	return data, nil
}

func (c *wsConn) Write(ctx context.Context, frame []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("riverws: write error: %w", err)
	}
	return nil
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.conn.Close() })
	return err
}

func (c *wsConn) PeerID() river.PeerID { return c.peer }

// ServerTransport upgrades incoming HTTP requests to WebSocket connections
// and hands them to a river.Server via Accept.
type ServerTransport struct {
	upgrader websocket.Upgrader
	incoming chan river.Connection
	done     chan struct{}
	closeOnce sync.Once
}

var _ river.Transport = (*ServerTransport)(nil)

// NewServerTransport constructs a ServerTransport. Register ServeHTTP on an
// *http.ServeMux at the desired path, then run Accept in a loop (typically
// via Server.Serve).
func NewServerTransport() *ServerTransport {
	return &ServerTransport{
		upgrader: websocket.Upgrader{
			Subprotocols: []string{subprotocol},
			CheckOrigin:  func(*http.Request) bool { return true },
		},
		incoming: make(chan river.Connection),
		done:     make(chan struct{}),
	}
}

// ServeHTTP upgrades the request and hands the resulting Connection to the
// next Accept call.
func (t *ServerTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("riverws: upgrade failed: %v", err), http.StatusBadRequest)
		return
	}
	wc := &wsConn{conn: conn, peer: river.PeerID(r.RemoteAddr)}
	select {
	case t.incoming <- wc:
	case <-t.done:
		_ = wc.Close()
	}
}

func (t *ServerTransport) Accept(ctx context.Context) (river.Connection, error) {
	select {
	case conn := <-t.incoming:
		return conn, nil
	case <-t.done:
		return nil, fmt.Errorf("riverws: transport closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *ServerTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
