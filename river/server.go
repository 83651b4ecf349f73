// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"sync"

	"github.com/riverrpc/river/log"
)

// Server wires a Transport's accepted connections to a Registry, running
// one Session per peer (spec.md §2 "Server loop": "event wiring from
// transport → dispatch → handler → outgoing messages"). Grounded on the
// teacher SDK's Server.run accept loop (mcp/server.go).
type Server struct {
	transport Transport
	codec     Codec
	registry  *Registry
	opts      ServerOptions
	dispatch  *dispatcher

	mu       sync.Mutex
	sessions map[SessionID]*Session
}

// NewServer constructs a Server over transport, dispatching inbound stream
// opens to registry.
func NewServer(transport Transport, codec Codec, registry *Registry, opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Nop{}
	}
	return &Server{
		transport: transport,
		codec:     codec,
		registry:  registry,
		opts:      opts,
		dispatch:  newDispatcher(registry, opts.Middlewares),
		sessions:  make(map[SessionID]*Session),
	}
}

// Serve accepts connections from the transport until ctx is done or Accept
// returns an error, starting one Session per accepted connection. Each
// accepted connection performs its own handshake concurrently so one slow
// or malicious peer cannot stall acceptance of others.
func (srv *Server) Serve(ctx context.Context) error {
	for {
		conn, err := srv.transport.Accept(ctx)
		if err != nil {
			return err
		}
		go srv.handleConnection(ctx, conn)
	}
}

func (srv *Server) handleConnection(ctx context.Context, conn Connection) {
	sopts := srv.opts.sessionOptions(srv.dispatch.onInboundOpen)
	sopts.RateLimiter = srv.opts.RateLimiter
	sess := newSession(true, srv.codec, sopts)
	if err := sess.Accept(ctx, conn); err != nil {
		srv.opts.Logger.Warn("river: server handshake failed", "peer", conn.PeerID(), "cause", err)
		return
	}
	srv.mu.Lock()
	srv.sessions[sess.ID()] = sess
	srv.mu.Unlock()
	srv.opts.Logger.Info("river: session established", "session", sess.ID(), "peer", conn.PeerID())

	<-sess.Done()
	srv.mu.Lock()
	delete(srv.sessions, sess.ID())
	srv.mu.Unlock()
}

// Close tears down every live session and the underlying transport.
func (srv *Server) Close() error {
	srv.mu.Lock()
	sessions := make([]*Session, 0, len(srv.sessions))
	for _, s := range srv.sessions {
		sessions = append(sessions, s)
	}
	srv.sessions = make(map[SessionID]*Session)
	srv.mu.Unlock()
	for _, s := range sessions {
		_ = s.Close()
	}
	return srv.transport.Close()
}
