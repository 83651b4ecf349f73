// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverrpc/river/internal/backoff"
	"github.com/riverrpc/river/log"
)

// Client is the typed invocation surface over a single Session (spec.md §2
// "Client proxy": "typed invocation surface over procedure registry").
// Grounded on the teacher SDK's ClientSession plus its
// streamableClientConn reconnect-supervisor goroutine (mcp/streamable.go).
type Client struct {
	dialer Dialer
	codec  Codec
	addr   string
	opts   ClientOptions

	sess *Session
}

// NewClient constructs a Client. If opts.EagerlyConnect is set, it dials and
// handshakes immediately using context.Background(); otherwise the caller
// establishes the session with Connect. A
// failed eager connect is logged and left for the caller to retry via
// Connect, matching the advisory nature of this option (spec.md §6 "client
// options").
func NewClient(dialer Dialer, codec Codec, addr string, opts ClientOptions) *Client {
	c := &Client{dialer: dialer, codec: codec, addr: addr, opts: opts}
	if opts.EagerlyConnect {
		if err := c.Connect(context.Background()); err != nil {
			logger := opts.Logger
			if logger == nil {
				logger = log.Nop{}
			}
			logger.Warn("river: eager connect failed; call Connect to retry", "addr", addr, "cause", err)
		}
	}
	return c
}

// Connect dials addr and performs the handshake, then starts a background
// supervisor that redials and resumes the session whenever the transport
// reports a lost connection (spec.md §4.3 grace-period reconnect).
func (c *Client) Connect(ctx context.Context) error {
	metadata := c.opts.HandshakeOptions.Construct
	sopts := c.opts.sessionOptions()
	if metadata != nil {
		md, err := metadata(ctx)
		if err != nil {
			return fmt.Errorf("river: construct handshake metadata: %w", err)
		}
		sopts.HandshakeMetadata = md
	}
	sopts.ValidateHandshake = c.opts.HandshakeOptions.Validate

	conn, err := c.dialer.Dial(ctx, c.addr)
	if err != nil {
		return fmt.Errorf("river: dial: %w", err)
	}
	sess := newSession(false, c.codec, sopts)
	if err := sess.Connect(ctx, conn); err != nil {
		return err
	}
	c.sess = sess
	go c.superviseReconnect(ctx)
	return nil
}

// superviseReconnect watches the session's lifecycle and redials with
// exponential backoff whenever it falls into PendingReconnect, handing the
// new connection to Session.Reconnect. It exits once the session reaches
// Closed.
func (c *Client) superviseReconnect(ctx context.Context) {
	b := backoff.New(100*time.Millisecond, 10*time.Second)
	for {
		state := c.sess.State()
		switch state {
		case SessionClosed:
			return
		case SessionPendingReconnect:
			conn, err := c.dialer.Dial(ctx, c.addr)
			if err != nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(b.Next()):
				}
				continue
			}
			if err := c.sess.Reconnect(ctx, conn); err != nil {
				// ErrSessionMismatch: this Session is permanently done;
				// nothing further to supervise.
				return
			}
			b.Reset()
		default:
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
		}
	}
}

// Session returns the underlying Session, for callers that want direct
// access to State()/Close().
func (c *Client) Session() *Session { return c.sess }

// Close closes the underlying session.
func (c *Client) Close() error {
	if c.sess == nil {
		return nil
	}
	return c.sess.Close()
}

// Call invokes an rpc-shaped procedure: init is marshaled as the stream-open
// payload, and the single response Result is returned.
func (c *Client) Call(ctx context.Context, service, procedure string, init any) (Result[json.RawMessage], error) {
	payload, err := marshalJSON(init)
	if err != nil {
		return Result[json.RawMessage]{}, err
	}
	st, err := c.sess.openOutboundStream(KindRPC, service, procedure, payload)
	if err != nil {
		return Result[json.RawMessage]{}, err
	}
	return readSingleResult(ctx, st)
}

// UploadCall is the client handle for an upload-shaped invocation: write
// zero or more input messages, then Finish to close the input half and
// await the single response.
type UploadCall struct {
	st *stream
}

// Upload opens an upload-shaped procedure invocation.
func (c *Client) Upload(ctx context.Context, service, procedure string, init any) (*UploadCall, error) {
	payload, err := marshalJSON(init)
	if err != nil {
		return nil, err
	}
	st, err := c.sess.openOutboundStream(KindUpload, service, procedure, payload)
	if err != nil {
		return nil, err
	}
	return &UploadCall{st: st}, nil
}

// Write sends one more input message to the server.
func (u *UploadCall) Write(v any) error {
	payload, err := marshalJSON(v)
	if err != nil {
		return err
	}
	return u.st.out.Write(payload)
}

// Finish closes the input half and waits for the single terminal response.
func (u *UploadCall) Finish(ctx context.Context) (Result[json.RawMessage], error) {
	if err := u.st.out.Close(); err != nil && err != ErrWritableClosed {
		return Result[json.RawMessage]{}, err
	}
	return readSingleResult(ctx, u.st)
}

// Cancel aborts the invocation.
func (u *UploadCall) Cancel(reason string) {
	u.st.localCancel(NewError(CodeCancel, reason))
}

// Subscription is the client handle for a subscription-shaped invocation.
type Subscription struct {
	st   *stream
	iter *ReadableIterator[json.RawMessage]
}

// Subscribe opens a subscription-shaped procedure invocation.
func (c *Client) Subscribe(ctx context.Context, service, procedure string, init any) (*Subscription, error) {
	payload, err := marshalJSON(init)
	if err != nil {
		return nil, err
	}
	st, err := c.sess.openOutboundStream(KindSubscription, service, procedure, payload)
	if err != nil {
		return nil, err
	}
	it, err := st.in.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	return &Subscription{st: st, iter: it}, nil
}

// Next blocks for the next pushed Result, or reports end-of-stream.
func (s *Subscription) Next(ctx context.Context) (Result[json.RawMessage], bool, error) {
	return decodeNext(ctx, s.iter)
}

// Cancel aborts the subscription.
func (s *Subscription) Cancel(reason string) {
	s.st.localCancel(NewError(CodeCancel, reason))
}

// StreamCall is the client handle for a bidirectional-stream invocation.
type StreamCall struct {
	st   *stream
	iter *ReadableIterator[json.RawMessage]
}

// OpenStream opens a stream-shaped procedure invocation.
func (c *Client) OpenStream(ctx context.Context, service, procedure string, init any) (*StreamCall, error) {
	payload, err := marshalJSON(init)
	if err != nil {
		return nil, err
	}
	st, err := c.sess.openOutboundStream(KindStream, service, procedure, payload)
	if err != nil {
		return nil, err
	}
	it, err := st.in.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	return &StreamCall{st: st, iter: it}, nil
}

// Write sends one more message to the server.
func (sc *StreamCall) Write(v any) error {
	payload, err := marshalJSON(v)
	if err != nil {
		return err
	}
	return sc.st.out.Write(payload)
}

// CloseWrite half-closes the client's side of the stream.
func (sc *StreamCall) CloseWrite() error { return sc.st.out.Close() }

// Next blocks for the next pushed Result, or reports end-of-stream.
func (sc *StreamCall) Next(ctx context.Context) (Result[json.RawMessage], bool, error) {
	return decodeNext(ctx, sc.iter)
}

// Cancel aborts the stream invocation.
func (sc *StreamCall) Cancel(reason string) {
	sc.st.localCancel(NewError(CodeCancel, reason))
}

// readSingleResult awaits the exactly-one terminal message rpc/upload
// shapes deliver, decoding it as a Result.
func readSingleResult(ctx context.Context, st *stream) (Result[json.RawMessage], error) {
	it, err := st.in.Iterate(ctx)
	if err != nil {
		return Result[json.RawMessage]{}, err
	}
	res := it.Next(ctx)
	if res.Err != nil {
		return Result[json.RawMessage]{}, res.Err
	}
	if res.Done {
		return Result[json.RawMessage]{}, fmt.Errorf("river: stream closed with no response")
	}
	var out Result[json.RawMessage]
	if err := unmarshalJSON(res.Value, &out); err != nil {
		return Result[json.RawMessage]{}, err
	}
	return out, nil
}

// decodeNext advances it and decodes a pushed value as a Result, threading
// through Done/Err as-is.
func decodeNext(ctx context.Context, it *ReadableIterator[json.RawMessage]) (Result[json.RawMessage], bool, error) {
	res := it.Next(ctx)
	if res.Done {
		return Result[json.RawMessage]{}, true, nil
	}
	if res.Err != nil {
		return Result[json.RawMessage]{}, false, res.Err
	}
	var out Result[json.RawMessage]
	if err := unmarshalJSON(res.Value, &out); err != nil {
		return Result[json.RawMessage]{}, false, err
	}
	return out, false, nil
}
