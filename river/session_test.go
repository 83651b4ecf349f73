// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/riverrpc/river/internal/idgen"
)

// memConn is an in-memory Connection pair for exercising the session state
// machine without a real transport. Closing either half closes the shared
// "closed" channel, so both sides observe a dropped connection the way two
// independent reader loops would on a severed socket.
type memConn struct {
	peer   PeerID
	send   chan []byte
	recv   chan []byte
	closed chan struct{}
	once   *sync.Once
}

func newMemConnPair() (*memConn, *memConn) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	closed := make(chan struct{})
	var once sync.Once
	a := &memConn{peer: "client", send: ab, recv: ba, closed: closed, once: &once}
	b := &memConn{peer: "server", send: ba, recv: ab, closed: closed, once: &once}
	return a, b
}

func (c *memConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-c.recv:
		return frame, nil
	case <-c.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *memConn) Write(ctx context.Context, frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	case <-c.closed:
		return io.ErrClosedPipe
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *memConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *memConn) PeerID() PeerID { return c.peer }

// testCodec is a plain encoding/json Message codec, kept local to this
// package's tests to avoid the import cycle river/wire would otherwise
// create (river/wire imports river for the Message/Codec types it encodes).
type testCodec struct{}

func (testCodec) Encode(msg *Message) ([]byte, error) { return json.Marshal(msg) }
func (testCodec) Decode(frame []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// connectSessionPair drives Connect/Accept concurrently over a fresh
// memConn pair and returns the two live sessions plus a cleanup func.
func connectSessionPair(t *testing.T, clientOpts, serverOpts SessionOptions) (client, server *Session, cleanup func()) {
	t.Helper()
	connA, connB := newMemConnPair()
	client = newSession(false, testCodec{}, clientOpts)
	server = newSession(true, testCodec{}, serverOpts)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Accept(context.Background(), connB) }()
	if err := client.Connect(context.Background(), connA); err != nil {
		t.Fatalf("client Connect: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server Accept: %v", err)
	}
	return client, server, func() {
		_ = client.Close()
		_ = server.Close()
	}
}

func waitForState(t *testing.T, s *Session, want SessionState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached state %v within %v, last observed %v", want, timeout, s.State())
}

// streamCount reads len(s.streams) on the session's own loop goroutine, since
// the map is only safe to touch there.
func streamCount(s *Session) int {
	var n int
	s.submitWait(func() { n = len(s.streams) })
	return n
}

// waitForStreamCount polls streamCount until it matches want or timeout: a
// completed stream is reaped asynchronously (the peer's half-close frame has
// to make a round trip), so this can't be asserted synchronously right after
// the call that finishes it.
func waitForStreamCount(t *testing.T, s *Session, who string, want int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if n := streamCount(s); n == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s: Session.streams never reached size %d within %v, last observed %d", who, want, timeout, streamCount(s))
}

type addArgs struct {
	A int `json:"a"`
	B int `json:"b"`
}

var addHandler Handler = func(_ context.Context, _ *HandlerContext, init json.RawMessage, _ *Readable[json.RawMessage], _ *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
	var args addArgs
	if err := json.Unmarshal(init, &args); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(args.A + args.B)
	if err != nil {
		return nil, err
	}
	res := OkResult[json.RawMessage](payload)
	return &res, nil
}

var divideHandler Handler = func(_ context.Context, _ *HandlerContext, init json.RawMessage, _ *Readable[json.RawMessage], _ *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
	var args addArgs
	if err := json.Unmarshal(init, &args); err != nil {
		return nil, err
	}
	if args.B == 0 {
		res := ErrResult[json.RawMessage](NewError("DIVIDE_BY_ZERO", "cannot divide by zero"))
		return &res, nil
	}
	payload, err := json.Marshal(args.A / args.B)
	if err != nil {
		return nil, err
	}
	res := OkResult[json.RawMessage](payload)
	return &res, nil
}

// echoHandler is a bidirectional-stream shape: it relays every inbound
// message back to the caller in order, until the input half closes, the
// read errors (peer cancel), or the invocation is aborted.
var echoHandler Handler = func(ctx context.Context, _ *HandlerContext, _ json.RawMessage, in *Readable[json.RawMessage], out *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
	it, err := in.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	for {
		res := it.Next(ctx)
		if res.Done || res.Err != nil {
			break
		}
		if err := out.Write(res.Value); err != nil {
			break
		}
	}
	_ = out.Close()
	return nil, nil
}

var slowHandler Handler = func(ctx context.Context, _ *HandlerContext, _ json.RawMessage, _ *Readable[json.RawMessage], _ *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
	<-ctx.Done()
	return nil, nil
}

// sumHandler is an upload-shaped procedure: it drains every inbound int and
// returns their total once the client closes its input half.
var sumHandler Handler = func(ctx context.Context, _ *HandlerContext, _ json.RawMessage, in *Readable[json.RawMessage], _ *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
	it, err := in.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for {
		res := it.Next(ctx)
		if res.Done {
			break
		}
		if res.Err != nil {
			return nil, res.Err
		}
		var n int
		if err := json.Unmarshal(res.Value, &n); err != nil {
			return nil, err
		}
		total += n
	}
	payload, err := json.Marshal(total)
	if err != nil {
		return nil, err
	}
	res := OkResult[json.RawMessage](payload)
	return &res, nil
}

// ticksHandler is a subscription-shaped procedure: it pushes three values
// through out and closes, never reading any input (subscriptions have none).
var ticksHandler Handler = func(_ context.Context, _ *HandlerContext, _ json.RawMessage, _ *Readable[json.RawMessage], out *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
	for i := 1; i <= 3; i++ {
		payload, err := json.Marshal(i)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(OkResult[json.RawMessage](payload))
		if err != nil {
			return nil, err
		}
		if err := out.Write(data); err != nil {
			return nil, nil
		}
	}
	_ = out.Close()
	return nil, nil
}

func calcRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(&Service{
		Name: "calc",
		Procedures: map[string]*Procedure{
			"add":    {Kind: KindRPC, Handler: addHandler},
			"divide": {Kind: KindRPC, Handler: divideHandler},
			"echo":   {Kind: KindStream, Handler: echoHandler},
			"slow":   {Kind: KindRPC, Handler: slowHandler},
			"sum":    {Kind: KindUpload, Handler: sumHandler},
			"ticks":  {Kind: KindSubscription, Handler: ticksHandler},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestUnaryAdd(t *testing.T) {
	reg := calcRegistry(t)
	client, server, cleanup := connectSessionPair(t, SessionOptions{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})
	defer cleanup()

	init, err := json.Marshal(addArgs{A: 2, B: 3})
	if err != nil {
		t.Fatalf("marshal init: %v", err)
	}
	st, err := client.openOutboundStream(KindRPC, "calc", "add", init)
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := readSingleResult(ctx, st)
	if err != nil {
		t.Fatalf("readSingleResult: %v", err)
	}
	if !res.Ok {
		t.Fatalf("expected Ok result, got error %+v", res.Err)
	}
	var sum int
	if err := json.Unmarshal(res.Value, &sum); err != nil {
		t.Fatalf("unmarshal sum: %v", err)
	}
	if sum != 5 {
		t.Fatalf("sum = %d, want 5", sum)
	}

	// A completed rpc invocation must be reaped from both peers' stream
	// tables, not leaked for the life of the session.
	waitForStreamCount(t, client, "client", 0, time.Second)
	waitForStreamCount(t, server, "server", 0, time.Second)
}

func TestDivideByZero(t *testing.T) {
	reg := calcRegistry(t)
	client, server, cleanup := connectSessionPair(t, SessionOptions{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})
	defer cleanup()

	init, err := json.Marshal(addArgs{A: 7, B: 0})
	if err != nil {
		t.Fatalf("marshal init: %v", err)
	}
	st, err := client.openOutboundStream(KindRPC, "calc", "divide", init)
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := readSingleResult(ctx, st)
	if err != nil {
		t.Fatalf("readSingleResult: %v", err)
	}
	if res.Ok {
		t.Fatal("expected a failed Result for divide by zero, got Ok")
	}
	if res.Err == nil || res.Err.Code != "DIVIDE_BY_ZERO" {
		t.Fatalf("Err = %+v, want code DIVIDE_BY_ZERO", res.Err)
	}

	waitForStreamCount(t, client, "client", 0, time.Second)
	waitForStreamCount(t, server, "server", 0, time.Second)
}

func TestUploadSumReapsStreams(t *testing.T) {
	reg := calcRegistry(t)
	client, server, cleanup := connectSessionPair(t, SessionOptions{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})
	defer cleanup()

	st, err := client.openOutboundStream(KindUpload, "calc", "sum", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	for _, n := range []int{1, 2, 3} {
		payload, _ := json.Marshal(n)
		if err := st.out.Write(payload); err != nil {
			t.Fatalf("Write(%d): %v", n, err)
		}
	}
	if err := st.out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := readSingleResult(ctx, st)
	if err != nil {
		t.Fatalf("readSingleResult: %v", err)
	}
	if !res.Ok {
		t.Fatalf("expected Ok result, got error %+v", res.Err)
	}
	var total int
	if err := json.Unmarshal(res.Value, &total); err != nil {
		t.Fatalf("unmarshal total: %v", err)
	}
	if total != 6 {
		t.Fatalf("total = %d, want 6", total)
	}

	waitForStreamCount(t, client, "client", 0, time.Second)
	waitForStreamCount(t, server, "server", 0, time.Second)
}

func TestSubscriptionTicksReapsStreams(t *testing.T) {
	reg := calcRegistry(t)
	client, server, cleanup := connectSessionPair(t, SessionOptions{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})
	defer cleanup()

	st, err := client.openOutboundStream(KindSubscription, "calc", "ticks", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	it, err := st.in.Iterate(ctx)
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	for _, want := range []int{1, 2, 3} {
		res := it.Next(ctx)
		if res.Err != nil || res.Done {
			t.Fatalf("Next() = %+v, want tick %d", res, want)
		}
		var wrapped Result[json.RawMessage]
		if err := json.Unmarshal(res.Value, &wrapped); err != nil {
			t.Fatalf("unmarshal wrapped tick: %v", err)
		}
		var got int
		if err := json.Unmarshal(wrapped.Value, &got); err != nil {
			t.Fatalf("unmarshal tick value: %v", err)
		}
		if got != want {
			t.Fatalf("tick = %d, want %d", got, want)
		}
	}
	if res := it.Next(ctx); !res.Done {
		t.Fatalf("Next() after three ticks = %+v, want Done", res)
	}

	// The server initiated its own half-close (out.Close()); the client
	// never had a writable to close its own half with, so this exercises
	// the vacuously-already-closed seeding directly.
	waitForStreamCount(t, client, "client", 0, time.Second)
	waitForStreamCount(t, server, "server", 0, time.Second)
}

func TestEchoStreamWithCancel(t *testing.T) {
	reg := calcRegistry(t)
	client, _, cleanup := connectSessionPair(t, SessionOptions{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})
	defer cleanup()

	st, err := client.openOutboundStream(KindStream, "calc", "echo", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	it, err := st.in.Iterate(ctx)
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	for _, word := range []string{"one", "two", "three"} {
		payload, _ := json.Marshal(word)
		if err := st.out.Write(payload); err != nil {
			t.Fatalf("Write(%q): %v", word, err)
		}
		res := it.Next(ctx)
		if res.Err != nil || res.Done {
			t.Fatalf("Next() after writing %q = %+v", word, res)
		}
		var got string
		if err := json.Unmarshal(res.Value, &got); err != nil {
			t.Fatalf("unmarshal echoed value: %v", err)
		}
		if got != word {
			t.Fatalf("echoed %q, want %q", got, word)
		}
	}

	st.localCancel(NewError(CodeCancel, "client done"))
	res := it.Next(ctx)
	if res.Err == nil {
		t.Fatal("expected a terminal error after cancel")
	}
	if res.Err.Code != CodeCancel {
		t.Fatalf("Err.Code = %q, want %q", res.Err.Code, CodeCancel)
	}

	// A second cancel must be a harmless no-op (spec invariant: at most one
	// abort reaches either side of a stream).
	st.localCancel(NewError(CodeCancel, "second cancel"))
	if got := it.Next(ctx); !got.Done {
		t.Fatalf("Next() after a stream is already terminal should report Done, got %+v", got)
	}
}

func TestOrderedReconnect(t *testing.T) {
	reg := calcRegistry(t)
	client, server, cleanup := connectSessionPair(t,
		SessionOptions{GraceDuration: 2 * time.Second},
		SessionOptions{GraceDuration: 2 * time.Second, OnInboundOpen: newDispatcher(reg, nil).onInboundOpen},
	)
	defer cleanup()

	st, err := client.openOutboundStream(KindStream, "calc", "echo", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	it, err := st.in.Iterate(ctx)
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	send := func(word string) {
		payload, _ := json.Marshal(word)
		if err := st.out.Write(payload); err != nil {
			t.Fatalf("Write(%q): %v", word, err)
		}
	}
	expect := func(word string) {
		res := it.Next(ctx)
		if res.Err != nil || res.Done {
			t.Fatalf("Next() waiting for %q = %+v", word, res)
		}
		var got string
		if err := json.Unmarshal(res.Value, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got != word {
			t.Fatalf("echoed %q, want %q", got, word)
		}
	}

	send("before")
	expect("before")

	// Sever the physical connection without destroying the session: both
	// sides should fall back to PendingReconnect, not tear the stream down.
	client.submitWait(func() {
		if client.conn != nil {
			_ = client.conn.Close()
		}
	})
	waitForState(t, client, SessionPendingReconnect, time.Second)
	waitForState(t, server, SessionPendingReconnect, time.Second)

	// Writing while disconnected must queue in the send buffer rather than
	// fail or reorder.
	send("during-outage")

	connA, connB := newMemConnPair()
	errCh := make(chan error, 1)
	go func() { errCh <- server.Reconnect(context.Background(), connB) }()
	if err := client.Reconnect(context.Background(), connA); err != nil {
		t.Fatalf("client Reconnect: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server Reconnect: %v", err)
	}

	expect("during-outage")
	send("after")
	expect("after")
}

func TestUnexpectedDisconnectDuringPendingRPC(t *testing.T) {
	reg := calcRegistry(t)
	client, server, cleanup := connectSessionPair(t,
		SessionOptions{GraceDuration: 30 * time.Millisecond},
		SessionOptions{GraceDuration: 30 * time.Millisecond, OnInboundOpen: newDispatcher(reg, nil).onInboundOpen},
	)
	defer cleanup()
	_ = server

	st, err := client.openOutboundStream(KindRPC, "calc", "slow", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	it, err := st.in.Iterate(ctx)
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	// Sever the connection and never reconnect: once the grace period
	// expires the session destroys itself and every pending stream
	// resolves with UNEXPECTED_DISCONNECT (never silently hangs).
	client.submitWait(func() {
		if client.conn != nil {
			_ = client.conn.Close()
		}
	})

	res := it.Next(ctx)
	if res.Err == nil {
		t.Fatal("expected a terminal error once the grace period expired")
	}
	if res.Err.Code != CodeUnexpectedDisconnect {
		t.Fatalf("Err.Code = %q, want %q", res.Err.Code, CodeUnexpectedDisconnect)
	}
	waitForState(t, client, SessionClosed, time.Second)
}

// TestReadableBreakSignalsPeerWritableCloseRequest exercises the
// FlagCloseRequest wire path end to end: the client gives up on reading
// (Readable.Break), and the server's Writable observes OnCloseRequest as a
// result of an actual frame arriving, not a direct call to requestClose.
func TestReadableBreakSignalsPeerWritableCloseRequest(t *testing.T) {
	onRequest := make(chan struct{}, 1)
	reg, err := NewRegistry(&Service{
		Name: "probe",
		Procedures: map[string]*Procedure{
			"quiet": {
				Kind: KindStream,
				Handler: func(ctx context.Context, _ *HandlerContext, _ json.RawMessage, _ *Readable[json.RawMessage], out *Writable[json.RawMessage]) (*Result[json.RawMessage], error) {
					out.OnCloseRequest(func() {
						select {
						case onRequest <- struct{}{}:
						default:
						}
					})
					<-ctx.Done()
					_ = out.Close()
					return nil, nil
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	client, _, cleanup := connectSessionPair(t, SessionOptions{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})
	defer cleanup()

	st, err := client.openOutboundStream(KindStream, "probe", "quiet", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("openOutboundStream: %v", err)
	}
	if err := st.in.Break(); err != nil {
		t.Fatalf("Break: %v", err)
	}

	select {
	case <-onRequest:
	case <-time.After(2 * time.Second):
		t.Fatal("server's Writable never observed a close-request after the client broke its Readable")
	}
}

func TestInvalidReopenTombstoning(t *testing.T) {
	reg := calcRegistry(t)
	connFake, connServer := newMemConnPair()
	server := newSession(true, testCodec{}, SessionOptions{OnInboundOpen: newDispatcher(reg, nil).onInboundOpen})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Accept(context.Background(), connServer) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	hsOut := HandshakeMessage{ProtocolVersion: protocolVersion, SessionID: SessionID(idgen.New())}
	hsFrame, err := json.Marshal(hsOut)
	if err != nil {
		t.Fatalf("marshal handshake: %v", err)
	}
	if err := connFake.Write(ctx, hsFrame); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	if _, err := connFake.Read(ctx); err != nil {
		t.Fatalf("read handshake reply: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("server Accept: %v", err)
	}

	streamID := StreamID("stream-x")
	open := &Message{
		StreamID:      streamID,
		Seq:           0,
		ControlFlags:  FlagStreamOpen,
		ServiceName:   "calc",
		ProcedureName: "subtract", // not a registered procedure
		Payload:       json.RawMessage(`{}`),
	}
	frame, err := json.Marshal(open)
	if err != nil {
		t.Fatalf("marshal open: %v", err)
	}
	if err := connFake.Write(ctx, frame); err != nil {
		t.Fatalf("write open: %v", err)
	}

	replyFrame, err := connFake.Read(ctx)
	if err != nil {
		t.Fatalf("read cancel reply: %v", err)
	}
	var reply Message
	if err := json.Unmarshal(replyFrame, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if !reply.ControlFlags.Has(FlagStreamCancel) {
		t.Fatalf("expected a StreamCancel reply, got flags %v", reply.ControlFlags)
	}
	var wireErr Error
	if err := json.Unmarshal(reply.Payload, &wireErr); err != nil {
		t.Fatalf("unmarshal wire error: %v", err)
	}
	if wireErr.Code != CodeInvalidRequest {
		t.Fatalf("Code = %q, want %q", wireErr.Code, CodeInvalidRequest)
	}

	// Re-sending an open for the now-tombstoned id must be dropped silently:
	// no second cancel, no dispatch.
	reopen := &Message{
		StreamID:      streamID,
		Seq:           1,
		ControlFlags:  FlagStreamOpen,
		ServiceName:   "calc",
		ProcedureName: "subtract",
		Payload:       json.RawMessage(`{}`),
	}
	reopenFrame, err := json.Marshal(reopen)
	if err != nil {
		t.Fatalf("marshal reopen: %v", err)
	}
	if err := connFake.Write(ctx, reopenFrame); err != nil {
		t.Fatalf("write reopen: %v", err)
	}

	quiet, cancelQuiet := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancelQuiet()
	if _, err := connFake.Read(quiet); err == nil {
		t.Fatal("expected no reply to a re-open of a tombstoned stream id, but got one")
	}

	_ = server.Close()
}
