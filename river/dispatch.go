// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"encoding/json"
)

// dispatcher wires a Registry into a Session's inbound-open path, adapted
// from the teacher SDK's newServerTool/newTypedServerTool match-and-invoke
// pattern in mcp/tool.go, generalized from "tool call" to "procedure
// invocation of any of the four shapes" (SPEC_FULL.md §4.6).
type dispatcher struct {
	registry    *Registry
	middlewares []Middleware
}

func newDispatcher(registry *Registry, middlewares []Middleware) *dispatcher {
	return &dispatcher{registry: registry, middlewares: middlewares}
}

// onInboundOpen implements the five-step opening sequence from spec.md
// §4.4. It runs synchronously on the session's loop goroutine (called from
// Session.handleOpen), so every step through stream registration must be
// fast; only the handler itself runs on its own goroutine.
func (d *dispatcher) onInboundOpen(sess *Session, msg *Message) {
	// onInboundOpen runs synchronously on the session's loop goroutine
	// (invoked from Session.handleOpen), so aborts here must go through the
	// non-blocking *Locked sender, not the submitWait-based one.
	abort := func(message string) {
		sess.tombstones.Add(msg.StreamID)
		sess.sendStreamCancelLocked(msg.StreamID, NewError(CodeInvalidRequest, message))
	}

	// Step 1: serviceName/procedureName required on any StreamOpen.
	if msg.ServiceName == "" || msg.ProcedureName == "" {
		abort("missing service/procedure name")
		return
	}

	// Step 2 & 3: service, then procedure, lookup.
	svc, proc, ok := d.registry.lookup(msg.ServiceName, msg.ProcedureName)
	if svc == nil {
		abort("couldn't find service")
		return
	}
	if !ok {
		abort("couldn't find matching procedure")
		return
	}

	// Step 4: init schema validation.
	var initVal any
	if err := proc.initValidator.Validate(msg.Payload, &initVal); err != nil {
		abort("init failed validation: " + err.Error())
		return
	}

	// Step 5: construct the stream, instantiate readable/writable per
	// shape, register it, and start the handler task.
	st := newStream(msg.StreamID, sess, proc.Kind, msg.ServiceName, msg.ProcedureName, true)
	if proc.Kind.hasInput() {
		st.inputValidate = func(data json.RawMessage) error {
			var v any
			return proc.inputValidator.Validate(data, &v)
		}
	}
	st.setOpen()
	sess.registerStream(st)

	hc := newHandlerContext(context.Background(), func(code, message string) {
		// localCancel already notifies the peer via sendStreamCancel; this
		// callback exists purely so Uncaught/Cancel called from inside the
		// handler also tear down this stream's state.
		st.localCancel(NewError(code, message))
	})
	hc.State = svc.State
	hc.From = sess.remoteID
	hc.SessionID = sess.localID
	hc.StreamID = st.id
	st.hc = hc

	for _, mw := range d.middlewares {
		mw(hc.Context(), hc, msg.Payload)
	}

	go d.invoke(sess, st, proc, hc, msg.Payload)
}

// invoke runs the handler on its own goroutine and translates its return
// value into the wire behavior spec.md §4.6 step 4 describes.
func (d *dispatcher) invoke(sess *Session, st *stream, proc *Procedure, hc *HandlerContext, init json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			hc.Uncaught(panicError{r})
		}
	}()

	result, err := proc.Handler(hc.Context(), hc, init, st.in, st.out)
	if hc.ctx.Err() != nil {
		// Already aborted (peer cancel, local cancel/uncaught, disconnect):
		// the handler's return value no longer matters.
		return
	}
	if err != nil {
		hc.Uncaught(err)
		return
	}

	switch proc.Kind {
	case KindRPC, KindUpload:
		payload, merr := marshalJSON(result)
		if merr != nil {
			hc.Uncaught(merr)
			return
		}
		if st.out != nil {
			_ = st.out.Write(payload)
			_ = st.out.Close()
		}
		hc.finish()
	case KindSubscription, KindStream:
		// No automatic final write: the handler was responsible for
		// closing st.out itself. A nil result is expected here; if the
		// handler both wrote a result and returned one, the returned value
		// is ignored (the writable is the shape's actual output channel).
		hc.finish()
	}
}

// panicError adapts a recovered panic value to the error interface so it
// can flow through HandlerContext.Uncaught like any other error.
type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	return "panic: " + jsonStringify(p.v)
}

func jsonStringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unprintable panic value>"
	}
	return string(b)
}
