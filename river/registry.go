// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/riverrpc/river/schema"
)

// ProcedureKind is the tagged-variant shape of a procedure declaration
// (spec.md §4.6, §9): the four procedure shapes are represented as a
// closed enum rather than four distinct registries, so dispatch can match
// on Kind.
type ProcedureKind int

const (
	KindRPC ProcedureKind = iota
	KindUpload
	KindSubscription
	KindStream
)

func (k ProcedureKind) String() string {
	switch k {
	case KindRPC:
		return "rpc"
	case KindUpload:
		return "upload"
	case KindSubscription:
		return "subscription"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// hasInput reports whether this shape carries a client->server data
// channel beyond the initial open (upload and stream do; rpc and
// subscription do not).
func (k ProcedureKind) hasInput() bool {
	return k == KindUpload || k == KindStream
}

// hasOutputStream reports whether this shape carries a server->client
// response stream (subscription and stream do; rpc and upload produce a
// single terminal response instead).
func (k ProcedureKind) hasOutputStream() bool {
	return k == KindSubscription || k == KindStream
}

// Middleware is a side-effect-only interceptor invoked, in declaration
// order, before the handler runs. It may not mutate init or short-circuit
// (spec.md §4.6).
type Middleware func(ctx context.Context, hc *HandlerContext, init json.RawMessage)

// Handler is the shape-polymorphic procedure body. init is the validated
// stream-open payload, available to every shape (it is the entire request
// for rpc/subscription). out is non-nil for every Kind; in is non-nil only
// for the shapes with client input:
//   - rpc:          in == nil, out != nil, returns a single Result, which the dispatcher writes to out before closing it.
//   - upload:       in != nil (*Readable[json.RawMessage]), out != nil, returns a single Result, written to out and closed as for rpc.
//   - subscription: in == nil, out != nil (*Writable[json.RawMessage]), no automatic final write.
//   - stream:       in != nil, out != nil, no automatic final write.
type Handler func(ctx context.Context, hc *HandlerContext, init json.RawMessage, in *Readable[json.RawMessage], out *Writable[json.RawMessage]) (*Result[json.RawMessage], error)

// Procedure is a declared procedure: a tagged record of schemas and a
// handler (spec.md §4.6).
type Procedure struct {
	Kind ProcedureKind

	// Init is the schema validated against the stream-open payload.
	Init *schema.Schema
	// Input is the schema validated against each subsequent data message.
	// Only meaningful when Kind.hasInput().
	Input *schema.Schema
	// Output documents the response schema for Serialize(); dispatch does
	// not validate outgoing payloads against it (the handler is trusted).
	Output *schema.Schema
	// Error documents the declared error union for Serialize().
	Error *schema.Schema

	Handler Handler

	initValidator  schema.Validator
	inputValidator schema.Validator
}

func (p *Procedure) resolve() error {
	v, err := schema.NewValidator(p.Init)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	p.initValidator = v
	if p.Kind.hasInput() {
		v, err := schema.NewValidator(p.Input)
		if err != nil {
			return fmt.Errorf("input schema: %w", err)
		}
		p.inputValidator = v
	}
	return nil
}

// Service is a named collection of procedures plus per-service state
// shared across all invocations (spec.md §3 "state (service state)").
type Service struct {
	Name       string
	State      any
	Procedures map[string]*Procedure
}

// Registry is the server-side service/procedure lookup table. Read-only
// after construction (spec.md §5): all mutation happens via NewRegistry,
// never concurrently with dispatch.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
}

// NewRegistry resolves every procedure's schemas and returns a read-only
// Registry. An error is returned if any procedure's schema fails to
// resolve.
func NewRegistry(services ...*Service) (*Registry, error) {
	r := &Registry{services: make(map[string]*Service, len(services))}
	for _, svc := range services {
		for name, proc := range svc.Procedures {
			if err := proc.resolve(); err != nil {
				return nil, fmt.Errorf("service %q procedure %q: %w", svc.Name, name, err)
			}
		}
		r.services[svc.Name] = svc
	}
	return r, nil
}

// lookup returns the procedure and its owning service, or ok=false if
// either the service or procedure name is unknown.
func (r *Registry) lookup(serviceName, procedureName string) (*Service, *Procedure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[serviceName]
	if !ok {
		return nil, nil, false
	}
	proc, ok := svc.Procedures[procedureName]
	if !ok {
		return svc, nil, false
	}
	return svc, proc, true
}

// SerializedProcedure is the wire-independent, JSON-schema-shaped
// description of one declared procedure (spec.md §4.7: "the core exposes a
// serialize() form of a service registry producing a JSON-schema-shaped
// document"). Each schema field is the raw marshaled jsonschema.Schema (or
// nil if the procedure declared none), deliberately untyped here so
// river/schemadiff can compare two registries - possibly produced by two
// different versions of this module - without sharing a Go type.
type SerializedProcedure struct {
	Kind   string          `json:"kind"`
	Init   json.RawMessage `json:"init,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// SerializedService is the serialized form of one Service.
type SerializedService struct {
	Name       string                          `json:"name"`
	Procedures map[string]*SerializedProcedure `json:"procedures"`
}

// SerializedRegistry is the serialized form of an entire Registry, suitable
// for archiving alongside a deployed build and later feeding to
// river/schemadiff to check whether a newer registry is wire-compatible
// with it.
type SerializedRegistry struct {
	Services map[string]*SerializedService `json:"services"`
}

// Serialize produces the JSON-schema-shaped document describing r, for
// compatibility checking via river/schemadiff or for archiving alongside a
// release.
func (r *Registry) Serialize() (*SerializedRegistry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &SerializedRegistry{Services: make(map[string]*SerializedService, len(r.services))}
	for name, svc := range r.services {
		ssvc := &SerializedService{
			Name:       svc.Name,
			Procedures: make(map[string]*SerializedProcedure, len(svc.Procedures)),
		}
		for pname, proc := range svc.Procedures {
			sp := &SerializedProcedure{Kind: proc.Kind.String()}
			var err error
			if sp.Init, err = marshalSchema(proc.Init); err != nil {
				return nil, fmt.Errorf("service %q procedure %q: init schema: %w", name, pname, err)
			}
			if sp.Input, err = marshalSchema(proc.Input); err != nil {
				return nil, fmt.Errorf("service %q procedure %q: input schema: %w", name, pname, err)
			}
			if sp.Output, err = marshalSchema(proc.Output); err != nil {
				return nil, fmt.Errorf("service %q procedure %q: output schema: %w", name, pname, err)
			}
			if sp.Error, err = marshalSchema(proc.Error); err != nil {
				return nil, fmt.Errorf("service %q procedure %q: error schema: %w", name, pname, err)
			}
			ssvc.Procedures[pname] = sp
		}
		out.Services[name] = ssvc
	}
	return out, nil
}

func marshalSchema(s *schema.Schema) (json.RawMessage, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}
