// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package schema is the injectable validation capability procedures declare
// their init/input/output/error shapes against. River's dispatcher depends
// only on the Validator interface below, not on a concrete schema runtime
// (spec.md §9: "treat schema validation as a capability"); this package
// supplies the default implementation, wrapping
// github.com/google/jsonschema-go/jsonschema the way the teacher SDK's own
// jsonschema package wraps it (jsonschema/jsonschema.go).
package schema

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// Re-exported types so callers need only import this package.
type (
	Schema         = jsonschema.Schema
	Resolved       = jsonschema.Resolved
	ResolveOptions = jsonschema.ResolveOptions
	ForOptions     = jsonschema.ForOptions
)

// Ptr is a convenience constructor for optional Schema fields.
func Ptr[T any](v T) *T { return jsonschema.Ptr(v) }

// For infers a Schema from a Go type.
func For[T any](opts *ForOptions) (*Schema, error) {
	return jsonschema.For[T](opts)
}

// ForType infers a Schema from a reflect.Type.
func ForType(t reflect.Type, opts *ForOptions) (*Schema, error) {
	return jsonschema.ForType(t, opts)
}

// Validator is the capability the procedure registry depends on. A nil
// Schema (declared via NewValidator(nil)) means "accept anything,"
// matching an rpc/stream shape with no init or input schema.
type Validator interface {
	// Validate unmarshals data into v (rejecting unknown fields) and
	// validates the result against the schema, applying declared defaults
	// first.
	Validate(data json.RawMessage, v any) error
}

// jsonschemaValidator is the default Validator, backed by a resolved
// jsonschema.Schema.
type jsonschemaValidator struct {
	resolved *Resolved
}

// NewValidator resolves s (which may be nil) into a Validator.
func NewValidator(s *Schema) (Validator, error) {
	if s == nil {
		return &jsonschemaValidator{}, nil
	}
	resolved, err := s.Resolve(&ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return nil, err
	}
	return &jsonschemaValidator{resolved: resolved}, nil
}

func (v *jsonschemaValidator) Validate(data json.RawMessage, out any) error {
	if len(data) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return err
		}
	}
	if v.resolved == nil {
		return nil
	}
	if err := v.resolved.ApplyDefaults(out); err != nil {
		return err
	}
	return v.resolved.Validate(out)
}
