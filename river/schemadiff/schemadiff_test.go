// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package schemadiff

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/riverrpc/river"
)

func reg(kind string, init, input, output, errSchema string) *river.SerializedRegistry {
	raw := func(s string) json.RawMessage {
		if s == "" {
			return nil
		}
		return json.RawMessage(s)
	}
	return &river.SerializedRegistry{
		Services: map[string]*river.SerializedService{
			"calc": {
				Name: "calc",
				Procedures: map[string]*river.SerializedProcedure{
					"add": {
						Kind:   kind,
						Init:   raw(init),
						Input:  raw(input),
						Output: raw(output),
						Error:  raw(errSchema),
					},
				},
			},
		},
	}
}

func TestCompareIdenticalRegistriesHasNoBreakages(t *testing.T) {
	r := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"}},"required":["a"]}`, `{"type":"number"}`, "")
	rep := Compare(r, r)
	if rep.Breaking() {
		t.Fatalf("identical registries reported breakages: %+v", rep.Breakages)
	}
}

func TestCompareServiceRemoved(t *testing.T) {
	prev := reg("rpc", "", "", "", "")
	next := &river.SerializedRegistry{Services: map[string]*river.SerializedService{}}
	rep := Compare(prev, next)
	if !rep.Breaking() {
		t.Fatal("expected a breakage for a removed service")
	}
	if rep.Breakages[0].Kind != "service-removed" {
		t.Fatalf("Kind = %q, want service-removed", rep.Breakages[0].Kind)
	}
}

func TestCompareNewRequiredFieldOnRequestIsBreaking(t *testing.T) {
	prev := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"}}}`, "", "")
	next := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"}},"required":["a"]}`, "", "")
	rep := Compare(prev, next)
	if !rep.Breaking() {
		t.Fatal("expected new required field on a request schema to be reported breaking")
	}
	found := false
	for _, b := range rep.Breakages {
		if b.Kind == "required-added" && b.Field == "input" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a required-added breakage on input, got %+v", rep.Breakages)
	}
}

func TestCompareNewOptionalFieldOnRequestIsNotBreaking(t *testing.T) {
	prev := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"}}}`, "", "")
	next := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}}}`, "", "")
	rep := Compare(prev, next)
	if rep.Breaking() {
		t.Fatalf("adding an optional field to a request schema should not be breaking, got %+v", rep.Breakages)
	}
}

func TestCompareRemovedPropertyOnResponseIsBreaking(t *testing.T) {
	prev := reg("rpc", "", "", `{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}}}`, "")
	next := reg("rpc", "", "", `{"type":"object","properties":{"a":{"type":"number"}}}`, "")
	rep := Compare(prev, next)
	found := false
	for _, b := range rep.Breakages {
		if b.Kind == "property-removed" && b.Field == "output" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a property-removed breakage on output, got %+v", rep.Breakages)
	}
}

func TestCompareNewPropertyOnResponseIsNotBreaking(t *testing.T) {
	prev := reg("rpc", "", "", `{"type":"object","properties":{"a":{"type":"number"}}}`, "")
	next := reg("rpc", "", "", `{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}}}`, "")
	rep := Compare(prev, next)
	if rep.Breaking() {
		t.Fatalf("a server promising an additional output field should not break old clients, got %+v", rep.Breakages)
	}
}

func TestCompareKindChangedIsBreaking(t *testing.T) {
	prev := reg("rpc", "", "", "", "")
	next := reg("stream", "", "", "", "")
	rep := Compare(prev, next)
	if !rep.Breaking() {
		t.Fatal("expected a kind-changed breakage")
	}
	if rep.Breakages[0].Kind != "kind-changed" {
		t.Fatalf("Kind = %q, want kind-changed", rep.Breakages[0].Kind)
	}
}

func TestCompareProducesTheExactExpectedBreakageSet(t *testing.T) {
	prev := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"}}}`, "", "")
	next := reg("rpc", "", `{"type":"object","properties":{"a":{"type":"number"}},"required":["a"]}`, "", "")
	rep := Compare(prev, next)
	want := []Breakage{{
		Service:   "calc",
		Procedure: "add",
		Field:     "input",
		Path:      "/required/a",
		Kind:      "required-added",
		Message:   `field "a" became required; an old caller that never sent it will now be rejected`,
	}}
	if diff := cmp.Diff(want, rep.Breakages); diff != "" {
		t.Fatalf("Breakages mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareSchemaRemovedEntirelyIsBreaking(t *testing.T) {
	prev := reg("rpc", "", `{"type":"object"}`, "", "")
	next := reg("rpc", "", "", "", "")
	rep := Compare(prev, next)
	found := false
	for _, b := range rep.Breakages {
		if b.Kind == "schema-removed" && b.Field == "input" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a schema-removed breakage, got %+v", rep.Breakages)
	}
}
