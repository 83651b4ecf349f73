// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package schemadiff compares two serialized service registries
// (river.SerializedRegistry, spec.md §4.7) and reports which changes break
// wire compatibility. Breakage is direction-aware: a client->server schema
// (a procedure's init/input) and a server->client schema (output/error)
// tolerate opposite classes of change, since in both cases the question is
// "can an old peer still talk to a new one."
//
// Comparison deliberately works over the generic JSON tree
// (map[string]any/[]any), the same shape encoding/json produces for any
// JSON Schema document, rather than against jsonschema.Schema's Go fields.
// Two registries being compared may come from different module versions
// with different Schema struct layouts; the wire document is the only
// thing guaranteed stable.
package schemadiff

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/riverrpc/river"
)

// Direction classifies which side of a procedure call a schema governs.
type Direction int

const (
	// Request schemas describe what a client sends (init, input).
	Request Direction = iota
	// Response schemas describe what a server sends (output, error).
	Response
)

func (d Direction) String() string {
	if d == Request {
		return "request"
	}
	return "response"
}

// Breakage describes one incompatibility found between two registries.
type Breakage struct {
	Service   string
	Procedure string
	Field     string // "init", "input", "output", or "error"
	Path      string // JSON-pointer-ish path within the schema, e.g. "/properties/name"
	Kind      string // short machine-stable tag, e.g. "required-added", "type-changed"
	Message   string
}

func (b Breakage) String() string {
	return fmt.Sprintf("%s.%s[%s]%s: %s (%s)", b.Service, b.Procedure, b.Field, b.Path, b.Message, b.Kind)
}

// Report is the result of comparing two registries.
type Report struct {
	Breakages []Breakage
}

// Breaking reports whether any incompatibility was found.
func (r *Report) Breaking() bool { return len(r.Breakages) > 0 }

// Compare checks whether a server/client built against next can still
// interoperate with one built against prev: every service and procedure in
// prev must still exist in next with compatible schemas. Procedures or
// services only present in next are additions and never reported.
func Compare(prev, next *river.SerializedRegistry) *Report {
	rep := &Report{}
	for svcName, prevSvc := range sortedServices(prev) {
		nextSvc, ok := next.Services[svcName]
		if !ok {
			rep.Breakages = append(rep.Breakages, Breakage{
				Service: svcName, Kind: "service-removed",
				Message: fmt.Sprintf("service %q no longer exists", svcName),
			})
			continue
		}
		for procName, prevProc := range sortedProcedures(prevSvc) {
			nextProc, ok := nextSvc.Procedures[procName]
			if !ok {
				rep.Breakages = append(rep.Breakages, Breakage{
					Service: svcName, Procedure: procName, Kind: "procedure-removed",
					Message: fmt.Sprintf("procedure %q no longer exists", procName),
				})
				continue
			}
			if prevProc.Kind != nextProc.Kind {
				rep.Breakages = append(rep.Breakages, Breakage{
					Service: svcName, Procedure: procName, Kind: "kind-changed",
					Message: fmt.Sprintf("procedure shape changed from %q to %q", prevProc.Kind, nextProc.Kind),
				})
			}
			compareField(rep, svcName, procName, "init", Request, prevProc.Init, nextProc.Init)
			compareField(rep, svcName, procName, "input", Request, prevProc.Input, nextProc.Input)
			compareField(rep, svcName, procName, "output", Response, prevProc.Output, nextProc.Output)
			compareField(rep, svcName, procName, "error", Response, prevProc.Error, nextProc.Error)
		}
	}
	sort.Slice(rep.Breakages, func(i, j int) bool {
		a, b := rep.Breakages[i], rep.Breakages[j]
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.Procedure != b.Procedure {
			return a.Procedure < b.Procedure
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Path < b.Path
	})
	return rep
}

func sortedServices(r *river.SerializedRegistry) map[string]*river.SerializedService {
	return r.Services
}

func sortedProcedures(s *river.SerializedService) map[string]*river.SerializedProcedure {
	return s.Procedures
}

func compareField(rep *Report, svc, proc, field string, dir Direction, prevRaw, nextRaw json.RawMessage) {
	if len(prevRaw) == 0 {
		return // no prior schema; anything goes
	}
	if len(nextRaw) == 0 {
		rep.Breakages = append(rep.Breakages, Breakage{
			Service: svc, Procedure: proc, Field: field, Kind: "schema-removed",
			Message: "schema was dropped entirely",
		})
		return
	}
	var prev, next any
	if err := json.Unmarshal(prevRaw, &prev); err != nil {
		return
	}
	if err := json.Unmarshal(nextRaw, &next); err != nil {
		return
	}
	add := func(path, kind, msg string) {
		rep.Breakages = append(rep.Breakages, Breakage{
			Service: svc, Procedure: proc, Field: field, Path: path, Kind: kind, Message: msg,
		})
	}
	compareNode(prev, next, dir, "", add)
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// compareNode walks two JSON Schema subtrees in lockstep and reports
// direction-aware breakages. dir==Request schemas describe bytes an old
// peer (client) might still send to a new peer (server): a new schema may
// only ever become MORE permissive. dir==Response schemas describe bytes a
// new peer (server) might send to an old peer (client): a new schema may
// only ever become MORE constrained in what it promises, never less.
func compareNode(prev, next any, dir Direction, path string, add func(path, kind, msg string)) {
	prevObj, prevIsObj := asObject(prev)
	nextObj, nextIsObj := asObject(next)
	if !prevIsObj || !nextIsObj {
		return
	}

	if pt, ok := prevObj["type"]; ok {
		if nt, ok := nextObj["type"]; ok && !equalJSON(pt, nt) {
			add(path+"/type", "type-changed", fmt.Sprintf("type changed from %v to %v", pt, nt))
		}
	}

	if pc, hasP := prevObj["const"]; hasP {
		if nc, hasN := nextObj["const"]; !hasN || !equalJSON(pc, nc) {
			add(path+"/const", "literal-changed", "literal value changed or removed")
		}
	}

	compareRequired(prevObj, nextObj, dir, path, add)
	compareEnum(prevObj, nextObj, dir, path, add)
	compareUnion(prevObj, nextObj, dir, path, add, "oneOf")
	compareUnion(prevObj, nextObj, dir, path, add, "anyOf")
	compareBounds(prevObj, nextObj, dir, path, add)
	compareProperties(prevObj, nextObj, dir, path, add)
	compareItems(prevObj, nextObj, dir, path, add)
}

func compareRequired(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string)) {
	prevReq := stringSet(prevObj["required"])
	nextReq := stringSet(nextObj["required"])
	for name := range nextReq {
		if prevReq[name] {
			continue
		}
		// A field became required that wasn't before.
		if dir == Request {
			add(path+"/required/"+name, "required-added",
				fmt.Sprintf("field %q became required; an old caller that never sent it will now be rejected", name))
		}
		// For a response schema, promising MORE required fields is safe: an
		// old client simply ignores fields it never looks for.
	}
	for name := range prevReq {
		if nextReq[name] {
			continue
		}
		if dir == Response {
			add(path+"/required/"+name, "required-removed",
				fmt.Sprintf("field %q is no longer guaranteed present; an old caller that reads it unconditionally will break", name))
		}
		// For a request schema, no longer requiring a field only loosens
		// the contract and is safe.
	}
}

func compareEnum(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string)) {
	prevEnum, ok := prevObj["enum"].([]any)
	if !ok {
		return
	}
	nextEnum, ok := nextObj["enum"].([]any)
	if !ok {
		add(path+"/enum", "enum-removed", "enum constraint was dropped entirely")
		return
	}
	prevSet := anySet(prevEnum)
	nextSet := anySet(nextEnum)
	for v := range prevSet {
		if !nextSet[v] {
			if dir == Request {
				add(path+"/enum", "enum-value-removed",
					fmt.Sprintf("value %q removed from the accepted set; an old caller may still send it", v))
			}
		}
	}
	for v := range nextSet {
		if !prevSet[v] {
			if dir == Response {
				add(path+"/enum", "enum-value-added",
					fmt.Sprintf("value %q added to the set a server may emit; an old caller's switch/case may not handle it", v))
			}
		}
	}
}

func compareUnion(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string), key string) {
	prevList, okP := prevObj[key].([]any)
	nextList, okN := nextObj[key].([]any)
	if !okP {
		return
	}
	if !okN {
		add(path+"/"+key, "union-removed", key+" constraint was dropped entirely")
		return
	}
	if len(nextList) < len(prevList) && dir == Request {
		add(path+"/"+key, "union-member-removed",
			fmt.Sprintf("%s shrank from %d to %d alternatives; an old caller may still send a removed shape", key, len(prevList), len(nextList)))
	}
	if len(nextList) > len(prevList) && dir == Response {
		add(path+"/"+key, "union-member-added",
			fmt.Sprintf("%s grew from %d to %d alternatives; an old caller may not recognize the new shape", key, len(prevList), len(nextList)))
	}
}

func compareBounds(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string)) {
	compareBoundPair(prevObj, nextObj, dir, path, add, "minItems", true)
	compareBoundPair(prevObj, nextObj, dir, path, add, "maxItems", false)
	compareBoundPair(prevObj, nextObj, dir, path, add, "minLength", true)
	compareBoundPair(prevObj, nextObj, dir, path, add, "maxLength", false)
	compareBoundPair(prevObj, nextObj, dir, path, add, "minimum", true)
	compareBoundPair(prevObj, nextObj, dir, path, add, "maximum", false)
}

// compareBoundPair handles one numeric bound. lowerIsMin distinguishes a
// "floor" bound (minItems, minimum) from a "ceiling" bound (maxItems,
// maximum): tightening a floor means raising it, tightening a ceiling
// means lowering it.
func compareBoundPair(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string), key string, lowerIsMin bool) {
	pv, okP := asFloat(prevObj[key])
	nv, okN := asFloat(nextObj[key])
	if !okP || !okN {
		return
	}
	tightened := false
	if lowerIsMin {
		tightened = nv > pv
	} else {
		tightened = nv < pv
	}
	loosened := nv != pv && !tightened
	switch dir {
	case Request:
		if tightened {
			add(path+"/"+key, "bound-tightened",
				fmt.Sprintf("%s tightened from %v to %v; an old caller may violate it", key, pv, nv))
		}
	case Response:
		if loosened {
			add(path+"/"+key, "bound-loosened",
				fmt.Sprintf("%s loosened from %v to %v; an old caller may assume the old bound", key, pv, nv))
		}
	}
}

func compareProperties(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string)) {
	prevProps, okP := asObject(prevObj["properties"])
	nextProps, okN := asObject(nextObj["properties"])
	if !okP {
		return
	}
	if !okN {
		if len(prevProps) > 0 {
			add(path+"/properties", "properties-removed", "all property declarations were dropped")
		}
		return
	}

	// A record/object swapping to a non-object (or vice versa) is already
	// caught by the top-level type check in compareNode; here we only
	// recurse into properties both sides still declare as objects.
	for name, prevSub := range prevProps {
		nextSub, ok := nextProps[name]
		if !ok {
			if dir == Response {
				add(path+"/properties/"+name, "property-removed",
					fmt.Sprintf("field %q was dropped; an old caller may read it unconditionally", name))
			}
			continue
		}
		compareNode(prevSub, nextSub, dir, path+"/properties/"+name, add)
	}

	additionalOld, hasAdditionalOld := prevObj["additionalProperties"]
	if b, ok := additionalOld.(bool); hasAdditionalOld && ok && !b {
		if additionalNew, ok := nextObj["additionalProperties"].(bool); ok && !additionalNew {
			for name := range nextProps {
				if _, existed := prevProps[name]; !existed && dir == Response {
					add(path+"/properties/"+name, "property-added-closed",
						fmt.Sprintf("field %q added while additionalProperties:false; an old caller validating against the closed %s schema may reject it", name, dir))
				}
			}
		}
	}
}

func compareItems(prevObj, nextObj map[string]any, dir Direction, path string, add func(path, kind, msg string)) {
	prevItems, okP := prevObj["items"]
	nextItems, okN := nextObj["items"]
	if !okP || !okN {
		return
	}
	compareNode(prevItems, nextItems, dir, path+"/items", add)
}

func stringSet(v any) map[string]bool {
	list, _ := v.([]any)
	out := make(map[string]bool, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out[s] = true
		}
	}
	return out
}

func anySet(list []any) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, item := range list {
		b, _ := json.Marshal(item)
		out[string(b)] = true
	}
	return out
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func equalJSON(a, b any) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}
