// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package wire supplies concrete river.Codec implementations: a JSON codec
// and a length-prefixed binary codec (SPEC_FULL.md §4.1).
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	segjson "github.com/segmentio/encoding/json"

	"github.com/riverrpc/river"
)

// JSONCodec encodes with segmentio/encoding/json (the teacher's own
// fast-path JSON dependency) and decodes with a strict pass adapted from
// the teacher's internal/jsonrpc2.StrictUnmarshal: reject duplicate
// case-variant keys and unknown fields, so a peer cannot smuggle extra
// envelope fields past the session layer.
type JSONCodec struct{}

var _ river.Codec = JSONCodec{}

func (JSONCodec) Encode(msg *river.Message) ([]byte, error) {
	return segjson.Marshal(msg)
}

func (JSONCodec) Decode(frame []byte) (*river.Message, error) {
	var msg river.Message
	if err := strictUnmarshal(frame, &msg); err != nil {
		return nil, fmt.Errorf("wire: decode message: %w", err)
	}
	return &msg, nil
}

// strictUnmarshal mirrors the teacher SDK's internal/jsonrpc2.StrictUnmarshal:
// reject case-variant duplicate keys, then decode with unknown fields
// disallowed.
func strictUnmarshal(data []byte, v any) error {
	if err := rejectDuplicateCaseKeys(data); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func rejectDuplicateCaseKeys(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not a JSON object: nothing to check here, let Decode report the
		// real error.
		return nil
	}
	seen := make(map[string]string, len(raw))
	for key := range raw {
		lower := strings.ToLower(key)
		if original, ok := seen[lower]; ok && original != key {
			return fmt.Errorf("duplicate key with different case: %q and %q", original, key)
		}
		seen[lower] = key
	}
	return nil
}
