// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth supplies optional, concrete implementations of River's
// handshake-metadata predicate and constructor (spec.md §4.3, §6): a
// bearer-JWT handshake validator for servers, and an OAuth2
// TokenSource-backed metadata constructor for clients. Neither is wired
// into the session state machine itself — spec.md §1's Non-goals exclude
// "application-level authentication beyond an opaque handshake payload
// validated by user code," so these exist purely as optional bodies for
// that user-supplied predicate (SPEC_FULL.md §11/§12). Grounded on the
// teacher SDK's auth package (authorization_code.go, client.go).
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// handshakeMetadata is the wire shape both sides of this package agree on:
// an opaque payload carrying a single bearer token.
type handshakeMetadata struct {
	Token string `json:"token"`
}

// JWTHandshakeValidator returns a handshake-metadata predicate that decodes
// metadata as a {"token": ...} envelope and validates the bearer JWT it
// carries with keyFunc (see
// jwt.Parse), rejecting the handshake if the token is missing, malformed,
// or fails validation. Suitable as ServerOptions.HandshakeOptions.Validate
// (via SessionOptions.ValidateHandshake).
func JWTHandshakeValidator(keyFunc jwt.Keyfunc, parserOpts ...jwt.ParserOption) func(ctx context.Context, metadata json.RawMessage) error {
	return func(ctx context.Context, metadata json.RawMessage) error {
		var hs handshakeMetadata
		if len(metadata) == 0 {
			return fmt.Errorf("river/auth: handshake metadata missing bearer token")
		}
		if err := json.Unmarshal(metadata, &hs); err != nil {
			return fmt.Errorf("river/auth: handshake metadata is not a token envelope: %w", err)
		}
		if hs.Token == "" {
			return fmt.Errorf("river/auth: handshake metadata missing bearer token")
		}
		token, err := jwt.Parse(hs.Token, keyFunc, parserOpts...)
		if err != nil {
			return fmt.Errorf("river/auth: bearer token rejected: %w", err)
		}
		if !token.Valid {
			return fmt.Errorf("river/auth: bearer token is not valid")
		}
		return nil
	}
}

// OAuth2HandshakeMetadata returns a handshake-metadata constructor that
// pulls a fresh access token from src and wraps it in the envelope
// JWTHandshakeValidator expects. Suitable as
// ClientOptions.HandshakeOptions.Construct.
func OAuth2HandshakeMetadata(src oauth2.TokenSource) func(ctx context.Context) (json.RawMessage, error) {
	return func(ctx context.Context) (json.RawMessage, error) {
		tok, err := src.Token()
		if err != nil {
			return nil, fmt.Errorf("river/auth: fetch oauth2 token: %w", err)
		}
		return json.Marshal(handshakeMetadata{Token: tok.AccessToken})
	}
}
