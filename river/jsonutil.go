// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package river

import (
	"encoding/json"

	internaljson "github.com/riverrpc/river/internal/json"
)

// wireRawMessage is a local alias so Result's wire shape doesn't have to
// import encoding/json at every call site.
type wireRawMessage = json.RawMessage

func marshalJSON(v any) ([]byte, error) {
	return internaljson.Marshal(v)
}

func unmarshalJSON(data []byte, v any) error {
	return internaljson.Unmarshal(data, v)
}
