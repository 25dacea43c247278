//go:build !ppc64le
// +build !ppc64le

package json

import (
	stdjson "encoding/json"

	"github.com/bytedance/sonic"
)

// ConfigStd behaves the most identically with encoding/json.
var json = sonic.ConfigStd

var (
	// Marshal is exported by gin/json package.
	Marshal = json.Marshal
	// Unmarshal is exported by gin/json package.
	Unmarshal = json.Unmarshal
	// MarshalIndent is exported by gin/json package.
	MarshalIndent = json.MarshalIndent
	// NewDecoder is exported by gin/json package.
	NewDecoder = json.NewDecoder
	// NewEncoder is exported by gin/json package.
	NewEncoder = json.NewEncoder
)

type (
	Delim      = stdjson.Delim
	Decoder    = sonic.Decoder
	Number     = stdjson.Number
	RawMessage = stdjson.RawMessage
)
