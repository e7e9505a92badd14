package transcribe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Params are the request parameters that affect transcription output.
// They are part of the cache key, so two requests with equal Params
// against equal bytes are interchangeable.
type Params struct {
	Model    string `json:"model"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// Canonical returns a deterministic encoding of the parameters for
// cache key derivation. Field order is fixed.
func (p Params) Canonical() string {
	return fmt.Sprintf("model=%s|language=%s|prompt=%s", p.Model, p.Language, p.Prompt)
}

// Span is one timestamped piece of a chunk's transcription. Start and
// End are seconds relative to the chunk, not the full source.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the raw output of one chunk transcription.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Spans    []Span `json:"spans,omitempty"`
}

// Checksum returns a stable digest of the result, persisted alongside
// chunk completion records so a resumed run can verify that the
// retrievable result matches what was recorded.
func (r Result) Checksum() string {
	data, _ := json.Marshal(r)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
