package kickstarter

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Envelope is one line of a raw scrape dump ({"data": {...}}), decoded
// loosely so that fields this pipeline does not model survive a
// decode/encode round trip. Numbers are kept as json.Number to avoid
// float formatting drift on rewrite.
type Envelope map[string]any

// DecodeEnvelope parses a single scrape line.
func DecodeEnvelope(line []byte) (Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	return env, nil
}

// Encode serializes the envelope back to a single JSON line (no trailing
// newline).
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(map[string]any(e))
}

// Data returns the project payload, or nil when absent.
func (e Envelope) Data() map[string]any {
	data, _ := e["data"].(map[string]any)
	return data
}

// ID returns the project id in string form, or "" when absent.
func (e Envelope) ID() string {
	data := e.Data()
	if data == nil {
		return ""
	}
	switch v := data["id"].(type) {
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return ""
	}
}

// State returns the lowercased project state.
func (e Envelope) State() string {
	data := e.Data()
	if data == nil {
		return ""
	}
	s, _ := data["state"].(string)
	return strings.ToLower(s)
}

// SetState overwrites the project state in place.
func (e Envelope) SetState(state string) {
	if data := e.Data(); data != nil {
		data["state"] = state
	}
}

// Timestamp returns the named unix timestamp field from the payload.
// The second return is false when the field is absent or not a number.
func (e Envelope) Timestamp(key string) (int64, bool) {
	data := e.Data()
	if data == nil {
		return 0, false
	}
	num, ok := data[key].(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}
