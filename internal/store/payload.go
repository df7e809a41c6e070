package store

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"

	"github.com/Iron-Ham/handoff/internal/errors"
)

var (
	errNotObject    = errors.New("document is not a JSON object")
	errTrailingData = errors.New("unexpected data after JSON value")
)

// Payload is a schema-less JSON object supplied by a caller: the task body
// of a queued task, the caller fields of a plan or result, the data of a
// signal. The broker never looks inside it beyond the envelope keys it owns.
//
// Numbers decoded by this package are json.Number, so integers survive a
// read-modify-write cycle unchanged.
type Payload map[string]any

// Clone returns a shallow copy of p. A nil Payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	maps.Copy(out, p)
	return out
}

// String returns the value at key if it is a string.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// ParseValue decodes any single JSON value: an object decodes to a Payload,
// and numbers anywhere inside it to json.Number.
func ParseValue(data []byte) (any, error) {
	var v any
	if err := decodeStrict(data, &v); err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		return Payload(m), nil
	}
	return v, nil
}

// AsPayload reports whether v is a JSON object and returns it as a Payload.
func AsPayload(v any) (Payload, bool) {
	switch m := v.(type) {
	case Payload:
		return m, m != nil
	case map[string]any:
		return Payload(m), m != nil
	}
	return nil, false
}

// CloneValue returns a shallow copy of v when it is an object and v itself
// otherwise. A nil object clones to an empty one.
func CloneValue(v any) any {
	switch m := v.(type) {
	case Payload:
		return m.Clone()
	case map[string]any:
		return Payload(m).Clone()
	}
	return v
}

// ParsePayload decodes a JSON object. Anything other than a single object
// is an error.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := decodeStrict(data, &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNotObject
	}
	return p, nil
}

// decodeStrict decodes exactly one JSON value from data, using json.Number
// for numbers and rejecting trailing content.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// SplitEnvelope decodes a flat JSON object into the string-valued envelope
// keys the caller owns and the remaining caller fields. A null envelope key
// reads as "" and is removed. An envelope key holding any other non-string
// value stays in the caller fields.
func SplitEnvelope(data []byte, keys ...string) (map[string]string, Payload, error) {
	var raw Payload
	if err := decodeStrict(data, &raw); err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return nil, nil, errNotObject
	}

	envelope := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			envelope[k] = s
		case nil:
		default:
			continue
		}
		delete(raw, k)
	}
	return envelope, raw, nil
}

// MergeEnvelope returns fields with the envelope laid over it, so envelope
// keys always win over caller fields of the same name. A nil envelope value
// is written as JSON null.
func MergeEnvelope(fields Payload, envelope map[string]any) Payload {
	out := fields.Clone()
	maps.Copy(out, envelope)
	return out
}
