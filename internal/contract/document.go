// Package contract implements the context exchange protocol between
// pipeline stages. Stages communicate exclusively by producing and
// consuming context artifacts: small JSON documents stored as opaque
// artifacts, with no shared schema beyond a mandatory creation
// timestamp. Producers write once; consumers parse leniently and read
// fields through typed getters, so stages can evolve their payloads
// without breaking each other.
package contract

import "time"

// Document is a parsed context artifact. It is a plain JSON object with
// no schema: consumers must tolerate unknown fields and absent fields.
// Each Consume call returns a fresh Document, so mutating one never
// affects another consumer of the same artifact.
type Document map[string]any

// Has reports whether the key is present, regardless of its type.
func (d Document) Has(key string) bool {
	_, present := d[key]
	return present
}

// String returns the value for key if it is a JSON string.
func (d Document) String(key string) (string, bool) {
	value, ok := d[key].(string)
	return value, ok
}

// StringOr returns the string value for key, or fallback if the key is
// absent or not a string.
func (d Document) StringOr(key, fallback string) string {
	if value, ok := d.String(key); ok {
		return value
	}
	return fallback
}

// Bool returns the value for key if it is a JSON boolean, false otherwise.
func (d Document) Bool(key string) bool {
	value, ok := d[key].(bool)
	return ok && value
}

// Strings returns the string elements of the JSON array at key, in
// order. Non-string elements are dropped. Returns nil if the key is
// absent or not an array.
func (d Document) Strings(key string) []string {
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

// Time parses the RFC 3339 string value at key.
func (d Document) Time(key string) (time.Time, bool) {
	value, ok := d.String(key)
	if !ok {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
