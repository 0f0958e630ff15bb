// Package payload models gateway and REST payloads as raw JSON objects that
// preserve the distinction between an absent field, a null field, and a field
// set to its zero value. Entity merge semantics depend on that distinction.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Object is a decoded JSON object whose values are kept raw. Accessors decode
// on demand; a missing key and a type-mismatched value are both reported as
// absent.
type Object map[string]json.RawMessage

// Parse decodes data into an Object. Anything other than a JSON object is
// rejected.
func Parse(data []byte) (Object, error) {
	var o Object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("payload is not a JSON object: null")
	}
	return o, nil
}

// MustParse is Parse for test fixtures and literals known to be valid.
// It panics on invalid input.
func MustParse(data string) Object {
	o, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return o
}

// Has reports whether key exists in the object, regardless of its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// IsNull reports whether key exists and holds a JSON null.
func (o Object) IsNull(key string) bool {
	raw, ok := o[key]
	return ok && isNullRaw(raw)
}

// Raw returns the undecoded value for key.
func (o Object) Raw(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	return raw, ok
}

// Str returns the string value for key. Absent, null, and non-string values
// all report false.
func (o Object) Str(key string) (string, bool) {
	raw, ok := o[key]
	if !ok || isNullRaw(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Int returns the integer value for key. JSON numbers with a fractional part
// and non-numeric values report false.
func (o Object) Int(key string) (int64, bool) {
	raw, ok := o[key]
	if !ok || isNullRaw(raw) {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Bool returns the boolean value for key.
func (o Object) Bool(key string) (bool, bool) {
	raw, ok := o[key]
	if !ok || isNullRaw(raw) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// Time returns the timestamp value for key. Platform timestamps are ISO 8601
// strings with optional fractional seconds and numeric offsets.
func (o Object) Time(key string) (time.Time, bool) {
	s, ok := o.Str(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Obj returns the nested object value for key.
func (o Object) Obj(key string) (Object, bool) {
	raw, ok := o[key]
	if !ok || isNullRaw(raw) {
		return nil, false
	}
	var child Object
	if err := json.Unmarshal(raw, &child); err != nil || child == nil {
		return nil, false
	}
	return child, true
}

// Objs returns the array-of-objects value for key. Array elements that are
// not objects cause the whole lookup to report false.
func (o Object) Objs(key string) ([]Object, bool) {
	raw, ok := o[key]
	if !ok || isNullRaw(raw) {
		return nil, false
	}
	var children []Object
	if err := json.Unmarshal(raw, &children); err != nil {
		return nil, false
	}
	return children, true
}

// Strs returns the array-of-strings value for key.
func (o Object) Strs(key string) ([]string, bool) {
	raw, ok := o[key]
	if !ok || isNullRaw(raw) {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// SetStr stores a string value under key, replacing any existing value.
func (o Object) SetStr(key, value string) {
	raw, _ := json.Marshal(value)
	o[key] = raw
}

// SetRaw stores a copy of raw under key.
func (o Object) SetRaw(key string, raw json.RawMessage) {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	o[key] = cp
}

// Clone returns a deep copy of the object. Raw values are copied so later
// merges into the clone never alias the original's backing arrays.
func (o Object) Clone() Object {
	if o == nil {
		return nil
	}
	out := make(Object, len(o))
	for k, v := range o {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Merge applies patch onto o in place. A key present in patch overwrites the
// stored value; a key holding JSON null clears it; keys absent from patch are
// untouched.
func (o Object) Merge(patch Object) {
	for k, v := range patch {
		if isNullRaw(v) {
			delete(o, k)
			continue
		}
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		o[k] = cp
	}
}

// Encode serializes the object back to JSON for persistence.
func (o Object) Encode() ([]byte, error) {
	return json.Marshal(o)
}

func isNullRaw(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
