package payload

import (
	"fmt"
	"strings"
)

// Spec describes the fields a payload must carry before an entity of the
// given kind can be constructed from it.
type Spec struct {
	Kind     string
	Required []string
}

// Validate checks o against the spec. A required field that is absent, or
// present but null, fails validation. The returned error is always a
// *MalformedPayloadError.
func (s Spec) Validate(o Object) error {
	if o == nil {
		return &MalformedPayloadError{Kind: s.Kind, Reason: "payload is not a JSON object"}
	}
	var missing []string
	for _, f := range s.Required {
		if !o.Has(f) || o.IsNull(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MalformedPayloadError{Kind: s.Kind, Missing: missing}
	}
	return nil
}

// MalformedPayloadError reports a payload that cannot produce a valid entity.
// It is returned synchronously from construction and never from lookups.
type MalformedPayloadError struct {
	// Kind is the entity kind the payload was meant to produce.
	Kind string

	// Missing lists required fields absent from the payload, in spec order.
	Missing []string

	// Reason carries non-field problems such as a payload that is not an
	// object at all.
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "payload"
	}
	if len(e.Missing) > 0 {
		return fmt.Sprintf("malformed %s payload: missing required fields [%s]", kind, strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		return fmt.Sprintf("malformed %s payload: %s", kind, e.Reason)
	}
	return fmt.Sprintf("malformed %s payload", kind)
}
