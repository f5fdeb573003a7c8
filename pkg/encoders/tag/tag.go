// Package tag implements the nostr tag: an ordered list of strings whose
// first element names the tag.
package tag

import "encoding/json"

// Position names for the first few slots of a tag, for readability at call
// sites.
const (
	Key = iota
	Value
	Relay
)

// T is a single tag: an ordered list of UTF-8 strings.
type T struct {
	Field []string
}

// New creates a tag from a variadic list of strings.
func New(fields ...string) *T { return &T{Field: fields} }

// Len returns the number of fields.
func (t *T) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Field)
}

// Key returns the tag's first field, the tag name.
func (t *T) Key() string {
	if t == nil || len(t.Field) <= Key {
		return ""
	}
	return t.Field[Key]
}

// Value returns the tag's second field, its primary value.
func (t *T) Value() string {
	if t == nil || len(t.Field) <= Value {
		return ""
	}
	return t.Field[Value]
}

// Relay returns the tag's third field, conventionally a relay hint.
func (t *T) Relay() string {
	if t == nil || len(t.Field) <= Relay {
		return ""
	}
	return t.Field[Relay]
}

// At returns the field at position i, or "" if the tag is shorter.
func (t *T) At(i int) string {
	if t == nil || len(t.Field) <= i {
		return ""
	}
	return t.Field[i]
}

// Equal reports whether two tags have identical fields in the same order.
func (t *T) Equal(o *T) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Field) != len(o.Field) {
		return false
	}
	for i := range t.Field {
		if t.Field[i] != o.Field[i] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the tag as a JSON array of strings.
func (t *T) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Field)
}

// UnmarshalJSON parses a JSON array of strings into the tag.
func (t *T) UnmarshalJSON(b []byte) error {
	var fields []string
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	t.Field = fields
	return nil
}
