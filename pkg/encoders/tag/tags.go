package tag

import "encoding/json"

// S is an ordered list of tags, as found on an event.
type S struct {
	T []*T
}

// NewS builds a tag list from a variadic list of tags.
func NewS(tags ...*T) *S { return &S{T: tags} }

// Len returns the number of tags.
func (s *S) Len() int {
	if s == nil {
		return 0
	}
	return len(s.T)
}

// GetAll returns every tag whose Key matches key, in document order.
func (s *S) GetAll(key string) []*T {
	if s == nil {
		return nil
	}
	var out []*T
	for _, t := range s.T {
		if t.Key() == key {
			out = append(out, t)
		}
	}
	return out
}

// GetFirst returns the first tag whose Key matches key, or nil.
func (s *S) GetFirst(key string) *T {
	if s == nil {
		return nil
	}
	for _, t := range s.T {
		if t.Key() == key {
			return t
		}
	}
	return nil
}

// Append adds a tag to the end of the list.
func (s *S) Append(t *T) { s.T = append(s.T, t) }

// MarshalJSON renders the tag list as a JSON array of arrays.
func (s *S) MarshalJSON() ([]byte, error) {
	if s == nil || s.T == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.T)
}

// UnmarshalJSON parses a JSON array of arrays into the tag list.
func (s *S) UnmarshalJSON(b []byte) error {
	var raw []*T
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.T = raw
	return nil
}
