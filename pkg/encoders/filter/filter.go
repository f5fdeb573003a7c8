// Package filter implements the nostr REQ filter: a set of constraints
// matched against stored and incoming events to decide subscription
// delivery and historical replay.
package filter

import (
	"encoding/json"
	"strings"

	"wisp.relay/pkg/encoders/event"
)

// F is a single filter. Id and Author entries may be full 64-char hex
// strings or any prefix of one, per NIP-01.
type F struct {
	IDs     []string         `json:"ids,omitempty"`
	Authors []string         `json:"authors,omitempty"`
	Kinds   []int            `json:"kinds,omitempty"`
	Tags    map[string][]string `json:"-"`
	Since   *int64           `json:"since,omitempty"`
	Until   *int64           `json:"until,omitempty"`
	Limit   *int             `json:"limit,omitempty"`
}

// MarshalJSON renders the filter, folding Tags back into "#x" keys.
func (f *F) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if len(f.IDs) > 0 {
		m["ids"] = f.IDs
	}
	if len(f.Authors) > 0 {
		m["authors"] = f.Authors
	}
	if len(f.Kinds) > 0 {
		m["kinds"] = f.Kinds
	}
	if f.Since != nil {
		m["since"] = *f.Since
	}
	if f.Until != nil {
		m["until"] = *f.Until
	}
	if f.Limit != nil {
		m["limit"] = *f.Limit
	}
	for k, v := range f.Tags {
		m["#"+k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses a filter, lifting any "#x" key into Tags["x"].
func (f *F) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		switch {
		case k == "ids":
			if err := json.Unmarshal(v, &f.IDs); err != nil {
				return err
			}
		case k == "authors":
			if err := json.Unmarshal(v, &f.Authors); err != nil {
				return err
			}
		case k == "kinds":
			if err := json.Unmarshal(v, &f.Kinds); err != nil {
				return err
			}
		case k == "since":
			var n int64
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			f.Since = &n
		case k == "until":
			var n int64
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			f.Until = &n
		case k == "limit":
			var n int
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			f.Limit = &n
		case strings.HasPrefix(k, "#") && len(k) >= 2:
			var vals []string
			if err := json.Unmarshal(v, &vals); err != nil {
				return err
			}
			if f.Tags == nil {
				f.Tags = map[string][]string{}
			}
			f.Tags[k[1:]] = vals
		}
	}
	return nil
}

func hasPrefix(full string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(full, p) {
			return true
		}
	}
	return false
}

func containsInt(haystack []int, needle int) bool {
	if len(haystack) == 0 {
		return true
	}
	for _, k := range haystack {
		if k == needle {
			return true
		}
	}
	return false
}

// Matches reports whether ev satisfies every constraint in f.
func (f *F) Matches(ev *event.E) bool {
	if f == nil || ev == nil {
		return false
	}
	if !hasPrefix(ev.IDHex(), f.IDs) {
		return false
	}
	if !hasPrefix(ev.PubkeyHex(), f.Authors) {
		return false
	}
	if !containsInt(f.Kinds, int(ev.Kind)) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	for key, vals := range f.Tags {
		if !eventHasTagValue(ev, key, vals) {
			return false
		}
	}
	return true
}

func eventHasTagValue(ev *event.E, key string, vals []string) bool {
	if ev.Tags == nil {
		return false
	}
	for _, t := range ev.Tags.GetAll(key) {
		v := t.Value()
		for _, want := range vals {
			if v == want {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of f, sharing nothing with the original.
func (f *F) Clone() *F {
	if f == nil {
		return nil
	}
	out := &F{
		IDs:     append([]string(nil), f.IDs...),
		Authors: append([]string(nil), f.Authors...),
		Kinds:   append([]int(nil), f.Kinds...),
	}
	if f.Tags != nil {
		out.Tags = make(map[string][]string, len(f.Tags))
		for k, v := range f.Tags {
			out.Tags[k] = append([]string(nil), v...)
		}
	}
	if f.Since != nil {
		v := *f.Since
		out.Since = &v
	}
	if f.Until != nil {
		v := *f.Until
		out.Until = &v
	}
	if f.Limit != nil {
		v := *f.Limit
		out.Limit = &v
	}
	return out
}

// S is an ordered list of filters, as sent in a REQ envelope. An event
// matches the set if it matches any one filter (logical OR), per NIP-01.
type S []*F

// Matches reports whether ev satisfies at least one filter in the set. An
// empty set matches nothing.
func (s S) Matches(ev *event.E) bool {
	for _, f := range s {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the filter list.
func (s S) Clone() S {
	out := make(S, len(s))
	for i, f := range s {
		out[i] = f.Clone()
	}
	return out
}
