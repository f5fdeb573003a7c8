// Package countenvelope implements the NIP-45 COUNT envelope shape:
// ["COUNT", <subid>, <filter1>, ...] from the client, and
// ["COUNT", <subid>, {"count": <n>}] from the relay. The relay does not
// implement counting proper; it parses the request and replies with a
// rejection (see pkg/reason), but the wire shapes are implemented in full
// so the rejection is well-formed.
package countenvelope

import (
	"encoding/json"
	"fmt"

	"wisp.relay/pkg/encoders/filter"
)

// Request is a parsed client COUNT request.
type Request struct {
	SubscriptionID string
	Filters        filter.S
}

// ParseRequest parses the array elements following the "COUNT" label.
func ParseRequest(rest []json.RawMessage) (*Request, error) {
	if len(rest) < 2 {
		return nil, fmt.Errorf("countenvelope: want subscription id and at least one filter, got %d elements", len(rest))
	}
	var subID string
	if err := json.Unmarshal(rest[0], &subID); err != nil {
		return nil, fmt.Errorf("countenvelope: invalid subscription id: %w", err)
	}
	filters := make(filter.S, 0, len(rest)-1)
	for _, raw := range rest[1:] {
		f := &filter.F{}
		if err := json.Unmarshal(raw, f); err != nil {
			return nil, fmt.Errorf("countenvelope: invalid filter: %w", err)
		}
		filters = append(filters, f)
	}
	return &Request{SubscriptionID: subID, Filters: filters}, nil
}

// Response is a relay->client COUNT reply.
type Response struct {
	SubscriptionID string
	Count          int
}

// Marshal renders the response to wire form.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal([]any{"COUNT", r.SubscriptionID, map[string]int{"count": r.Count}})
}
