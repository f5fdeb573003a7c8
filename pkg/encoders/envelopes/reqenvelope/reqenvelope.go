// Package reqenvelope implements the client->relay REQ envelope:
// ["REQ", <subid>, <filter1>, <filter2>, ...].
package reqenvelope

import (
	"encoding/json"
	"fmt"

	"wisp.relay/pkg/encoders/filter"
)

// T is a parsed REQ request.
type T struct {
	SubscriptionID string
	Filters        filter.S
}

// Parse parses the array elements following the "REQ" label.
func Parse(rest []json.RawMessage) (*T, error) {
	if len(rest) < 2 {
		return nil, fmt.Errorf("reqenvelope: want subscription id and at least one filter, got %d elements", len(rest))
	}
	var subID string
	if err := json.Unmarshal(rest[0], &subID); err != nil {
		return nil, fmt.Errorf("reqenvelope: invalid subscription id: %w", err)
	}
	filters := make(filter.S, 0, len(rest)-1)
	for _, raw := range rest[1:] {
		f := &filter.F{}
		if err := json.Unmarshal(raw, f); err != nil {
			return nil, fmt.Errorf("reqenvelope: invalid filter: %w", err)
		}
		filters = append(filters, f)
	}
	return &T{SubscriptionID: subID, Filters: filters}, nil
}
