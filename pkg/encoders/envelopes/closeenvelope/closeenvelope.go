// Package closeenvelope implements the client->relay CLOSE envelope:
// ["CLOSE", <subid>].
package closeenvelope

import (
	"encoding/json"
	"fmt"
)

// T is a parsed CLOSE request.
type T struct {
	SubscriptionID string
}

// Parse parses the array elements following the "CLOSE" label.
func Parse(rest []json.RawMessage) (*T, error) {
	if len(rest) != 1 {
		return nil, fmt.Errorf("closeenvelope: want 1 element after label, got %d", len(rest))
	}
	var subID string
	if err := json.Unmarshal(rest[0], &subID); err != nil {
		return nil, fmt.Errorf("closeenvelope: invalid subscription id: %w", err)
	}
	return &T{SubscriptionID: subID}, nil
}
