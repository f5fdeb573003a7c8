// Package envelopes identifies the outermost JSON-array message label
// (NIP-01 §Communication) so the router can dispatch to the matching
// sub-package without parsing the full message twice.
package envelopes

import (
	"encoding/json"
	"fmt"
)

// Label names a wire envelope's first array element.
type Label string

const (
	Event  Label = "EVENT"
	Req    Label = "REQ"
	Close  Label = "CLOSE"
	Closed Label = "CLOSED"
	OK     Label = "OK"
	EOSE   Label = "EOSE"
	Notice Label = "NOTICE"
	Auth   Label = "AUTH"
	Count  Label = "COUNT"
)

// Identify peeks at a raw client message and returns its label plus the
// decoded JSON array, without fully validating the remaining elements.
func Identify(raw []byte) (Label, []json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return "", nil, fmt.Errorf("envelopes: not a json array: %w", err)
	}
	if len(arr) == 0 {
		return "", nil, fmt.Errorf("envelopes: empty array")
	}
	var label string
	if err := json.Unmarshal(arr[0], &label); err != nil {
		return "", nil, fmt.Errorf("envelopes: first element is not a string: %w", err)
	}
	return Label(label), arr, nil
}
