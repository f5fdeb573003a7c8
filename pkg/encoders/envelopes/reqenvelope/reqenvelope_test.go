package reqenvelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, msg string) (*T, error) {
	var arr []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(msg), &arr))
	return Parse(arr[1:])
}

func TestParse_SingleFilter(t *testing.T) {
	req, err := parse(t, `["REQ","sub1",{"kinds":[1,2],"limit":10}]`)
	require.NoError(t, err)
	assert.Equal(t, "sub1", req.SubscriptionID)
	require.Len(t, req.Filters, 1)
	assert.Equal(t, []int{1, 2}, req.Filters[0].Kinds)
}

func TestParse_MultipleFilters(t *testing.T) {
	req, err := parse(t, `["REQ","sub2",{"kinds":[1]},{"kinds":[2]}]`)
	require.NoError(t, err)
	assert.Len(t, req.Filters, 2)
}

func TestParse_RejectsMissingFilter(t *testing.T) {
	_, err := parse(t, `["REQ","sub3"]`)
	assert.Error(t, err)
}
