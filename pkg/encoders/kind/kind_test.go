package kind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestK_IsReplaceable(t *testing.T) {
	assert.True(t, Metadata.IsReplaceable())
	assert.True(t, Contacts.IsReplaceable())
	assert.True(t, K(10002).IsReplaceable())
	assert.True(t, K(19999).IsReplaceable())
	assert.False(t, K(20000).IsReplaceable())
	assert.False(t, Text.IsReplaceable())
}

func TestK_IsEphemeral(t *testing.T) {
	assert.False(t, K(19999).IsEphemeral())
	assert.True(t, K(20000).IsEphemeral())
	assert.True(t, K(29999).IsEphemeral())
	assert.False(t, K(30000).IsEphemeral())
}

func TestK_IsParameterizedReplaceable(t *testing.T) {
	assert.False(t, K(29999).IsParameterizedReplaceable())
	assert.True(t, K(30000).IsParameterizedReplaceable())
	assert.True(t, K(39999).IsParameterizedReplaceable())
	assert.False(t, K(40000).IsParameterizedReplaceable())
}

func TestK_IsDeletionAndRegular(t *testing.T) {
	assert.True(t, Deletion.IsDeletion())
	assert.True(t, Text.IsRegular())
	assert.False(t, Metadata.IsRegular())
	assert.False(t, K(20001).IsRegular())
	assert.False(t, K(30001).IsRegular())
	assert.False(t, Deletion.IsRegular())
}
