package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("relevant_feed=on,story_reactions=off,new_onboarding=true,group_polls=false,e=1,f=0")

	assert.True(t, m.Enabled("relevant_feed", 1))
	assert.True(t, m.Enabled("new_onboarding", 1))
	assert.True(t, m.Enabled("e", 1))
	assert.False(t, m.Enabled("story_reactions", 1))
	assert.False(t, m.Enabled("group_polls", 1))
	assert.False(t, m.Enabled("f", 1))
	assert.False(t, m.Enabled("no_such_flag", 1))
}

func TestEnabled_PercentageRollout(t *testing.T) {
	m := NewManager("everyone=100%,nobody=0%,canary=25%")

	assert.True(t, m.Enabled("everyone", 1))
	assert.False(t, m.Enabled("nobody", 1))

	// A user must land in the same bucket on every evaluation.
	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42))
	}

	assert.False(t, m.Enabled("canary", 0), "anonymous callers stay out of partial rollouts")
}

func TestNewManager_DropsMalformedPairs(t *testing.T) {
	m := NewManager(" noequals ,relevant_feed=on, canary = 20% ,old_profile=off ")

	raw := m.Raw()
	require.Len(t, raw, 3)
	assert.Equal(t, "on", raw["relevant_feed"])
	assert.Equal(t, "20%", raw["canary"])
	assert.Equal(t, "off", raw["old_profile"])

	snap := m.Snapshot(123)
	require.Len(t, snap, 3)
	assert.True(t, snap["relevant_feed"])
	assert.False(t, snap["old_profile"])
}
