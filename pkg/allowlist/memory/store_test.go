package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore("main")

	set, err := s.Resolve()
	require.NoError(t, err)
	assert.True(t, set.Has("main"))
	assert.False(t, set.Has("browser"))

	s.Add("browser")
	s.Remove("main")

	// earlier snapshots are not affected
	assert.True(t, set.Has("main"))

	set, err = s.Resolve()
	require.NoError(t, err)
	assert.True(t, set.Has("browser"))
	assert.False(t, set.Has("main"))
}

func TestEmptyStoreRestricts(t *testing.T) {
	set, err := NewStore().Resolve()
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Equal(t, 0, set.Len())
}
