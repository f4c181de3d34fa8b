package mediasession

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_HandlersAndClearing(t *testing.T) {
	r := NewRecorder()
	var got ActionDetails
	r.SetActionHandler(ActionSeekTo, func(d ActionDetails) { got = d })

	require.True(t, r.Fire(ActionSeekTo, ActionDetails{SeekTime: 3 * time.Second}))
	assert.Equal(t, ActionSeekTo, got.Action)
	assert.Equal(t, 3*time.Second, got.SeekTime)

	r.SetActionHandler(ActionSeekTo, nil)
	assert.False(t, r.HasHandler(ActionSeekTo))
	assert.True(t, r.Cleared(ActionSeekTo))
	assert.False(t, r.Fire(ActionSeekTo, ActionDetails{}))
}

func TestRecorder_RecordsUpdates(t *testing.T) {
	r := NewRecorder()
	r.SetMetadata(Metadata{Title: "a"})
	r.SetPlaybackState(StatePlaying)
	require.ErrorIs(t, r.SetPositionState(PositionState{Duration: 1, Position: 2}), ErrInvalidPosition)
	require.NoError(t, r.SetPositionState(PositionState{Duration: 2, Position: 1, Rate: 1}))

	assert.Len(t, r.Metadata(), 1)
	assert.Equal(t, []PlaybackState{StatePlaying}, r.States())
	assert.Len(t, r.Positions(), 1)
	assert.Equal(t, "playing", StatePlaying.String())
}
