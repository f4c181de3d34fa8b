package queue

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracks(ids ...string) []Track {
	out := make([]Track, len(ids))
	for i, id := range ids {
		out[i] = Track{ID: id, URL: "http://server/stream/" + id, Title: "Song " + id}
	}
	return out
}

func TestNew_IsEmpty(t *testing.T) {
	s := New()

	snap := s.Snapshot()
	assert.Equal(t, -1, snap.Index)
	assert.Empty(t, snap.Tracks)
	assert.InDelta(t, 1.0, snap.Volume, 1e-9)

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestAdd_SelectsFirstWhenEmpty(t *testing.T) {
	s := New()
	s.Add(tracks("1", "2")...)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "1", cur.ID)

	s.Add(tracks("3")...)
	assert.Equal(t, 0, s.Snapshot().Index)
}

func TestNextSong_LinearStopsAtEnd(t *testing.T) {
	s := New()
	s.Replace(tracks("1", "2"), 0)

	up, i, ok := s.Upcoming()
	require.True(t, ok)
	assert.Equal(t, "2", up.ID)
	assert.Equal(t, 1, i)

	s.NextSong()
	assert.Equal(t, 1, s.Snapshot().Index)

	_, _, ok = s.Upcoming()
	assert.False(t, ok)

	s.NextSong()
	assert.Equal(t, 1, s.Snapshot().Index)
}

func TestNextSong_RepeatAllWraps(t *testing.T) {
	s := New()
	s.Replace(tracks("1", "2"), 1)
	s.SetRepeat(RepeatAll)

	up, i, ok := s.Upcoming()
	require.True(t, ok)
	assert.Equal(t, "1", up.ID)
	assert.Equal(t, 0, i)

	s.NextSong()
	assert.Equal(t, 0, s.Snapshot().Index)

	s.PreviousSong()
	assert.Equal(t, 1, s.Snapshot().Index)
}

func TestNextSong_SingleTrackHasNoNext(t *testing.T) {
	s := New()
	s.Replace(tracks("1"), 0)
	s.SetRepeat(RepeatAll)

	_, _, ok := s.Upcoming()
	assert.False(t, ok)
}

func TestShuffle_UpcomingIsStableAndUsedByNext(t *testing.T) {
	s := New()
	s.rng = rand.New(rand.NewPCG(1, 2))
	s.Replace(tracks("1", "2", "3", "4", "5"), 2)
	s.SetShuffle(true)

	first, _, ok := s.Upcoming()
	require.True(t, ok)
	again, _, _ := s.Upcoming()
	assert.Equal(t, first.ID, again.ID)
	assert.NotEqual(t, "3", first.ID, "shuffle must not pick the current track")

	s.NextSong()
	cur, _ := s.Current()
	assert.Equal(t, first.ID, cur.ID)
}

func TestPreviousSong_AtStartIsNoop(t *testing.T) {
	s := New()
	s.Replace(tracks("1", "2"), 0)

	notified := 0
	s.OnChange(func(Snapshot) { notified++ })
	s.PreviousSong()

	assert.Equal(t, 0, s.Snapshot().Index)
	assert.Zero(t, notified)
}

func TestJumpTo(t *testing.T) {
	s := New()
	s.Replace(tracks("1", "2", "3"), 0)

	s.JumpTo(2)
	assert.Equal(t, 2, s.Snapshot().Index)

	s.JumpTo(9)
	assert.Equal(t, 2, s.Snapshot().Index)
}

func TestOnChange_ReceivesSnapshotAfterMutation(t *testing.T) {
	s := New()
	var got []Snapshot
	s.OnChange(func(snap Snapshot) { got = append(got, snap) })

	s.Replace(tracks("1", "2"), 0)
	s.SetPlaying(true)
	s.SetPlaying(true) // unchanged, no notification
	s.NextSong()

	require.Len(t, got, 3)
	assert.True(t, got[1].Playing)
	assert.Equal(t, 1, got[2].Index)
}

func TestOnChange_ListenerMayReadStore(t *testing.T) {
	s := New()
	s.OnChange(func(Snapshot) {
		_ = s.Snapshot()
	})
	s.Replace(tracks("1"), 0)
}

func TestSetVolume_Clamps(t *testing.T) {
	s := New()
	s.SetVolume(1.7)
	assert.InDelta(t, 1.0, s.Snapshot().Volume, 1e-9)
	s.SetVolume(-3)
	assert.InDelta(t, 0.0, s.Snapshot().Volume, 1e-9)
}

func TestSetCrossfade_ClampsNegative(t *testing.T) {
	s := New()
	s.SetCrossfade(5)
	assert.InDelta(t, 5.0, s.Snapshot().CrossfadeSeconds, 1e-9)
	s.SetCrossfade(-1)
	assert.InDelta(t, 0.0, s.Snapshot().CrossfadeSeconds, 1e-9)
}

func TestClear_DropsIntent(t *testing.T) {
	s := New()
	s.Replace(tracks("1"), 0)
	s.SetPlaying(true)
	s.Clear()

	snap := s.Snapshot()
	assert.False(t, snap.Playing)
	assert.Equal(t, -1, snap.Index)
}

func TestParseRepeatMode(t *testing.T) {
	assert.Equal(t, RepeatAll, ParseRepeatMode("all"))
	assert.Equal(t, RepeatOff, ParseRepeatMode("off"))
	assert.Equal(t, RepeatOff, ParseRepeatMode("bogus"))
	assert.Equal(t, "all", RepeatAll.String())
}
