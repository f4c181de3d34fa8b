package state

import (
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedj/internal/queue"
)

func openTest(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(":memory:")
	require.NoError(t, err)
	return m
}

func sampleState() QueueState {
	return QueueState{
		CurrentIndex: 1,
		Tracks: []queue.Track{
			{ID: "s1", Title: "Blue", Artist: "Band", Album: "Colors", AlbumID: "al-1", Genre: "Rock", Duration: 245 * time.Second},
			{ID: "s2", Title: "Red", Duration: 180500 * time.Millisecond},
		},
		Volume:           0.7,
		CrossfadeSeconds: 5,
		Shuffle:          true,
		Repeat:           queue.RepeatAll,
	}
}

func TestGetQueue_Empty(t *testing.T) {
	m := openTest(t)
	defer m.Close()

	s, err := m.GetQueue()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSaveAndGetQueue(t *testing.T) {
	m := openTest(t)
	defer m.Close()

	want := sampleState()
	require.NoError(t, m.SaveQueue(want))

	got, err := m.GetQueue()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSaveQueue_Replaces(t *testing.T) {
	m := openTest(t)
	defer m.Close()

	require.NoError(t, m.SaveQueue(sampleState()))
	require.NoError(t, m.SaveQueue(QueueState{
		CurrentIndex: 0,
		Tracks:       []queue.Track{{ID: "s9", Title: "Green"}},
		Volume:       1,
	}))

	got, err := m.GetQueue()
	require.NoError(t, err)
	require.Len(t, got.Tracks, 1)
	assert.Equal(t, "s9", got.Tracks[0].ID)
	assert.False(t, got.Shuffle)
	assert.Equal(t, queue.RepeatOff, got.Repeat)
}

func TestFromSnapshot_DropsURLsOnRoundTrip(t *testing.T) {
	m := openTest(t)
	defer m.Close()

	s := queue.New()
	s.Replace([]queue.Track{{ID: "s1", URL: "http://server/rest/stream?id=s1&t=secret", Title: "Blue"}}, 0)
	require.NoError(t, m.SaveQueue(FromSnapshot(s.Snapshot())))

	got, err := m.GetQueue()
	require.NoError(t, err)
	require.Len(t, got.Tracks, 1)
	assert.Empty(t, got.Tracks[0].URL)
	assert.InDelta(t, 1.0, got.Volume, 1e-9)
}

func TestSaveQueueDebounced_Coalesces(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := openTest(t)
		defer m.Close()

		first := sampleState()
		second := sampleState()
		second.CurrentIndex = 0

		m.SaveQueueDebounced(first)
		time.Sleep(400 * time.Millisecond)
		m.SaveQueueDebounced(second)
		time.Sleep(400 * time.Millisecond)
		synctest.Wait()

		got, err := m.GetQueue()
		require.NoError(t, err)
		assert.Nil(t, got, "window restarted by the second save")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		got, err = m.GetQueue()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 0, got.CurrentIndex)
	})
}

func TestClose_FlushesPendingSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wavedj.db")
	m, err := OpenPath(path)
	require.NoError(t, err)

	m.SaveQueueDebounced(sampleState())
	require.NoError(t, m.Close())

	m, err = OpenPath(path)
	require.NoError(t, err)
	defer m.Close()
	got, err := m.GetQueue()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Tracks, 2)
}

func TestLastfmSession(t *testing.T) {
	m := openTest(t)
	defer m.Close()

	s, err := m.GetLastfmSession()
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, m.SaveLastfmSession("alice", "sk-1"))
	require.NoError(t, m.SaveLastfmSession("alice", "sk-2"))

	s, err = m.GetLastfmSession()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "sk-2", s.SessionKey)
	assert.False(t, s.LinkedAt.IsZero())

	require.NoError(t, m.DeleteLastfmSession())
	s, err = m.GetLastfmSession()
	require.NoError(t, err)
	assert.Nil(t, s)
}
