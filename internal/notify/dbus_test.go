//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedj/internal/queue"
)

func TestHints_TrackNotification(t *testing.T) {
	p := &NowPlaying{coverArt: func(id string, size int) string {
		return "https://music.example/cover/" + id
	}}
	h := hints(p.notification(queue.Track{ID: "s1", AlbumID: "al1", Title: "Blue"}))

	assert.Equal(t, byte(UrgencyLow), h["urgency"].Value())
	assert.Equal(t, appName, h["desktop-entry"].Value())
	assert.Equal(t, "https://music.example/cover/al1", h["image-path"].Value())
	assert.Equal(t, categoryMusic, h["category"].Value())
	assert.Equal(t, true, h["transient"].Value())
}

func TestHints_OmitsUnsetFields(t *testing.T) {
	h := hints(Notification{Title: "plain", Urgency: UrgencyCritical})

	assert.Len(t, h, 2)
	assert.Equal(t, byte(UrgencyCritical), h["urgency"].Value())
	assert.NotContains(t, h, "image-path")
	assert.NotContains(t, h, "transient")
}

func TestDBusNotifier_NowPlayingReplaces(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}
	n, err := New()
	require.NoError(t, err)

	p := &NowPlaying{notifier: n, logger: zerolog.Nop()}
	p.show(queue.Track{ID: "s1", Title: "wavedj test 1", Artist: "Band"})
	first := p.lastID
	require.NotZero(t, first)

	p.show(queue.Track{ID: "s2", Title: "wavedj test 2", Artist: "Band"})
	assert.Equal(t, first, p.lastID)
	assert.NoError(t, n.Close(p.lastID))
}
