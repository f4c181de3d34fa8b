package engine

import (
	"time"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/mediasession"
	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
)

type trackKey struct {
	index int
	id    string
}

// pendingLoad is the one-shot ready/error handler of a load on the active
// deck. autoplay is the intent captured when the load was requested.
type pendingLoad struct {
	deck     deck.ID
	trackID  string
	source   string
	autoplay bool
}

// observeQueue reacts to a queue store change: track changes first, then
// volume and intent.
func (e *Engine) observeQueue() {
	snap := e.store.Snapshot()

	key := trackKey{index: snap.Index}
	cur, hasCur := snap.Current()
	if hasCur {
		key.id = cur.ID
	}
	if key != e.lastKey {
		e.lastKey = key
		e.trackChanged(key, cur, hasCur, snap.Playing)
	}

	if snap.Volume != e.volume {
		e.volume = snap.Volume
		if s := e.xf; s.live() {
			s.target = snap.Volume
		} else {
			e.decks.Active().SetVolume(snap.Volume)
		}
	}

	if snap.Playing != e.intent {
		e.intent = snap.Playing
		e.applyIntent(snap)
	}
}

// trackChanged is the track-change loader. Entries are keyed by queue
// index and song id, so moving between two entries of the same song
// restarts it.
func (e *Engine) trackChanged(key trackKey, track queue.Track, ok bool, autoplay bool) {
	if s := e.xf; s != nil && s.phase == PhaseCompleted {
		// The swap already made the crossfaded entry live.
		e.xf = nil
	}
	// Navigating away from an armed track counts its play.
	if e.playKey != key {
		e.flushPlay()
		e.playKey = key
		if ok {
			e.tracker.Begin(playFor(track))
		}
	}
	if !ok {
		e.session.SetMetadata(mediasession.Metadata{})
		return
	}
	e.updateMetadata(track)
	if e.onTrack != nil {
		e.onTrack(track)
	}

	a := e.decks.Active()
	if e.loaded[a.ID()] == key && !e.loadFailed {
		return
	}
	if s := e.xf; s.live() {
		e.abort(s, reasonNavigation, false, false)
	}
	e.loadActive(key, track, autoplay)
}

// loadActive loads track onto the active deck and arms its one-shot
// handler.
func (e *Engine) loadActive(key trackKey, track queue.Track, autoplay bool) {
	a := e.decks.Active()
	e.loaded[a.ID()] = key
	e.loadFailed = false
	e.noCrossfade = trackKey{}
	e.pending = &pendingLoad{
		deck:     a.ID(),
		trackID:  track.ID,
		source:   track.URL,
		autoplay: autoplay,
	}
	e.loading = autoplay
	e.lastErr = nil
	a.Load(track.URL)
	e.logger.Debug().
		Str("deck", a.ID().String()).
		Str("song", track.ID).
		Bool("autoplay", autoplay).
		Msg("loading track")
}

// startActive plays the active deck; a refusal leaves the loading
// indicator up.
func (e *Engine) startActive(d deck.Deck) {
	e.loading = true
	if err := d.Play(); err != nil {
		e.lastErr = err
		e.logger.Warn().Err(err).Str("deck", d.ID().String()).Msg("play refused")
	}
}

func (e *Engine) updateMetadata(track queue.Track) {
	md := mediasession.Metadata{
		TrackID: track.ID,
		Title:   track.Title,
		Artist:  track.Artist,
		Album:   track.Album,
		Length:  track.Duration,
	}
	if e.coverArt != nil {
		art := track.AlbumID
		if art == "" {
			art = track.ID
		}
		for _, size := range []int{256, 512} {
			md.Artwork = append(md.Artwork, mediasession.Artwork{URL: e.coverArt(art, size), Size: size})
		}
	}
	e.session.SetMetadata(md)
}

// flushPlay dispatches the tracked play if it is armed and not yet sent.
func (e *Engine) flushPlay() {
	p, ok := e.tracker.Take()
	if !ok || e.dispatcher == nil {
		return
	}
	e.dispatcher.Dispatch(p)
}

func playFor(t queue.Track) scrobble.Play {
	return scrobble.Play{
		SongID:    t.ID,
		Artist:    t.Artist,
		Title:     t.Title,
		Album:     t.Album,
		Genre:     t.Genre,
		Duration:  t.Duration,
		StartedAt: time.Now(),
	}
}
