package engine

import (
	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/mediasession"
)

// onDeckEvent routes a deck event. The pointer is read fresh on every call
// because it may have swapped since the event was emitted.
func (e *Engine) onDeckEvent(ev deck.Event) {
	d := e.deckFor(ev.Deck)
	if ev.Source != d.Source() {
		// Emitted for a source that has since been replaced.
		return
	}
	active := e.decks.IsActive(ev.Deck)

	switch ev.Kind {
	case deck.EventReady:
		e.onReady(d, ev)
	case deck.EventPlaying:
		if active {
			e.onActivePlaying()
		} else {
			e.onInactivePlaying(d)
		}
	case deck.EventPause:
		if active && !e.xf.live() {
			e.session.SetPlaybackState(mediasession.StatePaused)
		}
	case deck.EventTimeUpdate:
		if active {
			e.onActiveTime(d)
		}
	case deck.EventStalled:
		if s := e.xf; s.live() && s.phase == PhaseRamping && ev.Deck == s.to {
			e.abort(s, reasonStalled, true, false)
		}
	case deck.EventEnded:
		if !active {
			return
		}
		if s := e.xf; s.live() {
			// The crossfade owns this transition.
			s.outgoingEnded = true
			return
		}
		e.session.SetPlaybackState(mediasession.StatePaused)
		e.directTransition("ended")
	case deck.EventError:
		e.onError(ev)
	case deck.EventLoaded:
	}
}

func (e *Engine) onReady(d deck.Deck, ev deck.Event) {
	if s := e.xf; s.live() && ev.Deck == s.to {
		e.onIncomingReady(s)
		return
	}
	p := e.pending
	if p == nil || p.deck != ev.Deck || p.source != ev.Source {
		return
	}
	e.pending = nil
	if !p.autoplay {
		return
	}
	e.startActive(d)
}

func (e *Engine) onError(ev deck.Event) {
	e.logger.Warn().Err(ev.Err).
		Str("deck", ev.Deck.String()).
		Str("source", ev.Source).
		Msg("deck error")

	if s := e.xf; s.live() && ev.Deck == s.to {
		e.abort(s, reasonError, true, false)
		return
	}
	if p := e.pending; p != nil && p.deck == ev.Deck && p.source == ev.Source {
		e.pending = nil
		e.loadFailed = true
		e.lastErr = ev.Err
		e.loading = false
	}
}

func (e *Engine) onActivePlaying() {
	e.loading = false
	e.lastErr = nil
	e.registerHandlers()
	e.session.SetPlaybackState(mediasession.StatePlaying)
}

// onInactivePlaying tolerates playback on the inactive deck while it is
// being primed or faded in, and stops it otherwise.
func (e *Engine) onInactivePlaying(d deck.Deck) {
	if e.prime[d.ID()] == Priming {
		return
	}
	if s := e.xf; s.live() && s.to == d.ID() {
		return
	}
	e.logger.Warn().Str("deck", d.ID().String()).Msg("unexpected playback on inactive deck, resetting")
	e.resetDeck(d)
	e.metrics.ReconcilerCorrection("inactive_playback")
}

func (e *Engine) onActiveTime(d deck.Deck) {
	pos, dur := d.Position(), d.Duration()
	if e.playKey == e.loaded[d.ID()] && e.tracker.Observe(pos, dur) {
		e.logger.Debug().Str("song", e.tracker.TrackID()).Msg("play armed")
	}
	if dur > 0 {
		// Platforms reject inconsistent values; nothing to do about it.
		_ = e.session.SetPositionState(mediasession.PositionState{
			Duration: dur,
			Position: pos,
			Rate:     1,
		})
	}
	e.maybeStartCrossfade(d)
}

// resetDeck silences d and detaches its source.
func (e *Engine) resetDeck(d deck.Deck) {
	d.Pause()
	d.SetVolume(0)
	d.Load(deck.NeutralSource)
	e.loaded[d.ID()] = trackKey{}
}
