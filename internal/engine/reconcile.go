package engine

import (
	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/queue"
)

// userPlay handles a play gesture. The gesture activates the active deck
// and primes the inactive one.
func (e *Engine) userPlay() {
	a := e.decks.Active()
	if e.prime[a.ID()] == Unprimed {
		e.prime[a.ID()] = Primed
	}
	e.primeInactive()
	if e.intent && e.loadFailed {
		// Intent is already up, so no queue change will follow.
		e.applyIntent(e.store.Snapshot())
		return
	}
	e.store.SetPlaying(true)
}

func (e *Engine) userPause() {
	e.store.SetPlaying(false)
}

// applyIntent drives the active deck after an intent change. A track
// whose load failed is loaded again rather than played.
func (e *Engine) applyIntent(snap queue.Snapshot) {
	a := e.decks.Active()
	if !snap.Playing {
		if p := e.pending; p != nil {
			p.autoplay = false
		}
		e.loading = false
		if s := e.xf; s.live() {
			e.abort(s, reasonPaused, false, true)
			return
		}
		a.Pause()
		return
	}
	if e.loadFailed {
		if cur, ok := snap.Current(); ok {
			e.loadActive(trackKey{index: snap.Index, id: cur.ID}, cur, true)
		}
		return
	}
	if !deck.IsRealSource(a.Source()) || a.Playing() {
		return
	}
	e.startActive(a)
}

// primeInactive runs one silent play/pause cycle on the inactive deck so
// that platforms gating playback per channel on a user gesture accept the
// later crossfade start.
func (e *Engine) primeInactive() {
	i := e.decks.Inactive()
	id := i.ID()
	if e.prime[id] != Unprimed || e.xf.live() {
		return
	}
	e.prime[id] = Priming
	savedSource, savedVolume := i.Source(), i.Volume()

	restore := func(d deck.Deck) {
		d.Pause()
		if deck.IsRealSource(savedSource) {
			d.Load(savedSource)
		}
		d.SetVolume(savedVolume)
	}

	i.SetVolume(0)
	i.Load(deck.NeutralSource)
	if err := i.Play(); err != nil {
		e.logger.Warn().Err(err).Str("deck", id.String()).Msg("priming refused")
		restore(i)
		e.prime[id] = Unprimed
		return
	}
	e.primeTimer[id] = e.after(e.t.PrimeDelay, func() {
		e.primeTimer[id] = nil
		if e.prime[id] != Priming {
			return
		}
		restore(e.deckFor(id))
		e.prime[id] = Primed
		e.logger.Debug().Str("deck", id.String()).Msg("deck primed")
	})
}

// hasProgress reports whether d has played part of a real track.
func hasProgress(d deck.Deck) bool {
	return d.Position() > 0 && deck.IsRealSource(d.Source())
}

// reconcile repairs divergence between the pointer, intent and hardware
// after the player regains visibility.
func (e *Engine) reconcile() {
	if e.xf.live() {
		e.logger.Debug().Msg("crossfade in flight, skipping reconciliation")
		return
	}

	if !hasProgress(e.decks.Active()) && hasProgress(e.decks.Inactive()) {
		id := e.decks.Swap()
		e.metrics.ReconcilerCorrection("pointer")
		e.logger.Info().Str("active", id.String()).Msg("pointer corrected from deck progress")
	}

	a := e.decks.Active()
	intent := e.store.Snapshot().Playing
	if hasProgress(a) && !a.Playing() && intent {
		if err := a.Play(); err != nil {
			e.logger.Warn().Err(err).Msg("resume after suspension refused")
			e.store.SetPlaying(false)
		} else {
			e.store.SetPlaying(true)
		}
		e.metrics.ReconcilerCorrection("resume")
		return
	}

	hw := a.Playing()
	switch {
	case hw == intent:
	case hw:
		e.metrics.ReconcilerCorrection("intent_playing")
		e.store.SetPlaying(true)
	case a.Ready() && deck.IsRealSource(a.Source()):
		e.metrics.ReconcilerCorrection("intent_paused")
		e.store.SetPlaying(false)
	}
}
