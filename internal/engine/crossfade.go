package engine

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/queue"
)

// maybeStartCrossfade starts a session when the active deck enters the
// crossfade window of its track.
func (e *Engine) maybeStartCrossfade(active deck.Deck) {
	if e.xf.live() {
		return
	}
	snap := e.store.Snapshot()
	if snap.CrossfadeSeconds <= 0 || len(snap.Tracks) < 2 {
		return
	}
	if !active.Playing() || !deck.IsRealSource(active.Source()) {
		return
	}
	if e.noCrossfade.id != "" && e.loaded[active.ID()] == e.noCrossfade {
		return
	}
	dur := active.Duration()
	if dur <= 0 {
		return
	}
	length := time.Duration(snap.CrossfadeSeconds * float64(time.Second))
	remaining := dur - active.Position()
	if remaining <= e.t.MinRemaining || remaining > length {
		return
	}
	next, idx, ok := e.store.Upcoming()
	if !ok {
		return
	}
	e.startCrossfade(next, idx, length)
}

func (e *Engine) startCrossfade(next queue.Track, idx int, length time.Duration) {
	from, to := e.decks.Active(), e.decks.Inactive()

	target := from.Volume()
	if target <= 0 {
		target = 1
	}
	s := &session{
		id:        uuid.New(),
		phase:     PhasePriming,
		from:      from.ID(),
		to:        to.ID(),
		next:      next,
		nextIndex: idx,
		target:    target,
		startedAt: time.Now(),
		duration:  length,
	}
	s.logger = e.logger.With().
		Str("session", s.id.String()).
		Str("from", s.from.String()).
		Str("to", s.to.String()).
		Logger()
	e.xf = s

	if e.prime[s.to] == Priming {
		// The session takes the deck over; its load ends the priming cycle.
		stopTimer(e.primeTimer[s.to])
		e.primeTimer[s.to] = nil
		e.prime[s.to] = Primed
	}
	to.SetVolume(0)
	to.Load(next.URL)
	e.loaded[s.to] = trackKey{index: idx, id: next.ID}

	s.fallback = e.after(e.t.ReadyFallback, func() { e.onBufferDeadline(s, false) })
	s.timeout = e.after(e.t.ReadyTimeout, func() { e.onBufferDeadline(s, true) })
	s.safety = e.after(length+e.t.SafetyMargin, func() { e.onSafetyTimeout(s) })

	e.metrics.CrossfadeStarted()
	s.logger.Info().
		Str("next", next.ID).
		Dur("length", length).
		Float64("target", target).
		Msg("crossfade started")
}

// onIncomingReady handles the buffered signal; only the first one per
// session counts.
func (e *Engine) onIncomingReady(s *session) {
	if s != e.xf || s.phase != PhasePriming || s.readyFired {
		return
	}
	s.readyFired = true
	e.startRamp(s)
}

// onBufferDeadline force-starts a ramp whose incoming deck is ready without
// having signalled it. Past the hard timeout an unready deck aborts.
func (e *Engine) onBufferDeadline(s *session, hard bool) {
	if s != e.xf || s.phase != PhasePriming {
		return
	}
	if e.deckFor(s.to).Ready() {
		s.logger.Debug().Bool("hard", hard).Msg("buffered signal missed, forcing ramp")
		s.readyFired = true
		e.startRamp(s)
		return
	}
	if hard {
		e.abort(s, reasonBuffering, true, false)
	}
}

func (e *Engine) startRamp(s *session) {
	s.stopBuffering()
	from, to := e.deckFor(s.from), e.deckFor(s.to)

	if err := to.Play(); err != nil {
		s.logger.Warn().Err(err).Msg("incoming deck refused to play")
		e.abort(s, reasonRejected, true, false)
		return
	}
	s.phase = PhaseRamping
	s.rampStartedAt = time.Now()
	out, in := EqualPower(0, s.target)
	from.SetVolume(out)
	to.SetVolume(in)
	s.tick = e.after(e.t.Tick, func() { e.onTick(s) })
	s.logger.Debug().Msg("ramp started")
}

func (e *Engine) onTick(s *session) {
	if s != e.xf || s.phase != PhaseRamping {
		return
	}
	if !e.store.Snapshot().Playing {
		e.abort(s, reasonPaused, false, true)
		return
	}
	from, to := e.deckFor(s.from), e.deckFor(s.to)
	if !to.Playing() {
		e.abort(s, reasonStalled, true, false)
		return
	}

	progress := float64(time.Since(s.rampStartedAt)) / float64(s.duration)
	out, in := EqualPower(progress, s.target)
	from.SetVolume(out)
	to.SetVolume(in)
	if progress >= 1 {
		e.complete(s, false)
		return
	}
	s.tick = e.after(e.t.Tick, func() { e.onTick(s) })
}

// onSafetyTimeout completes a session whose ticks were starved if the
// incoming deck is audibly playing, and aborts it otherwise.
func (e *Engine) onSafetyTimeout(s *session) {
	if s != e.xf || !s.live() {
		return
	}
	to := e.deckFor(s.to)
	if to.Playing() && to.Position() > 0 {
		s.logger.Warn().Msg("crossfade overran, forcing completion")
		e.complete(s, true)
		return
	}
	e.abort(s, reasonSafety, true, false)
}

// complete swaps authority to the incoming deck.
func (e *Engine) complete(s *session, forced bool) {
	s.stopAll()
	from, to := e.deckFor(s.from), e.deckFor(s.to)

	from.Pause()
	from.SetVolume(0)
	e.decks.Swap()
	to.SetVolume(s.target)
	s.phase = PhaseCompleted

	// The outgoing track's play, then start following the incoming one.
	e.flushPlay()
	e.tracker.Begin(playFor(s.next))
	idx := e.crossfadedIndex(s)
	key := trackKey{index: idx, id: s.next.ID}
	e.loaded[s.to] = key
	e.playKey = key

	from.Load(deck.NeutralSource)
	e.loaded[s.from] = trackKey{}

	if idx >= 0 {
		e.store.JumpTo(idx)
	} else {
		e.store.NextSong()
	}

	e.metrics.CrossfadeCompleted(forced)
	s.logger.Info().
		Bool("forced", forced).
		Dur("elapsed", time.Since(s.startedAt)).
		Msg("crossfade completed")
}

// crossfadedIndex finds the queue entry of the track s faded in. The queue
// may have changed during the ramp; -1 means the track is gone.
func (e *Engine) crossfadedIndex(s *session) int {
	tracks := e.store.Snapshot().Tracks
	if s.nextIndex >= 0 && s.nextIndex < len(tracks) && tracks[s.nextIndex].ID == s.next.ID {
		return s.nextIndex
	}
	return slices.IndexFunc(tracks, func(t queue.Track) bool { return t.ID == s.next.ID })
}

// abort cancels s and leaves both decks safe. With fallback, an outgoing
// track that already finished is followed by a direct transition. pauseBoth
// also pauses the outgoing deck.
func (e *Engine) abort(s *session, reason string, fallback, pauseBoth bool) {
	s.stopAll()
	from, to := e.deckFor(s.from), e.deckFor(s.to)

	from.SetVolume(s.target)
	if pauseBoth {
		from.Pause()
	}
	e.resetDeck(to)
	s.phase = PhaseAborted
	e.xf = nil
	if reason != reasonPaused && reason != reasonNavigation {
		// No retry for this entry: its end takes the direct cut.
		e.noCrossfade = e.loaded[s.from]
	}

	e.metrics.CrossfadeAborted(reason)
	s.logger.Info().Str("reason", reason).Msg("crossfade aborted")

	if !fallback || pauseBoth {
		return
	}
	if s.outgoingEnded || trackFinished(from, e.t.MinRemaining) {
		e.directTransition("fallback")
	}
}

func trackFinished(d deck.Deck, tail time.Duration) bool {
	dur := d.Duration()
	return dur > 0 && d.Position() >= dur-tail
}

// directTransition loads the upcoming track onto the active deck without a
// crossfade and advances the queue.
func (e *Engine) directTransition(cause string) {
	e.flushPlay()
	next, idx, ok := e.store.Upcoming()
	if !ok {
		e.logger.Info().Msg("end of queue")
		e.store.SetPlaying(false)
		return
	}
	e.loadActive(trackKey{index: idx, id: next.ID}, next, e.intent)
	e.store.NextSong()

	e.metrics.DirectTransition(cause)
	e.logger.Debug().Str("cause", cause).Str("next", next.ID).Msg("direct transition")
}
