package engine

import (
	"time"

	"github.com/llehouerou/wavedj/internal/mediasession"
)

// bridge is the loop-owned state of the media-session command filter: at
// most one debounced play/pause command plus the last executed one.
type bridge struct {
	pending *pendingCommand
	last    mediasession.Action
	lastAt  time.Time
}

type pendingCommand struct {
	action mediasession.Action
	timer  *time.Timer
}

func (b *bridge) stop() {
	if b.pending != nil {
		stopTimer(b.pending.timer)
		b.pending = nil
	}
}

// registerHandlers (re)installs the transport handlers. Relative seeks are
// cleared so platforms show skip buttons next to the seek bar.
func (e *Engine) registerHandlers() {
	s := e.session
	s.SetActionHandler(mediasession.ActionPlay, func(mediasession.ActionDetails) {
		e.post(func() { e.command(mediasession.ActionPlay) })
	})
	s.SetActionHandler(mediasession.ActionPause, func(mediasession.ActionDetails) {
		e.post(func() { e.command(mediasession.ActionPause) })
	})
	s.SetActionHandler(mediasession.ActionPreviousTrack, func(mediasession.ActionDetails) {
		e.post(func() {
			e.metrics.MediaCommand(string(mediasession.ActionPreviousTrack), "executed")
			e.store.PreviousSong()
		})
	})
	s.SetActionHandler(mediasession.ActionNextTrack, func(mediasession.ActionDetails) {
		e.post(func() {
			e.metrics.MediaCommand(string(mediasession.ActionNextTrack), "executed")
			e.store.NextSong()
		})
	})
	s.SetActionHandler(mediasession.ActionSeekTo, func(d mediasession.ActionDetails) {
		e.post(func() {
			e.metrics.MediaCommand(string(mediasession.ActionSeekTo), "executed")
			e.seek(d.SeekTime)
		})
	})
	s.SetActionHandler(mediasession.ActionSeekBackward, nil)
	s.SetActionHandler(mediasession.ActionSeekForward, nil)
}

// command debounces a play/pause command. A repeat of the pending command
// is coalesced; a different one replaces it and restarts the window.
func (e *Engine) command(a mediasession.Action) {
	b := &e.bridge
	if p := b.pending; p != nil {
		if p.action == a {
			e.metrics.MediaCommand(string(a), "coalesced")
			return
		}
		stopTimer(p.timer)
		e.metrics.MediaCommand(string(p.action), "replaced")
	}
	p := &pendingCommand{action: a}
	p.timer = e.after(e.t.Debounce, func() {
		if b.pending != p {
			return
		}
		b.pending = nil
		e.execute(a)
	})
	b.pending = p
}

// execute runs a settled command unless it looks like a reconnect glitch.
func (e *Engine) execute(a mediasession.Action) {
	b := &e.bridge
	now := time.Now()
	intent := e.store.Snapshot().Playing
	hw := e.decks.Active().Playing()

	if b.last != "" && a != b.last {
		since := now.Sub(b.lastAt)
		if since < e.t.Cooldown {
			// Opposite command right after another: trust the hardware.
			e.logger.Debug().Str("action", string(a)).Dur("since", since).Msg("command in cooldown, resyncing")
			e.metrics.MediaCommand(string(a), "cooldown")
			e.store.SetPlaying(hw)
			return
		}
		if a == mediasession.ActionPause && b.last == mediasession.ActionPlay &&
			since < e.t.GlitchWindow && intent && hw {
			e.logger.Debug().Dur("since", since).Msg("ignoring lone pause contradicting playback")
			e.metrics.MediaCommand(string(a), "glitch")
			return
		}
	}

	b.last, b.lastAt = a, now
	e.metrics.MediaCommand(string(a), "executed")
	switch a {
	case mediasession.ActionPlay:
		e.userPlay()
	case mediasession.ActionPause:
		e.userPause()
	default:
	}
}
