package engine

import (
	"math"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/queue"
)

func TestEqualPower(t *testing.T) {
	const target = 0.8
	half := math.Sqrt2 / 2

	tests := []struct {
		progress float64
		out, in  float64
	}{
		{0, target, 0},
		{0.5, half * target, half * target},
		{1, 0, target},
		{-1, target, 0},
		{2, 0, target},
	}
	for _, tt := range tests {
		out, in := EqualPower(tt.progress, target)
		assert.InDelta(t, tt.out, out, 1e-9, "out at %v", tt.progress)
		assert.InDelta(t, tt.in, in, 1e-9, "in at %v", tt.progress)
	}
}

func TestCrossfade_EndToEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.store.SetVolume(0.8)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.advance(h.a, 0, 6*time.Second, time.Second)
		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		require.Equal(t, PhasePriming, h.eng.Status().Phase)
		assert.Equal(t, []string{"http://server/stream/s2"}, h.b.Loads())
		assert.Zero(t, h.b.Volume())

		h.b.SimulateReady(10 * time.Second)
		h.settle()
		require.Equal(t, PhaseRamping, h.eng.Status().Phase)
		assert.True(t, h.b.Playing())

		h.sleep(1500 * time.Millisecond)
		half := math.Sqrt2 / 2 * 0.8
		assert.InDelta(t, half, h.a.Volume(), 0.03)
		assert.InDelta(t, half, h.b.Volume(), 0.03)
		assert.InDelta(t, 0.5, h.eng.Status().Progress, 0.03)

		h.sleep(1600 * time.Millisecond)
		st := h.eng.Status()
		assert.Equal(t, deck.B, st.ActiveDeck)
		assert.Equal(t, PhaseIdle, st.Phase)
		assert.Equal(t, "s2", st.TrackID)
		assert.Equal(t, 1, h.store.Snapshot().Index)

		assert.Equal(t, deck.NeutralSource, h.a.Source())
		assert.False(t, h.a.Playing())
		assert.Zero(t, h.a.Volume())
		assert.InDelta(t, 0.8, h.b.Volume(), 1e-9)
		// The loader must not reload the track the swap made live.
		assert.Len(t, h.b.Loads(), 1)

		plays := h.sink.Plays()
		require.Len(t, plays, 1)
		assert.Equal(t, "s1", plays[0].SongID)
		assert.Equal(t, []string{"s1", "s2"}, h.trackChanges())
	})
}

func TestCrossfade_SingleSession(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.a.SimulateTime(7500 * time.Millisecond)
		h.a.SimulateTime(8 * time.Second)
		h.settle()

		assert.Equal(t, PhasePriming, h.eng.Status().Phase)
		assert.Len(t, h.b.Loads(), 1)
	})
}

func TestCrossfade_NotStartedOutsideWindow(t *testing.T) {
	tests := []struct {
		name      string
		crossfade float64
		tracks    int
		pos       time.Duration
	}{
		{"disabled", 0, 2, 8 * time.Second},
		{"too early", 3, 2, 6 * time.Second},
		{"tail too short", 3, 2, 9600 * time.Millisecond},
		{"single track", 3, 1, 8 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				tracks := []queue.Track{track("s1", 10*time.Second), track("s2", 10*time.Second)}
				h := newHarness(t, tracks[:tt.tracks]...)
				h.store.SetCrossfade(tt.crossfade)
				h.start()
				defer h.stop()
				h.playing(10 * time.Second)

				h.a.SimulateTime(tt.pos)
				h.settle()
				assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
				assert.Empty(t, h.b.Loads())
			})
		})
	}
}

func TestCrossfade_EndedDuringSessionIsOwnedByCrossfade(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(5)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(5 * time.Second)
		h.settle()
		require.Equal(t, PhasePriming, h.eng.Status().Phase)

		h.a.SimulateEnded()
		h.settle()
		assert.Equal(t, 0, h.store.Snapshot().Index)
		assert.Len(t, h.a.Loads(), 1)
	})
}

func TestCrossfade_PauseMidRamp(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(5)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(5 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.settle()
		h.sleep(2 * time.Second) // progress 0.4

		h.eng.Pause()
		h.settle()

		assert.False(t, h.a.Playing())
		assert.False(t, h.b.Playing())
		assert.InDelta(t, 1.0, h.a.Volume(), 1e-9)
		assert.Zero(t, h.b.Volume())
		assert.Equal(t, deck.NeutralSource, h.b.Source())
		st := h.eng.Status()
		assert.Equal(t, PhaseIdle, st.Phase)
		assert.Equal(t, deck.A, st.ActiveDeck)
		assert.Equal(t, 0, h.store.Snapshot().Index)
	})
}

func TestCrossfade_BufferingTimeoutAborts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.store.SetVolume(0.6)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.sleep(4900 * time.Millisecond)
		assert.Equal(t, PhasePriming, h.eng.Status().Phase)

		h.sleep(100 * time.Millisecond)
		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
		assert.Equal(t, deck.NeutralSource, h.b.Source())
		assert.Zero(t, h.b.Volume())
		assert.InDelta(t, 0.6, h.a.Volume(), 1e-9)
		assert.True(t, h.a.Playing())
		assert.Equal(t, 0, h.store.Snapshot().Index)
	})
}

func TestCrossfade_BufferingTimeoutFallsBackWhenOutgoingEnded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.sleep(3 * time.Second)
		h.a.SimulateEnded()
		h.settle()
		h.sleep(2 * time.Second)

		assert.Equal(t, deck.A, h.pair.ActiveID())
		assert.Equal(t, "http://server/stream/s2", h.a.Source())
		assert.Equal(t, 1, h.store.Snapshot().Index)

		h.a.SimulateReady(10 * time.Second)
		h.settle()
		assert.True(t, h.a.Playing(), "fallback load autoplays")
	})
}

func TestCrossfade_ReadyWithoutSignalIsForced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.MarkReady(10 * time.Second)

		h.sleep(5 * time.Second)
		assert.Equal(t, PhaseRamping, h.eng.Status().Phase)
		assert.True(t, h.b.Playing())
	})
}

func TestCrossfade_DuplicateReadyStartsOneRamp(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.b.SimulateReadyAgain()
		h.settle()

		assert.Equal(t, 1, h.b.PlayCalls())
	})
}

func TestCrossfade_SafetyTimeoutForcesCompletion(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start(withTimings(Timings{Tick: time.Hour}))
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.settle()
		h.b.SimulateTime(2 * time.Second)

		h.sleep(7900 * time.Millisecond)
		assert.Equal(t, PhaseRamping, h.eng.Status().Phase)

		h.sleep(100 * time.Millisecond)
		st := h.eng.Status()
		assert.Equal(t, deck.B, st.ActiveDeck)
		assert.Equal(t, PhaseIdle, st.Phase)
		assert.Equal(t, 1, h.store.Snapshot().Index)
		assert.Equal(t, deck.NeutralSource, h.a.Source())
	})
}

func TestCrossfade_SafetyTimeoutAbortsWithoutProgress(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start(withTimings(Timings{Tick: time.Hour}))
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.settle()

		h.sleep(8 * time.Second)
		assert.Equal(t, deck.A, h.eng.Status().ActiveDeck)
		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
		assert.Equal(t, deck.NeutralSource, h.b.Source())
		assert.Equal(t, 0, h.store.Snapshot().Index)
	})
}

func TestCrossfade_IncomingStallAborts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.settle()
		h.sleep(time.Second)

		h.b.SimulateStall()
		h.settle()

		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
		assert.InDelta(t, 1.0, h.a.Volume(), 1e-9)
		assert.Equal(t, deck.NeutralSource, h.b.Source())
		assert.True(t, h.a.Playing())
	})
}

func TestCrossfade_RejectedIncomingPlayAborts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SetPlayError(deck.ErrRejected)
		h.b.SimulateReady(10 * time.Second)
		h.settle()

		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
		assert.Equal(t, deck.A, h.pair.ActiveID())
		assert.True(t, h.a.Playing())
		assert.Equal(t, deck.NeutralSource, h.b.Source())
	})
}

func TestCrossfade_NavigationAbortsAndLoadsChoice(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t,
			track("s1", 10*time.Second),
			track("s2", 10*time.Second),
			track("s3", 10*time.Second),
		)
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.settle()

		h.store.JumpTo(2)
		h.settle()

		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
		assert.Equal(t, deck.A, h.pair.ActiveID())
		assert.Equal(t, "http://server/stream/s3", h.a.Source())
		assert.Equal(t, deck.NeutralSource, h.b.Source())
		assert.Equal(t, 2, h.store.Snapshot().Index)
	})
}

func TestDirectCut_EndedAdvancesOnSameDeck(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.advance(h.a, 0, 10*time.Second, time.Second)
		h.a.SimulateEnded()
		h.settle()

		assert.Equal(t, deck.A, h.pair.ActiveID())
		assert.Equal(t, 1, h.store.Snapshot().Index)
		assert.Equal(t, []string{"http://server/stream/s1", "http://server/stream/s2"}, h.a.Loads())
		assert.Empty(t, h.b.Loads())

		h.a.SimulateReady(10 * time.Second)
		h.settle()
		assert.True(t, h.a.Playing())
		assert.Equal(t, "s2", h.eng.Status().TrackID)

		plays := h.sink.Plays()
		require.Len(t, plays, 1)
		assert.Equal(t, "s1", plays[0].SongID)
	})
}

func TestDirectCut_EndOfQueueStops(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second))
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateEnded()
		h.settle()

		assert.False(t, h.store.Snapshot().Playing)
		assert.Len(t, h.a.Loads(), 1)
	})
}

func TestCrossfade_FailedSessionIsNotRetried(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, track("s1", 10*time.Second), track("s2", 10*time.Second))
		h.store.SetCrossfade(5)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)
		h.b.SetPlayError(deck.ErrRejected)

		h.a.SimulateTime(5 * time.Second)
		h.settle()
		require.Equal(t, PhasePriming, h.eng.Status().Phase)
		h.b.SimulateReady(10 * time.Second)
		h.settle()
		require.Equal(t, PhaseIdle, h.eng.Status().Phase)

		h.advance(h.a, 5250*time.Millisecond, 9*time.Second, 250*time.Millisecond)
		assert.Equal(t, PhaseIdle, h.eng.Status().Phase)
		assert.Equal(t, 1, loadsOf(h.b, "http://server/stream/s2"))

		// The end of the track takes the direct cut on the same deck.
		h.a.SimulateEnded()
		h.settle()
		assert.Equal(t, deck.A, h.eng.Status().ActiveDeck)
		assert.Equal(t, 1, loadsOf(h.a, "http://server/stream/s2"))
		assert.Equal(t, 1, h.store.Snapshot().Index)
	})
}

func TestCrossfade_CompletionFollowsFadedTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t,
			track("s1", 10*time.Second),
			track("s2", 10*time.Second),
			track("s3", 10*time.Second),
		)
		h.store.SetCrossfade(3)
		h.start()
		defer h.stop()
		h.playing(10 * time.Second)

		h.a.SimulateTime(7 * time.Second)
		h.settle()
		h.b.SimulateReady(10 * time.Second)
		h.settle()
		require.Equal(t, PhaseRamping, h.eng.Status().Phase)

		// Reordered mid-ramp: s2 is no longer the entry after s1.
		snap := h.store.Snapshot()
		h.store.Replace([]queue.Track{snap.Tracks[0], snap.Tracks[2], snap.Tracks[1]}, 0)
		h.settle()
		require.Equal(t, PhaseRamping, h.eng.Status().Phase)

		h.sleep(3100 * time.Millisecond)
		st := h.eng.Status()
		assert.Equal(t, deck.B, st.ActiveDeck)
		assert.Equal(t, "s2", st.TrackID)
		assert.Equal(t, 2, h.store.Snapshot().Index)
		assert.Len(t, h.b.Loads(), 1)
		assert.True(t, h.b.Playing())
	})
}
