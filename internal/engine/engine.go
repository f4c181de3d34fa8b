// Package engine runs the dual-deck playback engine: crossfades between the
// two decks, direct cuts, track loading on queue changes, reconciliation
// of playback intent with hardware state and the media-session bridge.
//
// Every handler runs on a single goroutine started with Run. Deck events,
// timers, queue notifications, media-session commands and API calls are
// posted to it as closures, so loop state needs no locking.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/mediasession"
	"github.com/llehouerou/wavedj/internal/metrics"
	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
)

// Store is the part of the queue store the engine reads and drives.
type Store interface {
	Snapshot() queue.Snapshot
	Upcoming() (queue.Track, int, bool)
	NextSong()
	PreviousSong()
	JumpTo(index int)
	SetPlaying(playing bool)
}

// Timings are the empirically tuned windows of the engine.
type Timings struct {
	// ReadyFallback force-starts a ramp whose incoming deck is ready but
	// never signalled it.
	ReadyFallback time.Duration
	// ReadyTimeout aborts a crossfade whose incoming deck is not ready.
	ReadyTimeout time.Duration
	// SafetyMargin is added to the crossfade length for the safety check.
	SafetyMargin    time.Duration
	Tick            time.Duration
	PrimeDelay      time.Duration
	Debounce        time.Duration
	Cooldown        time.Duration
	GlitchWindow    time.Duration
	DispatchTimeout time.Duration
	// MinRemaining is the track tail under which no crossfade starts.
	MinRemaining time.Duration
}

// DefaultTimings returns the production timings.
func DefaultTimings() Timings {
	return Timings{
		ReadyFallback:   5 * time.Second,
		ReadyTimeout:    5 * time.Second,
		SafetyMargin:    5 * time.Second,
		Tick:            50 * time.Millisecond,
		PrimeDelay:      100 * time.Millisecond,
		Debounce:        300 * time.Millisecond,
		Cooldown:        500 * time.Millisecond,
		GlitchWindow:    2 * time.Second,
		DispatchTimeout: 10 * time.Second,
		MinRemaining:    500 * time.Millisecond,
	}
}

func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.ReadyFallback, d.ReadyFallback)
	fill(&t.ReadyTimeout, d.ReadyTimeout)
	fill(&t.SafetyMargin, d.SafetyMargin)
	fill(&t.Tick, d.Tick)
	fill(&t.PrimeDelay, d.PrimeDelay)
	fill(&t.Debounce, d.Debounce)
	fill(&t.Cooldown, d.Cooldown)
	fill(&t.GlitchWindow, d.GlitchWindow)
	fill(&t.DispatchTimeout, d.DispatchTimeout)
	fill(&t.MinRemaining, d.MinRemaining)
	return t
}

// Options configures an Engine. Decks and Store are required.
type Options struct {
	Decks      *deck.Pair
	Store      Store
	Session    mediasession.Session
	Dispatcher *scrobble.Dispatcher
	Metrics    *metrics.Recorder
	Timings    Timings
	Logger     zerolog.Logger

	// CoverArt builds an artwork URL for an album or track id.
	CoverArt func(id string, size int) string
	// OnTrackChange is called on the loop for every track that becomes
	// current. It must not block.
	OnTrackChange func(queue.Track)
}

// Status is a snapshot of the engine published after every handler.
type Status struct {
	ActiveDeck deck.ID
	Phase      Phase
	TrackID    string
	Position   time.Duration
	Duration   time.Duration
	Playing    bool
	// Loading stays set while a requested start has not produced audio.
	Loading   bool
	LastError error
	// Progress is the ramp completion (0..1) while Phase is Ramping.
	Progress float64
}

// Engine is the playback engine.
type Engine struct {
	decks      *deck.Pair
	store      Store
	session    mediasession.Session
	dispatcher *scrobble.Dispatcher
	metrics    *metrics.Recorder
	t          Timings
	logger     zerolog.Logger
	coverArt   func(string, int) string
	onTrack    func(queue.Track)

	mb mailbox

	// Loop-owned state.
	xf         *session
	loaded     [2]trackKey
	prime      [2]PrimeState
	primeTimer [2]*time.Timer
	pending    *pendingLoad
	loadFailed bool
	tracker    *scrobble.Tracker
	playKey    trackKey
	lastKey    trackKey
	intent     bool
	volume     float64
	visible    bool
	loading    bool
	lastErr    error
	bridge     bridge

	// noCrossfade is the queue entry whose crossfade failed; its end is
	// left to the direct cut.
	noCrossfade trackKey

	statusMu sync.RWMutex
	status   Status
}

// New creates an engine and installs its deck listeners. Nothing happens
// until Run is called.
func New(opts Options) *Engine {
	sess := opts.Session
	if sess == nil {
		sess = mediasession.Nop{}
	}
	e := &Engine{
		decks:      opts.Decks,
		store:      opts.Store,
		session:    sess,
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		t:          opts.Timings.withDefaults(),
		logger:     opts.Logger.With().Str("component", "engine").Logger(),
		coverArt:   opts.CoverArt,
		onTrack:    opts.OnTrackChange,
		mb:         newMailbox(),
		tracker:    scrobble.NewTracker(scrobble.DefaultThreshold, scrobble.DefaultMaxStep),
		lastKey:    trackKey{index: -2},
		volume:     -1,
		visible:    true,
	}
	e.decks.Each(func(d deck.Deck, _ bool) {
		d.SetListener(func(ev deck.Event) {
			e.post(func() { e.onDeckEvent(ev) })
		})
	})
	return e
}

// Run executes the loop until ctx is done. On exit an armed play that was
// not dispatched yet is sent and in-flight dispatches are awaited for up to
// the dispatch timeout.
func (e *Engine) Run(ctx context.Context) error {
	e.post(e.observeQueue)
	for {
		select {
		case <-ctx.Done():
			e.teardown()
			return nil
		case <-e.mb.signal:
			for _, fn := range e.mb.drain() {
				fn()
			}
			e.publish()
		}
	}
}

func (e *Engine) teardown() {
	if e.xf != nil {
		e.xf.stopAll()
	}
	e.bridge.stop()
	e.flushPlay()
	if e.dispatcher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.t.DispatchTimeout)
	defer cancel()
	if err := e.dispatcher.Wait(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("play dispatches still in flight at shutdown")
	}
}

// QueueChanged tells the engine the queue store changed. Wire it to the
// store's change notifications.
func (e *Engine) QueueChanged() { e.post(e.observeQueue) }

// Play starts playback as a user gesture.
func (e *Engine) Play() { e.post(e.userPlay) }

// Pause pauses playback.
func (e *Engine) Pause() { e.post(e.userPause) }

// TogglePlayback flips playback intent.
func (e *Engine) TogglePlayback() {
	e.post(func() {
		if e.store.Snapshot().Playing {
			e.userPause()
		} else {
			e.userPlay()
		}
	})
}

// Next moves to the next track.
func (e *Engine) Next() { e.post(e.store.NextSong) }

// Previous moves to the previous track.
func (e *Engine) Previous() { e.post(e.store.PreviousSong) }

// Seek moves the active deck to pos.
func (e *Engine) Seek(pos time.Duration) { e.post(func() { e.seek(pos) }) }

// SetVisible reports whether the player is in the foreground. Regaining
// visibility runs the reconciler.
func (e *Engine) SetVisible(visible bool) {
	e.post(func() {
		was := e.visible
		e.visible = visible
		if visible && !was {
			e.reconcile()
		}
	})
}

// Status returns the last published snapshot.
func (e *Engine) Status() Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

func (e *Engine) publish() {
	a := e.decks.Active()
	st := Status{
		ActiveDeck: a.ID(),
		Phase:      PhaseIdle,
		TrackID:    e.loaded[a.ID()].id,
		Position:   a.Position(),
		Duration:   a.Duration(),
		Playing:    e.intent,
		Loading:    e.loading,
		LastError:  e.lastErr,
	}
	if e.xf != nil {
		st.Phase = e.xf.phase
		if e.xf.phase == PhaseRamping && e.xf.duration > 0 {
			st.Progress = min(float64(time.Since(e.xf.rampStartedAt))/float64(e.xf.duration), 1)
		}
	}
	e.statusMu.Lock()
	e.status = st
	e.statusMu.Unlock()
}

func (e *Engine) seek(pos time.Duration) {
	if e.xf.live() {
		e.abort(e.xf, reasonNavigation, false, false)
	}
	a := e.decks.Active()
	if !deck.IsRealSource(a.Source()) {
		return
	}
	a.Seek(max(pos, 0))
}

// deckFor resolves id through the pointer accessors.
func (e *Engine) deckFor(id deck.ID) deck.Deck {
	if e.decks.IsActive(id) {
		return e.decks.Active()
	}
	return e.decks.Inactive()
}

func (e *Engine) post(fn func()) { e.mb.post(fn) }

// after runs fn on the loop once d has elapsed.
func (e *Engine) after(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() { e.post(fn) })
}

// mailbox is an unbounded queue of closures for the loop.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
}

func newMailbox() mailbox {
	return mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}
