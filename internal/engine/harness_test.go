package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/mediasession"
	"github.com/llehouerou/wavedj/internal/metrics"
	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
)

func track(id string, dur time.Duration) queue.Track {
	return queue.Track{
		ID:       id,
		URL:      "http://server/stream/" + id,
		Title:    "Song " + id,
		Artist:   "Artist",
		Album:    "Album",
		AlbumID:  "al-1",
		Duration: dur,
	}
}

// harness wires an engine to mock decks, a real queue store and a recording
// media session. It must be created inside a synctest bubble.
type harness struct {
	t       *testing.T
	a, b    *deck.Mock
	pair    *deck.Pair
	store   *queue.Store
	sess    *mediasession.Recorder
	sink    *scrobble.MockSink
	metrics *metrics.Recorder
	eng     *Engine

	mu      sync.Mutex
	changes []string

	cancel context.CancelFunc
	done   chan struct{}
}

func newHarness(t *testing.T, tracks ...queue.Track) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		a:       deck.NewMock(deck.A),
		b:       deck.NewMock(deck.B),
		store:   queue.New(),
		sess:    mediasession.NewRecorder(),
		sink:    scrobble.NewMockSink(),
		metrics: metrics.New(),
	}
	h.pair = deck.NewPair(h.a, h.b)
	h.store.Replace(tracks, 0)
	return h
}

// start runs the engine loop. mods adjust the options first.
func (h *harness) start(mods ...func(*Options)) {
	h.t.Helper()
	d := scrobble.NewDispatcher(zerolog.Nop(), time.Second, h.metrics)
	d.Add("test", h.sink)
	opts := Options{
		Decks:      h.pair,
		Store:      h.store,
		Session:    h.sess,
		Dispatcher: d,
		Metrics:    h.metrics,
		Logger:     zerolog.Nop(),
		CoverArt: func(id string, size int) string {
			return fmt.Sprintf("http://server/cover/%s?size=%d", id, size)
		},
		OnTrackChange: func(t queue.Track) {
			h.mu.Lock()
			h.changes = append(h.changes, t.ID)
			h.mu.Unlock()
		},
	}
	for _, mod := range mods {
		mod(&opts)
	}
	h.eng = New(opts)
	h.store.OnChange(func(queue.Snapshot) { h.eng.QueueChanged() })

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		_ = h.eng.Run(ctx)
	}()
	h.settle()
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
	h.settle()
}

func (h *harness) trackChanges() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.changes...)
}

func (h *harness) settle() { synctest.Wait() }

func (h *harness) sleep(d time.Duration) {
	time.Sleep(d)
	h.settle()
}

// mock returns the mock behind the given deck id.
func (h *harness) mock(id deck.ID) *deck.Mock {
	if id == deck.A {
		return h.a
	}
	return h.b
}

func (h *harness) active() *deck.Mock { return h.mock(h.pair.ActiveID()) }

func (h *harness) inactive() *deck.Mock { return h.mock(h.pair.ActiveID().Other()) }

// playing sets intent and buffers the active deck so it starts.
func (h *harness) playing(dur time.Duration) {
	h.store.SetPlaying(true)
	h.settle()
	h.active().SimulateReady(dur)
	h.settle()
}

// advance walks d's clock from `from` to `to` in steps. The loop reads the
// deck position when it handles an update, so each step is settled before
// the clock moves on.
func (h *harness) advance(d *deck.Mock, from, to, step time.Duration) {
	for pos := from; pos <= to; pos += step {
		d.SimulateTime(pos)
		h.settle()
	}
}

// loadsOf counts the loads of src on d.
func loadsOf(d *deck.Mock, src string) int {
	n := 0
	for _, l := range d.Loads() {
		if l == src {
			n++
		}
	}
	return n
}

func withTimings(t Timings) func(*Options) {
	return func(o *Options) { o.Timings = t }
}
