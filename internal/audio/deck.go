package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/llehouerou/wavedj/internal/deck"
)

// Deck is one mixer channel playing a fully buffered track.
type Deck struct {
	id    deck.ID
	mixer *Mixer

	mu       sync.Mutex
	source   string
	gen      uint64
	decoded  beep.StreamSeekCloser
	format   beep.Format
	gain     *effects.Gain
	volume   float64
	ready    bool
	playing  bool
	pending  bool
	listener func(deck.Event)

	// cancelLoad stops the fetch of the current generation.
	cancelLoad context.CancelFunc
}

func newDeck(id deck.ID, m *Mixer) *Deck {
	return &Deck{id: id, mixer: m, volume: 1}
}

func (d *Deck) ID() deck.ID { return d.id }

// Load detaches the current track and starts fetching src in the
// background. Events from a superseded load are dropped.
func (d *Deck) Load(src string) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.cancelLoad != nil {
		d.cancelLoad()
		d.cancelLoad = nil
	}
	d.closeLocked()
	d.source = src
	d.playing = false
	d.pending = false
	d.ready = src == deck.NeutralSource
	if !deck.IsRealSource(src) {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.mixer.ctx)
	d.cancelLoad = cancel
	d.mu.Unlock()

	d.mixer.wg.Add(1)
	go d.fetch(ctx, gen, src)
}

func (d *Deck) fetch(ctx context.Context, gen uint64, src string) {
	defer d.mixer.wg.Done()

	data, err := d.mixer.fetch(ctx, src)
	if err == nil {
		var s beep.StreamSeekCloser
		var format beep.Format
		s, format, err = decode(data)
		if err == nil {
			d.attach(gen, s, format)
			return
		}
	}

	d.mu.Lock()
	current := d.gen == gen
	d.mu.Unlock()
	if current {
		d.mixer.logger.Warn().Err(err).Str("deck", d.id.String()).Msg("load failed")
		d.emitErr(deck.EventError, src, fmt.Errorf("load %s: %w", d.id, err))
	}
}

func (d *Deck) attach(gen uint64, s beep.StreamSeekCloser, format beep.Format) {
	d.mu.Lock()
	if d.gen != gen {
		d.mu.Unlock()
		_ = s.Close()
		return
	}
	var play beep.Streamer = s
	if format.SampleRate != d.mixer.sampleRate {
		play = beep.Resample(4, format.SampleRate, d.mixer.sampleRate, s)
	}
	d.decoded = s
	d.format = format
	d.gain = &effects.Gain{Streamer: play, Gain: d.volume - 1}
	d.ready = true
	start := d.pending
	d.pending = false
	if start {
		d.playing = true
	}
	src := d.source
	d.mu.Unlock()

	d.emit(deck.EventLoaded, src)
	d.emit(deck.EventReady, src)
	if start {
		d.emit(deck.EventPlaying, src)
	}
}

func (d *Deck) closeLocked() {
	if d.decoded != nil {
		_ = d.decoded.Close()
	}
	d.decoded = nil
	d.gain = nil
}

func (d *Deck) Source() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source
}

// Play starts playback or defers it until the track is buffered.
func (d *Deck) Play() error {
	if err := d.mixer.open(); err != nil {
		return fmt.Errorf("%w: %w", deck.ErrRejected, err)
	}

	d.mu.Lock()
	if d.source == "" {
		d.mu.Unlock()
		return deck.ErrNoSource
	}
	if !d.ready {
		d.pending = true
		d.mu.Unlock()
		return nil
	}
	if d.decoded != nil && d.decoded.Position() >= d.decoded.Len() {
		_ = d.decoded.Seek(0)
	}
	was := d.playing
	d.playing = true
	src := d.source
	d.mu.Unlock()

	if !was {
		d.emit(deck.EventPlaying, src)
	}
	return nil
}

func (d *Deck) Pause() {
	d.mu.Lock()
	d.pending = false
	was := d.playing
	d.playing = false
	src := d.source
	d.mu.Unlock()

	if was {
		d.emit(deck.EventPause, src)
	}
}

func (d *Deck) Seek(pos time.Duration) {
	d.mu.Lock()
	if d.decoded == nil {
		d.mu.Unlock()
		return
	}
	n := min(max(d.format.SampleRate.N(pos), 0), d.decoded.Len())
	_ = d.decoded.Seek(n)
	src := d.source
	d.mu.Unlock()

	d.emit(deck.EventTimeUpdate, src)
}

func (d *Deck) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = v
	if d.gain != nil {
		d.gain.Gain = v - 1
	}
}

func (d *Deck) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *Deck) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.decoded == nil {
		return 0
	}
	return d.format.SampleRate.D(d.decoded.Position())
}

func (d *Deck) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.decoded == nil {
		return 0
	}
	return d.format.SampleRate.D(d.decoded.Len())
}

func (d *Deck) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

func (d *Deck) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

func (d *Deck) SetListener(fn func(deck.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = fn
}

// mixInto adds this deck's samples to out. buf is scratch space of the
// same length. Runs on the audio goroutine.
func (d *Deck) mixInto(out, buf [][2]float64) {
	d.mu.Lock()
	if !d.playing || d.gain == nil {
		d.mu.Unlock()
		return
	}
	n, ok := d.gain.Stream(buf)
	for i := range n {
		out[i][0] += buf[i][0]
		out[i][1] += buf[i][1]
	}
	ended := !ok || n < len(buf)
	if ended {
		d.playing = false
	}
	src := d.source
	d.mu.Unlock()

	if ended {
		// Never block the audio callback on listeners.
		go d.emit(deck.EventEnded, src)
	}
}

func (d *Deck) reportTime() {
	d.mu.Lock()
	playing := d.playing
	src := d.source
	d.mu.Unlock()
	if playing && deck.IsRealSource(src) {
		d.emit(deck.EventTimeUpdate, src)
	}
}

func (d *Deck) emit(kind deck.EventKind, src string) {
	d.emitErr(kind, src, nil)
}

func (d *Deck) emitErr(kind deck.EventKind, src string, err error) {
	d.mu.Lock()
	fn := d.listener
	d.mu.Unlock()
	if fn != nil {
		fn(deck.Event{Deck: d.id, Kind: kind, Source: src, Err: err})
	}
}

// Verify Deck implements deck.Deck at compile time.
var _ deck.Deck = (*Deck)(nil)
