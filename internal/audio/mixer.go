// Package audio plays decks through the local sound device with beep.
//
// Both decks are summed by a single Mixer streamer, so the two channels of
// a crossfade are audible at the same time.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedj/internal/deck"
)

// DefaultSampleRate is the device rate. Tracks at other rates are resampled.
const DefaultSampleRate = beep.SampleRate(44100)

// TickInterval is how often playing decks report their position.
const TickInterval = 250 * time.Millisecond

// Output is the sound device the mixer streams to.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
}

type speakerOutput struct{}

// Speaker returns the system sound device.
func Speaker() Output { return speakerOutput{} }

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

// Fetcher returns the encoded bytes of a source.
type Fetcher func(ctx context.Context, src string) ([]byte, error)

// Mixer owns the sound device and the two decks that feed it.
type Mixer struct {
	out        Output
	sampleRate beep.SampleRate
	fetch      Fetcher
	logger     zerolog.Logger

	openOnce sync.Once
	openErr  error

	decks [2]*Deck
	buf   [][2]float64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithFetcher replaces the default HTTP/file fetcher.
func WithFetcher(f Fetcher) Option {
	return func(m *Mixer) { m.fetch = f }
}

// WithSampleRate sets the device sample rate.
func WithSampleRate(sr beep.SampleRate) Option {
	return func(m *Mixer) { m.sampleRate = sr }
}

// NewMixer creates a mixer with decks A and B. The device is opened on the
// first Play.
func NewMixer(out Output, logger zerolog.Logger, opts ...Option) *Mixer {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Mixer{
		out:        out,
		sampleRate: DefaultSampleRate,
		fetch:      NewHTTPFetcher(nil),
		logger:     logger.With().Str("component", "audio").Logger(),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.decks[deck.A] = newDeck(deck.A, m)
	m.decks[deck.B] = newDeck(deck.B, m)

	m.wg.Add(1)
	go m.tick()
	return m
}

// Deck returns the deck with the given id.
func (m *Mixer) Deck(id deck.ID) *Deck { return m.decks[id] }

// Pair returns both decks as a deck pair with A active.
func (m *Mixer) Pair() *deck.Pair {
	return deck.NewPair(m.decks[deck.A], m.decks[deck.B])
}

// Close stops position reporting and pending fetches.
func (m *Mixer) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *Mixer) open() error {
	m.openOnce.Do(func() {
		if err := m.out.Init(m.sampleRate, m.sampleRate.N(time.Second/10)); err != nil {
			m.openErr = err
			return
		}
		m.out.Play(m)
	})
	return m.openErr
}

// Stream implements beep.Streamer by summing both decks. It never ends.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	clear(samples)
	if cap(m.buf) < len(samples) {
		m.buf = make([][2]float64, len(samples))
	}
	buf := m.buf[:len(samples)]
	for _, d := range m.decks {
		d.mixInto(samples, buf)
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (m *Mixer) Err() error { return nil }

func (m *Mixer) tick() {
	defer m.wg.Done()
	t := time.NewTicker(TickInterval)
	defer t.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			for _, d := range m.decks {
				d.reportTime()
			}
		}
	}
}

// NewHTTPFetcher returns a fetcher that downloads http(s) sources with
// client and reads anything else from the filesystem.
func NewHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return func(ctx context.Context, src string) ([]byte, error) {
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			return os.ReadFile(strings.TrimPrefix(src, "file://"))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
}
