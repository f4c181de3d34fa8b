package deck

import (
	"sync"
	"time"
)

// Mock is a test double for Deck. It never buffers on its own: tests drive
// readiness, time and end-of-track with the Simulate helpers.
type Mock struct {
	mu sync.Mutex

	id       ID
	source   string
	volume   float64
	position time.Duration
	duration time.Duration
	playing  bool
	ready    bool

	pendingPlay bool
	playErr     error
	listener    func(Event)

	loads     []string
	playCalls int
	volumes   []float64
}

// NewMock creates a mock deck at full volume with nothing loaded.
func NewMock(id ID) *Mock {
	return &Mock{id: id, volume: 1}
}

func (m *Mock) ID() ID { return m.id }

func (m *Mock) Load(src string) {
	m.mu.Lock()
	m.loads = append(m.loads, src)
	m.source = src
	m.position = 0
	m.duration = 0
	m.playing = false
	m.pendingPlay = false
	m.ready = src == NeutralSource
	m.mu.Unlock()
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

func (m *Mock) Play() error {
	m.mu.Lock()
	m.playCalls++
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	if m.source == "" {
		m.mu.Unlock()
		return ErrNoSource
	}
	if !m.ready {
		m.pendingPlay = true
		m.mu.Unlock()
		return nil
	}
	wasPlaying := m.playing
	m.playing = true
	m.mu.Unlock()

	if !wasPlaying {
		m.emit(EventPlaying)
	}
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.pendingPlay = false
	wasPlaying := m.playing
	m.playing = false
	m.mu.Unlock()

	if wasPlaying {
		m.emit(EventPause)
	}
}

func (m *Mock) Seek(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
	m.emit(EventTimeUpdate)
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
	m.volumes = append(m.volumes, v)
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *Mock) SetListener(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = fn
}

func (m *Mock) emit(kind EventKind) {
	m.emitErr(kind, nil)
}

func (m *Mock) emitErr(kind EventKind, err error) {
	m.mu.Lock()
	fn := m.listener
	ev := Event{Deck: m.id, Kind: kind, Source: m.source, Err: err}
	m.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Test helpers

// SetPlayError makes subsequent Play calls fail with err (nil clears it).
func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// SimulateReady marks the source buffered with the given duration, emits
// loaded and ready, and starts a deferred Play.
func (m *Mock) SimulateReady(duration time.Duration) {
	m.mu.Lock()
	m.ready = true
	m.duration = duration
	start := m.pendingPlay
	m.pendingPlay = false
	if start {
		m.playing = true
	}
	m.mu.Unlock()

	m.emit(EventLoaded)
	m.emit(EventReady)
	if start {
		m.emit(EventPlaying)
	}
}

// MarkReady marks the source buffered without emitting any event, as a
// platform that fails to fire its ready signal would.
func (m *Mock) MarkReady(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = true
	m.duration = duration
}

// SimulateReadyAgain re-fires the ready event without changing state.
func (m *Mock) SimulateReadyAgain() {
	m.emit(EventReady)
}

// SimulateTime moves the playback clock and emits a time update.
func (m *Mock) SimulateTime(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
	m.emit(EventTimeUpdate)
}

// SimulateEnded moves the clock to the end and emits ended.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	m.position = m.duration
	m.playing = false
	m.mu.Unlock()
	m.emit(EventEnded)
}

// SimulateStall stops the deck without a pause event, as a starved
// buffer or an OS suspension would.
func (m *Mock) SimulateStall() {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	m.emit(EventStalled)
}

// SimulateError emits an error event.
func (m *Mock) SimulateError(err error) {
	m.emitErr(EventError, err)
}

// SetHardware overwrites the observed state without emitting events, the
// way a suspended tab finds its audio elements on resume.
func (m *Mock) SetHardware(pos time.Duration, playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
	m.playing = playing
}

// Loads returns every source passed to Load.
func (m *Mock) Loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loads...)
}

// PlayCalls returns how many times Play was called.
func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

// Volumes returns every value passed to SetVolume.
func (m *Mock) Volumes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumes...)
}

// Verify Mock implements Deck at compile time.
var _ Deck = (*Mock)(nil)
