// Package notify announces track changes as desktop notifications.
package notify

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedj/internal/queue"
)

const appName = "wavedj"

// categoryMusic is the freedesktop category shells group music players by.
const categoryMusic = "x-gnome.music"

// Urgency represents freedesktop notification priority levels.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Icon name or path (optional)
	ImageURL   string  // Cover image, sent as the image-path hint (optional)
	Category   string  // Freedesktop category hint (optional)
	Transient  bool    // Skip the notification history
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// Nop is the Notifier used when no notification server is reachable.
type Nop struct{}

func (Nop) Notify(Notification) (uint32, error) { return 0, nil }
func (Nop) Close(uint32) error                  { return nil }

// Option configures a NowPlaying.
type Option func(*NowPlaying)

// WithCoverArt sets the cover URL builder for album or track ids.
func WithCoverArt(fn func(id string, size int) string) Option {
	return func(p *NowPlaying) { p.coverArt = fn }
}

// coverSize is the requested cover edge in pixels.
const coverSize = 256

// NowPlaying shows one notification per track change, replacing the
// previous one. Notifications are sent by a single worker; when tracks
// change faster than the bus answers only the newest one is shown.
type NowPlaying struct {
	notifier Notifier
	logger   zerolog.Logger
	coverArt func(id string, size int) string

	tracks    chan queue.Track
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// lastID is owned by the worker.
	lastID uint32
}

// NewNowPlaying wraps n and starts its worker. Call Close to stop it.
func NewNowPlaying(n Notifier, logger zerolog.Logger, opts ...Option) *NowPlaying {
	p := &NowPlaying{
		notifier: n,
		logger:   logger.With().Str("component", "notify").Logger(),
		tracks:   make(chan queue.Track, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Show queues t for announcement. It never blocks; a track still waiting
// for the worker is replaced by t.
func (p *NowPlaying) Show(t queue.Track) {
	for {
		select {
		case p.tracks <- t:
			return
		default:
		}
		select {
		case <-p.tracks:
		default:
		}
	}
}

// Close stops the worker and dismisses the last notification.
func (p *NowPlaying) Close() {
	p.closeOnce.Do(func() { close(p.quit) })
	<-p.done
}

func (p *NowPlaying) run() {
	defer close(p.done)
	for {
		select {
		case t := <-p.tracks:
			p.show(t)
		case <-p.quit:
			if p.lastID != 0 {
				_ = p.notifier.Close(p.lastID)
				p.lastID = 0
			}
			return
		}
	}
}

func (p *NowPlaying) show(t queue.Track) {
	id, err := p.notifier.Notify(p.notification(t))
	if err != nil {
		p.logger.Warn().Err(err).Str("song", t.ID).Msg("notification failed")
		return
	}
	p.lastID = id
}

func (p *NowPlaying) notification(t queue.Track) Notification {
	n := Notification{
		Title:      t.Title,
		Body:       trackBody(t),
		Icon:       "audio-x-generic",
		Category:   categoryMusic,
		Transient:  true,
		Timeout:    5000,
		ReplacesID: p.lastID,
		Urgency:    UrgencyLow,
	}
	if p.coverArt != nil {
		art := t.AlbumID
		if art == "" {
			art = t.ID
		}
		n.ImageURL = p.coverArt(art, coverSize)
	}
	return n
}

func trackBody(t queue.Track) string {
	parts := make([]string, 0, 2)
	if t.Artist != "" {
		parts = append(parts, t.Artist)
	}
	if t.Album != "" {
		parts = append(parts, t.Album)
	}
	return strings.Join(parts, " - ")
}
