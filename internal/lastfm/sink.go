package lastfm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
)

// Sink reports plays through a client. Without a linked session it
// accepts plays and drops them.
type Sink struct {
	client *Client
	logger zerolog.Logger
}

// NewSink creates a sink. client may be nil when Last.fm is not configured.
func NewSink(client *Client, logger zerolog.Logger) *Sink {
	return &Sink{
		client: client,
		logger: logger.With().Str("component", "lastfm").Logger(),
	}
}

func (s *Sink) enabled() bool {
	return s.client != nil && s.client.IsAuthenticated()
}

// RecordPlay implements scrobble.Sink. The API has no cancellation, so a
// call outliving ctx is left to finish in the background.
func (s *Sink) RecordPlay(ctx context.Context, p scrobble.Play) error {
	if !s.enabled() {
		return nil
	}
	if p.Artist == "" || p.Title == "" {
		s.logger.Debug().Str("song", p.SongID).Msg("skipping play without artist or title")
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- s.client.Scrobble(FromPlay(p)) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NowPlaying announces t in the background. Failures are logged.
func (s *Sink) NowPlaying(t queue.Track) {
	if !s.enabled() || t.Artist == "" || t.Title == "" {
		return
	}
	track := FromTrack(t, time.Now())
	go func() {
		if err := s.client.UpdateNowPlaying(track); err != nil {
			s.logger.Warn().Err(err).Str("song", t.ID).Msg("now playing update failed")
		}
	}()
}

var _ scrobble.Sink = (*Sink)(nil)
