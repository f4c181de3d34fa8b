package scrobble

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Observer is notified of every dispatch outcome.
type Observer interface {
	PlayDispatched(sink string, err error)
}

type namedSink struct {
	name string
	sink Sink
}

// Dispatcher sends plays to every sink in the background. Failures are
// logged and never retried.
type Dispatcher struct {
	sinks    []namedSink
	timeout  time.Duration
	logger   zerolog.Logger
	observer Observer
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose sends are bounded by timeout.
func NewDispatcher(logger zerolog.Logger, timeout time.Duration, observer Observer) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		timeout:  timeout,
		logger:   logger.With().Str("component", "scrobble").Logger(),
		observer: observer,
	}
}

// Add registers a sink under name. Nil sinks are ignored.
func (d *Dispatcher) Add(name string, s Sink) {
	if s == nil {
		return
	}
	d.sinks = append(d.sinks, namedSink{name: name, sink: s})
}

// Len returns the number of registered sinks.
func (d *Dispatcher) Len() int { return len(d.sinks) }

// Dispatch sends p to every sink without blocking the caller.
func (d *Dispatcher) Dispatch(p Play) {
	for _, ns := range d.sinks {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			err := ns.sink.RecordPlay(ctx, p)
			if err != nil {
				d.logger.Warn().Err(err).
					Str("sink", ns.name).
					Str("song", p.SongID).
					Msg("play dispatch failed")
			} else {
				d.logger.Debug().
					Str("sink", ns.name).
					Str("song", p.SongID).
					Dur("played", p.PlayDuration).
					Msg("play dispatched")
			}
			if d.observer != nil {
				d.observer.PlayDispatched(ns.name, err)
			}
		}()
	}
}

// Wait blocks until in-flight dispatches finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
