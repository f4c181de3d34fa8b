package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavedj/internal/app"
	"github.com/llehouerou/wavedj/internal/audio"
	"github.com/llehouerou/wavedj/internal/engine"
	"github.com/llehouerou/wavedj/internal/errmsg"
	"github.com/llehouerou/wavedj/internal/history"
	"github.com/llehouerou/wavedj/internal/icons"
	"github.com/llehouerou/wavedj/internal/lastfm"
	"github.com/llehouerou/wavedj/internal/mediasession"
	"github.com/llehouerou/wavedj/internal/metrics"
	"github.com/llehouerou/wavedj/internal/notify"
	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
	"github.com/llehouerou/wavedj/internal/state"
	"github.com/llehouerou/wavedj/internal/stderr"
	"github.com/llehouerou/wavedj/internal/subsonic"
)

var playFlags playSources

var playCmd = &cobra.Command{
	Use:   "play [song ids...]",
	Short: "Play songs, an album, a playlist or random songs",
	Long:  "Build the queue from the given sources (or restore the saved queue when none are given) and start the player.",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playFlags.Album, "album", "", "queue an album by id")
	playCmd.Flags().StringVar(&playFlags.Playlist, "playlist", "", "queue a playlist by id")
	playCmd.Flags().IntVar(&playFlags.Random, "random", 0, "queue n random songs")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if !cfg.HasServerConfig() {
		return errors.New("no server configured: set [server] url and username in config.toml")
	}
	icons.Init(cfg.UI.Icons)

	client, err := subsonic.New(subsonic.Config{
		URL:      cfg.Server.URL,
		Username: cfg.Server.Username,
		Password: cfg.Server.Password,
		Client:   cfg.Server.Client,
		Format:   cfg.Server.TranscodeFormat,
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpServerConnect, err))
	}

	stateMgr, err := state.Open()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer stateMgr.Close()
	stateMgr.OnSaveError(func(err error) {
		logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueSave, err))
	})

	store := queue.New()
	defaults := cfg.PlaybackDefaults()
	store.SetVolume(defaults.Volume)
	store.SetCrossfade(defaults.CrossfadeSeconds)
	store.SetShuffle(defaults.Shuffle)
	store.SetRepeat(defaults.Repeat)

	saved, err := stateMgr.GetQueue()
	if err != nil {
		logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueLoad, err))
	}

	resolveCtx, cancelResolve := context.WithTimeout(cmd.Context(), 30*time.Second)
	src := playFlags
	src.SongIDs = args
	err = loadQueue(resolveCtx, client, store, src, saved)
	cancelResolve()
	if err != nil {
		return err
	}

	capture, err := stderr.Start(logger)
	if err != nil {
		logger.Warn().Err(err).Msg("stderr capture unavailable")
	}
	defer capture.Stop()

	rec := metrics.New()
	stopMetrics := serveMetrics(cfg.Metrics.Listen, rec, logger)
	defer stopMetrics()

	timings := cfg.Timings()
	dispatcher := scrobble.NewDispatcher(logger, timings.DispatchTimeout, rec)
	dispatcher.Add("subsonic", client)
	if cfg.HasHistoryConfig() {
		dispatcher.Add("history", history.New(cfg.History.URL, cfg.History.Token))
	}
	lfmSink, lfmInfo := lastfmSink(stateMgr)
	if lfmSink != nil {
		dispatcher.Add("lastfm", lfmSink)
	}

	mixer := audio.NewMixer(audio.Speaker(), logger,
		audio.WithFetcher(audio.NewHTTPFetcher(&http.Client{Timeout: 2 * time.Minute})))
	defer mixer.Close()

	var session mediasession.Session
	if cfg.MPRIS.On(true) {
		mpris, err := mediasession.NewMPRIS(logger)
		if err != nil {
			logger.Warn().Err(err).Msg("media session unavailable")
		} else {
			defer mpris.Close()
			session = mpris
		}
	}

	var nowPlaying *notify.NowPlaying
	if cfg.Notify.On(true) {
		if n, err := notify.New(); err != nil {
			logger.Warn().Err(err).Msg("notifications unavailable")
		} else {
			nowPlaying = notify.NewNowPlaying(n, logger, notify.WithCoverArt(client.CoverArtURL))
			defer nowPlaying.Close()
		}
	}

	eng := engine.New(engine.Options{
		Decks:      mixer.Pair(),
		Store:      store,
		Session:    session,
		Dispatcher: dispatcher,
		Metrics:    rec,
		Timings:    timings,
		Logger:     logger,
		CoverArt:   client.CoverArtURL,
		OnTrackChange: func(t queue.Track) {
			if nowPlaying != nil {
				nowPlaying.Show(t)
			}
			if lfmSink != nil {
				lfmSink.NowPlaying(t)
			}
		},
	})
	store.OnChange(func(s queue.Snapshot) {
		eng.QueueChanged()
		stateMgr.SaveQueueDebounced(state.FromSnapshot(s))
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	model := app.New(eng, store).WithLastfm(lfmInfo)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	_, runErr := program.Run()

	cancel()
	if err := <-done; err != nil {
		logger.Warn().Err(err).Msg("engine stopped with error")
	}
	if err := stateMgr.SaveQueue(state.FromSnapshot(store.Snapshot())); err != nil {
		logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueSave, err))
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal: %w", runErr)
	}
	return nil
}

// lastfmSink returns the Last.fm sink when an account is linked.
func lastfmSink(stateMgr *state.Manager) (*lastfm.Sink, *app.LastfmInfo) {
	if !cfg.HasLastfmConfig() {
		return nil, nil
	}
	sess, err := stateMgr.GetLastfmSession()
	if err != nil {
		logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpLastfmSession, err))
		return nil, nil
	}
	if sess == nil {
		return nil, nil
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.SetSessionKey(sess.SessionKey)
	return lastfm.NewSink(client, logger), &app.LastfmInfo{Username: sess.Username, LinkedAt: sess.LinkedAt}
}

// serveMetrics exposes rec on listen until the returned stop is called.
// An empty listen disables the endpoint.
func serveMetrics(listen string, rec *metrics.Recorder, logger zerolog.Logger) func() {
	if listen == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Str("listen", listen).Msg("metrics endpoint stopped")
		}
	}()
	logger.Info().Str("listen", listen).Msg("metrics endpoint enabled")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
