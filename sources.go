package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/llehouerou/wavedj/internal/errmsg"
	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/state"
	"github.com/llehouerou/wavedj/internal/subsonic"
)

// errNothingToPlay is returned when no source was given and no queue was saved.
var errNothingToPlay = errors.New("nothing to play: pass song ids, --album, --playlist or --random")

// library is the part of the server client that builds queues.
type library interface {
	Resolve(ctx context.Context, id string) (queue.Track, error)
	GetAlbum(ctx context.Context, id string) (subsonic.Album, error)
	GetPlaylist(ctx context.Context, id string) (subsonic.Playlist, error)
	GetRandomSongs(ctx context.Context, n int) ([]subsonic.Song, error)
	Tracks(songs []subsonic.Song) []queue.Track
	StreamURL(id string) string
}

// playSources is what the play command was asked to queue.
type playSources struct {
	SongIDs  []string
	Album    string
	Playlist string
	Random   int
}

func (s playSources) empty() bool {
	return len(s.SongIDs) == 0 && s.Album == "" && s.Playlist == "" && s.Random <= 0
}

// resolveSources fetches every requested source in order: album, playlist,
// songs, then random songs.
func resolveSources(ctx context.Context, lib library, src playSources) ([]queue.Track, error) {
	var tracks []queue.Track

	if src.Album != "" {
		a, err := lib.GetAlbum(ctx, src.Album)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", errmsg.OpResolveAlbum, src.Album, err)
		}
		tracks = append(tracks, lib.Tracks(a.Songs)...)
	}
	if src.Playlist != "" {
		p, err := lib.GetPlaylist(ctx, src.Playlist)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", errmsg.OpResolveList, src.Playlist, err)
		}
		tracks = append(tracks, lib.Tracks(p.Entries)...)
	}
	for _, id := range src.SongIDs {
		t, err := lib.Resolve(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", errmsg.OpResolveSong, id, err)
		}
		tracks = append(tracks, t)
	}
	if src.Random > 0 {
		songs, err := lib.GetRandomSongs(ctx, src.Random)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errmsg.OpRandomSongs, err)
		}
		tracks = append(tracks, lib.Tracks(songs)...)
	}
	return tracks, nil
}

// restoreTracks rebuilds the stream URLs of a saved queue.
func restoreTracks(lib library, saved *state.QueueState) ([]queue.Track, int) {
	if saved == nil || len(saved.Tracks) == 0 {
		return nil, -1
	}
	tracks := make([]queue.Track, len(saved.Tracks))
	for i, t := range saved.Tracks {
		t.URL = lib.StreamURL(t.ID)
		tracks[i] = t
	}
	idx := saved.CurrentIndex
	if idx < 0 || idx >= len(tracks) {
		idx = 0
	}
	return tracks, idx
}

// loadQueue fills store from src, or from the saved queue when src is empty.
// Saved playback settings win over defaults only on restore.
func loadQueue(ctx context.Context, lib library, store *queue.Store, src playSources, saved *state.QueueState) error {
	if src.empty() {
		tracks, idx := restoreTracks(lib, saved)
		if len(tracks) == 0 {
			return errNothingToPlay
		}
		store.SetVolume(saved.Volume)
		store.SetCrossfade(saved.CrossfadeSeconds)
		store.SetShuffle(saved.Shuffle)
		store.SetRepeat(saved.Repeat)
		store.Replace(tracks, idx)
		return nil
	}

	tracks, err := resolveSources(ctx, lib, src)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errNothingToPlay
	}
	store.Replace(tracks, 0)
	return nil
}
