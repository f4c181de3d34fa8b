// Package subsonic is a client for Subsonic-compatible streaming servers.
package subsonic

import (
	"context"
	"crypto/md5" //nolint:gosec // mandated by the Subsonic token scheme
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
)

const (
	apiVersion     = "1.16.1"
	defaultClient  = "wavedj"
	requestTimeout = 15 * time.Second
)

// ErrNotFound is returned when the server has no entity for the id.
var ErrNotFound = errors.New("not found")

// Config holds the connection settings.
type Config struct {
	URL      string
	Username string
	Password string
	// Client is the client name reported to the server.
	Client string
	// Format asks the server to transcode streams (e.g. "mp3"); empty
	// streams the original file.
	Format string
}

// Client talks to one server.
type Client struct {
	base       *url.URL
	cfg        Config
	httpClient *http.Client
}

// New creates a client. The URL must be absolute.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q is not absolute", cfg.URL)
	}
	if cfg.Client == "" {
		cfg.Client = defaultClient
	}
	return &Client{
		base:       base,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// params returns fresh authentication parameters.
func (c *Client) params() url.Values {
	salt := newSalt()
	sum := md5.Sum([]byte(c.cfg.Password + salt)) //nolint:gosec // see import
	v := url.Values{}
	v.Set("u", c.cfg.Username)
	v.Set("t", hex.EncodeToString(sum[:]))
	v.Set("s", salt)
	v.Set("v", apiVersion)
	v.Set("c", c.cfg.Client)
	v.Set("f", "json")
	return v
}

func newSalt() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (c *Client) endpoint(method string, v url.Values) string {
	u := *c.base
	u.Path = u.Path + "/rest/" + method
	u.RawQuery = v.Encode()
	return u.String()
}

// call runs method and decodes the envelope. Extra parameters are merged
// into the query, or sent as a form body when post is set.
func (c *Client) call(ctx context.Context, method string, extra url.Values, post bool) (*response, error) {
	v := c.params()
	for k, vals := range extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	var req *http.Request
	var err error
	if post {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method, nil), strings.NewReader(v.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(method, v), http.NoBody)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", method, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	r := &env.Response
	if r.Status != "ok" {
		if r.Error == nil {
			return nil, fmt.Errorf("%s: status %q", method, r.Status)
		}
		if r.Error.Code == 70 {
			return nil, fmt.Errorf("%s: %w: %w", method, ErrNotFound, r.Error)
		}
		return nil, fmt.Errorf("%s: %w", method, r.Error)
	}
	return r, nil
}

func idParam(id string) url.Values {
	return url.Values{"id": {id}}
}

// Ping checks connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "ping", nil, false)
	return err
}

// GetSong fetches one song.
func (c *Client) GetSong(ctx context.Context, id string) (Song, error) {
	r, err := c.call(ctx, "getSong", idParam(id), false)
	if err != nil {
		return Song{}, err
	}
	if r.Song == nil {
		return Song{}, fmt.Errorf("getSong %s: %w", id, ErrNotFound)
	}
	return *r.Song, nil
}

// GetAlbum fetches an album with its songs.
func (c *Client) GetAlbum(ctx context.Context, id string) (Album, error) {
	r, err := c.call(ctx, "getAlbum", idParam(id), false)
	if err != nil {
		return Album{}, err
	}
	if r.Album == nil {
		return Album{}, fmt.Errorf("getAlbum %s: %w", id, ErrNotFound)
	}
	return *r.Album, nil
}

// GetPlaylist fetches a playlist with its entries.
func (c *Client) GetPlaylist(ctx context.Context, id string) (Playlist, error) {
	r, err := c.call(ctx, "getPlaylist", idParam(id), false)
	if err != nil {
		return Playlist{}, err
	}
	if r.Playlist == nil {
		return Playlist{}, fmt.Errorf("getPlaylist %s: %w", id, ErrNotFound)
	}
	return *r.Playlist, nil
}

// GetRandomSongs returns up to n random songs.
func (c *Client) GetRandomSongs(ctx context.Context, n int) ([]Song, error) {
	r, err := c.call(ctx, "getRandomSongs", url.Values{"size": {strconv.Itoa(n)}}, false)
	if err != nil {
		return nil, err
	}
	if r.RandomSongs == nil {
		return nil, nil
	}
	return r.RandomSongs.Songs, nil
}

// StreamURL returns the authenticated stream URL of a song.
func (c *Client) StreamURL(id string) string {
	v := c.params()
	v.Set("id", id)
	if c.cfg.Format != "" {
		v.Set("format", c.cfg.Format)
	}
	return c.endpoint("stream", v)
}

// CoverArtURL returns the authenticated artwork URL of an album or song.
func (c *Client) CoverArtURL(id string, size int) string {
	v := c.params()
	v.Set("id", id)
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
	return c.endpoint("getCoverArt", v)
}

// Resolve fetches a song and converts it to a queue track.
func (c *Client) Resolve(ctx context.Context, id string) (queue.Track, error) {
	s, err := c.GetSong(ctx, id)
	if err != nil {
		return queue.Track{}, err
	}
	return c.Track(s), nil
}

// Track converts a song to a queue track with a stream URL.
func (c *Client) Track(s Song) queue.Track {
	albumID := s.AlbumID
	if albumID == "" {
		albumID = s.CoverArt
	}
	return queue.Track{
		ID:       s.ID,
		URL:      c.StreamURL(s.ID),
		Title:    s.Title,
		Artist:   s.Artist,
		Album:    s.Album,
		AlbumID:  albumID,
		Genre:    s.Genre,
		Duration: time.Duration(s.Duration) * time.Second,
	}
}

// Tracks converts songs to queue tracks.
func (c *Client) Tracks(songs []Song) []queue.Track {
	tracks := make([]queue.Track, 0, len(songs))
	for _, s := range songs {
		tracks = append(tracks, c.Track(s))
	}
	return tracks
}

// Scrobble submits a completed play of song id.
func (c *Client) Scrobble(ctx context.Context, id string, at time.Time) error {
	v := url.Values{
		"id":         {id},
		"submission": {"true"},
	}
	if !at.IsZero() {
		v.Set("time", strconv.FormatInt(at.UnixMilli(), 10))
	}
	_, err := c.call(ctx, "scrobble", v, true)
	return err
}

// RecordPlay implements scrobble.Sink.
func (c *Client) RecordPlay(ctx context.Context, p scrobble.Play) error {
	return c.Scrobble(ctx, p.SongID, p.StartedAt)
}

var _ scrobble.Sink = (*Client)(nil)
