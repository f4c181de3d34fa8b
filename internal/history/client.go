// Package history sends completed plays to a listening-history service.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/llehouerou/wavedj/internal/scrobble"
)

// Client posts plays to one endpoint.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// New creates a client for url. token, when set, is sent as a bearer token.
func New(url, token string) *Client {
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type record struct {
	SongID       string `json:"songId"`
	Artist       string `json:"artist"`
	Title        string `json:"title"`
	Album        string `json:"album"`
	Genre        string `json:"genre"`
	Duration     int    `json:"duration"`
	PlayDuration int    `json:"playDuration"`
}

// RecordPlay implements scrobble.Sink.
func (c *Client) RecordPlay(ctx context.Context, p scrobble.Play) error {
	body, err := json.Marshal(record{
		SongID:       p.SongID,
		Artist:       p.Artist,
		Title:        p.Title,
		Album:        p.Album,
		Genre:        p.Genre,
		Duration:     int(p.Duration.Seconds()),
		PlayDuration: int(p.PlayDuration.Seconds()),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("history returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

var _ scrobble.Sink = (*Client)(nil)
