package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedj/internal/scrobble"
)

func TestRecordPlay(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	err := c.RecordPlay(context.Background(), scrobble.Play{
		SongID:       "s1",
		Artist:       "Band",
		Title:        "Blue",
		Album:        "Colors",
		Genre:        "Rock",
		Duration:     245 * time.Second,
		PlayDuration: 130 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, map[string]any{
		"songId":       "s1",
		"artist":       "Band",
		"title":        "Blue",
		"album":        "Colors",
		"genre":        "Rock",
		"duration":     float64(245),
		"playDuration": float64(130),
	}, got)
}

func TestRecordPlay_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, "").RecordPlay(context.Background(), scrobble.Play{SongID: "s1"}))
}

func TestRecordPlay_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := New(srv.URL, "x").RecordPlay(context.Background(), scrobble.Play{SongID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad token")
}
