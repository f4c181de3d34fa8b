package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedj/internal/engine"
	"github.com/llehouerou/wavedj/internal/queue"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/logs/wavedj.log", filepath.Join(home, "logs", "wavedj.log")},
		{"absolute path unchanged", "/var/log/wavedj.log", "/var/log/wavedj.log"},
		{"relative path unchanged", "wavedj.log", "wavedj.log"},
		{"empty string unchanged", "", ""},
		{"tilde only", "~", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "config.toml", paths[len(paths)-1])
}

func TestLoadFrom_Full(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.toml", `
[server]
url = "https://music.example.com/"
username = "alice"
password = "sesame"
transcode_format = "mp3"

[history]
url = "https://history.example.com/plays"
token = "tok"

[lastfm]
api_key = "key"
api_secret = "secret"

[playback]
volume = 0.6
crossfade_seconds = 3
shuffle = true
repeat = "all"

[playback.timings]
ready_timeout = "8s"
tick = "20ms"

[log]
level = "debug"
file = "/tmp/wavedj.log"

[metrics]
listen = "127.0.0.1:9464"

[mpris]
enabled = false

[ui]
icons = "nerd"
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "https://music.example.com", cfg.Server.URL)
	assert.True(t, cfg.HasServerConfig())
	assert.Equal(t, "mp3", cfg.Server.TranscodeFormat)
	assert.True(t, cfg.HasHistoryConfig())
	assert.True(t, cfg.HasLastfmConfig())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Listen)
	assert.False(t, cfg.MPRIS.On(true))
	assert.True(t, cfg.Notify.On(true))
	assert.Equal(t, "nerd", cfg.UI.Icons)

	assert.Equal(t, PlaybackDefaults{
		Volume:           0.6,
		CrossfadeSeconds: 3,
		Shuffle:          true,
		Repeat:           queue.RepeatAll,
	}, cfg.PlaybackDefaults())

	timings := cfg.Timings()
	assert.Equal(t, 8*time.Second, timings.ReadyTimeout)
	assert.Equal(t, 20*time.Millisecond, timings.Tick)
	assert.Equal(t, 5*time.Second, timings.ReadyFallback)
}

func TestLoadFrom_LastWins(t *testing.T) {
	dir := t.TempDir()
	global := writeConfig(t, dir, "global.toml", `
[server]
url = "https://global.example.com"
username = "alice"
`)
	local := writeConfig(t, dir, "local.toml", `
[server]
url = "https://local.example.com"
`)

	cfg, err := LoadFrom(global, filepath.Join(dir, "missing.toml"), local)
	require.NoError(t, err)
	assert.Equal(t, "https://local.example.com", cfg.Server.URL)
	assert.Equal(t, "alice", cfg.Server.Username)
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.toml", `[server`)
	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom()
	require.NoError(t, err)

	assert.False(t, cfg.HasServerConfig())
	assert.False(t, cfg.HasHistoryConfig())
	assert.False(t, cfg.HasLastfmConfig())
	assert.Equal(t, PlaybackDefaults{Volume: 1, CrossfadeSeconds: 5, Repeat: queue.RepeatOff}, cfg.PlaybackDefaults())
	assert.Equal(t, engine.DefaultTimings(), cfg.Timings())
}

func TestPlaybackDefaults_ZeroAndOutOfRange(t *testing.T) {
	zero, loud := 0.0, 1.5
	cfg := &Config{Playback: PlaybackConfig{Volume: &loud, CrossfadeSeconds: &zero}}

	d := cfg.PlaybackDefaults()
	assert.InDelta(t, 1.0, d.Volume, 1e-9, "out of range volume ignored")
	assert.Zero(t, d.CrossfadeSeconds, "explicit zero disables crossfade")
}
