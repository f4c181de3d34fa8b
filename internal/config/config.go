package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/wavedj/internal/engine"
	"github.com/llehouerou/wavedj/internal/queue"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	History  HistoryConfig  `koanf:"history"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
	Playback PlaybackConfig `koanf:"playback"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	MPRIS    ToggleConfig   `koanf:"mpris"`
	Notify   ToggleConfig   `koanf:"notify"`
	UI       UIConfig       `koanf:"ui"`
}

// ServerConfig is the streaming server connection.
type ServerConfig struct {
	URL             string `koanf:"url"`
	Username        string `koanf:"username"`
	Password        string `koanf:"password"`
	Client          string `koanf:"client"`
	TranscodeFormat string `koanf:"transcode_format"` // e.g. "mp3"; empty streams originals
}

// HistoryConfig enables the listening-history sink when URL is set.
type HistoryConfig struct {
	URL   string `koanf:"url"`
	Token string `koanf:"token"`
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// PlaybackConfig holds the initial playback settings. Pointers tell unset
// from zero.
type PlaybackConfig struct {
	Volume           *float64      `koanf:"volume"`            // 0..1 (default: 1)
	CrossfadeSeconds *float64      `koanf:"crossfade_seconds"` // 0 disables (default: 5)
	Shuffle          bool          `koanf:"shuffle"`
	Repeat           string        `koanf:"repeat"` // "off" or "all"
	Timings          TimingsConfig `koanf:"timings"`
}

// TimingsConfig overrides the engine timings. Zero keeps the default.
type TimingsConfig struct {
	ReadyFallback   time.Duration `koanf:"ready_fallback"`
	ReadyTimeout    time.Duration `koanf:"ready_timeout"`
	SafetyMargin    time.Duration `koanf:"safety_margin"`
	Tick            time.Duration `koanf:"tick"`
	PrimeDelay      time.Duration `koanf:"prime_delay"`
	Debounce        time.Duration `koanf:"debounce"`
	Cooldown        time.Duration `koanf:"cooldown"`
	GlitchWindow    time.Duration `koanf:"glitch_window"`
	DispatchTimeout time.Duration `koanf:"dispatch_timeout"`
	MinRemaining    time.Duration `koanf:"min_remaining"`
}

// LogConfig selects the log level and file.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g. "127.0.0.1:9464"
}

// UIConfig holds terminal shell settings.
type UIConfig struct {
	Icons string `koanf:"icons"` // "nerd", "unicode" or "none" (default)
}

// ToggleConfig is an on/off integration switch.
type ToggleConfig struct {
	Enabled *bool `koanf:"enabled"`
}

// PlaybackDefaults are the resolved initial settings.
type PlaybackDefaults struct {
	Volume           float64
	CrossfadeSeconds float64
	Shuffle          bool
	Repeat           queue.RepeatMode
}

// Load reads the default search path.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files in order (last wins). Missing files are
// skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Server.URL = strings.TrimSuffix(cfg.Server.URL, "/")
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavedj/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wavedj", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasServerConfig returns true if the streaming server is configured.
func (c *Config) HasServerConfig() bool {
	return c.Server.URL != "" && c.Server.Username != ""
}

// HasHistoryConfig returns true if the history sink is configured.
func (c *Config) HasHistoryConfig() bool {
	return c.History.URL != ""
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// On reports whether the switch is enabled, defaulting to def.
func (t ToggleConfig) On(def bool) bool {
	if t.Enabled == nil {
		return def
	}
	return *t.Enabled
}

// PlaybackDefaults returns the playback settings with defaults applied.
func (c *Config) PlaybackDefaults() PlaybackDefaults {
	d := PlaybackDefaults{
		Volume:           1,
		CrossfadeSeconds: 5,
		Shuffle:          c.Playback.Shuffle,
		Repeat:           queue.ParseRepeatMode(c.Playback.Repeat),
	}
	if v := c.Playback.Volume; v != nil && *v >= 0 && *v <= 1 {
		d.Volume = *v
	}
	if s := c.Playback.CrossfadeSeconds; s != nil && *s >= 0 {
		d.CrossfadeSeconds = *s
	}
	return d
}

// Timings returns the engine timings with unset values defaulted.
func (c *Config) Timings() engine.Timings {
	t := c.Playback.Timings
	d := engine.DefaultTimings()
	pick := func(v, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return v
	}
	return engine.Timings{
		ReadyFallback:   pick(t.ReadyFallback, d.ReadyFallback),
		ReadyTimeout:    pick(t.ReadyTimeout, d.ReadyTimeout),
		SafetyMargin:    pick(t.SafetyMargin, d.SafetyMargin),
		Tick:            pick(t.Tick, d.Tick),
		PrimeDelay:      pick(t.PrimeDelay, d.PrimeDelay),
		Debounce:        pick(t.Debounce, d.Debounce),
		Cooldown:        pick(t.Cooldown, d.Cooldown),
		GlitchWindow:    pick(t.GlitchWindow, d.GlitchWindow),
		DispatchTimeout: pick(t.DispatchTimeout, d.DispatchTimeout),
		MinRemaining:    pick(t.MinRemaining, d.MinRemaining),
	}
}
