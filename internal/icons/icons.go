// Package icons selects the glyphs the player bar draws.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for one style.
type Icons struct {
	Play      string
	Pause     string
	Loading   string
	Shuffle   string
	RepeatAll string
	Volume    string
	Crossfade string
}

var (
	nerdIcons = Icons{
		Play:      "󰐊", // nf-md-play
		Pause:     "󰏤", // nf-md-pause
		Loading:   "󰔟", // nf-md-timer_sand
		Shuffle:   "󰒟", // nf-md-shuffle
		RepeatAll: "󰑖", // nf-md-repeat
		Volume:    "󰕾", // nf-md-volume_high
		Crossfade: "󰓃", // nf-md-swap_horizontal
	}

	unicodeIcons = Icons{
		Play:      "▶",
		Pause:     "⏸",
		Loading:   "⏳",
		Shuffle:   "🔀",
		RepeatAll: "🔁",
		Volume:    "🔊",
		Crossfade: "⇄",
	}

	noneIcons = Icons{
		Play:      ">",
		Pause:     "||",
		Loading:   "..",
		Shuffle:   "[S]",
		RepeatAll: "[R]",
		Volume:    "vol",
		Crossfade: "xf",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init selects the icon set. Call it once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = noneIcons
	}
}

// Current returns the active icon set.
func Current() Icons {
	return current
}

// Status returns the transport glyph.
func Status(playing, loading bool) string {
	switch {
	case loading:
		return current.Loading
	case playing:
		return current.Play
	default:
		return current.Pause
	}
}
