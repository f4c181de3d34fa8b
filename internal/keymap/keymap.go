package keymap

// Binding ties keys to an action. Description and Context feed the help line.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "settings"
}

// All contains every key binding of the shell.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionNextTrack, []string{"n", "pgdown"}, "Next track", "playback"},
	{ActionPrevTrack, []string{"p", "pgup"}, "Previous track", "playback"},
	{ActionSeekForward, []string{"right"}, "Seek +10s", "playback"},
	{ActionSeekBack, []string{"left"}, "Seek -10s", "playback"},

	// Settings
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "settings"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "settings"},
	{ActionCycleCrossfade, []string{"x"}, "Cycle crossfade length", "settings"},
	{ActionToggleShuffle, []string{"s"}, "Toggle shuffle", "settings"},
	{ActionCycleRepeat, []string{"r"}, "Cycle repeat mode", "settings"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
