// Package keymap defines key bindings and action dispatch for the player shell.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Transport actions
	ActionPlayPause   Action = "play_pause"
	ActionNextTrack   Action = "next_track"
	ActionPrevTrack   Action = "prev_track"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"

	// Settings actions
	ActionVolumeUp       Action = "volume_up"
	ActionVolumeDown     Action = "volume_down"
	ActionCycleCrossfade Action = "cycle_crossfade"
	ActionToggleShuffle  Action = "toggle_shuffle"
	ActionCycleRepeat    Action = "cycle_repeat"
)
