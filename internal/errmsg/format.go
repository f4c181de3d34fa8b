// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

const (
	// Server operations
	OpServerConnect Op = "connect to server"
	OpResolveSong   Op = "resolve song"
	OpResolveAlbum  Op = "load album"
	OpResolveList   Op = "load playlist"
	OpRandomSongs   Op = "load random songs"

	// Queue operations
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpTrackLoad     Op = "load track"

	// Last.fm
	OpLastfmAuth    Op = "link Last.fm account"
	OpLastfmSession Op = "load Last.fm session"

	// Initialization
	OpInitialize Op = "initialize player"
	OpAudioInit  Op = "open audio device"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
