package subsonic

import "fmt"

// Error is a failed response envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("subsonic error %d: %s", e.Code, e.Message)
}

// Song is a child entry as returned by the server.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	AlbumID  string `json:"albumId"`
	Genre    string `json:"genre"`
	Duration int    `json:"duration"` // seconds
	CoverArt string `json:"coverArt"`
	Track    int    `json:"track"`
	Suffix   string `json:"suffix"`
}

// Album is an album with its songs.
type Album struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Songs  []Song `json:"song"`
}

// Playlist is a playlist with its entries.
type Playlist struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Entries []Song `json:"entry"`
}

type envelope struct {
	Response response `json:"subsonic-response"`
}

type response struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Error       *Error    `json:"error,omitempty"`
	Song        *Song     `json:"song,omitempty"`
	Album       *Album    `json:"album,omitempty"`
	Playlist    *Playlist `json:"playlist,omitempty"`
	RandomSongs *struct {
		Songs []Song `json:"song"`
	} `json:"randomSongs,omitempty"`
}
