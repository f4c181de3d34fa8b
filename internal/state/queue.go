package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/wavedj/internal/queue"
)

// QueueState is the saved queue and playback settings. Track URLs are not
// stored; they carry credentials and are rebuilt from the ids.
type QueueState struct {
	CurrentIndex     int
	Tracks           []queue.Track
	Volume           float64
	CrossfadeSeconds float64
	Shuffle          bool
	Repeat           queue.RepeatMode
}

// FromSnapshot captures the persistent part of a store snapshot.
func FromSnapshot(s queue.Snapshot) QueueState {
	return QueueState{
		CurrentIndex:     s.Index,
		Tracks:           s.Tracks,
		Volume:           s.Volume,
		CrossfadeSeconds: s.CrossfadeSeconds,
		Shuffle:          s.Shuffle,
		Repeat:           s.Repeat,
	}
}

// GetQueue returns the saved state, or nil when nothing was saved.
func (m *Manager) GetQueue() (*QueueState, error) {
	s := QueueState{}
	var repeat int
	row := m.db.QueryRow(`
		SELECT current_index, volume, crossfade_seconds, shuffle, repeat_mode
		FROM queue_state WHERE id = 1
	`)
	err := row.Scan(&s.CurrentIndex, &s.Volume, &s.CrossfadeSeconds, &s.Shuffle, &repeat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nothing saved yet is not an error
	}
	if err != nil {
		return nil, err
	}
	s.Repeat = queue.RepeatMode(repeat)

	rows, err := m.db.Query(`
		SELECT song_id, title, artist, album, album_id, genre, duration_ms
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t queue.Track
		var artist, album, albumID, genre sql.NullString
		var durationMs int64
		if err := rows.Scan(&t.ID, &t.Title, &artist, &album, &albumID, &genre, &durationMs); err != nil {
			return nil, err
		}
		t.Artist = artist.String
		t.Album = album.String
		t.AlbumID = albumID.String
		t.Genre = genre.String
		t.Duration = time.Duration(durationMs) * time.Millisecond
		s.Tracks = append(s.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}

// SaveQueue replaces the saved state.
func (m *Manager) SaveQueue(s QueueState) error {
	return withTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index, volume, crossfade_seconds, shuffle, repeat_mode)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				volume = excluded.volume,
				crossfade_seconds = excluded.crossfade_seconds,
				shuffle = excluded.shuffle,
				repeat_mode = excluded.repeat_mode
		`, s.CurrentIndex, s.Volume, s.CrossfadeSeconds, s.Shuffle, int(s.Repeat))
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks (position, song_id, title, artist, album, album_id, genre, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range s.Tracks {
			_, err = stmt.Exec(i, t.ID, t.Title, t.Artist, t.Album, t.AlbumID, t.Genre, t.Duration.Milliseconds())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
