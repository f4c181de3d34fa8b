package audio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedFormat is returned when a source is not a known audio format.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// memFile serves an in-memory track to decoders that need a seekable,
// closable reader.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(data []byte) memFile {
	return memFile{Reader: bytes.NewReader(data)}
}

// decode sniffs the container from the first bytes and decodes the whole
// track.
func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	body := data[id3v2Size(data):]

	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch {
	case bytes.HasPrefix(body, []byte("fLaC")):
		// Some taggers prepend ID3v2 to FLAC files; the decoder does not
		// expect it.
		s, format, err = flac.Decode(newMemFile(body))
	case bytes.HasPrefix(body, []byte("OggS")):
		s, format, err = vorbis.Decode(newMemFile(body))
	case bytes.HasPrefix(body, []byte("RIFF")):
		s, format, err = wav.Decode(newMemFile(body))
	case len(data) != len(body) || isMP3Frame(body):
		s, format, err = decodeMP3(newMemFile(data))
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode: %w", err)
	}
	return s, format, nil
}

// id3v2Size returns the length of a leading ID3v2 tag, or 0.
func id3v2Size(data []byte) int {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return 0
	}
	// Syncsafe integer: 7 bits per byte.
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	if 10+size > len(data) {
		return len(data)
	}
	return 10 + size
}

func isMP3Frame(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}
