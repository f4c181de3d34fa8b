//go:build !linux

package mediasession

import "github.com/rs/zerolog"

// MPRIS is a no-op on non-Linux platforms.
type MPRIS struct {
	Nop
}

// NewMPRIS returns a no-op session on non-Linux platforms.
func NewMPRIS(_ zerolog.Logger) (*MPRIS, error) {
	return &MPRIS{}, nil
}

// Close is a no-op on non-Linux platforms.
func (m *MPRIS) Close() error {
	return nil
}
