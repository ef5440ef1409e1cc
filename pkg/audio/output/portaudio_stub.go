//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
)

// ErrPortAudioDisabled is returned when the binary was built without PortAudio
var ErrPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output driver (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio driver
func NewPortAudio() Driver {
	return &PortAudio{}
}

// Name returns the driver name
func (p *PortAudio) Name() string { return "portaudio" }

// Open always fails in builds without PortAudio
func (p *PortAudio) Open(Config, Callback) (Stream, error) {
	return nil, ErrPortAudioDisabled
}
