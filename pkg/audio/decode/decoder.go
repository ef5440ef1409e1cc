// ABOUTME: Decoder interface and cascading implementation
// ABOUTME: Dispatches by extension to a native backend, then falls back to beep
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
)

// Decoder turns a file path into a decoded track
type Decoder interface {
	Decode(path string) (*audio.DecodedAudio, error)
}

// Backend is one decoding implementation for one or more containers
type Backend interface {
	// Name identifies the backend in errors and logs
	Name() string

	// Decode reads the whole file. Errors should carry a failure kind.
	Decode(path string) (*audio.DecodedAudio, error)
}

// Cascade tries the backends registered for a file extension in order
type Cascade struct {
	backends map[string][]Backend
}

// NewCascade creates an empty cascade
func NewCascade() *Cascade {
	return &Cascade{backends: make(map[string][]Backend)}
}

// Register appends backends for the given extension (with leading dot)
func (c *Cascade) Register(ext string, backends ...Backend) {
	ext = strings.ToLower(ext)
	c.backends[ext] = append(c.backends[ext], backends...)
}

// Extensions returns the registered extensions
func (c *Cascade) Extensions() []string {
	exts := make([]string, 0, len(c.backends))
	for ext := range c.backends {
		exts = append(exts, ext)
	}
	return exts
}

// NewDefault creates the cascade used for local playback: native backends
// first, beep second
func NewDefault() *Cascade {
	c := NewCascade()
	fallback := Beep{}
	c.Register(".mp3", MP3{}, fallback)
	c.Register(".wav", WAV{}, fallback)
	c.Register(".wave", WAV{}, fallback)
	c.Register(".flac", FLAC{}, fallback)
	c.Register(".ogg", Vorbis{}, fallback)
	c.Register(".oga", Vorbis{}, fallback)
	return c
}

var defaultCascade = NewDefault()

// File decodes path with the default cascade
func File(path string) (*audio.DecodedAudio, error) {
	return defaultCascade.Decode(path)
}

// Decode decodes path, trying each backend registered for its extension
func (c *Cascade) Decode(path string) (*audio.DecodedAudio, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, newError(ErrNotFound, path, "cascade", err)
		}
		return nil, newError(ErrCorruptStream, path, "cascade", err)
	}
	if info.IsDir() {
		return nil, newError(ErrUnsupportedFormat, path, "cascade", fmt.Errorf("is a directory"))
	}

	ext := strings.ToLower(filepath.Ext(path))
	backends := c.backends[ext]
	if len(backends) == 0 {
		return nil, newError(ErrUnsupportedFormat, path, "cascade",
			fmt.Errorf("extension %q not supported", ext))
	}

	var errs []error
	for _, b := range backends {
		track, err := b.Decode(path)
		if err == nil {
			track.Path = path
			return track, nil
		}
		// A layout problem is a property of the file, not of the backend
		if errors.Is(err, ErrUnsupportedLayout) {
			return nil, err
		}
		errs = append(errs, err)
	}

	// Flatten the causes so errors.Is only matches the combined kind
	return nil, newError(combinedKind(errs), path, "cascade", errors.New(errors.Join(errs...).Error()))
}

// combinedKind reports UnsupportedFormat only when every backend said so
func combinedKind(errs []error) error {
	for _, err := range errs {
		if kindOf(err) != ErrUnsupportedFormat {
			return ErrCorruptStream
		}
	}
	return ErrUnsupportedFormat
}
