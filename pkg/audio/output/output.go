// ABOUTME: Audio output driver interface definition
// ABOUTME: Common stream and callback types for playback backends
package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBlockSize is the number of frames per callback when Config leaves it unset
const DefaultBlockSize = 2048

var (
	// ErrClosed is returned by operations on a closed stream
	ErrClosed = errors.New("stream closed")

	// ErrFormat is returned when a driver cannot open the requested format
	ErrFormat = errors.New("unsupported stream format")

	// ErrUnknownDriver is returned by New for unregistered names
	ErrUnknownDriver = errors.New("unknown output driver")
)

// StatusFlags report device conditions for the block being requested
type StatusFlags uint32

const (
	// OutputUnderflow means the device ran out of data before this block
	OutputUnderflow StatusFlags = 1 << iota

	// OutputOverflow means the device discarded data
	OutputOverflow

	// PrimingOutput means the block is used to prime the device buffers
	PrimingOutput
)

// Has reports whether all bits of f are set
func (s StatusFlags) Has(f StatusFlags) bool {
	return s&f == f
}

func (s StatusFlags) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	if s.Has(OutputUnderflow) {
		parts = append(parts, "underflow")
	}
	if s.Has(OutputOverflow) {
		parts = append(parts, "overflow")
	}
	if s.Has(PrimingOutput) {
		parts = append(parts, "priming")
	}
	return strings.Join(parts, "|")
}

// TimeInfo describes the timing of a requested block
type TimeInfo struct {
	// StreamTime is the duration of audio delivered before this block
	StreamTime time.Duration

	// OutputLatency is the device reported time until the block is heard, if known
	OutputLatency time.Duration
}

// Callback fills out with the next block. It runs on the driver's goroutine
// and must not block.
type Callback func(out [][2]float32, info TimeInfo, flags StatusFlags)

// Config describes the stream to open
type Config struct {
	SampleRate int
	Channels   int // only 2 is supported
	BlockSize  int // frames per callback, DefaultBlockSize when zero
}

// withDefaults validates c and fills unset fields
func (c Config) withDefaults() (Config, error) {
	if c.Channels == 0 {
		c.Channels = 2
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.SampleRate <= 0 {
		return c, fmt.Errorf("%w: sample rate %d", ErrFormat, c.SampleRate)
	}
	if c.Channels != 2 {
		return c, fmt.Errorf("%w: %d channels (only stereo)", ErrFormat, c.Channels)
	}
	if c.BlockSize < 0 {
		return c, fmt.Errorf("%w: block size %d", ErrFormat, c.BlockSize)
	}
	return c, nil
}

// BlockDuration returns the playback time of one block
func (c Config) BlockDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return framesToDuration(uint64(c.BlockSize), c.SampleRate)
}

// Driver opens output streams
type Driver interface {
	// Name identifies the driver
	Name() string

	// Open prepares a stream. The callback is not invoked before Start.
	Open(cfg Config, cb Callback) (Stream, error)
}

// Stream is one open output stream
type Stream interface {
	// Start begins calling the callback
	Start() error

	// Stop halts the callback. No callback is running when Stop returns.
	Stop() error

	// Close stops the stream and releases the device. Safe to call twice.
	Close() error
}

var factories = map[string]func() Driver{
	"malgo":     func() Driver { return NewMalgo() },
	"oto":       func() Driver { return NewOto() },
	"portaudio": func() Driver { return NewPortAudio() },
	"null":      func() Driver { return NewNull() },
}

// Names returns the driver names accepted by New
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a driver by name
func New(name string) (Driver, error) {
	factory, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownDriver, name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

func framesToDuration(frames uint64, sampleRate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func logger(driver string) *zerolog.Logger {
	l := log.With().Str("component", "output").Str("driver", driver).Logger()
	return &l
}
