// ABOUTME: Playback engine control surface
// ABOUTME: Load, transport, volume and EQ operations guarded by the state mutex
package player

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/eq"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/output"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var (
	// ErrNoAudio is returned by Play when no track is loaded
	ErrNoAudio = errors.New("no audio loaded")

	// ErrClosed is returned after Close
	ErrClosed = errors.New("engine closed")

	// ErrLoadCanceled is returned by a Load whose decode was overtaken by
	// Stop, Close or a newer Load
	ErrLoadCanceled = errors.New("load canceled")
)

// Mode is the transport state
type Mode int

const (
	Idle Mode = iota
	Playing
	Paused
	Stopped
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Decoder produces decoded audio from a file path
type Decoder interface {
	Decode(path string) (*audio.DecodedAudio, error)
}

// DecoderFunc adapts a function to Decoder
type DecoderFunc func(path string) (*audio.DecodedAudio, error)

// Decode calls f(path)
func (f DecoderFunc) Decode(path string) (*audio.DecodedAudio, error) { return f(path) }

// Config holds engine configuration
type Config struct {
	// Driver opens the output stream (default: malgo)
	Driver output.Driver

	// Decoder loads files (default: decode.NewDefault())
	Decoder Decoder

	// BlockSize is the number of frames per output block (default: 2048)
	BlockSize int

	// Volume is the initial linear gain in [0, 1] (default: 1)
	Volume float64

	// Bands replaces the default ten-band equalizer layout
	Bands []eq.Band

	// Preset is applied to the equalizer at startup
	Preset string

	// DisableEQ starts with the equalizer bypassed
	DisableEQ bool

	// Logger receives engine logs (default: global logger, component=player)
	Logger *zerolog.Logger

	// Clock drives the sleep timer and end notification (default: system clock)
	Clock Clock

	// OnEnd is called once each time a track plays to its end
	OnEnd func()
}

// Engine plays one decoded track at a time
type Engine struct {
	driver     output.Driver
	ownsDriver bool
	decoder    Decoder
	blockSize  int
	log        zerolog.Logger
	xrunLog    zerolog.Logger
	clock      Clock

	// ctl serializes stream lifecycle. Never taken by the audio callback.
	ctl    sync.Mutex
	stream output.Stream

	// mu guards the playback state and is held by the callback for a whole block
	mu        sync.Mutex
	track     *audio.DecodedAudio
	cursor    int
	mode      Mode
	volume    float64
	chain     *eq.Chain
	eqEnabled bool
	fade      fadeEnvelope
	onEnd     func()
	gen       uint64
	loads     uint64 // bumped by every Load, Stop and Close
	ended     uuid.UUID
	closed    bool

	sleep sleepTimer
	stats counters
	tap   tap
}

type counters struct {
	blocks    atomic.Uint64
	underruns atomic.Uint64
	overruns  atomic.Uint64
	recovered atomic.Uint64
}

// New creates an engine
func New(config Config) (*Engine, error) {
	if config.BlockSize == 0 {
		config.BlockSize = output.DefaultBlockSize
	}
	if config.BlockSize < 0 {
		return nil, fmt.Errorf("invalid block size: %d", config.BlockSize)
	}
	if config.Volume == 0 {
		config.Volume = 1
	}
	if config.Decoder == nil {
		config.Decoder = decode.NewDefault()
	}
	if config.Clock == nil {
		config.Clock = SystemClock()
	}

	ownsDriver := false
	if config.Driver == nil {
		config.Driver = output.NewMalgo()
		ownsDriver = true
	}

	logger := log.With().Str("component", "player").Logger()
	if config.Logger != nil {
		logger = config.Logger.With().Str("component", "player").Logger()
	}

	chain := eq.New(44100)
	if len(config.Bands) > 0 {
		chain = eq.NewWithBands(44100, config.Bands)
	}
	if config.Preset != "" {
		if err := chain.ApplyPreset(config.Preset); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		driver:     config.Driver,
		ownsDriver: ownsDriver,
		decoder:    config.Decoder,
		blockSize:  config.BlockSize,
		log:        logger,
		xrunLog:    logger.Sample(&zerolog.BurstSampler{Burst: 5, Period: 10 * time.Second}),
		clock:      config.Clock,
		volume:     clampVolume(config.Volume, 1),
		chain:      chain,
		eqEnabled:  !config.DisableEQ,
		onEnd:      config.OnEnd,
	}

	e.log.Debug().
		Str("driver", e.driver.Name()).
		Int("block_size", e.blockSize).
		Msg("Engine created")
	return e, nil
}

// Load decodes path and installs it as the current track. The previous track
// keeps playing while decoding and the other operations stay responsive; on
// success its stream is closed and the new track waits in Idle at position
// zero. On failure nothing changes. A Stop, Close or newer Load issued while
// the file decodes wins, and this call returns ErrLoadCanceled.
func (e *Engine) Load(path string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.loads++
	ticket := e.loads
	e.mu.Unlock()

	start := e.clock.Now()
	track, err := e.decoder.Decode(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("Load failed")
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if track == nil || track.SampleRate <= 0 {
		return fmt.Errorf("failed to load %s: decoder returned no audio", path)
	}

	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.mu.Lock()
	closed, stale := e.closed, ticket != e.loads
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if stale {
		e.log.Debug().Str("path", path).Msg("Load overtaken, discarding decoded track")
		return fmt.Errorf("failed to load %s: %w", path, ErrLoadCanceled)
	}

	e.closeStream()

	e.mu.Lock()
	e.gen++
	e.track = track
	e.cursor = 0
	e.mode = Idle
	if err := e.chain.SetSampleRate(track.SampleRate); err != nil {
		e.log.Warn().Err(err).Msg("Equalizer sample rate rejected")
	}
	e.chain.Reset()
	e.fade.prepare(track)
	e.tap.reset()
	e.mu.Unlock()

	e.log.Info().
		Str("track", track.ID.String()).
		Str("path", path).
		Str("codec", track.Source.Codec).
		Int("sample_rate", track.SampleRate).
		Int("channels", track.Source.Channels).
		Float64("duration_s", track.Seconds()).
		Dur("decode_time", e.clock.Now().Sub(start)).
		Msg("Track loaded")
	return nil
}

// Play starts or resumes playback, opening the output stream if needed
func (e *Engine) Play() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if e.isClosed() {
		return ErrClosed
	}

	e.mu.Lock()
	if e.track == nil {
		e.mu.Unlock()
		return ErrNoAudio
	}
	switch e.mode {
	case Playing:
		e.mu.Unlock()
		return nil
	case Paused:
		e.mode = Playing
		e.mu.Unlock()
		e.log.Debug().Msg("Resumed")
		return nil
	}
	if e.mode == Stopped && e.cursor >= e.track.Len() {
		e.cursor = 0
		e.chain.Reset()
	}
	sampleRate := e.track.SampleRate
	e.mu.Unlock()

	if e.stream == nil {
		stream, err := e.driver.Open(output.Config{
			SampleRate: sampleRate,
			Channels:   audio.Stereo,
			BlockSize:  e.blockSize,
		}, e.render)
		if err != nil {
			return fmt.Errorf("failed to open output stream: %w", err)
		}
		e.stream = stream
	}

	// Mode flips before Start so the first block already carries audio
	e.mu.Lock()
	prev := e.mode
	e.mode = Playing
	e.mu.Unlock()

	if err := e.stream.Start(); err != nil {
		e.closeStream()
		e.mu.Lock()
		e.mode = prev
		e.mu.Unlock()
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	e.log.Info().Float64("position_s", e.Position()).Msg("Playback started")
	return nil
}

// Pause freezes the cursor. The stream keeps running and renders silence.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == Playing {
		e.mode = Paused
	}
}

// Resume continues after Pause
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == Paused {
		e.mode = Playing
	}
}

// TogglePause switches between Playing and Paused
func (e *Engine) TogglePause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.mode {
	case Playing:
		e.mode = Paused
	case Paused:
		e.mode = Playing
	}
}

// Stop closes the output stream and rewinds. When Stop returns no further
// block is rendered and no end callback is pending. A Load still decoding is
// canceled. Safe to call repeatedly.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.loads++
	e.mu.Unlock()

	e.ctl.Lock()
	defer e.ctl.Unlock()

	e.closeStream()

	e.mu.Lock()
	e.gen++
	e.cursor = 0
	e.mode = Stopped
	e.chain.Reset()
	e.mu.Unlock()
}

// Seek moves the cursor to seconds, clamped to the track. The equalizer
// history is cleared so the next block starts clean. NaN is ignored.
func (e *Engine) Seek(seconds float64) {
	if math.IsNaN(seconds) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return
	}
	n := e.track.Len()
	frame := n
	if !math.IsInf(seconds, 1) {
		frame = int(lo.Clamp(math.Round(seconds*float64(e.track.SampleRate)), 0, float64(n)))
	}
	e.cursor = frame
	e.chain.Reset()
}

// SeekRelative moves the cursor by delta seconds
func (e *Engine) SeekRelative(delta float64) {
	e.mu.Lock()
	pos := e.positionLocked()
	e.mu.Unlock()
	e.Seek(pos + delta)
}

// SetVolume sets the linear gain, clamped to [0, 1]. NaN is ignored.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = clampVolume(v, e.volume)
}

// Volume returns the linear gain
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func clampVolume(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return lo.Clamp(v, 0, 1)
}

// SetEQBand changes one equalizer band. Invalid parameters are rejected and
// the band keeps its previous settings.
func (e *Engine) SetEQBand(i int, frequency, gainDB, q float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.SetBand(i, frequency, gainDB, q)
}

// SetEQGain changes only the gain of one band
func (e *Engine) SetEQGain(i int, gainDB float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.SetGain(i, gainDB)
}

// ApplyPreset applies a named equalizer preset
func (e *Engine) ApplyPreset(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain.ApplyPreset(name)
}

// SetEQEnabled bypasses or re-enables the equalizer without losing settings
func (e *Engine) SetEQEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enabled && !e.eqEnabled {
		e.chain.Reset()
	}
	e.eqEnabled = enabled
}

// Equalizer returns the chain for read access such as Gains or
// FrequencyResponse. Use the engine setters to change it.
func (e *Engine) Equalizer() *eq.Chain {
	return e.chain
}

// SetOnEnd registers the end callback, replacing any previous one
func (e *Engine) SetOnEnd(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnd = f
}

// Position returns the cursor in seconds, or 0 without a track
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *Engine) positionLocked() float64 {
	if e.track == nil {
		return 0
	}
	return float64(e.cursor) / float64(e.track.SampleRate)
}

// Duration returns the track length in seconds, or 0 without a track
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track.Seconds()
}

// EndedTrack returns the ID of the last track whose end was notified, or the
// zero UUID. End callbacks compare it with Status().TrackID to tell whether a
// Load happened after the end.
func (e *Engine) EndedTrack() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ended
}

// Mode returns the transport state
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Close stops playback, releases the track and, when the engine created its
// own driver, the driver
func (e *Engine) Close() error {
	e.ctl.Lock()
	defer e.ctl.Unlock()

	if e.isClosed() {
		return nil
	}
	e.CancelSleepTimer()
	e.closeStream()

	e.mu.Lock()
	e.closed = true
	e.gen++
	e.loads++
	e.track = nil
	e.cursor = 0
	e.mode = Stopped
	e.mu.Unlock()

	if e.ownsDriver {
		if c, ok := e.driver.(io.Closer); ok {
			if err := c.Close(); err != nil {
				return fmt.Errorf("failed to close output driver: %w", err)
			}
		}
	}
	e.log.Debug().Msg("Engine closed")
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// closeStream stops and closes the output stream. Caller holds ctl but not mu.
func (e *Engine) closeStream() {
	if e.stream == nil {
		return
	}
	if err := e.stream.Stop(); err != nil {
		e.log.Warn().Err(err).Msg("Output stream stop error")
	}
	if err := e.stream.Close(); err != nil {
		e.log.Warn().Err(err).Msg("Output stream close error")
	}
	e.stream = nil
}

// finish delivers the end notification for generation gen, unless Stop, Load
// or Close happened since the last block was rendered
func (e *Engine) finish(gen uint64) {
	e.ctl.Lock()
	e.mu.Lock()
	live := gen == e.gen && !e.closed
	stopped := e.mode == Stopped
	cb := e.onEnd
	var track string
	if e.track != nil {
		track = e.track.ID.String()
	}
	if live {
		e.gen++
		if e.track != nil {
			e.ended = e.track.ID
		}
	}
	e.mu.Unlock()

	if live && stopped {
		e.closeStream()
	}
	e.ctl.Unlock()

	if !live {
		return
	}
	e.log.Info().Str("track", track).Msg("Track finished")
	if cb != nil {
		cb()
	}
}
