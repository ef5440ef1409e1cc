// ABOUTME: Malgo-based audio output driver
// ABOUTME: Runs the block callback on miniaudio's device thread with float32 samples
package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// bytesPerFrame is stereo float32
const bytesPerFrame = 8

// Malgo opens streams on the default miniaudio playback device
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
}

// NewMalgo creates a malgo driver. The miniaudio context is created on first Open.
func NewMalgo() *Malgo {
	return &Malgo{}
}

// Name returns the driver name
func (m *Malgo) Name() string { return "malgo" }

func (m *Malgo) context() (*malgo.AllocatedContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}
	return m.malgoCtx, nil
}

// Open initializes a playback device. The device is started by Stream.Start.
func (m *Malgo) Open(cfg Config, cb Callback) (Stream, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	ctx, err := m.context()
	if err != nil {
		return nil, err
	}

	s := &malgoStream{
		cfg:     cfg,
		cb:      cb,
		scratch: make([][2]float32, cfg.BlockSize),
		period:  cfg.BlockDuration(),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BlockSize)
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			s.render(pOutput, int(frameCount))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	s.device = device

	logger(m.Name()).Info().
		Int("sample_rate", cfg.SampleRate).
		Int("block_size", cfg.BlockSize).
		Msg("Playback device initialized (f32)")
	return s, nil
}

// Close releases the miniaudio context. Streams must be closed first.
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			logger(m.Name()).Warn().Err(err).Msg("Malgo context uninit error")
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

type malgoStream struct {
	cfg    Config
	cb     Callback
	device *malgo.Device

	mu      sync.Mutex
	started bool
	closed  bool

	// Owned by the device thread
	scratch  [][2]float32
	frames   uint64
	period   time.Duration
	lastCall time.Time
}

// render is the miniaudio data callback
func (s *malgoStream) render(pOutput []byte, frameCount int) {
	if frameCount > len(s.scratch) {
		s.scratch = make([][2]float32, frameCount)
	}
	block := s.scratch[:frameCount]

	// miniaudio hides xruns; a callback arriving much later than one period
	// after the previous one means the device starved
	var flags StatusFlags
	now := time.Now()
	if !s.lastCall.IsZero() && now.Sub(s.lastCall) > 2*s.period {
		flags |= OutputUnderflow
	}
	s.lastCall = now

	s.cb(block, TimeInfo{StreamTime: framesToDuration(s.frames, s.cfg.SampleRate)}, flags)
	s.frames += uint64(frameCount)

	writeFloat32LE(pOutput, block)
}

func (s *malgoStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	s.lastCall = time.Time{}
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	s.started = true
	return nil
}

func (s *malgoStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *malgoStream) stopLocked() error {
	if !s.started {
		return nil
	}
	s.started = false
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop device: %w", err)
	}
	return nil
}

func (s *malgoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	err := s.stopLocked()
	s.device.Uninit()
	logger("malgo").Debug().Uint64("frames", s.frames).Msg("Playback device closed")
	return err
}

// writeFloat32LE packs stereo frames as interleaved little-endian float32
func writeFloat32LE(dst []byte, block [][2]float32) {
	for i, f := range block {
		binary.LittleEndian.PutUint32(dst[i*bytesPerFrame:], math.Float32bits(f[0]))
		binary.LittleEndian.PutUint32(dst[i*bytesPerFrame+4:], math.Float32bits(f[1]))
	}
}
