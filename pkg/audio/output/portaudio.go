//go:build portaudio

// ABOUTME: PortAudio output driver
// ABOUTME: Cross-platform callback stream with native underflow reporting
package output

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio opens streams on the default PortAudio output device
type PortAudio struct{}

// NewPortAudio creates a PortAudio driver
func NewPortAudio() Driver {
	return &PortAudio{}
}

// Name returns the driver name
func (p *PortAudio) Name() string { return "portaudio" }

// Open initializes PortAudio and opens a float32 stereo stream
func (p *PortAudio) Open(cfg Config, cb Callback) (Stream, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	// Initialize and Terminate are reference counted by PortAudio
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	s := &paStream{
		cfg:     cfg,
		cb:      cb,
		scratch: make([][2]float32, cfg.BlockSize),
	}
	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, float64(cfg.SampleRate), cfg.BlockSize, s.render)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	s.stream = stream

	logger(p.Name()).Info().
		Int("sample_rate", cfg.SampleRate).
		Int("block_size", cfg.BlockSize).
		Msg("PortAudio stream opened")
	return s, nil
}

type paStream struct {
	cfg    Config
	cb     Callback
	stream *portaudio.Stream

	mu      sync.Mutex
	started bool
	closed  bool

	scratch [][2]float32
	frames  uint64
}

func (s *paStream) render(out []float32, timeInfo portaudio.StreamCallbackTimeInfo, paFlags portaudio.StreamCallbackFlags) {
	n := len(out) / 2
	if n > len(s.scratch) {
		s.scratch = make([][2]float32, n)
	}
	block := s.scratch[:n]

	var flags StatusFlags
	if paFlags&portaudio.OutputUnderflow != 0 {
		flags |= OutputUnderflow
	}
	if paFlags&portaudio.OutputOverflow != 0 {
		flags |= OutputOverflow
	}
	if paFlags&portaudio.PrimingOutput != 0 {
		flags |= PrimingOutput
	}

	info := TimeInfo{
		StreamTime:    framesToDuration(s.frames, s.cfg.SampleRate),
		OutputLatency: timeInfo.OutputBufferDacTime - timeInfo.CurrentTime,
	}
	s.cb(block, info, flags)
	s.frames += uint64(n)

	for i, f := range block {
		out[2*i] = f[0]
		out[2*i+1] = f[1]
	}
}

func (s *paStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	s.started = true
	return nil
}

func (s *paStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *paStream) stopLocked() error {
	if !s.started {
		return nil
	}
	s.started = false
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	return nil
}

func (s *paStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.stopLocked()
	if cerr := s.stream.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close stream: %w", cerr)
	}
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = fmt.Errorf("failed to terminate portaudio: %w", terr)
	}
	return err
}
