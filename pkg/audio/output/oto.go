// ABOUTME: Oto-based audio output driver
// ABOUTME: Feeds an oto player through a reader that pulls blocks from the callback
package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, so the first stream fixes the
// sample rate for the lifetime of the program
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

func sharedOtoContext(sampleRate int, buffer time.Duration) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, fmt.Errorf("%w: oto context already running at %d Hz, cannot switch to %d Hz",
				ErrFormat, otoRate, sampleRate)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	otoCtx = ctx
	otoRate = sampleRate
	return ctx, nil
}

// Oto opens streams on an ebitengine/oto context
type Oto struct{}

// NewOto creates an oto driver
func NewOto() *Oto {
	return &Oto{}
}

// Name returns the driver name
func (o *Oto) Name() string { return "oto" }

// Open creates a player that pulls from the callback
func (o *Oto) Open(cfg Config, cb Callback) (Stream, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	ctx, err := sharedOtoContext(cfg.SampleRate, cfg.BlockDuration())
	if err != nil {
		return nil, err
	}

	r := &blockReader{
		cfg:     cfg,
		cb:      cb,
		scratch: make([][2]float32, cfg.BlockSize),
		buf:     make([]byte, cfg.BlockSize*bytesPerFrame),
	}
	player := ctx.NewPlayer(r)
	player.SetBufferSize(cfg.BlockSize * bytesPerFrame)

	logger(o.Name()).Info().
		Int("sample_rate", cfg.SampleRate).
		Int("block_size", cfg.BlockSize).
		Msg("Oto player created (f32le)")
	return &otoStream{player: player, reader: r}, nil
}

// blockReader renders one block at a time and serves it as bytes
type blockReader struct {
	cfg Config
	cb  Callback

	mu      sync.Mutex
	running bool
	frames  uint64
	scratch [][2]float32
	buf     []byte
	pending []byte // unread tail of buf
}

func (r *blockReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		// oto may read while pausing; never call back outside Start/Stop
		clear(p)
		return len(p), nil
	}

	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.cb(r.scratch, TimeInfo{StreamTime: framesToDuration(r.frames, r.cfg.SampleRate)}, 0)
			r.frames += uint64(len(r.scratch))
			writeFloat32LE(r.buf, r.scratch)
			r.pending = r.buf
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

func (r *blockReader) setRunning(running bool) {
	r.mu.Lock()
	r.running = running
	r.mu.Unlock()
}

var _ io.Reader = (*blockReader)(nil)

type otoStream struct {
	player *oto.Player
	reader *blockReader

	mu     sync.Mutex
	closed bool
}

func (s *otoStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.reader.setRunning(true)
	s.player.Play()
	return nil
}

func (s *otoStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	// Taking the reader lock waits out a Read in progress
	s.reader.setRunning(false)
	s.player.Pause()
	return nil
}

func (s *otoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.reader.setRunning(false)
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("failed to close oto player: %w", err)
	}
	return nil
}
