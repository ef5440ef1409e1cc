// ABOUTME: Null output driver that discards audio
// ABOUTME: Calls the block callback at the real-time rate without a device
package output

import (
	"sync"
	"time"
)

// Null renders blocks on a ticker and throws them away. It keeps playback
// moving at the real rate on machines without an audio device.
type Null struct{}

// NewNull creates a null driver
func NewNull() *Null {
	return &Null{}
}

// Name returns the driver name
func (n *Null) Name() string { return "null" }

// Open creates a paced stream
func (n *Null) Open(cfg Config, cb Callback) (Stream, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &nullStream{
		cfg:   cfg,
		cb:    cb,
		block: make([][2]float32, cfg.BlockSize),
	}, nil
}

type nullStream struct {
	cfg   Config
	cb    Callback
	block [][2]float32

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	closed bool
	frames uint64
}

func (s *nullStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	return nil
}

func (s *nullStream) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.BlockDuration())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.cb(s.block, TimeInfo{StreamTime: framesToDuration(s.frames, s.cfg.SampleRate)}, 0)
			s.frames += uint64(len(s.block))
		}
	}
}

func (s *nullStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *nullStream) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *nullStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
	return nil
}
