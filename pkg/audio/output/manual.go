// ABOUTME: Manually pulled output driver
// ABOUTME: Renders blocks only when asked, for tests and offline rendering
package output

import (
	"sync"
)

// Manual is a driver whose streams produce a block only when Pull is called
type Manual struct {
	mu      sync.Mutex
	streams []*ManualStream
	openErr error
}

// NewManual creates a manual driver
func NewManual() *Manual {
	return &Manual{}
}

// Name returns the driver name
func (m *Manual) Name() string { return "manual" }

// FailOpen makes subsequent Open calls return err. Pass nil to clear.
func (m *Manual) FailOpen(err error) {
	m.mu.Lock()
	m.openErr = err
	m.mu.Unlock()
}

// Open records a new stream
func (m *Manual) Open(cfg Config, cb Callback) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openErr != nil {
		return nil, m.openErr
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	s := &ManualStream{cfg: cfg, cb: cb}
	m.streams = append(m.streams, s)
	return s, nil
}

// Opened returns how many streams have been opened
func (m *Manual) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// Current returns the most recently opened stream, or nil
func (m *Manual) Current() *ManualStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streams) == 0 {
		return nil
	}
	return m.streams[len(m.streams)-1]
}

// ManualStream is a stream opened by Manual
type ManualStream struct {
	cfg Config
	cb  Callback

	// pull is held for the duration of a callback so Stop can wait it out
	pull sync.Mutex

	mu      sync.Mutex
	started bool
	closed  bool
	frames  uint64
}

// Config returns the configuration the stream was opened with
func (s *ManualStream) Config() Config { return s.cfg }

// Pull renders n frames if the stream is running. It returns nil otherwise.
func (s *ManualStream) Pull(n int) [][2]float32 {
	return s.PullWithFlags(n, 0)
}

// PullWithFlags is Pull with device status flags passed to the callback
func (s *ManualStream) PullWithFlags(n int, flags StatusFlags) [][2]float32 {
	s.pull.Lock()
	defer s.pull.Unlock()

	s.mu.Lock()
	running := s.started && !s.closed
	frames := s.frames
	s.mu.Unlock()
	if !running {
		return nil
	}

	out := make([][2]float32, n)
	s.cb(out, TimeInfo{StreamTime: framesToDuration(frames, s.cfg.SampleRate)}, flags)

	s.mu.Lock()
	s.frames += uint64(n)
	s.mu.Unlock()
	return out
}

// Running reports whether the stream is started and not closed
func (s *ManualStream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.closed
}

// Closed reports whether Close was called
func (s *ManualStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *ManualStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.started = true
	return nil
}

func (s *ManualStream) Stop() error {
	s.pull.Lock()
	defer s.pull.Unlock()

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return nil
}

func (s *ManualStream) Close() error {
	s.pull.Lock()
	defer s.pull.Unlock()

	s.mu.Lock()
	s.started = false
	s.closed = true
	s.mu.Unlock()
	return nil
}
