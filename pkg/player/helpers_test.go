// ABOUTME: Test helpers for the player package
// ABOUTME: Fake clock, in-memory decoder and engine construction
package player

import (
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/output"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeClock runs timers only when the test advances it
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, at: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due timers on the calling goroutine
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
		case !t.at.After(c.now):
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.f()
	}
}

// Flush runs callbacks scheduled without delay
func (c *fakeClock) Flush() { c.Advance(0) }

// library is an in-memory decoder
type library struct {
	mu     sync.Mutex
	tracks map[string]*audio.DecodedAudio
	errs   map[string]error
	gates  map[string]*gate
}

// gate parks one Decode call until released
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newLibrary() *library {
	return &library{
		tracks: map[string]*audio.DecodedAudio{},
		errs:   map[string]error{},
		gates:  map[string]*gate{},
	}
}

// hold makes the next Decode of path block until the gate is released
func (l *library) hold(path string) *gate {
	l.mu.Lock()
	defer l.mu.Unlock()
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	l.gates[path] = g
	return g
}

func (l *library) add(path string, track *audio.DecodedAudio) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracks[path] = track
}

func (l *library) fail(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs[path] = err
}

func (l *library) Decode(path string) (*audio.DecodedAudio, error) {
	l.mu.Lock()
	g := l.gates[path]
	delete(l.gates, path)
	l.mu.Unlock()
	if g != nil {
		close(g.entered)
		<-g.release
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.errs[path]; ok {
		return nil, err
	}
	track, ok := l.tracks[path]
	if !ok {
		return nil, &decode.Error{Kind: decode.ErrNotFound, Path: path, Backend: "library"}
	}
	return track, nil
}

var errLayout = &decode.Error{
	Kind:    decode.ErrUnsupportedLayout,
	Path:    "surround.wav",
	Backend: "library",
	Err:     errors.New("6 channels"),
}

type harness struct {
	eng    *Engine
	driver *output.Manual
	clock  *fakeClock
	lib    *library
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		driver: output.NewManual(),
		clock:  newFakeClock(),
		lib:    newLibrary(),
	}
	nop := zerolog.Nop()
	eng, err := New(Config{
		Driver:  h.driver,
		Decoder: h.lib,
		Clock:   h.clock,
		Logger:  &nop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	h.eng = eng
	return h
}

// stream returns the current output stream
func (h *harness) stream(t *testing.T) *output.ManualStream {
	t.Helper()
	s := h.driver.Current()
	require.NotNil(t, s, "no stream opened")
	return s
}

// pull renders n frames from the current stream
func (h *harness) pull(t *testing.T, n int) [][2]float32 {
	t.Helper()
	block := h.stream(t).Pull(n)
	require.NotNil(t, block, "stream not running")
	return block
}

func newTrack(t *testing.T, frames [][2]float32, sampleRate int, channels int) *audio.DecodedAudio {
	t.Helper()
	track, err := audio.NewDecodedAudio(frames, sampleRate, audio.Format{
		Codec:      "pcm",
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   32,
	})
	require.NoError(t, err)
	return track
}

// sineTrack is a mono-sourced 440 Hz sine duplicated on both channels
func sineTrack(t *testing.T, seconds float64, sampleRate int) *audio.DecodedAudio {
	t.Helper()
	n := int(math.Round(seconds * float64(sampleRate)))
	frames := make([][2]float32, n)
	for i := range frames {
		s := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		frames[i] = [2]float32{s, s}
	}
	return newTrack(t, frames, sampleRate, 1)
}

// squareTrack alternates between +amplitude and -amplitude every 50 frames
func squareTrack(t *testing.T, seconds float64, sampleRate int, amplitude float32) *audio.DecodedAudio {
	t.Helper()
	n := int(math.Round(seconds * float64(sampleRate)))
	frames := make([][2]float32, n)
	for i := range frames {
		s := amplitude
		if (i/50)%2 == 1 {
			s = -amplitude
		}
		frames[i] = [2]float32{s, s}
	}
	return newTrack(t, frames, sampleRate, 2)
}

// noiseTrack holds a deterministic pseudo-random signal in [-peak, peak]
func noiseTrack(t *testing.T, n, sampleRate int, peak float32) *audio.DecodedAudio {
	t.Helper()
	frames := make([][2]float32, n)
	x := uint32(12345)
	next := func() float32 {
		x = x*1664525 + 1013904223
		return (float32(x>>8)/float32(1<<24)*2 - 1) * peak
	}
	for i := range frames {
		frames[i] = [2]float32{next(), next()}
	}
	return newTrack(t, frames, sampleRate, 2)
}

// endCounter counts end callbacks
type endCounter struct {
	mu sync.Mutex
	n  int
}

func (c *endCounter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *endCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
