// ABOUTME: Linear fade-in and fade-out envelope
// ABOUTME: Gain ramps at the start and end of a track, applied after EQ
package player

import (
	"math"
	"time"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
)

// fadeEnvelope holds the configured durations and their length in frames for
// the current track
type fadeEnvelope struct {
	in, out             time.Duration
	inFrames, outFrames int
	total               int
}

func (f *fadeEnvelope) prepare(track *audio.DecodedAudio) {
	if track == nil {
		f.inFrames, f.outFrames, f.total = 0, 0, 0
		return
	}
	f.total = track.Len()
	f.inFrames = durationToFrames(f.in, track.SampleRate)
	f.outFrames = durationToFrames(f.out, track.SampleRate)
}

func durationToFrames(d time.Duration, sampleRate int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

func (f *fadeEnvelope) active() bool {
	return f.inFrames > 0 || f.outFrames > 0
}

// gain returns the envelope at frame pos
func (f *fadeEnvelope) gain(pos int) float32 {
	g := float32(1)
	if f.inFrames > 0 && pos < f.inFrames {
		g = float32(pos) / float32(f.inFrames)
	}
	if f.outFrames > 0 {
		if left := f.total - pos; left < f.outFrames {
			g = min(g, float32(left)/float32(f.outFrames))
		}
	}
	return g
}

func (f *fadeEnvelope) apply(block [][2]float32, start int) {
	if !f.active() {
		return
	}
	for i := range block {
		g := f.gain(start + i)
		if g == 1 {
			continue
		}
		block[i][0] *= g
		block[i][1] *= g
	}
}

// SetFade configures a linear fade-in at the start of each track and a
// fade-out before its end. Zero disables either ramp.
func (e *Engine) SetFade(in, out time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fade.in = max(in, 0)
	e.fade.out = max(out, 0)
	e.fade.prepare(e.track)
}
