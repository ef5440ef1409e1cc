// ABOUTME: Output sample tap for visualization
// ABOUTME: Ring buffer holding a mono mix of the most recent rendered frames
package player

// tapSize is the number of mono samples kept for analysis
const tapSize = 4096

// tap is written by the callback and read by Samples, both under the state mutex
type tap struct {
	buf []float64
	pos int
}

func (t *tap) write(block [][2]float32) {
	if t.buf == nil {
		t.buf = make([]float64, tapSize)
	}
	for i := range block {
		t.buf[t.pos] = float64(block[i][0]+block[i][1]) / 2
		t.pos = (t.pos + 1) % len(t.buf)
	}
}

// last returns the newest n samples in chronological order
func (t *tap) last(n int) []float64 {
	if t.buf == nil {
		return nil
	}
	n = min(n, len(t.buf))
	out := make([]float64, n)
	start := (t.pos - n + len(t.buf)) % len(t.buf)
	for i := range out {
		out[i] = t.buf[(start+i)%len(t.buf)]
	}
	return out
}

func (t *tap) reset() {
	clear(t.buf)
	t.pos = 0
}

// Samples returns up to n of the most recently played output samples as a
// mono mix, oldest first. It returns nil before anything has played.
func (e *Engine) Samples(n int) []float64 {
	if n <= 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tap.last(n)
}
