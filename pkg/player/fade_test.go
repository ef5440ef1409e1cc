// ABOUTME: Tests for the fade envelope
// ABOUTME: Tests linear ramps at track start and end
package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantTrackHarness(t *testing.T, n int) *harness {
	t.Helper()
	frames := make([][2]float32, n)
	for i := range frames {
		frames[i] = [2]float32{0.5, 0.5}
	}
	h := newHarness(t)
	h.lib.add("flat", newTrack(t, frames, 8000, 2))
	return h
}

func TestFadeDisabledByDefault(t *testing.T) {
	h := constantTrackHarness(t, 8000)
	require.NoError(t, h.eng.Load("flat"))
	require.NoError(t, h.eng.Play())

	block := h.pull(t, 100)
	assert.Equal(t, float32(0.5), block[0][0])
}

func TestFadeIn(t *testing.T) {
	h := constantTrackHarness(t, 8000)
	h.eng.SetFade(100*time.Millisecond, 0) // 800 frames at 8 kHz
	require.NoError(t, h.eng.Load("flat"))
	require.NoError(t, h.eng.Play())

	block := h.pull(t, 1000)
	assert.Equal(t, float32(0), block[0][0])
	assert.InDelta(t, 0.25, block[400][0], 1e-6)
	assert.InDelta(t, 0.5*799.0/800, block[799][1], 1e-6)
	assert.Equal(t, float32(0.5), block[800][0])
}

func TestFadeOut(t *testing.T) {
	h := constantTrackHarness(t, 8000)
	require.NoError(t, h.eng.Load("flat"))
	h.eng.SetFade(0, 100*time.Millisecond)
	require.NoError(t, h.eng.Play())

	h.eng.Seek(0.8) // frame 6400, fade starts at 7200
	block := h.pull(t, 1600)
	assert.Equal(t, float32(0.5), block[799][0])
	assert.InDelta(t, 0.5, block[800][0], 1e-6)
	assert.InDelta(t, 0.25, block[1200][0], 1e-6)
	assert.InDelta(t, 0.5/800, block[1599][0], 1e-6)
}

func TestFadeNegativeDurationsDisable(t *testing.T) {
	h := constantTrackHarness(t, 800)
	h.eng.SetFade(-time.Second, -time.Second)
	require.NoError(t, h.eng.Load("flat"))
	require.NoError(t, h.eng.Play())

	block := h.pull(t, 800)
	assert.Equal(t, float32(0.5), block[0][0])
	assert.Equal(t, float32(0.5), block[799][0])
}
