// ABOUTME: Tests for tone generation and WAV writing
// ABOUTME: Verifies waveform shape and that written files decode back
package tone

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSineLengthAndRange(t *testing.T) {
	samples := Sine(440, 44100, 2.0, 0.5)
	require.Len(t, samples, 88200)
	for _, s := range samples {
		assert.LessOrEqual(t, math.Abs(s), 0.5)
	}
	assert.Equal(t, 0.0, samples[0])
}

func TestSquareAlternates(t *testing.T) {
	samples := Square(1000, 8000, 0.001, 1.0)
	// 8000/1000/2 = 4 samples per half period
	assert.Equal(t, []float64{1, 1, 1, 1, -1, -1, -1, -1}, samples)
}

func TestInterleave(t *testing.T) {
	assert.Equal(t, []float64{1, 1, 2, 2}, Interleave([]float64{1, 2}, 2))
}

func TestWriteWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, WriteWAV(path, 22050, 2, 16, Interleave(Sine(440, 22050, 0.1, 0.8), 2)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(22050), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)
}

func TestWriteWAVRejectsBadParams(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, WriteWAV(filepath.Join(dir, "a.wav"), 44100, 0, 16, nil))
	assert.Error(t, WriteWAV(filepath.Join(dir, "b.wav"), 44100, 1, 12, nil))
}

func TestWriteWAV8BitIsUnsigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square8.wav")
	require.NoError(t, WriteWAV(path, 8000, 1, 8, Square(1000, 8000, 0.001, 0.5)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{192, 192, 192, 192, 64, 64, 64, 64}, data[len(data)-8:])
}
