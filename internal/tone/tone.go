// ABOUTME: Test tone generator and WAV writer
// ABOUTME: Generates sine and square waves and stores them as PCM WAV files
package tone

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// Sine generates a mono sine wave
func Sine(frequency float64, sampleRate int, seconds, amplitude float64) []float64 {
	n := int(math.Round(seconds * float64(sampleRate)))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return samples
}

// Square generates a mono square wave alternating between +amplitude and
// -amplitude
func Square(frequency float64, sampleRate int, seconds, amplitude float64) []float64 {
	n := int(math.Round(seconds * float64(sampleRate)))
	half := float64(sampleRate) / frequency / 2
	samples := make([]float64, n)
	for i := range samples {
		if int(float64(i)/half)%2 == 0 {
			samples[i] = amplitude
		} else {
			samples[i] = -amplitude
		}
	}
	return samples
}

// Interleave duplicates a mono signal across the given number of channels
func Interleave(mono []float64, channels int) []float64 {
	out := make([]float64, len(mono)*channels)
	for i, s := range mono {
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = s
		}
	}
	return out
}

// WriteWAV stores interleaved samples in [-1, 1] as an integer PCM WAV file.
// 8-bit output is offset binary as the format requires.
func WriteWAV(path string, sampleRate, channels, bitDepth int, interleaved []float64) error {
	if channels < 1 {
		return fmt.Errorf("invalid channel count: %d", channels)
	}
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 8, 16, 24, 32)", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()

	scale := float64(int64(1)<<uint(bitDepth-1)) - 1
	data := make([]int, len(interleaved))
	for i, s := range interleaved {
		s = math.Max(-1, math.Min(1, s))
		data[i] = int(math.Round(s * scale))
	}
	// 8-bit WAV samples are unsigned
	if bitDepth == 8 {
		for i := range data {
			data[i] += 128
		}
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}
