// ABOUTME: Spectrum analyzer for the player TUI
// ABOUTME: FFT of the output tap reduced to smoothed per-band levels
package ui

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mjibson/go-dsp/fft"
)

const (
	numBands = 10
	fftSize  = 2048
)

// Unicode block elements for bar height (9 levels including space)
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// bandEdges split the spectrum into numBands ranges (Hz)
var bandEdges = [numBands + 1]float64{20, 100, 200, 400, 800, 1600, 3200, 6400, 12800, 16000, 20000}

var (
	specLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	specMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	specHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Visualizer turns sample windows into band levels in [0, 1]
type Visualizer struct {
	prev [numBands]float64
	buf  []float64
}

// NewVisualizer creates a visualizer
func NewVisualizer() *Visualizer {
	return &Visualizer{buf: make([]float64, fftSize)}
}

// Analyze returns smoothed band levels for samples at sampleRate. Without
// samples the previous levels decay.
func (v *Visualizer) Analyze(samples []float64, sampleRate int) [numBands]float64 {
	var bands [numBands]float64
	if len(samples) == 0 || sampleRate <= 0 {
		for b := range numBands {
			bands[b] = v.prev[b] * 0.8
			v.prev[b] = bands[b]
		}
		return bands
	}

	clear(v.buf)
	copy(v.buf, samples)

	// Hann window
	for i := range fftSize {
		v.buf[i] *= 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	spectrum := fft.FFTReal(v.buf)
	binHz := float64(sampleRate) / fftSize
	half := len(spectrum) / 2

	for b := range numBands {
		lower := max(int(bandEdges[b]/binHz), 1)
		upper := min(int(bandEdges[b+1]/binHz), half-1)

		var sum float64
		count := 0
		for i := lower; i <= upper; i++ {
			sum += cmplx.Abs(spectrum[i])
			count++
		}
		if count > 0 {
			sum /= float64(count)
		}

		level := 0.0
		if sum > 0 {
			level = (20*math.Log10(sum) + 10) / 50
		}
		level = max(0, min(1, level))

		// Fast attack, slow decay
		if level > v.prev[b] {
			level = level*0.6 + v.prev[b]*0.4
		} else {
			level = level*0.25 + v.prev[b]*0.75
		}
		bands[b] = level
		v.prev[b] = level
	}
	return bands
}

// Render draws the levels as colored bars of the given character width
func (v *Visualizer) Render(bands [numBands]float64, width int) string {
	width = max(width, 1)

	var sb strings.Builder
	for i, level := range bands {
		idx := max(0, min(int(level*float64(len(barBlocks)-1)), len(barBlocks)-1))

		style := specLowStyle
		switch {
		case level > 0.75:
			style = specHighStyle
		case level > 0.45:
			style = specMidStyle
		}

		sb.WriteString(style.Render(strings.Repeat(barBlocks[idx], width)))
		if i < numBands-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
