// ABOUTME: Peaking band parameters and biquad coefficients
// ABOUTME: Computes RBJ cookbook peaking EQ coefficients
package eq

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Gain limits in dB. Finite gains outside the range are clamped.
const (
	MinGain = -12.0
	MaxGain = 12.0

	// DefaultQ is the quality factor of the default bands
	DefaultQ = 1.0

	// bypassThreshold is the gain below which a band is skipped
	bypassThreshold = 0.01
)

// DefaultFrequencies are the center frequencies of the default ten-band chain
var DefaultFrequencies = []float64{60, 170, 310, 600, 1000, 3000, 6000, 12000, 14000, 16000}

var (
	// ErrInvalidBand is returned for out-of-range band parameters
	ErrInvalidBand = errors.New("invalid band")

	// ErrUnstable is returned when processing produced a non-finite sample
	ErrUnstable = errors.New("filter produced non-finite output")
)

// Band is one peaking filter
type Band struct {
	Frequency float64 // center frequency in Hz
	GainDB    float64 // boost or cut at the center frequency
	Q         float64 // quality factor, higher is narrower
}

// coeffs are biquad coefficients normalized by a0
type coeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
	bypass     bool
}

var passThrough = coeffs{b0: 1, bypass: true}

// validate checks band parameters against the sample rate and returns the band
// with its gain clamped
func (b Band) validate(sampleRate int) (Band, error) {
	for _, v := range []float64{b.Frequency, b.GainDB, b.Q} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return b, fmt.Errorf("%w: non-finite parameter", ErrInvalidBand)
		}
	}
	nyquist := float64(sampleRate) / 2
	if b.Frequency <= 0 || b.Frequency >= nyquist {
		return b, fmt.Errorf("%w: frequency %.1f Hz outside (0, %.1f)", ErrInvalidBand, b.Frequency, nyquist)
	}
	if b.Q <= 0 {
		return b, fmt.Errorf("%w: q %.3f must be positive", ErrInvalidBand, b.Q)
	}
	b.GainDB = lo.Clamp(b.GainDB, MinGain, MaxGain)
	return b, nil
}

// design computes the peaking coefficients for b at sampleRate. Bands that are
// flat or above Nyquist pass the signal through untouched.
func (b Band) design(sampleRate int) coeffs {
	if math.Abs(b.GainDB) < bypassThreshold {
		return passThrough
	}
	if b.Frequency <= 0 || b.Frequency >= float64(sampleRate)/2 || b.Q <= 0 {
		return passThrough
	}

	a := math.Pow(10, b.GainDB/40)
	w0 := 2 * math.Pi * b.Frequency / float64(sampleRate)
	alpha := math.Sin(w0) / (2 * b.Q)
	cosw0 := math.Cos(w0)

	a0 := 1 + alpha/a
	return coeffs{
		b0: (1 + alpha*a) / a0,
		b1: (-2 * cosw0) / a0,
		b2: (1 - alpha*a) / a0,
		a1: (-2 * cosw0) / a0,
		a2: (1 - alpha/a) / a0,
	}
}

// state is the Direct Form I history of one filter on one channel
type state struct {
	x1, x2 float64
	y1, y2 float64
}

func (s *state) step(c *coeffs, x float64) float64 {
	y := c.b0*x + c.b1*s.x1 + c.b2*s.x2 - c.a1*s.y1 - c.a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}
