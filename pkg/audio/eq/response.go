// ABOUTME: Frequency response of the equalizer chain
// ABOUTME: Evaluates the combined biquad transfer function on a log grid
package eq

import (
	"math"
	"math/cmplx"
)

// ResponsePoint is the magnitude of the chain at one frequency
type ResponsePoint struct {
	Frequency   float64
	MagnitudeDB float64
}

// minResponseFrequency is the low end of the response grid
const minResponseFrequency = 20.0

// FrequencyResponse evaluates the combined magnitude response at points
// log-spaced frequencies from 20 Hz up to Nyquist
func (c *Chain) FrequencyResponse(points int) []ResponsePoint {
	if points < 2 {
		points = 2
	}
	b := c.current.Load()
	nyquist := float64(b.sampleRate) / 2
	if nyquist <= minResponseFrequency {
		return nil
	}

	lower, upper := math.Log10(minResponseFrequency), math.Log10(nyquist)
	out := make([]ResponsePoint, points)
	for p := range out {
		f := math.Pow(10, lower+(upper-lower)*float64(p)/float64(points-1))
		w := 2 * math.Pi * f / float64(b.sampleRate)
		z1 := cmplx.Exp(complex(0, -w)) // z^-1
		z2 := z1 * z1

		db := 0.0
		for i := range b.coeffs {
			k := &b.coeffs[i]
			if k.bypass {
				continue
			}
			num := complex(k.b0, 0) + complex(k.b1, 0)*z1 + complex(k.b2, 0)*z2
			den := 1 + complex(k.a1, 0)*z1 + complex(k.a2, 0)*z2
			db += 20 * math.Log10(cmplx.Abs(num/den))
		}
		out[p] = ResponsePoint{Frequency: f, MagnitudeDB: db}
	}
	return out
}
