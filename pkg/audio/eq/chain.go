// ABOUTME: Multi-band equalizer chain
// ABOUTME: Bands in series per channel with atomically published coefficients
package eq

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// bank is an immutable snapshot of the band settings
type bank struct {
	sampleRate int
	bands      []Band
	coeffs     []coeffs
}

func newBank(sampleRate int, bands []Band) *bank {
	b := &bank{
		sampleRate: sampleRate,
		bands:      bands,
		coeffs:     make([]coeffs, len(bands)),
	}
	for i, band := range bands {
		b.coeffs[i] = band.design(sampleRate)
	}
	return b
}

func (b *bank) flat() bool {
	for i := range b.coeffs {
		if !b.coeffs[i].bypass {
			return false
		}
	}
	return true
}

// Chain is a bank of peaking filters applied in series to both channels
type Chain struct {
	current atomic.Pointer[bank]
	writeMu sync.Mutex

	// Touched only by Process and Reset
	history [][2]state
}

// New creates the default ten-band flat chain
func New(sampleRate int) *Chain {
	bands := lo.Map(DefaultFrequencies, func(f float64, _ int) Band {
		return Band{Frequency: f, Q: DefaultQ}
	})
	return NewWithBands(sampleRate, bands)
}

// NewWithBands creates a chain with the given bands. Gains are clamped; bands
// that cannot be realized at sampleRate pass the signal through.
func NewWithBands(sampleRate int, bands []Band) *Chain {
	own := make([]Band, len(bands))
	for i, b := range bands {
		b.GainDB = lo.Clamp(b.GainDB, MinGain, MaxGain)
		own[i] = b
	}
	c := &Chain{history: make([][2]state, len(own))}
	c.current.Store(newBank(sampleRate, own))
	return c
}

// Len returns the number of bands
func (c *Chain) Len() int {
	return len(c.current.Load().bands)
}

// SampleRate returns the rate the coefficients were computed for
func (c *Chain) SampleRate() int {
	return c.current.Load().sampleRate
}

// Bands returns a copy of the band settings
func (c *Chain) Bands() []Band {
	b := c.current.Load()
	out := make([]Band, len(b.bands))
	copy(out, b.bands)
	return out
}

// Gains returns the gain of every band in dB
func (c *Chain) Gains() []float64 {
	return lo.Map(c.current.Load().bands, func(b Band, _ int) float64 {
		return b.GainDB
	})
}

// Flat reports whether every band is bypassed
func (c *Chain) Flat() bool {
	return c.current.Load().flat()
}

// update copies the current bank, lets fn modify the band list and publishes
// the result
func (c *Chain) update(fn func(sampleRate int, bands []Band) (int, error)) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	cur := c.current.Load()
	bands := make([]Band, len(cur.bands))
	copy(bands, cur.bands)

	sampleRate, err := fn(cur.sampleRate, bands)
	if err != nil {
		return err
	}
	c.current.Store(newBank(sampleRate, bands))
	return nil
}

// SetBand replaces the parameters of band i. Invalid parameters leave the
// previous settings in force.
func (c *Chain) SetBand(i int, frequency, gainDB, q float64) error {
	return c.update(func(sampleRate int, bands []Band) (int, error) {
		if i < 0 || i >= len(bands) {
			return 0, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidBand, i, len(bands))
		}
		band, err := Band{Frequency: frequency, GainDB: gainDB, Q: q}.validate(sampleRate)
		if err != nil {
			return 0, fmt.Errorf("band %d: %w", i, err)
		}
		bands[i] = band
		return sampleRate, nil
	})
}

// SetGain changes only the gain of band i
func (c *Chain) SetGain(i int, gainDB float64) error {
	bands := c.current.Load().bands
	if i < 0 || i >= len(bands) {
		return fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidBand, i, len(bands))
	}
	return c.SetBand(i, bands[i].Frequency, gainDB, bands[i].Q)
}

// SetGains sets the gain of every band at once. The slice length must match
// the number of bands.
func (c *Chain) SetGains(gains []float64) error {
	return c.update(func(sampleRate int, bands []Band) (int, error) {
		if len(gains) != len(bands) {
			return 0, fmt.Errorf("%w: got %d gains for %d bands", ErrInvalidBand, len(gains), len(bands))
		}
		for i, g := range gains {
			if math.IsNaN(g) || math.IsInf(g, 0) {
				return 0, fmt.Errorf("%w: band %d: non-finite gain", ErrInvalidBand, i)
			}
			bands[i].GainDB = lo.Clamp(g, MinGain, MaxGain)
		}
		return sampleRate, nil
	})
}

// SetSampleRate recomputes every band for a new sample rate. Bands at or above
// the new Nyquist frequency pass the signal through until the rate allows
// them again.
func (c *Chain) SetSampleRate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	return c.update(func(_ int, _ []Band) (int, error) {
		return sampleRate, nil
	})
}

// Reset zeroes the filter history of every band and channel
func (c *Chain) Reset() {
	for i := range c.history {
		c.history[i] = [2]state{}
	}
}

// Process runs the chain over block in place. It returns ErrUnstable if any
// output sample is not finite; the filter history is reset in that case.
func (c *Chain) Process(block [][2]float32) error {
	b := c.current.Load()

	active := 0
	for i := range b.coeffs {
		if b.coeffs[i].bypass {
			// A band coming back from bypass starts from silence
			c.history[i] = [2]state{}
			continue
		}
		active++
	}
	if active == 0 {
		return nil
	}

	unstable := false
	for n := range block {
		for ch := 0; ch < 2; ch++ {
			x := float64(block[n][ch])
			for i := range b.coeffs {
				if b.coeffs[i].bypass {
					continue
				}
				x = c.history[i][ch].step(&b.coeffs[i], x)
			}
			y := float32(x)
			if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
				unstable = true
			}
			block[n][ch] = y
		}
	}

	if unstable {
		c.Reset()
		return ErrUnstable
	}
	return nil
}
