// ABOUTME: Named equalizer presets
// ABOUTME: Gain curves for the default ten-band chain
package eq

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ErrUnknownPreset is returned by ApplyPreset for names not in the catalog
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named gain curve for the default bands
type Preset struct {
	Name  string
	Gains []float64
}

var presets = []Preset{
	{"flat", []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{"pop", []float64{4, 3, 2, 0, -1, -1, 2, 3, 4, 5}},
	{"rock", []float64{5, 4, 3, 2, -1, 0, 2, 4, 5, 6}},
	{"classical", []float64{0, 0, 0, 0, 0, 1, 2, 3, 3, 2}},
	{"jazz", []float64{2, 2, 1, 1, 2, 3, 4, 4, 3, 2}},
	{"vocal", []float64{-2, -1, 0, 2, 4, 5, 4, 2, 0, -1}},
	{"bass_boost", []float64{9, 8, 7, 5, 2, 0, -1, -1, 0, 1}},
	{"soft", []float64{-2, -2, -1, -1, -1, -1, -1, -2, -2, -3}},
}

// PresetNames returns the preset names in catalog order
func PresetNames() []string {
	return lo.Map(presets, func(p Preset, _ int) string { return p.Name })
}

// LookupPreset returns a copy of the named preset
func LookupPreset(name string) (Preset, bool) {
	p, ok := lo.Find(presets, func(p Preset) bool { return p.Name == name })
	if !ok {
		return Preset{}, false
	}
	return Preset{Name: p.Name, Gains: slices.Clone(p.Gains)}, true
}

// MatchPreset returns the name of the preset whose gains are all within 0.1 dB
// of gains, or "custom"
func MatchPreset(gains []float64) string {
	p, ok := lo.Find(presets, func(p Preset) bool {
		if len(p.Gains) != len(gains) {
			return false
		}
		for i := range gains {
			if d := gains[i] - p.Gains[i]; d > 0.1 || d < -0.1 {
				return false
			}
		}
		return true
	})
	if !ok {
		return "custom"
	}
	return p.Name
}

// ApplyPreset sets every band gain from the named preset
func (c *Chain) ApplyPreset(name string) error {
	p, ok := LookupPreset(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if err := c.SetGains(p.Gains); err != nil {
		return fmt.Errorf("failed to apply preset %q: %w", name, err)
	}
	return nil
}

// Preset returns the name of the preset matching the current gains, or
// "custom"
func (c *Chain) Preset() string {
	return MatchPreset(c.Gains())
}
