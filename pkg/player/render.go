// ABOUTME: Block production for the output callback
// ABOUTME: Slices the track at the cursor and applies EQ, fade, volume and clipping
package player

import (
	"fmt"
	"math"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/output"
)

// unityTolerance is the distance from 1.0 below which volume is not applied
const unityTolerance = 1e-6

// render is the output callback. It fills out with the next block.
func (e *Engine) render(out [][2]float32, _ output.TimeInfo, flags output.StatusFlags) {
	e.stats.blocks.Add(1)
	if flags.Has(output.OutputUnderflow) {
		e.stats.underruns.Add(1)
		e.xrunLog.Warn().Stringer("flags", flags).Msg("Output underrun")
	}
	if flags.Has(output.OutputOverflow) {
		e.stats.overruns.Add(1)
		e.xrunLog.Warn().Stringer("flags", flags).Msg("Output overrun")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			e.silence(out, fmt.Errorf("panic: %v", r))
		}
	}()

	e.renderLocked(out)
}

// renderLocked runs with mu held
func (e *Engine) renderLocked(out [][2]float32) {
	if e.track == nil || e.mode != Playing {
		clear(out)
		return
	}

	n := e.track.Len()
	start := e.cursor
	end := start + len(out)
	last := end > n
	if last {
		end = n
	}

	block := out[:end-start]
	copy(block, e.track.Frames[start:end])
	clear(out[len(block):])

	e.process(block, start)
	e.tap.write(out)
	e.cursor = end

	if last {
		e.mode = Stopped
		gen := e.gen
		e.clock.AfterFunc(0, func() { e.finish(gen) })
	}
}

// process applies the effect chain in place to block, which starts at frame
// offset start of the track
func (e *Engine) process(block [][2]float32, start int) {
	if e.eqEnabled {
		if err := e.chain.Process(block); err != nil {
			e.silence(block, err)
			return
		}
	}

	e.fade.apply(block, start)

	if math.Abs(e.volume-1) >= unityTolerance {
		v := float32(e.volume)
		for i := range block {
			block[i][0] *= v
			block[i][1] *= v
		}
	}

	for i := range block {
		block[i][0] = audio.Clip(block[i][0])
		block[i][1] = audio.Clip(block[i][1])
	}
}

// silence zeroes block after a processing failure. The stream keeps running.
func (e *Engine) silence(block [][2]float32, err error) {
	clear(block)
	e.chain.Reset()
	e.stats.recovered.Add(1)
	e.xrunLog.Error().Err(err).Msg("Rendering failed, emitting silence")
}
