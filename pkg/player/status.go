// ABOUTME: Engine status snapshot and counters
// ABOUTME: Read-only views for user interfaces and logs
package player

import (
	"github.com/google/uuid"
)

// Status is a snapshot of the engine state
type Status struct {
	Mode       Mode
	Position   float64 // seconds
	Duration   float64 // seconds
	Volume     float64
	EQEnabled  bool
	Preset     string
	TrackID    uuid.UUID
	Path       string
	Codec      string
	SampleRate int

	SleepTimerActive    bool
	SleepTimerRemaining float64 // seconds
}

// Stats are cumulative counters since the engine was created
type Stats struct {
	Blocks          uint64 // blocks requested by the driver
	Underruns       uint64
	Overruns        uint64
	RecoveredErrors uint64 // blocks replaced by silence after a failure
}

// Status returns a snapshot of the engine state
func (e *Engine) Status() Status {
	remaining, active := e.SleepTimerRemaining()

	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Mode:                e.mode,
		Position:            e.positionLocked(),
		Duration:            e.track.Seconds(),
		Volume:              e.volume,
		EQEnabled:           e.eqEnabled,
		Preset:              e.chain.Preset(),
		SleepTimerActive:    active,
		SleepTimerRemaining: remaining.Seconds(),
	}
	if e.track != nil {
		st.TrackID = e.track.ID
		st.Path = e.track.Path
		st.Codec = e.track.Source.Codec
		st.SampleRate = e.track.SampleRate
	}
	return st
}

// Stats returns the cumulative counters
func (e *Engine) Stats() Stats {
	return Stats{
		Blocks:          e.stats.blocks.Load(),
		Underruns:       e.stats.underruns.Load(),
		Overruns:        e.stats.overruns.Load(),
		RecoveredErrors: e.stats.recovered.Load(),
	}
}
