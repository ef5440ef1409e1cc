// ABOUTME: Time source used by the engine
// ABOUTME: Wraps the time package so tests can control timers
package player

import "time"

// Timer is a pending AfterFunc call
type Timer interface {
	Stop() bool
}

// Clock provides the current time and deferred calls
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
