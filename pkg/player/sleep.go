// ABOUTME: Sleep timer
// ABOUTME: Stops playback after a fixed delay
package player

import (
	"fmt"
	"sync"
	"time"
)

type sleepTimer struct {
	mu       sync.Mutex
	timer    Timer
	deadline time.Time
	id       uint64
}

// SetSleepTimer stops playback after d, replacing any running sleep timer
func (e *Engine) SetSleepTimer(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid sleep timer duration: %v", d)
	}
	if e.isClosed() {
		return ErrClosed
	}

	s := &e.sleep
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.id++
	id := s.id
	s.deadline = e.clock.Now().Add(d)
	s.timer = e.clock.AfterFunc(d, func() { e.sleepExpired(id) })

	e.log.Info().Dur("after", d).Msg("Sleep timer set")
	return nil
}

// CancelSleepTimer disarms the sleep timer. Returns false if none was set.
func (e *Engine) CancelSleepTimer() bool {
	s := &e.sleep
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.id++
	return true
}

// SleepTimerRemaining returns the time until the sleep timer fires
func (e *Engine) SleepTimerRemaining() (time.Duration, bool) {
	s := &e.sleep
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return 0, false
	}
	return max(s.deadline.Sub(e.clock.Now()), 0), true
}

func (e *Engine) sleepExpired(id uint64) {
	s := &e.sleep
	s.mu.Lock()
	if id != s.id || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	e.log.Info().Msg("Sleep timer expired, stopping playback")
	e.Stop()
}
