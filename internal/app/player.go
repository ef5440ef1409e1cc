// ABOUTME: Main player application orchestration
// ABOUTME: Plays a queue of files through the engine, advancing on track end
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-local/pkg/player"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyQueue is returned by New without files
	ErrEmptyQueue = errors.New("no files to play")

	// ErrQueueExhausted is returned when no further file can be played
	ErrQueueExhausted = errors.New("end of queue")
)

// restartThreshold is how far into a track Prev restarts it instead of
// going to the previous file
const restartThreshold = 3.0

// spectrumWindow is the number of output samples included in Status
const spectrumWindow = 2048

// Config holds application configuration
type Config struct {
	Files  []string
	Repeat bool

	// Engine configures the playback engine
	Engine player.Config

	FadeIn     time.Duration
	FadeOut    time.Duration
	SleepTimer time.Duration

	Logger *zerolog.Logger
}

// Status combines engine state with queue position
type Status struct {
	player.Status
	Stats player.Stats
	Index int // one-based
	Total int
	Gains []float64

	// Samples is the most recent output window, for spectrum display
	Samples []float64
}

// Player plays a queue of files
type Player struct {
	config Config
	engine *player.Engine
	queue  *Queue
	log    zerolog.Logger

	// nav serializes queue navigation from the UI and the end callback
	nav sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
}

// New creates the player and its engine
func New(config Config) (*Player, error) {
	queue := NewQueue(config.Files, config.Repeat)
	if queue.Len() == 0 {
		return nil, ErrEmptyQueue
	}

	logger := log.With().Str("component", "app").Logger()
	if config.Logger != nil {
		logger = config.Logger.With().Str("component", "app").Logger()
		if config.Engine.Logger == nil {
			config.Engine.Logger = config.Logger
		}
	}

	eng, err := player.New(config.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	eng.SetFade(config.FadeIn, config.FadeOut)

	p := &Player{
		config: config,
		engine: eng,
		queue:  queue,
		log:    logger,
		done:   make(chan struct{}),
	}
	eng.SetOnEnd(p.trackEnded)
	return p, nil
}

// Engine returns the playback engine
func (p *Player) Engine() *player.Engine {
	return p.engine
}

// Done is closed when the queue has been played out
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Start plays the first playable file and arms the sleep timer
func (p *Player) Start() error {
	p.nav.Lock()
	err := p.playCurrent()
	p.nav.Unlock()
	if err != nil {
		return err
	}

	if p.config.SleepTimer > 0 {
		if err := p.engine.SetSleepTimer(p.config.SleepTimer); err != nil {
			return fmt.Errorf("failed to set sleep timer: %w", err)
		}
	}
	return nil
}

// Next skips to the following file
func (p *Player) Next() error {
	p.nav.Lock()
	defer p.nav.Unlock()

	if !p.queue.Advance() {
		p.finish()
		return ErrQueueExhausted
	}
	return p.playCurrent()
}

// Prev restarts the current file, or goes to the previous one near its start
func (p *Player) Prev() error {
	p.nav.Lock()
	defer p.nav.Unlock()

	if p.engine.Position() > restartThreshold || !p.queue.Back() {
		p.engine.Seek(0)
		return nil
	}
	return p.playCurrent()
}

// Status returns a snapshot for display
func (p *Player) Status() Status {
	index, total := p.queue.Position()
	return Status{
		Status:  p.engine.Status(),
		Stats:   p.engine.Stats(),
		Index:   index,
		Total:   total,
		Gains:   p.engine.Equalizer().Gains(),
		Samples: p.engine.Samples(spectrumWindow),
	}
}

// Close stops playback and releases the engine
func (p *Player) Close() error {
	p.finish()
	return p.engine.Close()
}

// trackEnded is the engine end callback
func (p *Player) trackEnded() {
	ended := p.engine.EndedTrack()

	p.nav.Lock()
	defer p.nav.Unlock()

	// Next or Prev loaded another file while this callback waited for nav
	if p.engine.Status().TrackID != ended {
		p.log.Debug().Str("track", ended.String()).Msg("Ignoring end of a replaced track")
		return
	}

	if !p.queue.Advance() {
		p.log.Info().Msg("Queue finished")
		p.finish()
		return
	}
	if err := p.playCurrent(); err != nil {
		if errors.Is(err, player.ErrLoadCanceled) {
			p.log.Info().Msg("Playback stopped while the next file was loading")
			return
		}
		p.log.Error().Err(err).Msg("Failed to continue playback")
	}
}

// playCurrent loads and plays the file at the cursor, skipping files that fail
// to load. Caller holds nav.
func (p *Player) playCurrent() error {
	var lastErr error
	for attempts := p.queue.Len(); attempts > 0; attempts-- {
		path, ok := p.queue.Current()
		if !ok {
			break
		}

		index, total := p.queue.Position()
		if err := p.engine.Load(path); err != nil {
			// Stop or Close overtook the load; there is nothing to skip to
			if errors.Is(err, player.ErrLoadCanceled) || errors.Is(err, player.ErrClosed) {
				return err
			}
			p.log.Warn().Err(err).Str("path", path).Msg("Skipping file")
			lastErr = err
			if !p.queue.Advance() {
				break
			}
			continue
		}

		p.log.Info().Str("path", path).Int("index", index).Int("total", total).Msg("Now playing")
		return p.engine.Play()
	}

	p.finish()
	if lastErr != nil {
		return fmt.Errorf("%w: %w", ErrQueueExhausted, lastErr)
	}
	return ErrQueueExhausted
}

func (p *Player) finish() {
	p.doneOnce.Do(func() { close(p.done) })
}
