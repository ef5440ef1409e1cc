// ABOUTME: play command
// ABOUTME: Plays files in order with a TUI or streaming logs
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/resonate-local/internal/app"
	"github.com/Resonate-Protocol/resonate-local/internal/ui"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-local/pkg/player"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	statusInterval = 250 * time.Millisecond
	logInterval    = 5 * time.Second
)

type playOptions struct {
	driver    string
	blockSize int
	volume    float64
	preset    string
	noEQ      bool
	fadeIn    time.Duration
	fadeOut   time.Duration
	sleep     time.Duration
	noTUI     bool
	repeat    bool
}

func playCmd(global *globalOptions) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play <file>...",
		Short: "Play audio files in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), global, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.driver, "driver", "d", "malgo", fmt.Sprintf("Output driver (%v)", output.Names()))
	f.IntVar(&opts.blockSize, "block-size", output.DefaultBlockSize, "Frames per output block")
	f.Float64Var(&opts.volume, "volume", 1, "Initial volume (0-1)")
	f.StringVarP(&opts.preset, "preset", "p", "flat", "Equalizer preset")
	f.BoolVar(&opts.noEQ, "no-eq", false, "Start with the equalizer bypassed")
	f.DurationVar(&opts.fadeIn, "fade-in", 0, "Fade-in at track start")
	f.DurationVar(&opts.fadeOut, "fade-out", 0, "Fade-out before track end")
	f.DurationVar(&opts.sleep, "sleep", 0, "Stop playback after this long")
	f.BoolVar(&opts.noTUI, "no-tui", false, "Disable TUI, use streaming logs instead")
	f.BoolVarP(&opts.repeat, "repeat", "r", false, "Repeat the file list")
	return cmd
}

func runPlay(ctx context.Context, global *globalOptions, opts *playOptions, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	useTUI := !opts.noTUI

	logCloser, err := setupLogging(global, !useTUI)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	drv, err := output.New(opts.driver)
	if err != nil {
		return err
	}
	if c, ok := drv.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	p, err := app.New(app.Config{
		Files:  files,
		Repeat: opts.repeat,
		Engine: player.Config{
			Driver:    drv,
			BlockSize: opts.blockSize,
			Preset:    opts.preset,
			DisableEQ: opts.noEQ,
		},
		FadeIn:     opts.fadeIn,
		FadeOut:    opts.fadeOut,
		SleepTimer: opts.sleep,
	})
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing player")
		}
	}()
	p.Engine().SetVolume(opts.volume)

	log.Info().Strs("files", files).Str("driver", drv.Name()).Bool("tui", useTUI).Msg("Starting playback")

	if err := p.Start(); err != nil {
		return err
	}

	// TUI setup
	var tuiProg *tea.Program
	var ctrl *ui.Controls
	tuiDone := make(chan struct{})

	if useTUI {
		ctrl = ui.NewControls()
		tuiProg, err = ui.Run(ctrl)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		go func() {
			defer close(tuiDone)
			if _, err := tuiProg.Run(); err != nil {
				log.Error().Err(err).Msg("TUI error")
			}
		}()
	} else {
		close(tuiDone)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reason := playLoop(ctx, p, ctrl, tuiProg)
	log.Info().Str("reason", reason).Msg("Playback finished")

	if tuiProg != nil {
		tuiProg.Send(ui.DoneMsg{})
		<-tuiDone
	}
	return nil
}

// playLoop forwards TUI commands to the player and publishes status until
// playback ends. It returns why it stopped.
func playLoop(ctx context.Context, p *app.Player, ctrl *ui.Controls, tuiProg *tea.Program) string {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	var commands <-chan ui.Command
	var quit <-chan struct{}
	if ctrl != nil {
		commands = ctrl.Commands
		quit = ctrl.Quit
	}

	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return "signal"
		case <-p.Done():
			return "queue finished"
		case <-quit:
			return "quit"
		case cmd := <-commands:
			applyCommand(p, cmd)
		case now := <-ticker.C:
			st := p.Status()
			if tuiProg != nil {
				tuiProg.Send(statusMsg(st))
			} else if now.Sub(lastLog) >= logInterval {
				lastLog = now
				log.Info().
					Str("mode", st.Mode.String()).
					Float64("position_s", st.Position).
					Float64("duration_s", st.Duration).
					Int("index", st.Index).
					Uint64("underruns", st.Stats.Underruns).
					Msg("Status")
			}
			if sleptOut(st) {
				return "sleep timer"
			}
		}
	}
}

// sleptOut reports whether the sleep timer stopped playback
func sleptOut(st app.Status) bool {
	return st.Mode == player.Stopped && st.Position == 0 && !st.SleepTimerActive
}

// applyCommand carries out a TUI command
func applyCommand(p *app.Player, cmd ui.Command) {
	eng := p.Engine()

	var err error
	switch cmd.Kind {
	case ui.TogglePause:
		eng.TogglePause()
	case ui.Seek:
		eng.SeekRelative(cmd.Delta)
	case ui.SetVolume:
		eng.SetVolume(cmd.Value)
	case ui.SetEQEnabled:
		eng.SetEQEnabled(cmd.Enabled)
	case ui.ApplyPreset:
		err = eng.ApplyPreset(cmd.Preset)
	case ui.Next:
		err = p.Next()
	case ui.Prev:
		err = p.Prev()
	case ui.SetSleep:
		if cmd.Sleep <= 0 {
			eng.CancelSleepTimer()
		} else {
			err = eng.SetSleepTimer(cmd.Sleep)
		}
	}

	if err != nil && !errors.Is(err, app.ErrQueueExhausted) && !errors.Is(err, player.ErrLoadCanceled) {
		log.Warn().Err(err).Int("command", int(cmd.Kind)).Msg("Command failed")
	}
}

func statusMsg(st app.Status) ui.StatusMsg {
	return ui.StatusMsg{
		Status:  st.Status,
		Stats:   st.Stats,
		Index:   st.Index,
		Total:   st.Total,
		Gains:   st.Gains,
		Samples: st.Samples,
	}
}
