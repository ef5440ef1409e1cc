// ABOUTME: Tests for the CLI commands
// ABOUTME: Tests tone, info and presets output and TUI command handling
package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-local/internal/app"
	"github.com/Resonate-Protocol/resonate-local/internal/ui"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/eq"
	"github.com/Resonate-Protocol/resonate-local/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-local/pkg/player"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestTone(t *testing.T, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, writeTone(path, &toneOptions{
		frequency:  440,
		seconds:    seconds,
		amplitude:  0.5,
		sampleRate: 8000,
		channels:   2,
		bitDepth:   16,
	}))
	return path
}

func TestToneAndInfo(t *testing.T) {
	path := writeTestTone(t, 0.5)

	var out bytes.Buffer
	require.NoError(t, runInfo(&out, decode.NewDefault(), []string{path}))

	text := out.String()
	assert.Contains(t, text, "Sample rate: 8000 Hz")
	assert.Contains(t, text, "Channels:    2")
	assert.Contains(t, text, "Bit depth:   16-bit")
	assert.Contains(t, text, "Frames:      4000")
}

func TestInfoReportsFailures(t *testing.T) {
	good := writeTestTone(t, 0.1)
	missing := filepath.Join(t.TempDir(), "missing.wav")

	var out bytes.Buffer
	err := runInfo(&out, decode.NewDefault(), []string{good, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out.String(), "missing.wav")
}

func TestToneRejectsBadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	assert.Error(t, writeTone(path, &toneOptions{frequency: 0, seconds: 1, sampleRate: 8000, channels: 1, bitDepth: 16}))
	assert.Error(t, writeTone(path, &toneOptions{frequency: 440, seconds: 1, sampleRate: 8000, channels: 1, bitDepth: 12}))
}

func TestListPresets(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listPresets(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(eq.PresetNames())+1)
	assert.Contains(t, lines[0], "60")
	assert.Contains(t, lines[0], "16k")
	assert.True(t, strings.HasPrefix(lines[1], "flat"))
}

func TestShowResponse(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, showResponse(&out, "bass_boost", 44100, 8))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 9)
	assert.Contains(t, lines[0], "bass_boost")

	assert.ErrorIs(t, showResponse(&out, "nope", 44100, 8), eq.ErrUnknownPreset)
	assert.Error(t, showResponse(&out, "flat", 0, 8))
}

func TestRootCommandTree(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"play", "info", "presets", "tone"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestApplyCommand(t *testing.T) {
	path := writeTestTone(t, 2)
	drv := output.NewManual()
	nop := zerolog.Nop()

	p, err := app.New(app.Config{
		Files:  []string{path},
		Logger: &nop,
		Engine: player.Config{Driver: drv, Decoder: decode.NewDefault()},
	})
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Start())
	eng := p.Engine()

	applyCommand(p, ui.Command{Kind: ui.TogglePause})
	assert.Equal(t, player.Paused, eng.Mode())
	applyCommand(p, ui.Command{Kind: ui.TogglePause})
	assert.Equal(t, player.Playing, eng.Mode())

	applyCommand(p, ui.Command{Kind: ui.Seek, Delta: 1})
	assert.InDelta(t, 1.0, eng.Position(), 1e-9)

	applyCommand(p, ui.Command{Kind: ui.SetVolume, Value: 0.25})
	assert.Equal(t, 0.25, eng.Volume())

	applyCommand(p, ui.Command{Kind: ui.ApplyPreset, Preset: "rock"})
	assert.Equal(t, "rock", p.Status().Preset)

	applyCommand(p, ui.Command{Kind: ui.SetEQEnabled, Enabled: false})
	assert.False(t, p.Status().EQEnabled)

	applyCommand(p, ui.Command{Kind: ui.SetSleep, Sleep: time.Hour})
	remaining, active := eng.SleepTimerRemaining()
	assert.True(t, active)
	assert.Greater(t, remaining, 59*time.Minute)

	applyCommand(p, ui.Command{Kind: ui.SetSleep})
	_, active = eng.SleepTimerRemaining()
	assert.False(t, active)

	applyCommand(p, ui.Command{Kind: ui.Prev})
	assert.Zero(t, eng.Position())

	// Next past the last file ends the queue
	applyCommand(p, ui.Command{Kind: ui.Next})
	select {
	case <-p.Done():
	default:
		t.Error("expected queue to finish")
	}
}

func TestSleptOut(t *testing.T) {
	st := app.Status{}
	st.Mode = player.Stopped
	assert.True(t, sleptOut(st))

	st.Position = 3
	assert.False(t, sleptOut(st))

	st.Position = 0
	st.SleepTimerActive = true
	assert.False(t, sleptOut(st))

	st.SleepTimerActive = false
	st.Mode = player.Playing
	assert.False(t, sleptOut(st))
}
