// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key bindings and rendering helpers
package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-local/pkg/player"
	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press feeds keys to the model and returns the updated model
func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func receive(t *testing.T, ctrl *Controls) Command {
	t.Helper()
	select {
	case cmd := <-ctrl.Commands:
		return cmd
	default:
		t.Fatal("expected a command")
		return Command{}
	}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Controls are optional for testing

	if model.volume != 1 {
		t.Errorf("expected default volume 1, got %v", model.volume)
	}

	if !model.eqEnabled {
		t.Error("expected EQ enabled initially")
	}

	if model.preset != "flat" {
		t.Errorf("expected preset 'flat', got '%s'", model.preset)
	}

	if model.quitting {
		t.Error("expected quitting to be false initially")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		Status: player.Status{
			Mode:       player.Playing,
			Position:   12.5,
			Duration:   180,
			Volume:     0.5,
			EQEnabled:  false,
			Preset:     "rock",
			Path:       "/music/song.flac",
			Codec:      "flac",
			SampleRate: 44100,
		},
		Stats: player.Stats{Blocks: 10, Underruns: 2},
		Index: 2,
		Total: 5,
		Gains: []float64{5, 4, 3, 2, -1, 0, 2, 4, 5, 6},
	})

	if model.mode != player.Playing {
		t.Errorf("expected Playing, got %v", model.mode)
	}
	if model.position != 12.5 || model.duration != 180 {
		t.Errorf("expected 12.5/180, got %v/%v", model.position, model.duration)
	}
	if model.volume != 0.5 {
		t.Errorf("expected volume 0.5, got %v", model.volume)
	}
	if model.eqEnabled {
		t.Error("expected EQ disabled")
	}
	if model.preset != "rock" {
		t.Errorf("expected preset 'rock', got '%s'", model.preset)
	}
	if model.codec != "flac" || model.sampleRate != 44100 {
		t.Errorf("expected flac 44100, got %s %d", model.codec, model.sampleRate)
	}
	if model.index != 2 || model.total != 5 {
		t.Errorf("expected 2/5, got %d/%d", model.index, model.total)
	}
	if len(model.gains) != 10 || model.gains[0] != 5 {
		t.Errorf("unexpected gains %v", model.gains)
	}
	if model.blocks != 10 || model.underruns != 2 {
		t.Errorf("unexpected stats %d/%d", model.blocks, model.underruns)
	}
}

func TestStatusMsgKeepsGainsWhenAbsent(t *testing.T) {
	model := NewModel(nil)
	model.applyStatus(StatusMsg{Gains: []float64{1, 2, 3}})
	model.applyStatus(StatusMsg{})

	if len(model.gains) != 3 {
		t.Errorf("gains should be retained, got %v", model.gains)
	}
}

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want Command
	}{
		{"space", tea.KeyMsg{Type: tea.KeySpace}, Command{Kind: TogglePause}},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, Command{Kind: Seek, Delta: -5}},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, Command{Kind: Seek, Delta: 5}},
		{"next", runeKey('n'), Command{Kind: Next}},
		{"prev", runeKey('b'), Command{Kind: Prev}},
		{"eq", runeKey('e'), Command{Kind: SetEQEnabled, Enabled: false}},
		{"preset", runeKey('p'), Command{Kind: ApplyPreset, Preset: "pop"}},
		{"sleep", runeKey('s'), Command{Kind: SetSleep, Sleep: 15 * time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewControls()
			press(NewModel(ctrl), tt.key)

			got := receive(t, ctrl)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestVolumeKeysClamp(t *testing.T) {
	ctrl := NewControls()
	model := press(NewModel(ctrl), tea.KeyMsg{Type: tea.KeyUp})

	if model.volume != 1 {
		t.Errorf("volume should stay at 1, got %v", model.volume)
	}
	if cmd := receive(t, ctrl); cmd.Kind != SetVolume || cmd.Value != 1 {
		t.Errorf("unexpected command %+v", cmd)
	}

	down := tea.KeyMsg{Type: tea.KeyDown}
	for i := 0; i < 30; i++ {
		model = press(model, down)
		<-ctrl.Commands
	}
	if model.volume != 0 {
		t.Errorf("volume should bottom out at 0, got %v", model.volume)
	}
}

func TestPresetCycle(t *testing.T) {
	ctrl := NewControls()
	model := NewModel(ctrl)
	model.preset = "custom"

	model = press(model, runeKey('p'))
	if model.preset != "flat" {
		t.Errorf("custom should cycle to flat, got %s", model.preset)
	}
	<-ctrl.Commands

	model.preset = "soft"
	model = press(model, runeKey('p'))
	if model.preset != "flat" {
		t.Errorf("last preset should wrap to flat, got %s", model.preset)
	}
}

func TestSleepCycle(t *testing.T) {
	ctrl := NewControls()
	model := NewModel(ctrl)

	var got []time.Duration
	for i := 0; i < 5; i++ {
		model = press(model, runeKey('s'))
		got = append(got, receive(t, ctrl).Sleep)
	}

	want := []time.Duration{15 * time.Minute, 30 * time.Minute, time.Hour, 0, 15 * time.Minute}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestQuitSignals(t *testing.T) {
	ctrl := NewControls()
	next, cmd := NewModel(ctrl).Update(runeKey('q'))

	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal")
	}

	// A second quit does not block on the full channel
	press(next.(Model), tea.KeyMsg{Type: tea.KeyCtrlC})
}

func TestDoneMsgQuits(t *testing.T) {
	next, cmd := NewModel(nil).Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting")
	}
}

func TestNilControls(t *testing.T) {
	// Keys must not panic without a player attached
	press(NewModel(nil), tea.KeyMsg{Type: tea.KeySpace}, runeKey('n'), runeKey('q'))
}

func TestView(t *testing.T) {
	model := NewModel(nil)
	if model.View() != "Loading..." {
		t.Errorf("expected loading view before size is known")
	}

	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	model = next.(Model)
	model.applyStatus(StatusMsg{
		Status: player.Status{
			Mode:      player.Paused,
			Position:  65,
			Duration:  200,
			Volume:    1,
			EQEnabled: true,
			Preset:    "jazz",
			Path:      "/music/track.mp3",
			Codec:     "mp3",
		},
		Gains: []float64{2, 2, 1, 1, 2, 3, 4, 4, 3, 2},
	})

	view := model.View()
	for _, want := range []string{"track.mp3", "1:05", "3:20", "jazz", "12k", "100%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatTime(125.9); got != "2:05" {
		t.Errorf("formatTime(125.9) = %q", got)
	}
	if got := formatTime(-1); got != "0:00" {
		t.Errorf("formatTime(-1) = %q", got)
	}
	if got := formatFrequency(60); got != "60" {
		t.Errorf("formatFrequency(60) = %q", got)
	}
	if got := formatFrequency(14000); got != "14k" {
		t.Errorf("formatFrequency(14000) = %q", got)
	}
	if got := renderBar(150, 100, 4); got != "████" {
		t.Errorf("renderBar overflow = %q", got)
	}
	if got := renderBar(-10, 100, 4); got != "░░░░" {
		t.Errorf("renderBar underflow = %q", got)
	}
}
