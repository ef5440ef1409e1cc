// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines display state, key bindings and rendering
package ui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Resonate-Protocol/resonate-local/pkg/audio/eq"
	"github.com/Resonate-Protocol/resonate-local/pkg/player"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

const (
	seekStep   = 5.0  // seconds
	volumeStep = 0.05 // linear gain
)

// sleepSteps is the cycle of sleep timer durations bound to the s key.
// Zero cancels the timer.
var sleepSteps = []time.Duration{15 * time.Minute, 30 * time.Minute, 60 * time.Minute, 0}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Model represents the TUI state
type Model struct {
	// Playback
	mode     player.Mode
	position float64
	duration float64
	volume   float64

	// Track
	path       string
	codec      string
	sampleRate int
	index      int
	total      int

	// Equalizer
	eqEnabled bool
	preset    string
	gains     []float64

	// Sleep timer
	sleepActive    bool
	sleepRemaining float64
	sleepStep      int

	// Spectrum
	vis      *Visualizer
	spectrum [numBands]float64

	// Stats
	blocks    uint64
	underruns uint64
	overruns  uint64
	recovered uint64

	controls *Controls
	quitting bool

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case DoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback...\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Resonate Local Player"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTrack())
	b.WriteString(m.renderTransport())
	b.WriteString(m.renderSpectrum())
	b.WriteString(m.renderEqualizer())
	b.WriteString(m.renderStats())

	box := boxStyle
	if m.width > 4 {
		box = box.Width(min(m.width-2, 72))
	}
	return box.Render(strings.TrimRight(b.String(), "\n")) + "\n" + m.renderHelp()
}

// renderTrack renders the current file and its format
func (m Model) renderTrack() string {
	if m.path == "" && m.codec == "" {
		return valueStyle.Render("No track") + "\n\n"
	}

	name := filepath.Base(m.path)
	if m.path == "" {
		name = "(unnamed)"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Now Playing"))
	if m.total > 0 {
		b.WriteString(valueStyle.Render(fmt.Sprintf("  %d/%d", m.index, m.total)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s\n", truncate(name, 60)))
	b.WriteString(valueStyle.Render(fmt.Sprintf("  %s %dHz", m.codec, m.sampleRate)))
	b.WriteString("\n\n")
	return b.String()
}

// renderTransport renders mode, progress and volume
func (m Model) renderTransport() string {
	var b strings.Builder

	progress := 0
	if m.duration > 0 {
		progress = int(m.position / m.duration * 1000)
	}
	b.WriteString(fmt.Sprintf("%s %s %s / %s\n",
		modeIcon(m.mode),
		renderBar(progress, 1000, 30),
		formatTime(m.position),
		formatTime(m.duration)))

	b.WriteString(fmt.Sprintf("Volume: [%s] %d%%\n",
		renderBar(int(m.volume*100+0.5), 100, 10), int(m.volume*100+0.5)))

	if m.sleepActive {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Sleep in %s", formatTime(m.sleepRemaining))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderSpectrum renders the analyzer bars
func (m Model) renderSpectrum() string {
	if m.vis == nil {
		return ""
	}
	return m.vis.Render(m.spectrum, 4) + "\n\n"
}

// renderEqualizer renders one vertical-ish row per band
func (m Model) renderEqualizer() string {
	var b strings.Builder

	state := "on"
	if !m.eqEnabled {
		state = "bypassed"
	}
	b.WriteString(headerStyle.Render("Equalizer"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("  %s (%s)", m.preset, state)))
	b.WriteString("\n")

	for i, gain := range m.gains {
		freq := ""
		if i < len(eq.DefaultFrequencies) {
			freq = formatFrequency(eq.DefaultFrequencies[i])
		}
		level := int((gain - eq.MinGain) / (eq.MaxGain - eq.MinGain) * 100)
		b.WriteString(fmt.Sprintf("  %5s [%s] %+5.1f dB\n", freq, renderBar(level, 100, 12), gain))
	}
	b.WriteString("\n")
	return b.String()
}

// renderStats renders output health counters
func (m Model) renderStats() string {
	line := fmt.Sprintf("Blocks: %d  Underruns: %d  Overruns: %d  Recovered: %d",
		m.blocks, m.underruns, m.overruns, m.recovered)
	if m.underruns > 0 || m.recovered > 0 {
		return warnStyle.Render(line) + "\n"
	}
	return valueStyle.Render(line) + "\n"
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("space:Pause  ←/→:Seek  ↑/↓:Volume  e:EQ  p:Preset  n/b:Next/Prev  s:Sleep  q:Quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.controls.quit()
		return m, tea.Quit
	case " ":
		m.controls.send(Command{Kind: TogglePause})
	case "left":
		m.controls.send(Command{Kind: Seek, Delta: -seekStep})
	case "right":
		m.controls.send(Command{Kind: Seek, Delta: seekStep})
	case "up":
		m.volume = lo.Clamp(m.volume+volumeStep, 0, 1)
		m.controls.send(Command{Kind: SetVolume, Value: m.volume})
	case "down":
		m.volume = lo.Clamp(m.volume-volumeStep, 0, 1)
		m.controls.send(Command{Kind: SetVolume, Value: m.volume})
	case "e":
		m.eqEnabled = !m.eqEnabled
		m.controls.send(Command{Kind: SetEQEnabled, Enabled: m.eqEnabled})
	case "p":
		m.preset = nextPreset(m.preset)
		m.controls.send(Command{Kind: ApplyPreset, Preset: m.preset})
	case "n":
		m.controls.send(Command{Kind: Next})
	case "b":
		m.controls.send(Command{Kind: Prev})
	case "s":
		d := sleepSteps[m.sleepStep%len(sleepSteps)]
		m.sleepStep++
		m.controls.send(Command{Kind: SetSleep, Sleep: d})
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.mode = msg.Mode
	m.position = msg.Position
	m.duration = msg.Duration
	m.volume = msg.Volume
	m.path = msg.Path
	m.codec = msg.Codec
	m.sampleRate = msg.SampleRate
	m.index = msg.Index
	m.total = msg.Total
	m.eqEnabled = msg.EQEnabled
	if msg.Preset != "" {
		m.preset = msg.Preset
	}
	if msg.Gains != nil {
		m.gains = slices.Clone(msg.Gains)
	}
	m.sleepActive = msg.SleepTimerActive
	m.sleepRemaining = msg.SleepTimerRemaining
	m.blocks = msg.Stats.Blocks
	m.underruns = msg.Stats.Underruns
	m.overruns = msg.Stats.Overruns
	m.recovered = msg.Stats.RecoveredErrors

	if m.vis != nil {
		samples := msg.Samples
		if msg.Mode != player.Playing {
			samples = nil
		}
		m.spectrum = m.vis.Analyze(samples, msg.SampleRate)
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	player.Status
	Stats player.Stats
	Index int
	Total int
	Gains []float64

	// Samples is the latest output window for the spectrum analyzer
	Samples []float64
}

// DoneMsg tells the TUI playback is over
type DoneMsg struct{}

// nextPreset returns the preset after name, or the first one when name is not
// a known preset
func nextPreset(name string) string {
	names := eq.PresetNames()
	i := slices.Index(names, name)
	return names[(i+1)%len(names)]
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := lo.Clamp((value*width)/max, 0, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func formatFrequency(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%gk", hz/1000)
	}
	return fmt.Sprintf("%g", hz)
}

func modeIcon(mode player.Mode) string {
	switch mode {
	case player.Playing:
		return "▶"
	case player.Paused:
		return "⏸"
	case player.Stopped:
		return "■"
	default:
		return "·"
	}
}
