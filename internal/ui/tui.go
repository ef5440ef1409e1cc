// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the command channel back to the player
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies a user action
type CommandKind int

const (
	TogglePause CommandKind = iota
	Seek
	SetVolume
	SetEQEnabled
	ApplyPreset
	Next
	Prev
	SetSleep
)

// Command is a user action for the player to carry out
type Command struct {
	Kind    CommandKind
	Delta   float64 // Seek, seconds
	Value   float64 // SetVolume
	Enabled bool    // SetEQEnabled
	Preset  string  // ApplyPreset
	Sleep   time.Duration
}

// Controls holds channels for communication from the TUI to the player
type Controls struct {
	Commands chan Command
	Quit     chan struct{}
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// send forwards cmd without blocking the UI. Commands are dropped when the
// player falls behind.
func (c *Controls) send(cmd Command) {
	if c == nil {
		return
	}
	select {
	case c.Commands <- cmd:
	default:
	}
}

func (c *Controls) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quit <- struct{}{}:
	default:
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Controls) Model {
	return Model{
		volume:    1,
		eqEnabled: true,
		preset:    "flat",
		controls:  ctrl,
		vis:       NewVisualizer(),
	}
}

// Run creates the TUI program. The caller runs it and feeds it StatusMsg values
// with Send.
func Run(ctrl *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
