// Package ui provides the Bubbletea terminal interface: live gate state,
// the mute toggle, and the visual flash overlay.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/univrsal/muted-notification/internal/indicator"
)

// pollInterval is the coarse cadence at which the flash overlay is read.
// The flash has no hard real-time requirement; 100ms matches the original
// indicator's timer.
const pollInterval = 100 * time.Millisecond

// Model is the Bubbletea model. It owns nothing: mute state lives in an
// atomic toggled through ToggleMute, flash state lives in the overlay, and
// gate state arrives as StatusMsg from the processing goroutine.
type Model struct {
	// ToggleMute flips the monitored source's mute state and returns
	// the new value. Wired by the caller.
	ToggleMute func() bool

	// Overlay is the shared flash state written by the trigger.
	Overlay *indicator.Overlay

	// StatusChan receives sampled filter state from the processing
	// goroutine.
	StatusChan chan tea.Msg

	// Current display state
	Muted       bool
	GateOpen    bool
	Attenuation float32
	LevelDB     float64

	FlashVisible bool
	FlashSize    int

	Width  int
	Height int
}

// NewModel creates the UI model. The source starts muted so the tool is
// armed immediately; the first toggle unmutes.
func NewModel(overlay *indicator.Overlay, toggle func() bool, statusChan chan tea.Msg) Model {
	return Model{
		ToggleMute: toggle,
		Overlay:    overlay,
		StatusChan: statusChan,
		Muted:      true,
		LevelDB:    -120.0,
	}
}

// Init starts the status listener and the overlay poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForStatus(m.StatusChan), pollOverlay())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "m", " ":
			m.Muted = m.ToggleMute()
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StatusMsg:
		m.Muted = msg.Muted
		m.GateOpen = msg.GateOpen
		m.Attenuation = msg.Attenuation
		m.LevelDB = msg.LevelDB
		return m, waitForStatus(m.StatusChan)

	case tickMsg:
		m.FlashVisible, m.FlashSize = m.Overlay.Visible()
		return m, pollOverlay()
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}
	return renderMain(m)
}

// waitForStatus creates a command that waits for the next status sample.
func waitForStatus(statusChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-statusChan
	}
}

// pollOverlay schedules the next flash overlay read.
func pollOverlay() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
