// ABOUTME: Bubbletea model for the playback session TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Session
	voiceName string
	text      string
	sessionID string

	// Stream format
	sampleRate int
	channels   int

	// Progress
	state      string
	downloaded int64
	played     int64
	err        string

	// Debug
	showDebug bool

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
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSession()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the voice and playback state
func (m Model) renderHeader() string {
	voice := m.voiceName
	if voice == "" {
		voice = "(unknown voice)"
	}

	return fmt.Sprintf(`┌─ Vocalis ────────────────────────────────────────────┐
│ Voice:  %-45s │
│ State:  %s %-42s │
├──────────────────────────────────────────────────────┤
`, truncate(voice, 45), stateIcon(m.state), m.state)
}

// renderSession renders what is being spoken and the stream format
func (m Model) renderSession() string {
	s := ""
	if m.text != "" {
		s += fmt.Sprintf("│ Text:   %-45s │\n", truncate(m.text, 45))
	} else {
		s += "│ Text:   (none)                                       │\n"
	}

	if m.sampleRate > 0 {
		s += fmt.Sprintf("│ Format: %dHz %s%-31s │\n",
			m.sampleRate, channelName(m.channels), "")
	} else {
		s += "│ Format: (waiting for header)                         │\n"
	}

	if m.err != "" {
		s += fmt.Sprintf("│ Error:  %-45s │\n", truncate(m.err, 45))
	}

	return s
}

// renderStats renders download and playback progress
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Downloaded: %d bytes  Played: %d blocks%-8s │
│                                                      │
`, m.downloaded, m.played, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ d:Debug  q:Quit                                      │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Session: %-40s  │
`, m.sessionID)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.VoiceName != "" {
		m.voiceName = msg.VoiceName
	}
	if msg.Text != "" {
		m.text = msg.Text
	}
	if msg.SessionID != "" {
		m.sessionID = msg.SessionID
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
	}
	if msg.Downloaded != 0 {
		m.downloaded = msg.Downloaded
	}
	if msg.Played != 0 {
		m.played = msg.Played
	}
	if msg.Err != "" {
		m.err = msg.Err
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	VoiceName  string
	Text       string
	SessionID  string
	State      string
	SampleRate int
	Channels   int
	Downloaded int64
	Played     int64
	Err        string
}

// DoneMsg ends the TUI once the session finishes
type DoneMsg struct{}

// Utility functions
func stateIcon(state string) string {
	switch state {
	case "streaming", "draining":
		return "▶"
	case "finished":
		return "✓"
	case "downloading":
		return "⇣"
	default:
		return "·"
	}
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}
