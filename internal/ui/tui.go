// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for session status display
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NewModel creates a new TUI model
func NewModel() Model {
	return Model{
		state: "idle",
	}
}

// Run starts the TUI program. Callers feed it StatusMsg values with
// Program.Send and a DoneMsg to end it.
func Run() *tea.Program {
	return tea.NewProgram(NewModel(), tea.WithAltScreen())
}
