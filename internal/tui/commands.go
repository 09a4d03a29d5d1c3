// Package tui is the interactive scenario board shown while the matrix runs.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

// TapeSource yields recorder updates until it returns an error, usually io.EOF.
type TapeSource interface {
	Read() (*progrock.StatusUpdate, error)
}

// WaitForTape returns a command that reads the next update from the tape.
func WaitForTape(tape TapeSource) tea.Cmd {
	return func() tea.Msg {
		update, err := tape.Read()
		if err != nil {
			return MsgTapeEnded{}
		}
		return MsgTapeUpdate{Update: update}
	}
}
