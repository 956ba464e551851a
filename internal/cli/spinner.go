package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

type spinnerTickMsg struct{}

// spinner is a frame counter advanced by spinnerTickMsg.
type spinner struct {
	frame int
}

// tick schedules the next frame.
func (s spinner) tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

func (s spinner) next() spinner {
	return spinner{frame: (s.frame + 1) % len(spinnerFrames)}
}

func (s spinner) View() string {
	return styleIconSpinner.Render(spinnerFrames[s.frame])
}
