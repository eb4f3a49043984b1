package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is a minimal y/n prompt. Anything but an explicit yes
// answers no.
type confirmModel struct {
	prompt   string
	answer   bool
	answered bool
}

// Init implements tea.Model
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			m.answered = true
			return m, tea.Quit

		case tea.KeyRunes:
			switch strings.ToLower(string(msg.Runes)) {
			case "y":
				m.answer = true
				m.answered = true
				return m, tea.Quit
			case "n":
				m.answered = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// View implements tea.Model
func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	return fmt.Sprintf("%s %s ", m.prompt, HintStyle.Render("[y/N]"))
}

// Confirm asks the user a yes/no question and returns the answer.
func Confirm(prompt string) (bool, error) {
	p := tea.NewProgram(confirmModel{prompt: prompt})
	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running prompt: %w", err)
	}
	return finalModel.(confirmModel).answer, nil
}
