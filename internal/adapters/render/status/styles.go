package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	account   lipgloss.Style
	warning   lipgloss.Style
	empty     lipgloss.Style
	stateGood lipgloss.Style
	stateBusy lipgloss.Style
	stateGone lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:     lipgloss.NewStyle().Faint(true),
		stateGood: lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		stateBusy: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		stateGone: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}
