package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kvasern/roost/internal/application"
)

func renderView(statuses []application.AccountStatus, s styles) string {
	lines := []string{
		s.title.Render("Account Pool"),
		s.header.Render(fmt.Sprintf("accounts: %d, available: %d", len(statuses), countState(statuses, "available"))),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, renderAccount(status, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(status application.AccountStatus, s styles) string {
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.account.Render(string(status.Name)),
		" ",
		stateStyle(status.State, s).Render(status.State),
	)

	if status.Quarantined {
		line += " " + s.warning.Render("[quarantined]")
	}

	return line
}

func stateStyle(state string, s styles) lipgloss.Style {
	switch state {
	case "available":
		return s.stateGood
	case "busy":
		return s.stateBusy
	default:
		return s.stateGone
	}
}

func countState(statuses []application.AccountStatus, state string) int {
	n := 0
	for _, status := range statuses {
		if status.State == state {
			n++
		}
	}
	return n
}
