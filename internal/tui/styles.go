package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	grabbedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#EE6FF8"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4672"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// FormatKey renders a key binding hint such as "space grab".
func FormatKey(key, desc string) string {
	return cursorStyle.Render(key) + " " + helpStyle.Render(desc)
}
