package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	errorBannerStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("124")).
				Padding(0, 1)

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("94")).
			Padding(0, 1)

	helpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	filterPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// pageHeader renders the profile/region/descriptor status line shown above every
// table view.
func pageHeader(profile, region, descriptorKey string, readonly bool) string {
	label := profile + " @ " + region + "  ›  " + descriptorKey
	if readonly {
		label += "  [read-only]"
	}
	return headerStyle.Render(label)
}
