package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	dangerColor  = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray
	textColor    = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	noticeStyle   = lipgloss.NewStyle().Foreground(successColor)
	dangerStyle   = lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	itemStyle     = lipgloss.NewStyle().Foreground(textColor).PaddingLeft(2)
	doneItemStyle = lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true).PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)

	helpKeyStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)

	frameStyle = lipgloss.NewStyle().Padding(1, 2)
)
