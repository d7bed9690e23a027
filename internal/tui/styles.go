package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)

	selectedModelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	otherModelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	userBubbleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	botBubbleStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)

	moodStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	systemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hintStyle    = lipgloss.NewStyle().Faint(true)

	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)

	infoToastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Padding(0, 1)
	errorToastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Padding(0, 1)
)

// Rows taken by everything except the transcript viewport.
const (
	headerHeight  = 2
	inputHeight   = 3
	footerHeight  = 2
	paddingHeight = 1
)
