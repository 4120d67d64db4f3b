package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)

	AddedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	RemovedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	ChangedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
)

func Header(text string) string {
	return HeaderStyle.Render(text)
}

func Success(text string) string {
	return SuccessStyle.Render(text)
}

func Warning(text string) string {
	return WarningStyle.Render(text)
}

func Error(text string) string {
	return ErrorStyle.Render(text)
}

func Muted(text string) string {
	return MutedStyle.Render(text)
}

func Key(text string) string {
	return KeyStyle.Render(text)
}

func Label(text string) string {
	return LabelStyle.Render(text)
}

func Added(text string) string {
	return AddedStyle.Render(text)
}

func Removed(text string) string {
	return RemovedStyle.Render(text)
}

func Changed(text string) string {
	return ChangedStyle.Render(text)
}

// Pad renders key in KeyStyle padded to width, for aligned KEY value
// listings.
func Pad(key string, width int) string {
	if n := width - len(key); n > 0 {
		return Key(key) + strings.Repeat(" ", n)
	}
	return Key(key)
}
