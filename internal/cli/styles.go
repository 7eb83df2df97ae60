package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette. The notification red doubles as the flash dot color in the UI.
var (
	primaryColor = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

var (
	// TitleStyle renders the tool name in headers and version output.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// ErrorStyle marks fatal startup errors on stderr.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// KeyStyle and ValueStyle pair up for labeled output lines and the
	// device listing section headers.
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints the tool name and version.
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Muted Notification 🎙"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints a startup error to stderr. Runtime errors go to the
// log file instead; this is only for failures before the TUI takes over.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
