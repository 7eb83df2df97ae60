package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// approxCellPx maps the configured indicator size in pixels onto terminal
// cells. A cell is roughly 15px wide on common font sizes; height counts
// double because cells are about twice as tall as wide.
const approxCellPx = 15

// renderMain renders the full screen.
func renderMain(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderStatus(m))
	b.WriteString("\n")

	if m.FlashVisible {
		b.WriteString("\n")
		b.WriteString(renderFlash(m.FlashSize))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderFooter())

	return b.String()
}

// renderHeader renders the application header.
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render("Muted Notification 🎙")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render("Speak-while-muted detector")

	return title + "\n" + subtitle
}

// renderStatus renders the mute state and the live gate readout.
func renderStatus(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#A40000")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	if m.Muted {
		muted := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000")).
			Render("MUTED")
		content.WriteString(fmt.Sprintf("Source: %s (watching for speech)\n", muted))
	} else {
		live := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AA00")).
			Render("LIVE")
		content.WriteString(fmt.Sprintf("Source: %s\n", live))
	}

	gateState := "closed"
	if m.GateOpen {
		gateState = "open"
	}
	content.WriteString(fmt.Sprintf("Gate:   %s\n", gateState))
	content.WriteString(fmt.Sprintf("        %s\n", renderMeter(float64(m.Attenuation), 40)))
	content.WriteString(fmt.Sprintf("Level:  %.1f dB", m.LevelDB))

	return box.Render(content.String())
}

// renderMeter renders the attenuation activity meter.
func renderMeter(value float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3.0f%%", bar, value*100)
}

// renderFlash renders the red notification dot, scaled from the configured
// pixel size to terminal cells.
func renderFlash(sizePx int) string {
	w := sizePx / approxCellPx
	if w < 2 {
		w = 2
	}
	h := w / 2
	if h < 1 {
		h = 1
	}

	dot := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000"))

	row := dot.Render(strings.Repeat("█", w))
	lines := make([]string, 0, h+1)
	for i := 0; i < h; i++ {
		lines = append(lines, " "+row)
	}
	label := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render("You are muted!")
	lines = append(lines, " "+label)

	return strings.Join(lines, "\n")
}

// renderFooter renders the key hints.
func renderFooter() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("m/space: toggle mute · q: quit")
}
