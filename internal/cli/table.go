package cli

import (
	"fmt"
	"strings"
)

// DeviceRow represents a single audio device in a listing.
type DeviceRow struct {
	Name       string
	Channels   int
	SampleRate float64
	Default    bool
}

// DeviceTable formats an aligned listing of capture or playback devices.
// The name column is left-aligned, numeric columns right-aligned.
type DeviceTable struct {
	Rows []DeviceRow
}

// AddRow appends a device to the table.
func (t *DeviceTable) AddRow(name string, channels int, sampleRate float64, isDefault bool) {
	t.Rows = append(t.Rows, DeviceRow{
		Name:       name,
		Channels:   channels,
		SampleRate: sampleRate,
		Default:    isDefault,
	})
}

// String renders the table with aligned columns.
func (t *DeviceTable) String() string {
	if len(t.Rows) == 0 {
		return "no devices found\n"
	}

	headers := []string{"Ch", "Rate"}

	nameWidth := len("Device")
	for _, row := range t.Rows {
		if len(row.Name) > nameWidth {
			nameWidth = len(row.Name)
		}
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, c := range row.cells() {
			if len(c) > colWidths[i] {
				colWidths[i] = len(c)
			}
		}
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-*s  ", nameWidth, "Device"))
	for i, h := range headers {
		sb.WriteString(fmt.Sprintf("%*s  ", colWidths[i], h))
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", nameWidth, row.Name))
		for i, c := range row.cells() {
			sb.WriteString(fmt.Sprintf("%*s  ", colWidths[i], c))
		}
		if row.Default {
			sb.WriteString("(default)")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (r DeviceRow) cells() []string {
	return []string{
		fmt.Sprintf("%d", r.Channels),
		fmt.Sprintf("%.0f", r.SampleRate),
	}
}
