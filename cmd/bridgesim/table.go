package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/symbols"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	slotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	absentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderSlots formats the symbol table. describe maps a raw handle to what
// the host knows about it.
func renderSlots(slots []symbols.Slot, describe func(host.Raw) string, color bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	nameWidth, targetWidth := 4, 6
	for _, s := range slots {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
		targetWidth = max(targetWidth, lipgloss.Width(s.Target))
	}

	var b strings.Builder
	b.WriteString(style(titleStyle, fmt.Sprintf("Symbols (%d)", len(slots))))
	b.WriteByte('\n')
	for _, s := range slots {
		handle := style(absentStyle, "absent")
		if !s.Ref.IsZero() {
			handle = fmt.Sprintf("%#x %s", uintptr(s.Ref.Raw()), style(dimStyle, describe(s.Ref.Raw())))
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			style(kindStyle, fmt.Sprintf("%-11s", s.Kind)),
			style(slotStyle, pad(s.Name, nameWidth)),
			pad(s.Target, targetWidth),
			handle)
	}
	return strings.TrimRight(b.String(), "\n")
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
