package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Vigil.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Teal-to-blue gradient, one color per line.
	lines := []struct {
		text  string
		color string
	}{
		{" __     ___       _ _ ", "#2dd4bf"},
		{" \\ \\   / (_) __ _(_) |", "#22d3ee"},
		{"  \\ \\ / /| |/ _` | | |", "#38bdf8"},
		{"   \\ V / | | (_| | | |", "#60a5fa"},
		{"    \\_/  |_|\\__, |_|_|", "#818cf8"},
		{"            |___/     ", "#a78bfa"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Printf("  change detection engine %s\n\n", strings.TrimSpace(version))
}
