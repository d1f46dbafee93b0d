// Package ui provides terminal styling and status output helpers.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette
// - Default (white/black): primary text
// - Accent (teal #00AAAA): aliases, source names, highlights
// - Muted (gray): hints, secondary info

var (
	// Accent style for aliases, source names, and highlights.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA"))

	// Muted style for hints and secondary info.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis.
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold.
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA")).Bold(true)
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		disableStyles()
	}
}

func disableStyles() {
	plain := lipgloss.NewStyle()
	Accent = plain
	Muted = plain
	Bold = plain
	AccentBold = plain
}
