package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: directories and file paths.
	ColorCyan = lipgloss.Color("14")

	// ColorYellow is used for skipped artifacts.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for failed files (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (directories, file paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (prefixes, separators, descriptions).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)

	// StyleFailed styles failing file names.
	StyleFailed = lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
)

// File status constants used in listings.
const (
	StatusWritten = "written"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StatusStyle returns the style for a file status. Unknown statuses are unstyled.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusWritten:
		return lipgloss.NewStyle().Foreground(ColorCyan)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return StyleFailed
	default:
		return lipgloss.NewStyle()
	}
}

// minFileColumnWidth keeps status words aligned in file listings.
const minFileColumnWidth = 48

// FormatFileLine renders a file path with a right-aligned status suffix.
func FormatFileLine(path, status string) string {
	padding := minFileColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}
	return StyleDim.Render("f:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatSummary renders the closing line of a build.
func FormatSummary(written int, distDir string, failed int) string {
	noun := "files"
	if written == 1 {
		noun = "file"
	}
	msg := fmt.Sprintf("Built %d %s into %s", written, noun, StyleNoun.Render(distDir))
	if failed > 0 {
		msg += StyleFailed.Render(fmt.Sprintf(" (%d with errors)", failed))
	}
	return FormatCheckmark(StyleSummary.Render(msg))
}
