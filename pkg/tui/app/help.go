package teaui

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

//go:embed help.md
var helpMarkdown string

func renderHelp(width int, style string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(strings.TrimSpace(helpMarkdown))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// HelpStyle picks the glamour style for the terminal background.
func HelpStyle() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
