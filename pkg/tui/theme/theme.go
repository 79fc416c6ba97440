package theme

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme centralizes Lip Gloss styles for the dashboard.
type Theme struct {
	Header HeaderTheme
	Footer FooterTheme
	Toast  ToastTheme
	Modal  ModalTheme
	Table  table.Styles
}

// HeaderTheme styles the resource tabs and search line.
type HeaderTheme struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	Search   lipgloss.Style
	Filter   lipgloss.Style
	Muted    lipgloss.Style
	TabStart string
	TabEnd   string
}

// FooterTheme groups styles used by the bottom status and help line.
type FooterTheme struct {
	Help       lipgloss.Style
	Status     lipgloss.Style
	Pagination lipgloss.Style
}

// ToastTheme styles notices by level.
type ToastTheme struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// ModalTheme styles centered overlays (forms, confirmations, session expiry).
type ModalTheme struct {
	Frame   lipgloss.Style
	Title   lipgloss.Style
	Body    lipgloss.Style
	Label   lipgloss.Style
	Focused lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return Theme{
		Header: HeaderTheme{
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			Tab:      lipgloss.NewStyle().Padding(0, 1),
			Search:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			Filter:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			TabStart: "#7D56F4",
			TabEnd:   "#F25D94",
		},
		Footer: FooterTheme{
			Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Pagination: lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
		},
		Toast: ToastTheme{
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2),
			Title:   lipgloss.NewStyle().Bold(true),
			Body:    lipgloss.NewStyle(),
			Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Focused: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		},
		Table: ts,
	}
}

// Gradient returns n colors blended from the tab start color to the end
// color, one per resource tab.
func (h HeaderTheme) Gradient(n int) []lipgloss.Color {
	if n <= 0 {
		return nil
	}
	start, err1 := colorful.Hex(h.TabStart)
	end, err2 := colorful.Hex(h.TabEnd)
	out := make([]lipgloss.Color, n)
	for i := range out {
		if err1 != nil || err2 != nil {
			out[i] = lipgloss.Color("212")
			continue
		}
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = lipgloss.Color(start.BlendLuv(end, t).Clamped().Hex())
	}
	return out
}
