package report

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorVerbose = lipgloss.Color("#9CA3AF")
)

// Styles used by the text renderer. Plain() strips them for non-terminal
// output.
type Styles struct {
	Title   lipgloss.Style
	Name    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Upgrade lipgloss.Style
	Muted   lipgloss.Style
	Verbose lipgloss.Style
	Divider lipgloss.Style
}

// DefaultStyles returns the colored palette.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Name:    lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(colorSuccess),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
		Upgrade: lipgloss.NewStyle().Foreground(colorWarning),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Verbose: lipgloss.NewStyle().Foreground(colorVerbose),
		Divider: lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Title: s, Name: s, Success: s, Error: s, Upgrade: s, Muted: s, Verbose: s, Divider: s}
}
