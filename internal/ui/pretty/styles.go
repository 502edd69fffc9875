// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Per-command styles.
	Clear        lipgloss.Style
	Append       lipgloss.Style
	InsertBefore lipgloss.Style
	Remove       lipgloss.Style
	Replace      lipgloss.Style
	UpdateAttrs  lipgloss.Style

	// Command components.
	BlockID  lipgloss.Style
	Location lipgloss.Style
	Content  lipgloss.Style

	// Summary styles.
	SummaryTitle lipgloss.Style
	Success      lipgloss.Style

	// Misc.
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

// newColorStyles creates styles with ANSI 256 colors.
func newColorStyles() *Styles {
	return &Styles{
		Clear:        lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Append:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		InsertBefore: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Remove:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Replace:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		UpdateAttrs:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),

		BlockID:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Location: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Content:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),

		SummaryTitle: lipgloss.NewStyle().Bold(true),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),

		Dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates pass-through styles for non-TTY output.
func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Clear:        plain,
		Append:       plain,
		InsertBefore: plain,
		Remove:       plain,
		Replace:      plain,
		UpdateAttrs:  plain,
		BlockID:      plain,
		Location:     plain,
		Content:      plain,
		SummaryTitle: plain,
		Success:      plain,
		Dim:          plain,
		Bold:         plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		// Check NO_COLOR environment variable (https://no-color.org/)
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// TerminalWidth returns the writer's terminal width, or fallback when the
// writer is not a terminal.
func TerminalWidth(writer io.Writer, fallback int) int {
	f, ok := writer.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
