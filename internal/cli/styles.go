package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles renders terminal decoration for one writer. Writers that are not
// terminals get plain text.
type styles struct {
	title lipgloss.Style
	muted lipgloss.Style
	err   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("241")),
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C")),
	}
}
