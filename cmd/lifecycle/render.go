package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	disposedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

// printer writes step output, styled only when w is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) title(s string) {
	fmt.Fprintf(p.w, "\n%s\n", p.render(titleStyle, s))
}

func (p *printer) state(name string, disposed bool) {
	label := p.render(activeStyle, "active")
	if disposed {
		label = p.render(disposedStyle, "disposed")
	}
	fmt.Fprintf(p.w, "  %-24s %s\n", name, label)
}

func (p *printer) detail(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s\n", p.render(detailStyle, fmt.Sprintf(format, args...)))
}
