// Package render is the default presentation sink. It styles error lines
// and the ranked "did you mean" list; it takes no part in resolution.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vk/cmdgrid/internal/router"
)

// Console renders engine output to a writer with lipgloss styling.
type Console struct {
	out io.Writer

	errStyle  lipgloss.Style
	nameStyle lipgloss.Style
	hintStyle lipgloss.Style
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:       out,
		errStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		nameStyle: lipgloss.NewStyle().Bold(true),
		hintStyle: lipgloss.NewStyle().Faint(true),
	}
}

// Lines writes each line styled as an error.
func (c *Console) Lines(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(c.out, c.errStyle.Render(line))
	}
}

// Suggestions renders the unmatched input, prefixed with any matched
// ancestor path, followed by the ranked near-miss list.
func (c *Console) Suggestions(path []string, input string, suggestions []router.Suggestion) {
	full := strings.Join(append(append([]string{}, path...), input), " ")
	fmt.Fprintln(c.out, c.errStyle.Render(fmt.Sprintf("unknown command %q", full)))

	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(c.out, c.hintStyle.Render("did you mean:"))
	for _, s := range suggestions {
		line := "  " + c.nameStyle.Render(s.Name)
		if s.Description != "" {
			line += "  " + c.hintStyle.Render(s.Description)
		}
		fmt.Fprintln(c.out, line)
	}
}
