package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"chatfront/internal/services"
)

// Options configures both chat views.
type Options struct {
	// MarkdownStyle is a glamour style name; empty or "auto" follows the
	// terminal background.
	MarkdownStyle string
	Width         int
	Height        int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 24
	}
	return o
}

func newMarkdownRenderer(style string, width int) *glamour.TermRenderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 20))}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return r
}

// renderMarkdown falls back to the plain text if rendering fails.
func renderMarkdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func bubble(style lipgloss.Style, text string, maxWidth int) string {
	w := min(lipgloss.Width(text)+style.GetHorizontalFrameSize(), maxWidth)
	return style.Width(w).Render(text)
}

func alignRight(block string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
}

func renderToasts(items []services.Notification, width int) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, n := range items {
		style := infoToastStyle
		if n.Level == services.LevelError {
			style = errorToastStyle
		}
		lines = append(lines, alignRight(style.MaxWidth(width).Render(n.Message), width))
	}
	return strings.Join(lines, "\n")
}
