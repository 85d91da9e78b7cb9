package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# Keys

| Key | Action |
| --- | --- |
| ↑/k ↓/j | Move |
| pgup/ctrl+u pgdown/ctrl+d | Half page |
| g / G | Top / bottom |
| space | Toggle checkbox |
| enter → l | Expand, or move to first child |
| ← h | Collapse, or jump to parent |
| E / C | Expand all / collapse all |
| / | Filter by name or path |
| esc | Leave filter input, then clear filter |
| x | Clear all selections |
| y | Copy selected paths |
| tab | Focus selection panel |
| r | Reload categories file |
| ? | Toggle this help |
| q ctrl+c | Quit |

Checking a branch checks every category below it. A branch with only some
categories checked shows ` + "`[-]`" + `.
`

// helpModel renders the key reference with glamour. The rendered text is
// cached per width.
type helpModel struct {
	theme    Theme
	width    int
	rendered string
}

func newHelpModel(theme Theme) helpModel {
	return helpModel{theme: theme}
}

func (h *helpModel) render(width int) string {
	wrap := min(max(width-8, 20), 72)
	if h.rendered != "" && h.width == wrap {
		return h.rendered
	}
	h.width = wrap

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, err := r.Render(helpMarkdown); err == nil {
			h.rendered = strings.TrimSpace(out)
			return h.rendered
		}
	}
	// Fall back to raw markdown on error
	h.rendered = helpMarkdown
	return h.rendered
}

// View renders the help overlay centered in width x height.
func (h *helpModel) View(width, height int) string {
	footer := h.theme.Renderer.NewStyle().Foreground(h.theme.Muted).Italic(true).
		Render("Press ? or esc to close")

	modal := h.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.theme.Secondary).
		Background(ThemeBg("#282A36")).
		Padding(0, 1).
		Render(h.render(width) + "\n\n" + footer)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
