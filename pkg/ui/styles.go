package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cattree/pkg/tree"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
)

var (
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary     = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
)

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// Checkbox glyphs. Each is three cells wide so rows stay aligned.
const (
	GlyphUnchecked     = "[ ]"
	GlyphChecked       = "[x]"
	GlyphIndeterminate = "[-]"
)

// CheckboxGlyph returns the plain glyph for a check state.
func CheckboxGlyph(s tree.CheckState) string {
	switch s {
	case tree.Checked:
		return GlyphChecked
	case tree.Indeterminate:
		return GlyphIndeterminate
	default:
		return GlyphUnchecked
	}
}

// RenderCheckbox returns the styled glyph for a check state.
func RenderCheckbox(s tree.CheckState, t Theme) string {
	switch s {
	case tree.Checked:
		return t.CheckedBox.Render(GlyphChecked)
	case tree.Indeterminate:
		return t.PartialBox.Render(GlyphIndeterminate)
	default:
		return t.EmptyBox.Render(GlyphUnchecked)
	}
}

// RenderCountBadge renders "n/total" with the count highlighted when non-zero.
func RenderCountBadge(n, total int, t Theme) string {
	style := t.MutedText
	if n > 0 {
		style = t.CheckedBox
	}
	return style.Render(fmt.Sprintf("%d/%d", n, total))
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
