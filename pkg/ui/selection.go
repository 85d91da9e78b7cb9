package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale orders the selection panel when none is configured.
const DefaultLocale = "it"

// SelectionPanel lists the selected leaf paths in collation order for the
// configured locale.
type SelectionPanel struct {
	theme    Theme
	locale   language.Tag
	collator *collate.Collator
	items    []string
	viewport viewport.Model
	width    int
	height   int
}

// NewSelectionPanel creates an empty panel. An unparseable locale falls back
// to DefaultLocale.
func NewSelectionPanel(theme Theme, locale string) SelectionPanel {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Italian
	}
	return SelectionPanel{
		theme:    theme,
		locale:   tag,
		collator: collate.New(tag, collate.IgnoreCase),
		viewport: viewport.New(40, 10),
	}
}

// Locale returns the collation locale.
func (p *SelectionPanel) Locale() language.Tag {
	return p.locale
}

// SetItems replaces the listed paths. The input slice is not modified.
func (p *SelectionPanel) SetItems(leaves []string) {
	p.items = append(p.items[:0:0], leaves...)
	p.collator.SortStrings(p.items)
	p.viewport.SetContent(p.renderItems())
	p.viewport.GotoTop()
}

// Items returns the sorted paths.
func (p *SelectionPanel) Items() []string {
	return p.items
}

// Count returns the number of selected paths.
func (p *SelectionPanel) Count() int {
	return len(p.items)
}

// SetSize sets the outer dimensions of the panel, border included.
func (p *SelectionPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	// border (2) + title row (1) + divider (1)
	p.viewport.Width = max(width-2, 1)
	p.viewport.Height = max(height-4, 1)
	p.viewport.SetContent(p.renderItems())
}

// ScrollDown scrolls the list by one line.
func (p *SelectionPanel) ScrollDown() {
	p.viewport.LineDown(1)
}

// ScrollUp scrolls the list by one line.
func (p *SelectionPanel) ScrollUp() {
	p.viewport.LineUp(1)
}

func (p *SelectionPanel) renderItems() string {
	if len(p.items) == 0 {
		return p.theme.MutedText.Render("Nothing selected")
	}
	lines := make([]string, len(p.items))
	for i, item := range p.items {
		lines[i] = truncate(item, p.viewport.Width)
	}
	return p.theme.LeafText.Render(strings.Join(lines, "\n"))
}

// View renders the panel inside a border.
func (p SelectionPanel) View(focused bool) string {
	title := p.theme.BranchName.Render(fmt.Sprintf("Selected (%d)", len(p.items)))

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(RenderDivider(p.viewport.Width))
	sb.WriteString("\n")
	sb.WriteString(p.viewport.View())

	style := PanelStyle
	if focused {
		style = FocusedPanelStyle
	}
	return style.Width(max(p.width-2, 1)).Render(sb.String())
}
