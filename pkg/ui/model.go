// Package ui is the interactive terminal front end: a checkbox tree of
// categories with live filtering, a panel of selected paths and live reload
// of the categories file.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cattree/pkg/debug"
	"github.com/vanderheijden86/cattree/pkg/export"
	"github.com/vanderheijden86/cattree/pkg/tree"
	"github.com/vanderheijden86/cattree/pkg/watcher"
)

// Layout thresholds
const (
	// SplitViewThreshold is the minimum width for showing the selection panel
	// beside the tree.
	SplitViewThreshold = 80
	// chromeHeight is the filter line plus the status bar.
	chromeHeight = 2
)

// copyToClipboard is swapped in tests.
var copyToClipboard = export.Clipboard

type focus int

const (
	focusTree focus = iota
	focusSelection
)

// Options configures NewModel.
type Options struct {
	Source        string           // Categories file, used for reloads and the status bar
	Locale        string           // Selection panel collation locale
	ExpandDepth   int              // Nodes at or above this depth start expanded
	ShowSelection bool             // Show the selection panel on wide terminals
	Watcher       *watcher.Watcher // Optional live reload source
	Removed       <-chan struct{}  // Optional removal notifications from the watcher
	Status        string           // Initial status bar message
	StatusIsError bool
}

// Model is the root bubbletea model.
type Model struct {
	session *tree.Session
	opts    Options
	theme   Theme

	tree      TreeModel
	selection SelectionPanel
	help      helpModel
	search    textinput.Model

	width  int
	height int

	focused       focus
	searching     bool
	showHelp      bool
	statusMsg     string
	statusIsError bool
}

// NewModel creates the UI over s.
func NewModel(s *tree.Session, opts Options) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter categories..."
	ti.CharLimit = 120
	ti.Width = 40

	m := Model{
		session:       s,
		opts:          opts,
		theme:         theme,
		tree:          NewTreeModel(s, theme, opts.ExpandDepth),
		selection:     NewSelectionPanel(theme, opts.Locale),
		help:          newHelpModel(theme),
		search:        ti,
		width:         80,
		height:        24,
		statusMsg:     opts.Status,
		statusIsError: opts.StatusIsError,
	}
	m.selection.SetItems(s.SelectedLeaves())
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.opts.Watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
	}
	if cmd := WatchRemovedCmd(m.opts.Removed); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case FileChangedMsg:
		debug.Log("ui: categories file changed, reloading")
		cmds := []tea.Cmd{LoadFileCmd(m.opts.Source)}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case FileRemovedMsg:
		m.statusMsg = fmt.Sprintf("⚠ %s was removed; keeping the last loaded tree", displayPath(m.opts.Source))
		m.statusIsError = true
		return m, WatchRemovedCmd(m.opts.Removed)

	case ReloadMsg:
		m.applyReload(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// applyReload installs a freshly loaded tree. A failed load keeps the current
// tree and reports the error once.
func (m *Model) applyReload(msg ReloadMsg) {
	if msg.Err != nil {
		m.statusMsg = fmt.Sprintf("❌ Reload failed: %v", msg.Err)
		m.statusIsError = true
		return
	}
	m.session.Replace(msg.Tree)
	m.tree.Sync()
	m.selection.SetItems(m.session.SelectedLeaves())
	m.statusMsg = fmt.Sprintf("Reloaded %d categories from %s", msg.Stats.Nodes, displayPath(m.opts.Source))
	if msg.Stats.Skipped > 0 {
		m.statusMsg += fmt.Sprintf(" (%d non-text entries skipped)", msg.Stats.Skipped)
	}
	m.statusIsError = false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	m.statusMsg = ""
	m.statusIsError = false

	if m.focused == focusSelection {
		switch msg.String() {
		case "j", "down":
			m.selection.ScrollDown()
			return m, nil
		case "k", "up":
			m.selection.ScrollUp()
			return m, nil
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.searching = true
		m.focused = focusTree
		m.search.SetValue(m.tree.GetFilter())
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "esc":
		if m.tree.FilterActive() {
			m.tree.ApplyFilter("")
			m.search.SetValue("")
		}
	case "tab":
		if m.showingSelection() {
			if m.focused == focusTree {
				m.focused = focusSelection
			} else {
				m.focused = focusTree
			}
		}
	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()
	case "ctrl+d", "pgdown":
		m.tree.PageDown()
	case "ctrl+u", "pgup":
		m.tree.PageUp()
	case "enter", "right", "l":
		m.tree.ExpandOrMoveToChild()
	case "left", "h":
		m.tree.CollapseOrJumpToParent()
	case "E":
		m.tree.ExpandAll()
	case "C":
		m.tree.CollapseAll()
	case " ", "space":
		if leaves, ok := m.tree.ToggleSelected(); ok {
			m.selection.SetItems(leaves)
		}
	case "x":
		m.selection.SetItems(m.tree.ClearAll())
		m.statusMsg = "Cleared all selections"
	case "y":
		m.copySelection()
	case "r":
		if m.opts.Source != "" {
			m.statusMsg = "Reloading..."
			return m, LoadFileCmd(m.opts.Source)
		}
	}
	return m, nil
}

// handleSearchKey routes keys to the filter input. Every edit re-filters.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.tree.ApplyFilter("")
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "down":
		m.tree.MoveDown()
		return m, nil
	case "up":
		m.tree.MoveUp()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.tree.ApplyFilter(m.search.Value())
	}
	return m, cmd
}

func (m *Model) copySelection() {
	leaves := m.session.SelectedLeaves()
	err := copyToClipboard(leaves)
	switch {
	case errors.Is(err, export.ErrEmptySelection):
		m.statusMsg = "Nothing selected to copy"
	case err != nil:
		m.statusMsg = fmt.Sprintf("❌ Clipboard error: %v", err)
		m.statusIsError = true
	default:
		noun := "paths"
		if len(leaves) == 1 {
			noun = "path"
		}
		m.statusMsg = fmt.Sprintf("📋 Copied %d %s to clipboard", len(leaves), noun)
	}
}

func (m Model) showingSelection() bool {
	return m.opts.ShowSelection && m.width >= SplitViewThreshold
}

// layout distributes the terminal between the tree and the selection panel.
func (m *Model) layout() {
	bodyHeight := max(m.height-chromeHeight, 1)
	if !m.showingSelection() {
		m.focused = focusTree
		m.tree.SetSize(m.width, bodyHeight)
		return
	}
	treeWidth := m.width * 3 / 5
	m.tree.SetSize(treeWidth, bodyHeight)
	m.selection.SetSize(m.width-treeWidth, bodyHeight)
	m.search.Width = max(treeWidth-len(m.search.Prompt)-1, 10)
}

func (m Model) View() string {
	if m.showHelp {
		return m.help.View(m.width, m.height)
	}

	bodyHeight := max(m.height-chromeHeight, 1)
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.tree.View())
	if m.showingSelection() {
		treeWidth := m.width * 3 / 5
		left := lipgloss.NewStyle().Width(treeWidth).Render(body)
		right := lipgloss.NewStyle().MaxHeight(bodyHeight).Render(m.selection.View(m.focused == focusSelection))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	return body + "\n" + m.renderFilterLine() + "\n" + m.renderFooter()
}

func (m Model) renderFilterLine() string {
	if m.searching {
		return m.search.View()
	}
	if q := m.tree.GetFilter(); q != "" {
		return m.theme.MutedText.Render(fmt.Sprintf("filter: %s  (/ to edit, esc to clear)", q))
	}
	return m.theme.MutedText.Render("/ filter  space toggle  y copy  ? help")
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := m.theme.StatusOK
		if m.statusIsError {
			style = m.theme.StatusError
		}
		return style.Render(truncate(m.statusMsg, max(m.width, 1)))
	}

	parts := []string{
		RenderCountBadge(m.selection.Count(), m.tree.TotalLeaves(), m.theme) + " selected",
	}
	if path := m.tree.SelectedPath(); path != "" {
		parts = append(parts, m.theme.LeafText.Render(path))
	}
	if m.opts.Source != "" {
		parts = append(parts, m.theme.MutedText.Render(displayPath(m.opts.Source)))
	}
	return strings.Join(parts, m.theme.MutedText.Render(" │ "))
}

// SelectedLeaves returns the selection shown in the panel, in collation
// order.
func (m Model) SelectedLeaves() []string {
	return m.selection.Items()
}

// StatusMessage returns the current status bar text and whether it reports
// an error.
func (m Model) StatusMessage() (string, bool) {
	return m.statusMsg, m.statusIsError
}

// Searching reports whether the filter input has focus.
func (m Model) Searching() bool {
	return m.searching
}

// Tree exposes the tree view for inspection.
func (m Model) Tree() *TreeModel {
	return &m.tree
}
