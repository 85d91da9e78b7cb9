package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/cattree/pkg/metrics"
	"github.com/vanderheijden86/cattree/pkg/tree"
)

// treeRow is one rendered line of the category tree. Rows are snapshots of
// the session's tree taken at rebuild time; any mutation rebuilds them.
type treeRow struct {
	id       tree.NodeID
	name     string
	full     string
	depth    int
	leaf     bool
	state    tree.CheckState
	expanded bool
	prefix   string // Branch art, unstyled
}

// TreeModel renders the category tree as an expandable checkbox list.
//
// Expansion flags live in a registry keyed by node id. Ids are only valid for
// the tree that issued them, so the registry is rebuilt whenever the session
// installs a new tree (see Sync).
type TreeModel struct {
	session     *tree.Session
	theme       Theme
	expandDepth int

	generation uint64
	expanded   map[tree.NodeID]bool
	visibility tree.Visibility
	total      int // Nodes in the tree, root excluded
	leaves     int

	flatList       []treeRow
	cursor         int
	viewportOffset int
	width          int
	height         int
}

// NewTreeModel creates a tree view over s. Nodes at depth <= expandDepth
// start expanded.
func NewTreeModel(s *tree.Session, theme Theme, expandDepth int) TreeModel {
	t := TreeModel{
		session:     s,
		theme:       theme,
		expandDepth: expandDepth,
		width:       80,
	}
	t.Sync()
	return t
}

// SetSize sets the available dimensions for the tree view.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Sync picks up a tree replaced in the session. When the generation changed,
// expansion returns to the default, the filter is re-applied to the new tree
// and the cursor goes back to the top. It reports whether a reset happened.
func (t *TreeModel) Sync() bool {
	gen := t.session.Generation()
	if gen == t.generation && t.expanded != nil {
		return false
	}
	t.generation = gen
	t.resetExpansion()
	t.visibility = t.session.Filter(t.visibility.Query())
	t.cursor = 0
	t.viewportOffset = 0
	t.rebuildFlatList()
	return true
}

func (t *TreeModel) resetExpansion() {
	t.expanded = make(map[tree.NodeID]bool)
	t.total = 0
	t.leaves = 0
	t.session.Read(func(tr *tree.Tree) {
		tr.Walk(func(n tree.Node) bool {
			t.total++
			if n.IsLeaf() {
				t.leaves++
			}
			if !n.IsLeaf() && n.Depth <= t.expandDepth {
				t.expanded[n.ID] = true
			}
			return true
		})
	})
}

// ApplyFilter recomputes visibility for query and rebuilds the rows. The
// cursor stays on the same node when it is still visible.
func (t *TreeModel) ApplyFilter(query string) {
	prev, hadPrev := t.SelectedID()
	t.visibility = t.session.Filter(query)
	t.rebuildFlatList()
	t.cursor = 0
	if hadPrev {
		t.moveCursorTo(prev)
	}
	t.ensureCursorVisible()
}

// GetFilter returns the normalized active query, empty when unfiltered.
func (t *TreeModel) GetFilter() string {
	return t.visibility.Query()
}

// FilterActive reports whether a non-empty query is applied.
func (t *TreeModel) FilterActive() bool {
	return t.visibility.Active()
}

// IsExpanded reports whether id shows its children. While a filter is active
// every node shows expanded so matches are never hidden behind a collapsed
// ancestor.
func (t *TreeModel) IsExpanded(id tree.NodeID) bool {
	if t.visibility.Active() {
		return true
	}
	return t.expanded[id]
}

// rebuildFlatList regenerates the visible rows from the session's tree.
func (t *TreeModel) rebuildFlatList() {
	t.flatList = make([]treeRow, 0, len(t.flatList))
	t.session.Read(func(tr *tree.Tree) {
		if tr == nil {
			return
		}
		t.appendRows(tr, tree.RootID, nil)
	})
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// appendRows flattens the visible children of id. rails records, for each
// enclosing level below the top, whether that ancestor has siblings further
// down and therefore needs a vertical line.
func (t *TreeModel) appendRows(tr *tree.Tree, id tree.NodeID, rails []bool) {
	var kids []tree.NodeID
	for _, c := range tr.Children(id) {
		if t.visibility.Visible(c) {
			kids = append(kids, c)
		}
	}

	for i, c := range kids {
		n, _ := tr.Node(c)
		last := i == len(kids)-1
		row := treeRow{
			id:       n.ID,
			name:     n.Name,
			full:     n.Full,
			depth:    n.Depth,
			leaf:     n.IsLeaf(),
			state:    n.State(),
			expanded: !n.IsLeaf() && t.IsExpanded(n.ID),
			prefix:   buildTreePrefix(rails, last, n.Depth),
		}
		t.flatList = append(t.flatList, row)

		if row.expanded {
			next := rails
			if n.Depth > 0 {
				next = append(rails[:len(rails):len(rails)], !last)
			}
			t.appendRows(tr, c, next)
		}
	}
}

// buildTreePrefix returns the branch art for a row. Top-level rows have none.
func buildTreePrefix(rails []bool, last bool, depth int) string {
	if depth == 0 {
		return ""
	}
	var sb strings.Builder
	for _, more := range rails {
		if more {
			sb.WriteString("│   ")
		} else {
			sb.WriteString("    ")
		}
	}
	if last {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

// getExpandIndicator returns the expand/collapse indicator for a row.
func getExpandIndicator(row treeRow) string {
	if row.leaf {
		return "•"
	}
	if row.expanded {
		return "▾"
	}
	return "▸"
}

// View renders the header, the visible window of rows and, when the list
// scrolls, a position indicator.
func (t *TreeModel) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if len(t.flatList) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(t.RenderHeader())
	sb.WriteString("\n")

	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		isSelected := i == t.cursor
		line := t.renderRow(t.flatList[i], isSelected)
		if isSelected {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(t.flatList) > t.effectiveVisibleCount() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// RenderHeader renders the title row with the visible/total node counts.
func (t *TreeModel) RenderHeader() string {
	title := t.theme.Header.Render("CATEGORIES")
	counts := fmt.Sprintf("%d nodes", t.total)
	if t.visibility.Active() {
		counts = fmt.Sprintf("%d of %d nodes match %q", t.total-t.visibility.HiddenCount(), t.total, t.visibility.Query())
	}
	return title + " " + t.theme.MutedText.Render(counts)
}

func (t *TreeModel) renderRow(row treeRow, isSelected bool) string {
	prefix := t.theme.BranchText.Render(row.prefix)
	box := RenderCheckbox(row.state, t.theme)
	indicator := t.theme.MutedText.Render(getExpandIndicator(row))

	// prefix + "[x] ▸ " + name
	used := runewidth.StringWidth(row.prefix) + len(GlyphChecked) + 3
	name := row.name
	if avail := t.width - used - SpaceSM; avail > 0 {
		name = truncate(name, avail)
	}

	nameStyle := t.theme.LeafText
	if !row.leaf {
		nameStyle = t.theme.BranchName
	}
	if q := t.visibility.Query(); q != "" && !isSelected {
		match := t.theme.CheckedBox.Underline(true)
		name = highlightMatch(name, q, func(s string) string { return match.Render(s) })
	}

	return prefix + box + " " + indicator + " " + nameStyle.Render(name)
}

// renderPositionIndicator renders "Page X/Y (start-end of total)" using
// 1-indexed numbers.
func (t *TreeModel) renderPositionIndicator(start, end int) string {
	total := len(t.flatList)
	currentPage, totalPages := t.pageInfo(t.effectiveVisibleCount())
	indicator := fmt.Sprintf(" Page %d/%d (%d-%d of %d)", currentPage, totalPages, start+1, end, total)
	return t.theme.MutedText.Render(indicator)
}

// pageInfo returns the current page number and total pages based on visible count.
func (t *TreeModel) pageInfo(pageSize int) (currentPage, totalPages int) {
	total := len(t.flatList)
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages = (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	currentPage = (t.viewportOffset / pageSize) + 1
	if currentPage > totalPages {
		currentPage = totalPages
	}
	return currentPage, totalPages
}

func (t *TreeModel) renderEmptyState() string {
	titleStyle := t.theme.Renderer.NewStyle().Foreground(t.theme.Primary).Bold(true)
	if !t.session.Loaded() {
		return titleStyle.Render("No categories loaded") + "\n" +
			t.theme.MutedText.Render("Waiting for the categories file...")
	}
	if t.visibility.Active() {
		return titleStyle.Render("No matches") + "\n" +
			t.theme.MutedText.Render(fmt.Sprintf("Nothing contains %q. Press esc to clear the filter.", t.visibility.Query()))
	}
	return titleStyle.Render("No categories") + "\n" +
		t.theme.MutedText.Render("The categories file has no paths.")
}

// Len returns the number of visible rows.
func (t *TreeModel) Len() int {
	return len(t.flatList)
}

// Total returns the number of nodes in the tree, root excluded.
func (t *TreeModel) Total() int {
	return t.total
}

// TotalLeaves returns the number of leaf categories, the selectable unit.
func (t *TreeModel) TotalLeaves() int {
	return t.leaves
}

// Cursor returns the cursor index into the visible rows.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// SelectedID returns the node under the cursor.
func (t *TreeModel) SelectedID() (tree.NodeID, bool) {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return tree.NoParent, false
	}
	return t.flatList[t.cursor].id, true
}

// SelectedPath returns the full path of the node under the cursor.
func (t *TreeModel) SelectedPath() string {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return ""
	}
	return t.flatList[t.cursor].full
}

// ToggleSelected flips the checkbox under the cursor: a checked node becomes
// unchecked, an unchecked or indeterminate one becomes checked. It returns
// the refreshed selection and whether anything was toggled.
func (t *TreeModel) ToggleSelected() ([]string, bool) {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return nil, false
	}
	row := t.flatList[t.cursor]
	leaves := t.session.Toggle(row.id, row.state != tree.Checked)
	t.rebuildFlatList()
	return leaves, true
}

// ClearAll unchecks every node and returns the (empty) selection.
func (t *TreeModel) ClearAll() []string {
	leaves := t.session.ClearAll()
	t.rebuildFlatList()
	return leaves
}

// moveCursorTo places the cursor on id if it is visible.
func (t *TreeModel) moveCursorTo(id tree.NodeID) bool {
	for i, row := range t.flatList {
		if row.id == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// MoveDown moves the cursor down in the flat list.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up in the flat list.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
		t.ensureCursorVisible()
	}
}

// JumpToParent moves the cursor to the parent of the selected node. Top-level
// nodes stay put.
func (t *TreeModel) JumpToParent() {
	id, ok := t.SelectedID()
	if !ok {
		return
	}
	var parent tree.NodeID
	t.session.Read(func(tr *tree.Tree) {
		parent = tr.Parent(id)
	})
	if parent <= tree.RootID {
		return
	}
	t.moveCursorTo(parent)
}

// ExpandOrMoveToChild handles the → / l / enter keys:
// - collapsed branch: expand it
// - expanded branch: move to its first child
// - leaf: nothing
func (t *TreeModel) ExpandOrMoveToChild() {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return
	}
	row := t.flatList[t.cursor]
	if row.leaf {
		return
	}
	if !row.expanded {
		t.expanded[row.id] = true
		t.rebuildFlatList()
		t.ensureCursorVisible()
		return
	}
	// The first child is rendered directly below its parent.
	if t.cursor+1 < len(t.flatList) && t.flatList[t.cursor+1].depth == row.depth+1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// CollapseOrJumpToParent handles the ← / h keys:
// - expanded branch: collapse it
// - otherwise: jump to the parent
//
// Collapsing is a no-op while filtering since every node shows expanded.
func (t *TreeModel) CollapseOrJumpToParent() {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return
	}
	row := t.flatList[t.cursor]
	if !row.leaf && row.expanded && !t.visibility.Active() {
		t.expanded[row.id] = false
		t.rebuildFlatList()
		t.ensureCursorVisible()
		return
	}
	t.JumpToParent()
}

// ExpandAll expands every branch.
func (t *TreeModel) ExpandAll() {
	t.setAllExpanded(true)
}

// CollapseAll collapses every branch and keeps the cursor on the top-level
// ancestor of the previously selected node.
func (t *TreeModel) CollapseAll() {
	id, ok := t.SelectedID()
	t.setAllExpanded(false)
	if !ok {
		return
	}
	t.session.Read(func(tr *tree.Tree) {
		for tr.Parent(id) > tree.RootID {
			id = tr.Parent(id)
		}
	})
	t.moveCursorTo(id)
}

func (t *TreeModel) setAllExpanded(expanded bool) {
	t.session.Read(func(tr *tree.Tree) {
		tr.Walk(func(n tree.Node) bool {
			if !n.IsLeaf() {
				t.expanded[n.ID] = expanded
			}
			return true
		})
	})
	t.rebuildFlatList()
	t.ensureCursorVisible()
}

// PageDown moves cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	pageSize := t.height / 2
	if pageSize < 1 {
		pageSize = 5
	}
	t.cursor += pageSize
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	pageSize := t.height / 2
	if pageSize < 1 {
		pageSize = 5
	}
	t.cursor -= pageSize
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// visibleRange returns the [start, end) window of rows to render.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.flatList) == 0 {
		return 0, 0
	}
	start = t.viewportOffset
	if start < 0 {
		start = 0
	}
	end = start + t.effectiveVisibleCount()
	if end > len(t.flatList) {
		end = len(t.flatList)
	}
	if start > end {
		start = end
	}
	return start, end
}

// effectiveVisibleCount returns the number of row lines that fit, accounting
// for the header row and the position indicator.
func (t *TreeModel) effectiveVisibleCount() int {
	visibleCount := t.height - 1 // header
	if visibleCount <= 0 {
		visibleCount = 19
	}
	if len(t.flatList) > visibleCount {
		visibleCount--
	}
	if visibleCount < 1 {
		visibleCount = 1
	}
	return visibleCount
}

// ensureCursorVisible scrolls just enough to keep the cursor on screen.
func (t *TreeModel) ensureCursorVisible() {
	if len(t.flatList) == 0 {
		return
	}

	visibleCount := t.effectiveVisibleCount()

	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visibleCount {
		t.viewportOffset = t.cursor - visibleCount + 1
	}

	maxOffset := len(t.flatList) - visibleCount
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.viewportOffset > maxOffset {
		t.viewportOffset = maxOffset
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// GetViewportOffset returns the current viewport offset.
func (t *TreeModel) GetViewportOffset() int {
	return t.viewportOffset
}
