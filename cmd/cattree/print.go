package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/cattree/pkg/export"
	"github.com/vanderheijden86/cattree/pkg/tree"
	"github.com/vanderheijden86/cattree/pkg/ui"
)

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applySelections checks every path in selects and returns the ones that do
// not name a node.
func applySelections(t *tree.Tree, selects []string) []string {
	var missing []string
	for _, p := range selects {
		id, ok := t.Lookup(p)
		if !ok {
			missing = append(missing, p)
			continue
		}
		t.Toggle(id, true)
	}
	return missing
}

// printTree writes the selection in format when anything was selected on the
// command line, and an outline of the (filtered) tree otherwise.
func printTree(w io.Writer, t *tree.Tree, selects []string, filter string, format export.Format) error {
	if len(selects) > 0 {
		return export.Write(w, format, t)
	}
	return printOutline(w, t, t.ApplyFilter(filter))
}

// printOutline writes one node per line, indented by depth, with its check
// glyph. Hidden nodes and their subtrees are skipped.
func printOutline(w io.Writer, t *tree.Tree, vis tree.Visibility) error {
	var err error
	t.Walk(func(n tree.Node) bool {
		if err != nil || vis.Hidden(n.ID) {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", n.Depth), ui.CheckboxGlyph(n.State()), n.Name)
		return true
	})
	return err
}
