package tree

import "github.com/vanderheijden86/cattree/pkg/metrics"

// SetChecked assigns checked to id and every descendant, clearing the
// indeterminate flag on all of them. Ancestors are not touched; see Toggle.
func (t *Tree) SetChecked(id NodeID, checked bool) {
	if !t.valid(id) {
		return
	}
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[cur]
		n.Checked = checked
		n.Indeterminate = false
		stack = append(stack, n.Children...)
	}
}

// UpdateAncestors recomputes id and then each of its ancestors from their
// direct children, stopping below the root. The root's own state is never
// computed.
func (t *Tree) UpdateAncestors(id NodeID) {
	for t.valid(id) && id != RootID {
		n := &t.nodes[id]
		if len(n.Children) > 0 {
			allChecked, anyMarked := true, false
			for _, c := range n.Children {
				child := &t.nodes[c]
				if !child.Checked {
					allChecked = false
				}
				if child.Checked || child.Indeterminate {
					anyMarked = true
				}
			}
			n.Checked = allChecked
			n.Indeterminate = !allChecked && anyMarked
		}
		id = n.Parent
	}
}

// Toggle is the user-facing state change: cascade down from id, then
// recompute every ancestor. The root cannot be toggled.
func (t *Tree) Toggle(id NodeID, checked bool) {
	if !t.valid(id) || id == RootID {
		return
	}
	defer metrics.Timer(metrics.Toggle)()

	t.SetChecked(id, checked)
	t.UpdateAncestors(t.nodes[id].Parent)
}

// ClearAll unchecks every node below the root.
func (t *Tree) ClearAll() {
	if t == nil {
		return
	}
	for _, c := range t.nodes[RootID].Children {
		t.SetChecked(c, false)
	}
}
