package tree

import "github.com/vanderheijden86/cattree/pkg/metrics"

// SelectedLeaves returns the full paths of every checked leaf in depth-first
// order. A fully checked internal node contributes through its leaves, which
// the cascade in SetChecked has already checked.
func (t *Tree) SelectedLeaves() []string {
	if t == nil {
		return nil
	}
	defer metrics.Timer(metrics.SelectionCollect)()

	var out []string
	t.Walk(func(n Node) bool {
		if n.IsLeaf() && n.Checked {
			out = append(out, n.Full)
		}
		return true
	})
	return out
}

// SelectedCount returns the number of checked leaves.
func (t *Tree) SelectedCount() int {
	count := 0
	if t == nil {
		return count
	}
	for i := int(RootID) + 1; i < len(t.nodes); i++ {
		if n := &t.nodes[i]; n.Checked && len(n.Children) == 0 {
			count++
		}
	}
	return count
}

// Leaves returns the full paths of every leaf under id (id itself when it is
// a leaf), in depth-first order.
func (t *Tree) Leaves(id NodeID) []string {
	if !t.valid(id) {
		return nil
	}
	var out []string
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[cur]
		if len(n.Children) == 0 {
			if cur != RootID {
				out = append(out, n.Full)
			}
			continue
		}
		stack = reversed(n.Children, stack)
	}
	return out
}
