package tree

import "fmt"

// CheckInvariants verifies the structural and tri-state invariants and
// returns an error naming the first node that violates one.
func (t *Tree) CheckInvariants() error {
	if t == nil {
		return nil
	}
	for i := int(RootID) + 1; i < len(t.nodes); i++ {
		n := &t.nodes[i]

		if n.Indeterminate && n.Checked {
			return fmt.Errorf("node %d (%s): indeterminate and checked", n.ID, n.Full)
		}
		if len(n.Children) == 0 && n.Indeterminate {
			return fmt.Errorf("node %d (%s): leaf is indeterminate", n.ID, n.Full)
		}

		parent := &t.nodes[n.Parent]
		want := n.Name
		if n.Parent != RootID {
			want = parent.Full + Delimiter + n.Name
		}
		if n.Full != want {
			return fmt.Errorf("node %d: full path %q, want %q", n.ID, n.Full, want)
		}
		if n.Depth != parent.Depth+1 {
			return fmt.Errorf("node %d (%s): depth %d under parent depth %d", n.ID, n.Full, n.Depth, parent.Depth)
		}

		if len(n.Children) == 0 {
			continue
		}
		seen := make(map[string]bool, len(n.Children))
		allChecked, anyMarked := true, false
		for _, c := range n.Children {
			child := &t.nodes[c]
			if seen[child.Name] {
				return fmt.Errorf("node %d (%s): duplicate child %q", n.ID, n.Full, child.Name)
			}
			seen[child.Name] = true
			allChecked = allChecked && child.Checked
			anyMarked = anyMarked || child.Checked || child.Indeterminate
		}
		if n.Checked != allChecked {
			return fmt.Errorf("node %d (%s): checked=%v but all children checked=%v", n.ID, n.Full, n.Checked, allChecked)
		}
		if wantInd := !allChecked && anyMarked; n.Indeterminate != wantInd {
			return fmt.Errorf("node %d (%s): indeterminate=%v, want %v", n.ID, n.Full, n.Indeterminate, wantInd)
		}
	}
	return nil
}
