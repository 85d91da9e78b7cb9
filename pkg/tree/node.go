// Package tree is the category tree model: a deduplicated prefix tree built
// from delimited path strings, tri-state check propagation, substring
// visibility filtering and selected-leaf extraction.
//
// Nodes live in an arena owned by Tree and refer to each other by NodeID, so
// parent back-references carry no ownership. Ids are assigned in insertion
// order and are only meaningful for the Tree that produced them; a rebuild
// assigns fresh ids.
//
// A Tree is not safe for concurrent use. Callers that share one across
// goroutines go through a Session, which gates every mutation.
package tree

import "strings"

// Delimiter separates segments in a raw category path.
const Delimiter = "|"

// NodeID identifies a node within one Tree.
type NodeID int

const (
	// RootID is the id of the synthetic root.
	RootID NodeID = 0
	// NoParent is the parent id reported for the root.
	NoParent NodeID = -1
)

// rootName is the display name of the synthetic root. It is never matched by
// filtering and never appears in a full path.
const rootName = "ROOT"

// CheckState is the tri-state view of a node's checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	Indeterminate
)

func (s CheckState) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Node is one category segment.
//
// Values returned by Tree accessors are copies; Children aliases the tree's
// storage and must be treated as read-only.
type Node struct {
	ID            NodeID
	Name          string
	Full          string
	Parent        NodeID
	Children      []NodeID
	Depth         int
	Checked       bool
	Indeterminate bool

	byName map[string]NodeID
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

// State folds Checked/Indeterminate into a CheckState.
func (n Node) State() CheckState {
	switch {
	case n.Checked:
		return Checked
	case n.Indeterminate:
		return Indeterminate
	default:
		return Unchecked
	}
}

// Tree is an arena of nodes rooted at RootID.
type Tree struct {
	nodes []Node
}

func newTree() *Tree {
	return &Tree{
		nodes: []Node{{
			ID:     RootID,
			Name:   rootName,
			Parent: NoParent,
			Depth:  -1,
			byName: make(map[string]NodeID),
		}},
	}
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns a copy of the synthetic root.
func (t *Tree) Root() Node {
	return t.nodes[RootID]
}

// valid reports whether id refers to a node of this tree.
func (t *Tree) valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Children returns the ordered child ids of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].Children
}

// Parent returns the parent id, NoParent for the root or an unknown id.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoParent
	}
	return t.nodes[id].Parent
}

// IsLeaf reports whether id is a leaf. The root is never a leaf.
func (t *Tree) IsLeaf(id NodeID) bool {
	if !t.valid(id) || id == RootID {
		return false
	}
	return len(t.nodes[id].Children) == 0
}

// State returns the tri-state of id.
func (t *Tree) State(id NodeID) CheckState {
	if !t.valid(id) {
		return Unchecked
	}
	return t.nodes[id].State()
}

// Lookup resolves a full path to a node id. The path is normalized the same
// way Build normalizes input, so "Fruit | Apple" finds "Fruit|Apple".
func (t *Tree) Lookup(full string) (NodeID, bool) {
	if t == nil {
		return NoParent, false
	}
	segments := SplitPath(full)
	if len(segments) == 0 {
		return NoParent, false
	}
	cur := RootID
	for _, seg := range segments {
		next, ok := t.nodes[cur].byName[seg]
		if !ok {
			return NoParent, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits every node except the root in depth-first pre-order, children
// in insertion order. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n Node) bool) {
	if t == nil {
		return
	}
	stack := reversed(t.nodes[RootID].Children, nil)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(t.nodes[id]) {
			continue
		}
		stack = reversed(t.nodes[id].Children, stack)
	}
}

// reversed appends ids to dst in reverse order so that popping from the end
// of dst yields them in their original order.
func reversed(ids []NodeID, dst []NodeID) []NodeID {
	for i := len(ids) - 1; i >= 0; i-- {
		dst = append(dst, ids[i])
	}
	return dst
}

// Shape renders the tree structure without ids or check state, one node per
// line, indented by depth. Two builds of the same input have equal shapes.
func (t *Tree) Shape() string {
	var sb strings.Builder
	t.Walk(func(n Node) bool {
		sb.WriteString(strings.Repeat("  ", n.Depth))
		sb.WriteString(n.Name)
		sb.WriteString(" (")
		sb.WriteString(n.Full)
		sb.WriteString(")\n")
		return true
	})
	return sb.String()
}
