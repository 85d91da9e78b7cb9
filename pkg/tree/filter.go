package tree

import (
	"strings"

	"github.com/vanderheijden86/cattree/pkg/metrics"
)

// Visibility is the result of a filter pass. The zero value shows everything.
type Visibility struct {
	query  string
	hidden []bool // indexed by NodeID; nil when no filter is active
	count  int
}

// Query returns the normalized query the pass was computed for.
func (v Visibility) Query() string { return v.query }

// Active reports whether a non-empty query was applied.
func (v Visibility) Active() bool { return v.hidden != nil }

// Hidden reports whether id is hidden. The root and unknown ids are never
// hidden.
func (v Visibility) Hidden(id NodeID) bool {
	if v.hidden == nil || id <= RootID || int(id) >= len(v.hidden) {
		return false
	}
	return v.hidden[id]
}

// Visible is the negation of Hidden.
func (v Visibility) Visible(id NodeID) bool { return !v.Hidden(id) }

// HiddenCount returns the number of hidden nodes.
func (v Visibility) HiddenCount() int { return v.count }

// NormalizeQuery trims and lower-cases a filter query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// ApplyFilter computes which nodes stay visible for query. A node is visible
// when its name or full path contains the query case-insensitively, or when
// any descendant does. An empty query shows every node.
//
// The pass is a single sweep over the arena from the highest id down. Every
// child is created after its parent, so each node's children have already
// been resolved when the node is reached.
func (t *Tree) ApplyFilter(query string) Visibility {
	q := NormalizeQuery(query)
	if q == "" || t == nil {
		return Visibility{query: q}
	}
	defer metrics.Timer(metrics.FilterPass)()

	matched := make([]bool, len(t.nodes))
	for i := len(t.nodes) - 1; i > int(RootID); i-- {
		n := &t.nodes[i]
		if !matched[i] {
			matched[i] = strings.Contains(strings.ToLower(n.Name), q) ||
				strings.Contains(strings.ToLower(n.Full), q)
		}
		if matched[i] && n.Parent > RootID {
			matched[n.Parent] = true
		}
	}

	v := Visibility{query: q, hidden: make([]bool, len(t.nodes))}
	for i := int(RootID) + 1; i < len(t.nodes); i++ {
		if !matched[i] {
			v.hidden[i] = true
			v.count++
		}
	}
	return v
}
