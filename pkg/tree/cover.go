package tree

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/cattree/pkg/metrics"
)

// RootCoverage counts the listed leaves under one top-level category.
type RootCoverage struct {
	Name   string `json:"name"`
	Listed int    `json:"listed"`
	Leaves int    `json:"leaves"`
}

// Percent is Listed as a share of Leaves, 0 for an empty subtree.
func (c RootCoverage) Percent() float64 {
	if c.Leaves == 0 {
		return 0
	}
	return float64(c.Listed) * 100 / float64(c.Leaves)
}

// Cover is the result of matching a path list, such as a blacklist, against
// the tree.
type Cover struct {
	// Keywords are the highest nodes whose every leaf is listed, in
	// depth-first order. Together they reach exactly the listed leaves.
	Keywords []string `json:"keywords"`
	// Roots holds one entry per top-level category, sorted by name.
	Roots []RootCoverage `json:"roots"`
	// Unknown entries name no node.
	Unknown []string `json:"unknown"`
	// Residual entries name an inner node that no keyword reaches, because
	// only part of its leaves are listed.
	Residual []string `json:"residual"`
}

// Cover matches entries against the tree. Entries are normalized like source
// paths; blank ones are ignored. Only entries naming a leaf count towards
// coverage.
func (t *Tree) Cover(entries []string) Cover {
	defer metrics.Timer(metrics.CoverReport)()

	c := Cover{
		Keywords: []string{},
		Roots:    []RootCoverage{},
		Unknown:  []string{},
		Residual: []string{},
	}
	if t == nil {
		return c
	}

	named := make(map[NodeID]bool)
	unknown := make(map[string]bool)
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		id, ok := t.Lookup(e)
		if !ok {
			unknown[strings.TrimSpace(e)] = true
			continue
		}
		named[id] = true
	}

	// Children always have higher ids than their parent, so one backwards
	// sweep sees every subtree before its root.
	n := len(t.nodes)
	covered := make([]bool, n)
	leaves := make([]int, n)
	listed := make([]int, n)
	for id := n - 1; id > int(RootID); id-- {
		node := &t.nodes[id]
		if len(node.Children) == 0 {
			covered[id] = named[NodeID(id)]
			leaves[id] = 1
			if covered[id] {
				listed[id] = 1
			}
		} else {
			covered[id] = true
			for _, ch := range node.Children {
				covered[id] = covered[id] && covered[ch]
				leaves[id] += leaves[ch]
				listed[id] += listed[ch]
			}
		}
	}

	keyword := make(map[NodeID]bool)
	var collect func(id NodeID)
	collect = func(id NodeID) {
		for _, child := range t.nodes[id].Children {
			switch {
			case covered[child]:
				keyword[child] = true
				c.Keywords = append(c.Keywords, t.nodes[child].Full)
			case len(t.nodes[child].Children) > 0:
				collect(child)
			}
		}
	}
	collect(RootID)

	for _, top := range t.nodes[RootID].Children {
		c.Roots = append(c.Roots, RootCoverage{
			Name:   t.nodes[top].Name,
			Listed: listed[top],
			Leaves: leaves[top],
		})
	}
	sort.SliceStable(c.Roots, func(i, j int) bool { return c.Roots[i].Name < c.Roots[j].Name })

	for id := range named {
		if !t.reachedBy(id, keyword) {
			c.Residual = append(c.Residual, t.nodes[id].Full)
		}
	}
	sort.Strings(c.Residual)

	for e := range unknown {
		c.Unknown = append(c.Unknown, e)
	}
	sort.Strings(c.Unknown)
	return c
}

// reachedBy reports whether id or one of its ancestors is in set.
func (t *Tree) reachedBy(id NodeID, set map[NodeID]bool) bool {
	for cur := id; cur > RootID; cur = t.nodes[cur].Parent {
		if set[cur] {
			return true
		}
	}
	return false
}
