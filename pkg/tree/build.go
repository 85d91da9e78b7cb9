package tree

import (
	"strings"

	"github.com/vanderheijden86/cattree/pkg/metrics"
)

// SplitPath splits a raw path on Delimiter, trims every segment and drops the
// empty ones.
func SplitPath(raw string) []string {
	parts := strings.Split(raw, Delimiter)
	segments := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// JoinPath joins segments with Delimiter.
func JoinPath(segments []string) string {
	return strings.Join(segments, Delimiter)
}

// Build constructs a tree from raw path strings. Entries that produce no
// segments are skipped. Children keep the order in which their names first
// appear across the whole input.
func Build(paths []string) *Tree {
	defer metrics.Timer(metrics.TreeBuild)()

	t := newTree()
	for _, raw := range paths {
		t.insert(SplitPath(raw))
	}
	return t
}

// BuildValues is Build for loosely typed input such as a decoded JSON array.
// Elements that are not strings are skipped.
func BuildValues(values []any) *Tree {
	defer metrics.Timer(metrics.TreeBuild)()

	t := newTree()
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		t.insert(SplitPath(raw))
	}
	return t
}

// insert descends from the root along segments, creating missing nodes.
func (t *Tree) insert(segments []string) {
	if len(segments) == 0 {
		return
	}
	cur := RootID
	for i, seg := range segments {
		if next, ok := t.nodes[cur].byName[seg]; ok {
			cur = next
			continue
		}
		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			ID:     id,
			Name:   seg,
			Full:   JoinPath(segments[:i+1]),
			Parent: cur,
			Depth:  t.nodes[cur].Depth + 1,
			byName: make(map[string]NodeID),
		})
		parent := &t.nodes[cur]
		parent.byName[seg] = id
		parent.Children = append(parent.Children, id)
		cur = id
	}
}
