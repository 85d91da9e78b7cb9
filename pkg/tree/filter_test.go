package tree

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func hiddenSet(tr *Tree, v Visibility) []string {
	var out []string
	tr.Walk(func(n Node) bool {
		if v.Hidden(n.ID) {
			out = append(out, n.Full)
		}
		return true
	})
	sort.Strings(out)
	return out
}

func TestApplyFilterScenario(t *testing.T) {
	tr := Build([]string{"A|B|C", "A|B|D", "X|Y"})

	v := tr.ApplyFilter("d")

	got := strings.Join(hiddenSet(tr, v), ",")
	if got != "A|B|C,X,X|Y" {
		t.Errorf("hidden = %s, want A|B|C,X,X|Y", got)
	}
	for _, full := range []string{"A", "A|B", "A|B|D"} {
		if !v.Visible(mustLookup(t, tr, full).ID) {
			t.Errorf("%s should be visible", full)
		}
	}
	if v.HiddenCount() != 3 {
		t.Errorf("hidden count %d, want 3", v.HiddenCount())
	}
}

func TestApplyFilterNormalizesQuery(t *testing.T) {
	tr := Build([]string{"Fucili|Elettrici", "Ottiche|Red Dot"})

	v := tr.ApplyFilter("  ELETT  ")
	if v.Query() != "elett" {
		t.Errorf("query = %q, want elett", v.Query())
	}
	if !v.Visible(mustLookup(t, tr, "Fucili").ID) {
		t.Error("ancestor of a match must stay visible")
	}
	if v.Visible(mustLookup(t, tr, "Ottiche").ID) {
		t.Error("non-matching branch should be hidden")
	}
}

func TestApplyFilterMatchesFullPath(t *testing.T) {
	tr := Build([]string{"Fruit|Apple", "Veg|Carrot"})

	// "t|a" only occurs in the full path "Fruit|Apple".
	v := tr.ApplyFilter("t|a")
	if !v.Visible(mustLookup(t, tr, "Fruit|Apple").ID) {
		t.Error("match on full path should keep node visible")
	}
	if v.Visible(mustLookup(t, tr, "Veg|Carrot").ID) {
		t.Error("Veg|Carrot should be hidden")
	}
}

func TestApplyFilterMatchedParentKeepsOnlyMatchingChildren(t *testing.T) {
	tr := Build([]string{"Fruit|Apple", "Fruit|Banana"})

	// Children match through their full path, which contains the parent name.
	v := tr.ApplyFilter("fruit")
	if v.HiddenCount() != 0 {
		t.Errorf("expected everything visible, hidden=%v", hiddenSet(tr, v))
	}

	v = tr.ApplyFilter("banana")
	if v.Visible(mustLookup(t, tr, "Fruit|Apple").ID) {
		t.Error("Apple should be hidden when filtering for banana")
	}
}

func TestApplyFilterEmptyResets(t *testing.T) {
	tr := Build([]string{"A|B|C", "X|Y"})

	_ = tr.ApplyFilter("zzz")
	for _, q := range []string{"", "   ", "\t"} {
		v := tr.ApplyFilter(q)
		if v.Active() {
			t.Errorf("query %q should not activate the filter", q)
		}
		if v.HiddenCount() != 0 || len(hiddenSet(tr, v)) != 0 {
			t.Errorf("query %q hid nodes", q)
		}
	}
}

func TestApplyFilterDoesNotTouchCheckState(t *testing.T) {
	tr := Build([]string{"A|B", "A|C"})
	tr.Toggle(mustLookup(t, tr, "A|B").ID, true)
	before := tr.Shape() + fmt.Sprint(tr.SelectedLeaves())

	_ = tr.ApplyFilter("c")

	if after := tr.Shape() + fmt.Sprint(tr.SelectedLeaves()); after != before {
		t.Error("filtering changed the tree")
	}
	if tr.State(mustLookup(t, tr, "A").ID) != Indeterminate {
		t.Error("filtering changed check state")
	}
}

func TestApplyFilterNeverHidesRoot(t *testing.T) {
	tr := Build([]string{"A"})
	v := tr.ApplyFilter("nothing-matches")
	if v.Hidden(RootID) {
		t.Error("root must never be hidden")
	}
	if !v.Hidden(mustLookup(t, tr, "A").ID) {
		t.Error("A should be hidden")
	}
}

// naiveVisible is the direct definition: a node is visible when it or any
// descendant matches. Used only to cross-check the single-pass version.
func naiveVisible(tr *Tree, id NodeID, q string) bool {
	n, _ := tr.Node(id)
	if strings.Contains(strings.ToLower(n.Name), q) || strings.Contains(strings.ToLower(n.Full), q) {
		return true
	}
	for _, c := range n.Children {
		if naiveVisible(tr, c, q) {
			return true
		}
	}
	return false
}

func TestPropertyFilterMatchesDefinition(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		paths := rapid.SliceOfN(pathGen(), 0, 30).Draw(rt, "paths")
		query := rapid.SampledFrom([]string{"a", "b", "A|", "|b", "c", "zz", " B "}).Draw(rt, "query")
		tr := Build(paths)
		v := tr.ApplyFilter(query)
		q := NormalizeQuery(query)

		tr.Walk(func(n Node) bool {
			if want := naiveVisible(tr, n.ID, q); v.Visible(n.ID) != want {
				rt.Fatalf("%s: visible=%v, want %v (query %q)", n.Full, v.Visible(n.ID), want, q)
			}
			return true
		})
	})
}

func syntheticPaths(n int) []string {
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		paths = append(paths, fmt.Sprintf("Cat%d|Sub%d|Item%d", i%20, i%400, i))
	}
	return paths
}

func BenchmarkApplyFilter(b *testing.B) {
	tr := Build(syntheticPaths(20000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tr.ApplyFilter("item19")
	}
}

func BenchmarkBuild(b *testing.B) {
	paths := syntheticPaths(20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Build(paths)
	}
}
