package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/cattree/pkg/tree"
)

// AssertInvariants fails the test when the tree's structure or check state
// is inconsistent.
func AssertInvariants(t *testing.T, tr *tree.Tree) {
	t.Helper()
	if err := tr.CheckInvariants(); err != nil {
		t.Fatalf("tree invariants violated: %v", err)
	}
}

// AssertSelected compares the tree's selected leaves with want, in order.
func AssertSelected(t *testing.T, tr *tree.Tree, want ...string) {
	t.Helper()
	got := tr.SelectedLeaves()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selected leaves:\n got  %q\n want %q", got, want)
	}
}

// AssertState checks the tri-state of the node at path.
func AssertState(t *testing.T, tr *tree.Tree, path string, want tree.CheckState) {
	t.Helper()
	id, ok := tr.Lookup(path)
	if !ok {
		t.Fatalf("no node %q", path)
	}
	if got := tr.State(id); got != want {
		t.Errorf("%s: state %v, want %v", path, got, want)
	}
}

// MustLookup returns the id of path or fails the test.
func MustLookup(t *testing.T, tr *tree.Tree, path string) tree.NodeID {
	t.Helper()
	id, ok := tr.Lookup(path)
	if !ok {
		t.Fatalf("no node %q", path)
	}
	return id
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s",
					i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// WriteSourceFile writes paths as a categories JSON file in dir and returns
// its path.
func WriteSourceFile(t *testing.T, dir string, paths []string) string {
	t.Helper()
	path := filepath.Join(dir, "categorie_uniche.json")
	if err := os.WriteFile(path, []byte(ToJSON(paths)), 0o644); err != nil {
		t.Fatalf("failed to write categories file: %v", err)
	}
	return path
}
