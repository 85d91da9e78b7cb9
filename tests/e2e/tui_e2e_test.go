package main_test

import (
	"strings"
	"testing"
	"time"
)

func TestTUIStartsAndAutoCloses(t *testing.T) {
	requirePTY(t)
	w := newWorkspace(t, e2ePaths...)

	out, err := w.tui(500*time.Millisecond, 10*time.Second, nil)
	if err != nil {
		t.Fatalf("TUI run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "CATEGORIES") {
		t.Errorf("expected the tree header in the output:\n%s", out)
	}
}

func TestTUIWaitsForMissingFile(t *testing.T) {
	requirePTY(t)
	w := newWorkspace(t)

	out, err := w.tui(500*time.Millisecond, 10*time.Second, nil)
	if err != nil {
		t.Fatalf("TUI should start without the categories file: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No categories loaded") {
		t.Errorf("expected the empty state in the output:\n%s", out)
	}
}

func TestTUIReloadsWhenSourceChanges(t *testing.T) {
	requirePTY(t)
	w := newWorkspace(t, e2ePaths...)
	changed := append([]string{"Granate|Fumogene"}, e2ePaths...)

	out, err := w.tui(4*time.Second, 15*time.Second, func() {
		time.Sleep(800 * time.Millisecond)
		w.writeSource(changed)
	})
	if err != nil {
		t.Fatalf("TUI run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Reloaded") {
		t.Errorf("expected a reload notice after the file changed:\n%s", out)
	}
}
