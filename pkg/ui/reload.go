package ui

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/cattree/pkg/loader"
	"github.com/vanderheijden86/cattree/pkg/tree"
	"github.com/vanderheijden86/cattree/pkg/watcher"
)

// FileChangedMsg is sent when the watched categories file changes on disk.
type FileChangedMsg struct{}

// FileRemovedMsg is sent when the watched categories file disappears.
type FileRemovedMsg struct{}

// ReloadMsg carries the result of re-reading the categories file.
type ReloadMsg struct {
	Tree  *tree.Tree
	Stats loader.Stats
	Err   error
}

// WatchFileCmd blocks until the watcher reports a change. Re-issue it after
// every FileChangedMsg to keep listening.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// LoadFileCmd reads and builds the tree at path off the UI goroutine.
func LoadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		t, stats, err := loader.LoadFile(path)
		return ReloadMsg{Tree: t, Stats: stats, Err: err}
	}
}

// WatchRemovedCmd waits for a removal notification forwarded on ch.
func WatchRemovedCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return FileRemovedMsg{}
	}
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	if path == "" {
		return ""
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) && rel[0] != '.' {
			return rel
		}
	}
	return path
}
