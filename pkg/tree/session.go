package tree

import (
	"sync"

	"github.com/vanderheijden86/cattree/pkg/debug"
)

// Session owns the current tree and serializes access to it. A reload swaps
// the whole tree in one step, and a toggle runs its downward cascade and
// ancestor recompute under one lock so no reader sees half of it.
type Session struct {
	mu         sync.RWMutex
	tree       *Tree
	generation uint64
}

// NewSession wraps t, which may be nil until the first load.
func NewSession(t *Tree) *Session {
	s := &Session{tree: t}
	if t != nil {
		s.generation = 1
	}
	return s
}

// Replace installs a freshly built tree. Node ids issued for the previous
// tree are meaningless afterwards; Generation changes so holders can tell.
func (s *Session) Replace(t *Tree) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = t
	s.generation++
	return s.generation
}

// Generation identifies the installed tree. It is zero before the first tree.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Loaded reports whether a tree is installed.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree != nil
}

// Toggle applies Tree.Toggle and returns the refreshed selection.
func (s *Session) Toggle(id NodeID, checked bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Toggle(id, checked)
	if debug.Enabled() {
		debug.AssertNoError(s.tree.CheckInvariants(), "toggle")
	}
	return s.tree.SelectedLeaves()
}

// ClearAll unchecks everything and returns the (empty) selection.
func (s *Session) ClearAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.ClearAll()
	if debug.Enabled() {
		debug.AssertNoError(s.tree.CheckInvariants(), "clear")
	}
	return s.tree.SelectedLeaves()
}

// Filter runs a visibility pass over the current tree.
func (s *Session) Filter(query string) Visibility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.ApplyFilter(query)
}

// SelectedLeaves returns the checked leaf paths of the current tree.
func (s *Session) SelectedLeaves() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.SelectedLeaves()
}

// Read runs fn with shared access to the current tree. fn must not retain
// the tree or call back into the session.
func (s *Session) Read(fn func(t *Tree)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.tree)
}
