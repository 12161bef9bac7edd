// Package editstate keeps the project being edited on the client side,
// debounces field edits into whole-project replacements and reconciles saves
// with the server.
package editstate

import (
	"errors"
	"sync"

	"github.com/devfolio-io/devfolio/pkg/client"
)

var ErrNotLoaded = errors.New("no project loaded")

// Listener is called after every change with a private copy of the current
// project (nil when cleared) and the store version.
type Listener func(p *client.Project, version uint64)

// Store holds at most one project. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	current   *client.Project
	baseline  *client.Project
	version   uint64
	session   uint64
	listeners map[int]Listener
	nextID    int
}

func NewStore() *Store {
	return &Store{listeners: map[int]Listener{}}
}

// Load starts a new edit session: current value and baseline both become p.
func (s *Store) Load(p client.Project) {
	s.mu.Lock()
	cur, base := p.Clone(), p.Clone()
	s.current, s.baseline = &cur, &base
	s.version++
	s.session++
	s.mu.Unlock()
	s.notify()
}

// Replace swaps the whole current project. The baseline is untouched.
func (s *Store) Replace(p client.Project) {
	s.mu.Lock()
	cur := p.Clone()
	s.current = &cur
	s.version++
	s.mu.Unlock()
	s.notify()
}

// ReplaceIn is Replace limited to the edit session started by the Load that
// returned session. It reports false, changing nothing, once another Load or
// Clear has happened.
func (s *Store) ReplaceIn(session uint64, p client.Project) bool {
	s.mu.Lock()
	if s.session != session || s.current == nil {
		s.mu.Unlock()
		return false
	}
	cur := p.Clone()
	s.current = &cur
	s.version++
	s.mu.Unlock()
	s.notify()
	return true
}

// Clear drops the loaded project.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current, s.baseline = nil, nil
	s.version++
	s.session++
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a deep copy of the current project and the version it was read at.
func (s *Store) Snapshot() (*client.Project, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.current), s.version
}

// Session identifies the current edit session. Load and Clear start a new one.
func (s *Store) Session() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) snapshotInSession() (*client.Project, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.current), s.session
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Baseline is the last copy the server confirmed.
func (s *Store) Baseline() *client.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePtr(s.baseline)
}

// Dirty reports whether the current project differs from the baseline.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.baseline == nil {
		return false
	}
	return !s.current.Equal(*s.baseline)
}

// Confirm records p, the server's copy of a save taken at version, as both
// baseline and current value. Nothing changes and false is returned when the
// store has moved past version.
func (s *Store) Confirm(p client.Project, version uint64) bool {
	s.mu.Lock()
	if s.version != version || s.current == nil {
		s.mu.Unlock()
		return false
	}
	base := p.Clone()
	s.baseline = &base
	if !s.current.Equal(p) {
		cur := p.Clone()
		s.current = &cur
		s.version++
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	p, v := clonePtr(s.current), s.version
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(clonePtr(p), v)
	}
}

func clonePtr(p *client.Project) *client.Project {
	if p == nil {
		return nil
	}
	c := p.Clone()
	return &c
}
