package editstate

import (
	"sync"

	"github.com/devfolio-io/devfolio/pkg/client"
)

// Editor turns field edits into debounced whole-project replacements.
// Edits made inside one debounce window are merged into a single Replace.
type Editor struct {
	store *Store
	deb   *Debouncer

	mu      sync.Mutex
	draft   *client.Project
	session uint64
}

func NewEditor(store *Store, deb *Debouncer) *Editor {
	if deb == nil {
		deb = NewDebouncer(DefaultDebounce)
	}
	return &Editor{store: store, deb: deb}
}

// Edit applies fn to a full copy of the project and schedules the result.
func (e *Editor) Edit(fn func(p *client.Project)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft != nil && e.store.Session() != e.session {
		// a Load or Clear replaced the project under the pending draft
		e.deb.Stop()
		e.draft = nil
	}
	if e.draft == nil {
		snap, session := e.store.snapshotInSession()
		if snap == nil {
			return ErrNotLoaded
		}
		e.draft, e.session = snap, session
	}
	fn(e.draft)
	next, session := e.draft.Clone(), e.session
	e.deb.Trigger(func() { e.commit(session, next) })
	return nil
}

// Flush pushes a pending edit into the store immediately.
func (e *Editor) Flush() {
	e.deb.Flush()
}

// Discard drops edits that have not reached the store yet.
func (e *Editor) Discard() {
	e.deb.Stop()
	e.mu.Lock()
	e.draft = nil
	e.mu.Unlock()
}

// commit holds mu across the replace so a concurrent Edit sees either the
// draft or the replaced store value. A draft from an earlier edit session is
// dropped. Listeners must not call Edit synchronously.
func (e *Editor) commit(session uint64, p client.Project) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == session {
		e.draft = nil
	}
	e.store.ReplaceIn(session, p)
}
