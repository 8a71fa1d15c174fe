package httpapi

import (
	"sync"

	"github.com/thivian17/lecturelink/internal/orchestrator"
)

type uploadEntry struct {
	userID string
	dir    string
	orch   orchestrator.Orchestrator
}

// registry tracks the orchestrator behind each upload id.
type registry struct {
	mu      sync.RWMutex
	uploads map[string]*uploadEntry
}

func newRegistry() *registry {
	return &registry{uploads: make(map[string]*uploadEntry)}
}

func (r *registry) add(id string, e *uploadEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[id] = e
}

// get returns the entry only when it belongs to userID.
func (r *registry) get(id, userID string) (*uploadEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.uploads[id]
	if !ok || e.userID != userID {
		return nil, false
	}
	return e, true
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.uploads, id)
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.uploads)
}

// closeAll tears down every orchestrator still registered.
func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.uploads {
		e.orch.Close()
		delete(r.uploads, id)
	}
}
