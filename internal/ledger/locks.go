package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// productLocks serializes applies per product inside this process. The
// database CAS guard still protects against other writers; the lock only
// keeps local goroutines from burning retry budget against each other.
type productLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[uuid.UUID]*lockEntry)}
}

// acquire blocks until the per-product lock is held and returns the release
// function. Entries are dropped once the last holder releases.
func (p *productLocks) acquire(id uuid.UUID) func() {
	p.mu.Lock()
	entry, ok := p.locks[id]
	if !ok {
		entry = &lockEntry{}
		p.locks[id] = entry
	}
	entry.refs++
	p.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		p.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(p.locks, id)
		}
		p.mu.Unlock()
	}
}
