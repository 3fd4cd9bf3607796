// Package hostiter tracks open database cursors on the host side of the
// boundary, handing out the numeric iteration ids that cross it.
package hostiter

import (
	"sync"

	dbm "github.com/cometbft/cometbft-db"
)

// Table maps iteration ids to open cursors for one guest invocation. Ids
// start at 1 so that 0 stays the failure value of db_scan.
type Table struct {
	mu        sync.Mutex
	iterators map[uint32]dbm.Iterator
	nextID    uint32
}

// New creates an empty table.
func New() *Table {
	return &Table{
		iterators: make(map[uint32]dbm.Iterator),
		nextID:    1,
	}
}

// Store registers an iterator and returns its id.
func (t *Table) Store(iter dbm.Iterator) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.iterators[id] = iter
	t.nextID++
	return id
}

// Get retrieves an iterator by id.
func (t *Table) Get(id uint32) (dbm.Iterator, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	iter, ok := t.iterators[id]
	return iter, ok
}

// CloseAll releases every open cursor, as the host does when reclaiming an
// invocation's abandoned iterator state.
func (t *Table) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, iter := range t.iterators {
		iter.Close()
		delete(t.iterators, id)
	}
}
