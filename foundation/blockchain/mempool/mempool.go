// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions waiting to be sealed
// into the next block.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Submit appends a transaction to the pool and returns it unchanged.
func (mp *Mempool) Submit(tx database.Tx) (database.Tx, error) {
	if err := tx.Validate(); err != nil {
		return database.Tx{}, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return tx, nil
}

// Drain returns the pending transactions in insertion order and leaves the
// pool empty.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	if trans == nil {
		trans = []database.Tx{}
	}
	mp.pool = nil

	return trans
}

// Copy returns a copy of the pending transactions in insertion order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Restore puts transactions that were drained for a block that failed to
// seal back at the front of the pool, ahead of anything submitted since.
func (mp *Mempool) Restore(trans []database.Tx) {
	if len(trans) == 0 {
		return
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := make([]database.Tx, 0, len(trans)+len(mp.pool))
	pool = append(pool, trans...)
	mp.pool = append(pool, mp.pool...)
}
