// Package database maintains the in memory, append only chain of blocks and
// the data types that are recorded into it.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a block number doesn't exist in the chain.
var ErrNotFound = errors.New("block does not exist")

// =============================================================================

// Database manages the sealed blocks of the chain. Blocks are never modified
// or removed once written.
type Database struct {
	mu     sync.RWMutex
	blocks []Block
}

// New constructs an empty database. The caller is expected to write the
// genesis block before sharing the value.
func New() *Database {
	return &Database{}
}

// Write adds a new block to the chain. The block must be the next index and
// must link to the hash of the latest block.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	l := uint64(len(db.blocks))
	if block.Index != l {
		return fmt.Errorf("%w: got %d, exp %d", ErrOutOfOrder, block.Index, l)
	}

	if l > 0 {
		if prevHash := db.blocks[l-1].Hash(); block.PrevBlockHash != prevHash {
			return fmt.Errorf("%w: got %s, exp %s", ErrBrokenLink, block.PrevBlockHash, prevHash)
		}
	}

	db.blocks = append(db.blocks, block)

	return nil
}

// LatestBlock returns the latest block. The zero block is returned when
// nothing has been written.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}
	}

	return db.blocks[len(db.blocks)-1]
}

// Length returns the number of sealed blocks.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= uint64(len(db.blocks)) {
		return Block{}, fmt.Errorf("%w: blk[%d]", ErrNotFound, num)
	}

	return db.blocks[num], nil
}

// Blocks returns a snapshot of the chain. Blocks are immutable so the
// snapshot stays consistent while new blocks are appended.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (db *Database) ForEach() *Iterator {
	return &Iterator{db: db}
}

// Validate walks the whole chain and checks every block against the block
// before it.
func (db *Database) Validate(checker ProofChecker, evHandler func(v string, args ...any)) error {
	iter := db.ForEach()

	prev, err := iter.Next()
	if err != nil {
		return errors.New("chain has no genesis block")
	}

	if prev.Index != 0 {
		return fmt.Errorf("%w: genesis index is %d", ErrOutOfOrder, prev.Index)
	}

	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		if err := block.ValidateBlock(prev, checker, evHandler); err != nil {
			return err
		}

		prev = block
	}

	return nil
}

// =============================================================================

// Iterator walks the blocks of the chain in order.
type Iterator struct {
	db      *Database
	current uint64
	eoc     bool
}

// Next retrieves the next block in the chain.
func (it *Iterator) Next() (Block, error) {
	if it.eoc {
		return Block{}, errors.New("end of chain")
	}

	block, err := it.db.GetBlock(it.current)
	if err != nil {
		it.eoc = true
		return Block{}, err
	}

	it.current++

	return block, nil
}

// Done returns the end of chain value.
func (it *Iterator) Done() bool {
	return it.eoc
}
