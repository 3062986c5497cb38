// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// EventHandler defines a function that is called when events
// occur in the processing of sealing blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID    string
	Genesis   genesis.Genesis
	AutoMine  bool
	EvHandler EventHandler
}

// State manages the blockchain database. There is one value per running
// node, constructed at startup and shared by everything serving requests.
type State struct {
	nodeID    string
	autoMine  bool
	evHandler EventHandler

	// mu serializes the pool submissions with the seal of a new block so
	// two miners can never seal against the same tip.
	mu sync.Mutex

	genesis genesis.Genesis
	pow     *pow.Engine
	mempool *mempool.Mempool
	db      *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management. The genesis block is
// sealed before the value is returned so the chain is never empty.
func New(cfg Config) (*State, error) {
	if cfg.NodeID == "" {
		return nil, errors.New("node id is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// The same engine is used to search for and verify proofs so the
	// difficulty can't drift between the two.
	engine, err := pow.New(cfg.Genesis.Difficulty, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		nodeID:    cfg.NodeID,
		autoMine:  cfg.AutoMine,
		evHandler: ev,

		genesis: cfg.Genesis,
		pow:     engine,
		mempool: mempool.New(),
		db:      database.New(),

		Worker: nopWorker{},
	}

	// The genesis block carries a fixed proof and no transactions.
	proof := cfg.Genesis.Proof
	if _, err := state.Seal(&proof, ""); err != nil {
		return nil, err
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// nopWorker is used until a real worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown()           {}
func (nopWorker) SignalStartMining()  {}
func (nopWorker) SignalCancelMining() {}
