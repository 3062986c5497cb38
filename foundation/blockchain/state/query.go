package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/ledger"
)

// RetrieveLatestBlock returns the tip of the chain.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveChain returns a snapshot of every sealed block.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Blocks()
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveNodeID returns the identity this node mines under.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// Length returns the number of sealed blocks.
func (s *State) Length() int {
	return s.db.Length()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlock returns the block at the specified index.
func (s *State) QueryBlock(num uint64) (database.Block, error) {
	return s.db.GetBlock(num)
}

// QueryTransactions returns the history of the participant.
func (s *State) QueryTransactions(participant string) []database.Tx {
	return ledger.TransactionsFor(s.db.Blocks(), participant)
}

// QueryBalance returns the net balance of the participant.
func (s *State) QueryBalance(participant string) float64 {
	return ledger.BalanceFor(s.db.Blocks(), participant)
}

// QueryBalances returns the net balance of every participant on the chain.
func (s *State) QueryBalances() map[string]float64 {
	return ledger.Balances(s.db.Blocks())
}

// ValidateChain walks the chain and checks every link and proof.
func (s *State) ValidateChain() error {
	return s.db.Validate(s.pow, s.evHandler)
}
