package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// SubmitTransaction accepts a transaction for inclusion in the next block.
// Nothing about the origin of the transaction is verified.
func (s *State) SubmitTransaction(tx database.Tx) (database.Tx, error) {
	s.mu.Lock()
	tx, err := s.mempool.Submit(tx)
	s.mu.Unlock()

	if err != nil {
		return database.Tx{}, err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]", tx)

	if s.autoMine {
		s.Worker.SignalStartMining()
	}

	return tx, nil
}
