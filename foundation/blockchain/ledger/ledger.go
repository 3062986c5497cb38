// Package ledger derives participant history and balances from the sealed
// blocks of the chain. Nothing is cached, every call walks the blocks it is
// given.
package ledger

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// TransactionsFor returns every transaction where the participant is the
// sender or the receiver, in chain order and then block order.
func TransactionsFor(blocks []database.Block, participant string) []database.Tx {
	trans := []database.Tx{}

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if tx.Involves(participant) {
				trans = append(trans, tx)
			}
		}
	}

	return trans
}

// BalanceFor returns the net balance for the participant. A participant the
// chain has never seen has a balance of zero.
func BalanceFor(blocks []database.Block, participant string) float64 {
	var balance float64

	for _, tx := range TransactionsFor(blocks, participant) {
		balance = apply(balance, participant, tx)
	}

	return balance
}

// Balances returns the net balance of every participant that appears in
// the chain, including the synthetic reward senders.
func Balances(blocks []database.Block) map[string]float64 {
	sheet := make(map[string]float64)

	for _, block := range blocks {
		for _, tx := range block.Transactions {
			sheet[tx.Sender] -= tx.Amount
			sheet[tx.Receiver] += tx.Amount
		}
	}

	return sheet
}

// =============================================================================

// apply performs the business logic for applying a transaction to the
// balance of the participant. A transaction to yourself nets to zero.
func apply(balance float64, participant string, tx database.Tx) float64 {
	if tx.Sender == participant {
		balance -= tx.Amount
	}

	if tx.Receiver == participant {
		balance += tx.Amount
	}

	return balance
}
