package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/validate"
)

// invalidProof is the body returned when a submitted proof doesn't solve
// the current tip. Mining clients look for this exact value.
const invalidProof = "Invalid Proof"

type newTx struct {
	Sender   string   `json:"sender" validate:"required"`
	Receiver string   `json:"receiver" validate:"required"`
	Amount   *float64 `json:"amount" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (ntx newTx) Validate() error {
	return validate.Check(ntx)
}

func (ntx newTx) toDBTx() (database.Tx, error) {
	return database.NewTx(ntx.Sender, ntx.Receiver, *ntx.Amount)
}

// proofSubmission is what a mining client posts after solving the tip. The
// proof is a pointer so a missing proof can be told apart from zero.
type proofSubmission struct {
	Proof *uint64 `json:"proof"`
	Miner string  `json:"miner"`
}

type chain struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

type balance struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

type status struct {
	NodeID       string  `json:"node_id"`
	Length       int     `json:"length"`
	LatestBlock  string  `json:"latest_block"`
	Uncommitted  int     `json:"uncommitted"`
	Difficulty   uint    `json:"difficulty"`
	MiningReward float64 `json:"mining_reward"`
	Valid        bool    `json:"valid"`
	Error        string  `json:"error,omitempty"`
}
