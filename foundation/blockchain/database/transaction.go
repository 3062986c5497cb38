package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// ErrMalformedTransaction is returned when a transaction is missing a
// participant or carries an amount that can't be encoded.
var ErrMalformedTransaction = errors.New("malformed transaction")

// =============================================================================

// Tx is the transactional information between two participants. The field
// order below is the canonical order used for hashing: amount, receiver,
// sender. Do not reorder these fields.
type Tx struct {
	Amount   float64 `json:"amount"`   // Value moved from the sender to the receiver, may be fractional.
	Receiver string  `json:"receiver"` // Participant receiving the amount.
	Sender   string  `json:"sender"`   // Participant giving the amount.
}

// NewTx constructs a new transaction. Amounts are not checked against any
// balance, a sender is allowed to overdraw.
func NewTx(sender string, receiver string, amount float64) (Tx, error) {
	tx := Tx{
		Amount:   amount,
		Receiver: receiver,
		Sender:   sender,
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// NewRewardTx constructs the transaction that pays the miner of the block
// sealed at the specified chain length.
func NewRewardTx(length uint64, miner string, reward float64) Tx {
	return Tx{
		Amount:   reward,
		Receiver: miner,
		Sender:   RewardSender(length),
	}
}

// RewardSender returns the synthetic system participant that pays the reward
// for the block sealed at the specified chain length.
func RewardSender(length uint64) string {
	return fmt.Sprintf("node %d", length)
}

// ParseTx decodes the canonical form of a transaction.
func ParseTx(data []byte) (Tx, error) {
	var tx Tx
	if err := json.Unmarshal(data, &tx); err != nil {
		return Tx{}, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// Validate checks the transaction carries both participants and a finite
// amount. Participants must be valid UTF-8 so the canonical form encodes
// them byte for byte.
func (tx Tx) Validate() error {
	switch {
	case tx.Sender == "":
		return fmt.Errorf("%w: missing sender", ErrMalformedTransaction)
	case tx.Receiver == "":
		return fmt.Errorf("%w: missing receiver", ErrMalformedTransaction)
	case !utf8.ValidString(tx.Sender):
		return fmt.Errorf("%w: sender %q is not valid utf-8", ErrMalformedTransaction, tx.Sender)
	case !utf8.ValidString(tx.Receiver):
		return fmt.Errorf("%w: receiver %q is not valid utf-8", ErrMalformedTransaction, tx.Receiver)
	case math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0):
		return fmt.Errorf("%w: amount %v is not finite", ErrMalformedTransaction, tx.Amount)
	}

	return nil
}

// Encode returns the canonical byte representation of the transaction.
func (tx Tx) Encode() ([]byte, error) {
	return digest.Canonical(tx)
}

// Canonical returns the canonical string representation of the transaction.
func (tx Tx) Canonical() string {
	data, err := tx.Encode()
	if err != nil {
		return ""
	}

	return string(data)
}

// Involves reports whether the participant is the sender or the receiver.
func (tx Tx) Involves(participant string) bool {
	return tx.Sender == participant || tx.Receiver == participant
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Receiver, tx.Amount)
}
