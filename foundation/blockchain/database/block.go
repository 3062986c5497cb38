package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Set of errors returned when a block doesn't fit the chain.
var (
	ErrOutOfOrder  = errors.New("block is out of order")
	ErrBrokenLink  = errors.New("block previous hash doesn't match the latest block")
	ErrInvalidWork = errors.New("block proof doesn't solve the puzzle")
)

// ProofChecker represents the behavior required to validate the proof
// recorded by a block against the previous block.
type ProofChecker interface {
	ValidProof(ref string, proof uint64) bool
}

// =============================================================================

// Block represents a group of transactions sealed into the chain. The hash of
// a block is never stored, it's computed on demand from the canonical form.
type Block struct {
	Index         uint64 // Position in the chain, 0 for genesis.
	Miner         string // Participant credited for sealing this block, empty for genesis.
	PrevBlockHash string // Hash of the previous block in the chain.
	Proof         uint64 // Value identified to solve the work puzzle.
	TimeStamp     uint64 // Time the block was sealed in unix milliseconds.
	Transactions  []Tx   // Transactions taken from the mempool when sealed.
}

// blockData is the canonical form of a block. The field order is the
// canonical order used for hashing: index, miner, previous_hash, proof,
// timestamp, transactions. Do not reorder these fields.
type blockData struct {
	Index         uint64  `json:"index"`
	Miner         *string `json:"miner"`
	PrevBlockHash string  `json:"previous_hash"`
	Proof         uint64  `json:"proof"`
	TimeStamp     uint64  `json:"timestamp"`
	Transactions  []Tx    `json:"transactions"`
}

// ParseBlock decodes the canonical form of a block.
func ParseBlock(data []byte) (Block, error) {
	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return Block{}, err
	}

	return block, nil
}

// Encode returns the canonical byte representation of the block.
func (b Block) Encode() ([]byte, error) {
	return digest.Canonical(b.toData())
}

// Canonical returns the canonical string representation of the block. This
// is the reference string a miner needs to solve the puzzle for the next
// block.
func (b Block) Canonical() string {
	data, err := b.Encode()
	if err != nil {
		return ""
	}

	return string(data)
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {
	return digest.HashValue(b.toData())
}

// MarshalJSON implements the json.Marshaler interface so the wire form of a
// block is always the canonical form.
func (b Block) MarshalJSON() ([]byte, error) {
	return b.Encode()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *Block) UnmarshalJSON(data []byte) error {
	var bd blockData
	if err := json.Unmarshal(data, &bd); err != nil {
		return err
	}

	var miner string
	if bd.Miner != nil {
		miner = *bd.Miner
	}

	trans := bd.Transactions
	if trans == nil {
		trans = []Tx{}
	}

	*b = Block{
		Index:         bd.Index,
		Miner:         miner,
		PrevBlockHash: bd.PrevBlockHash,
		Proof:         bd.Proof,
		TimeStamp:     bd.TimeStamp,
		Transactions:  trans,
	}

	return nil
}

// ValidateBlock takes a block and validates it to be the next block after
// the previous block.
func (b Block) ValidateBlock(previousBlock Block, checker ProofChecker, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Index)

	if b.Index != previousBlock.Index+1 {
		return fmt.Errorf("%w: got %d, exp %d", ErrOutOfOrder, b.Index, previousBlock.Index+1)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Index)

	if prevHash := previousBlock.Hash(); b.PrevBlockHash != prevHash {
		return fmt.Errorf("%w: got %s, exp %s", ErrBrokenLink, b.PrevBlockHash, prevHash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block's timestamp is greater than parent block's timestamp", b.Index)

	if b.TimeStamp <= previousBlock.TimeStamp {
		return fmt.Errorf("block timestamp is before parent block, parent %d, block %d", previousBlock.TimeStamp, b.TimeStamp)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block proof solves the puzzle", b.Index)

	if !checker.ValidProof(previousBlock.Canonical(), b.Proof) {
		return fmt.Errorf("%w: blk[%d] proof[%d]", ErrInvalidWork, b.Index, b.Proof)
	}

	for _, tx := range b.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("blk[%d]: %w", b.Index, err)
		}
	}

	return nil
}

// =============================================================================

// toData converts the block into its canonical form.
func (b Block) toData() blockData {
	var miner *string
	if b.Miner != "" {
		miner = &b.Miner
	}

	// An empty set of transactions must encode as [] and not null.
	trans := b.Transactions
	if trans == nil {
		trans = []Tx{}
	}

	return blockData{
		Index:         b.Index,
		Miner:         miner,
		PrevBlockHash: b.PrevBlockHash,
		Proof:         b.Proof,
		TimeStamp:     b.TimeStamp,
		Transactions:  trans,
	}
}
