package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// ErrMissingProof is returned when a block is requested to be sealed
// without a proof.
var ErrMissingProof = errors.New("proof of work is required to create a new block")

// =============================================================================

// Seal constructs the next block from the current mempool and appends it to
// the chain. The proof is recorded as given, checking it against the tip is
// the job of SubmitProof and MineNewBlock.
func (s *State) Seal(proof *uint64, miner string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sealBlock(proof, miner, nil)
}

// sealBlock performs the seal. The reward, when provided, is sealed after
// the pooled transactions. The caller must hold the state lock.
func (s *State) sealBlock(proof *uint64, miner string, reward *database.Tx) (database.Block, error) {
	if proof == nil {
		return database.Block{}, ErrMissingProof
	}

	latest := s.db.LatestBlock()
	length := uint64(s.db.Length())

	// When sealing the first block, the previous block's hash will be zero.
	prevBlockHash := digest.ZeroHash
	if length > 0 {
		prevBlockHash = latest.Hash()
	}

	// Timestamps must move forward even when blocks are sealed within the
	// same millisecond.
	timeStamp := uint64(time.Now().UTC().UnixMilli())
	if length > 0 && timeStamp <= latest.TimeStamp {
		timeStamp = latest.TimeStamp + 1
	}

	pooled := s.mempool.Drain()

	trans := make([]database.Tx, 0, len(pooled)+1)
	trans = append(trans, pooled...)
	if reward != nil {
		trans = append(trans, *reward)
	}

	block := database.Block{
		Index:         length,
		Miner:         miner,
		PrevBlockHash: prevBlockHash,
		Proof:         *proof,
		TimeStamp:     timeStamp,
		Transactions:  trans,
	}

	s.evHandler("state: sealBlock: write: blk[%d]: numTrans[%d]", block.Index, len(block.Transactions))

	if err := s.db.Write(block); err != nil {

		// Only what was pooled goes back, the reward belonged to this seal.
		s.mempool.Restore(pooled)

		return database.Block{}, fmt.Errorf("write block: %w", err)
	}

	// Send an event about this new block.
	s.blockEvent(block)

	return block, nil
}

// sealWithReward seals the next block with the mining reward for the miner.
// The caller must hold the state lock and must have verified the proof
// against the current tip.
func (s *State) sealWithReward(proof uint64, miner string) (database.Block, error) {
	length := uint64(s.db.Length())

	reward := database.NewRewardTx(length, miner, s.genesis.MiningReward)
	if err := reward.Validate(); err != nil {
		return database.Block{}, fmt.Errorf("reward: %w", err)
	}

	return s.sealBlock(&proof, miner, &reward)
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash(), string(blockJSON))
}
