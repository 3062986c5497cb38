package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Set of errors returned by the mining protocol.
var (
	ErrProofRejected = errors.New("invalid proof")
	ErrMissingMiner  = errors.New("miner is required")
)

// =============================================================================

// SubmitProof takes a proof found by a mining client, verifies it against the
// current tip and if that passes, seals a new block crediting the miner. A
// rejected proof returns ErrProofRejected and changes nothing.
func (s *State) SubmitProof(proof *uint64, miner string) (database.Block, error) {
	if proof == nil {
		return database.Block{}, ErrMissingProof
	}

	if miner == "" {
		return database.Block{}, ErrMissingMiner
	}

	s.evHandler("state: SubmitProof: started: miner[%s]: proof[%d]", miner, *proof)
	defer s.evHandler("state: SubmitProof: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	// The tip is read under the lock so a proof solved against an older tip
	// can't seal a second block on top of it.
	latest := s.db.LatestBlock()
	if !s.pow.VerifyProof(latest.Canonical(), *proof) {
		s.evHandler("state: SubmitProof: REJECTED: tip[%d]: proof[%d]", latest.Index, *proof)
		return database.Block{}, ErrProofRejected
	}

	block, err := s.sealWithReward(*proof, miner)
	if err != nil {
		return database.Block{}, err
	}

	// If the worker is mining against the old tip, it needs to start over.
	s.Worker.SignalCancelMining()

	return block, nil
}

// MineNewBlock searches for a proof against the current tip and seals a new
// block crediting this node. The search runs without holding the state lock,
// if the tip moves while searching the search starts again.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	for {
		latest := s.db.LatestBlock()

		s.evHandler("state: MineNewBlock: MINING: perform POW: tip[%d]", latest.Index)

		proof, err := s.pow.FindProof(ctx, latest.Canonical())
		if err != nil {
			return database.Block{}, err
		}

		block, err := s.sealIfCurrent(proof)
		if err != nil {
			if errors.Is(err, ErrProofRejected) {
				s.evHandler("state: MineNewBlock: MINING: tip moved, starting over")
				continue
			}
			return database.Block{}, err
		}

		return block, nil
	}
}

// sealIfCurrent seals a block for this node if the proof is valid for the tip
// at the time the lock is held.
func (s *State) sealIfCurrent(proof uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pow.VerifyProof(s.db.LatestBlock().Canonical(), proof) {
		return database.Block{}, ErrProofRejected
	}

	return s.sealWithReward(proof, s.nodeID)
}
