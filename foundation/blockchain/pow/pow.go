// Package pow implements the proof of work puzzle used to seal blocks. A
// proof is valid when the hash of the reference string, a single space, and
// the decimal proof starts with a configured number of zero hex characters.
package pow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// DefaultDifficulty is the number of leading zero hex characters a hash must
// have to solve the puzzle. Six characters means three full zero bytes.
const DefaultDifficulty = 6

// MaxDifficulty is the length of a hex encoded hash.
const MaxDifficulty = 64

// checkEvery is how often, in attempts, the search looks at the context.
const checkEvery = 1 << 16

// reportEvery is how often, in attempts, the search reports progress.
const reportEvery = 1_000_000

// =============================================================================

// Engine finds and verifies proofs for a fixed difficulty. Using the same
// value for both sides keeps a mining client and the node in agreement.
type Engine struct {
	difficulty uint
	evHandler  func(v string, args ...any)
}

// New constructs an engine for the specified difficulty.
func New(difficulty uint, evHandler func(v string, args ...any)) (*Engine, error) {
	if difficulty == 0 || difficulty > MaxDifficulty {
		return nil, fmt.Errorf("difficulty %d must be between 1 and %d", difficulty, MaxDifficulty)
	}

	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	e := Engine{
		difficulty: difficulty,
		evHandler:  ev,
	}

	return &e, nil
}

// Difficulty returns the number of leading zeros the engine requires.
func (e *Engine) Difficulty() uint {
	return e.difficulty
}

// Work returns the hash that is checked for the reference and proof.
func Work(ref string, proof uint64) string {
	buf := make([]byte, 0, len(ref)+21)
	buf = append(buf, ref...)
	buf = append(buf, ' ')
	buf = strconv.AppendUint(buf, proof, 10)

	return digest.Hash(buf)
}

// ValidProof checks the proof solves the puzzle for the reference string.
func (e *Engine) ValidProof(ref string, proof uint64) bool {
	return digest.HasZeroPrefix(Work(ref, proof), e.difficulty)
}

// VerifyProof checks a proof that was found by a mining client. It performs
// no state changes, the caller decides what to do with the result.
func (e *Engine) VerifyProof(ref string, proof uint64) bool {
	return e.ValidProof(ref, proof)
}

// FindProof searches for the smallest proof that solves the puzzle for the
// reference string. The search starts at zero and is only interrupted by the
// context being cancelled.
func (e *Engine) FindProof(ctx context.Context, ref string) (uint64, error) {
	e.evHandler("pow: FindProof: MINING: started: difficulty[%d]", e.difficulty)
	defer e.evHandler("pow: FindProof: MINING: completed")

	var proof uint64
	for {
		if proof%checkEvery == 0 && ctx.Err() != nil {
			e.evHandler("pow: FindProof: MINING: CANCELLED: attempts[%d]", proof)
			return 0, ctx.Err()
		}

		if proof > 0 && proof%reportEvery == 0 {
			e.evHandler("pow: FindProof: MINING: attempts[%d]", proof)
		}

		if e.ValidProof(ref, proof) {
			e.evHandler("pow: FindProof: MINING: SOLVED: proof[%d]: hash[%s]", proof, Work(ref, proof))
			return proof, nil
		}

		proof++
	}
}
