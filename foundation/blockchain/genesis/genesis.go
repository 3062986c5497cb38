// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Default values for a chain started without a genesis file.
const (
	DefaultMiningReward = 1
	DefaultProof        = 100
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	Difficulty   uint      `json:"difficulty"`    // How many leading zero hex characters solve the work problem.
	MiningReward float64   `json:"mining_reward"` // Reward paid to the miner of every sealed block.
	Proof        uint64    `json:"proof"`         // Fixed proof recorded by the genesis block.
}

// Default returns the genesis values used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:         time.Now().UTC(),
		Difficulty:   pow.DefaultDifficulty,
		MiningReward: DefaultMiningReward,
		Proof:        DefaultProof,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default values. Fields missing from the file keep their default value.
func Load(path string) (Genesis, error) {
	genesis := Default()
	if path == "" {
		return genesis, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis: %w", err)
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if genesis.Difficulty == 0 || genesis.Difficulty > pow.MaxDifficulty {
		return Genesis{}, fmt.Errorf("genesis difficulty %d out of range", genesis.Difficulty)
	}

	return genesis, nil
}
