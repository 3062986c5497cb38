package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/spf13/cobra"
)

var (
	difficulty uint
	maxBlocks  int
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine blocks against the node, crediting your id",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().UintVarP(&difficulty, "difficulty", "d", 0, "Leading zeros to search for, 0 asks the node.")
	mineCmd.Flags().IntVarP(&maxBlocks, "blocks", "b", 0, "Stop after this many accepted blocks, 0 mines until interrupted.")
}

func mineRun(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	id, err := loadOrCreateID(idFile)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("ID:", id)

	c := newClient(nodeURL)

	if difficulty == 0 {
		var status struct {
			Difficulty uint `json:"difficulty"`
		}
		if err := c.get(ctx, "/v1/node/status", &status); err != nil {
			log.Fatal(err)
		}
		difficulty = status.Difficulty
	}

	engine, err := pow.New(difficulty, nil)
	if err != nil {
		log.Fatal(err)
	}

	m := miner{
		client: c,
		engine: engine,
		id:     id,
	}

	var coins int
	for maxBlocks == 0 || coins < maxBlocks {
		fmt.Println("================")
		fmt.Println("Mining...")

		won, err := m.mineOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("Stopping...")
				return
			}

			fmt.Println("ERROR:", err)
			time.Sleep(time.Second)
			continue
		}

		if won {
			coins++
		}
		fmt.Printf("You now have %d coins!\n", coins)
	}
}

// =============================================================================

// miner searches for proofs locally and submits them to the node.
type miner struct {
	client client
	engine *pow.Engine
	id     string
}

// mineOnce solves the current tip and submits the proof. It reports if the
// node accepted the proof. Another miner sealing the tip first is not an error.
func (m miner) mineOnce(ctx context.Context) (bool, error) {
	var tip database.Block
	if err := m.client.get(ctx, "/v1/last_block", &tip); err != nil {
		return false, fmt.Errorf("fetching tip: %w", err)
	}

	proof, err := m.engine.FindProof(ctx, tip.Canonical())
	if err != nil {
		return false, fmt.Errorf("searching: %w", err)
	}

	sub := struct {
		Proof uint64 `json:"proof"`
		Miner string `json:"miner"`
	}{
		Proof: proof,
		Miner: m.id,
	}

	status, err := m.client.post(ctx, "/v1/mine", sub, nil)
	if err != nil {
		return false, fmt.Errorf("posting proof: %w", err)
	}

	return status == http.StatusOK, nil
}
