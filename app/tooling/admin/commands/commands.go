// Package commands contains the functionality for the admin audit commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Node is what is downloaded from a node to audit.
type Node struct {
	Chain      []database.Block
	Difficulty uint
}

// Fetch downloads the chain and the difficulty the node mines at.
func Fetch(ctx context.Context, url string) (Node, error) {
	var chain struct {
		Chain []database.Block `json:"chain"`
	}
	if err := get(ctx, url+"/v1/chain", &chain); err != nil {
		return Node{}, err
	}

	var status struct {
		Difficulty uint `json:"difficulty"`
	}
	if err := get(ctx, url+"/v1/node/status", &status); err != nil {
		return Node{}, err
	}

	node := Node{
		Chain:      chain.Chain,
		Difficulty: status.Difficulty,
	}

	return node, nil
}

// Validate rebuilds the chain locally and checks every link and proof
// against the difficulty.
func Validate(w io.Writer, blocks []database.Block, difficulty uint) error {
	engine, err := pow.New(difficulty, nil)
	if err != nil {
		return err
	}

	db := database.New()
	for _, block := range blocks {
		if err := db.Write(block); err != nil {
			return err
		}
	}

	ev := func(v string, args ...any) {}
	if err := db.Validate(engine, ev); err != nil {
		return err
	}

	fmt.Fprintf(w, "Chain is valid: Length[%d] LatestBlock[%s]\n", db.Length(), db.LatestBlock().Hash())

	return nil
}

// Balances writes the balance of the participant, or of everyone when no
// participant is given.
func Balances(w io.Writer, blocks []database.Block, participant string) {
	if participant != "" {
		fmt.Fprintf(w, "ID: %s  Balance: %v\n", participant, ledger.BalanceFor(blocks, participant))
		return
	}

	bals := ledger.Balances(blocks)

	ids := make([]string, 0, len(bals))
	for id := range bals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(w, "ID: %s  Balance: %v\n", id, bals[id])
	}
}

// Transactions writes the history of the participant in chain order.
func Transactions(w io.Writer, blocks []database.Block, participant string) {
	for _, tx := range ledger.TransactionsFor(blocks, participant) {
		fmt.Fprintln(w, tx)
	}
}

// =============================================================================

func get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}

	return nil
}
