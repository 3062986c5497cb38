package commands_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestAudit(t *testing.T) {
	t.Log("Given the need to audit a node's chain.")
	{
		gen := genesis.Default()
		gen.Difficulty = 2

		st, err := state.New(state.Config{
			NodeID:  "auditor",
			Genesis: gen,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		tx, err := database.NewTx("alice", "bob", 4)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := st.SubmitTransaction(tx); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 2; i++ {
			if _, err := st.MineNewBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tShould be able to mine: %v", failed, err)
			}
		}

		srv := httptest.NewServer(handlers.PublicMux(handlers.MuxConfig{
			Shutdown: make(chan os.Signal, 1),
			Log:      zap.NewNop().Sugar(),
			State:    st,
			Evts:     events.New(),
		}))
		defer srv.Close()

		node, err := commands.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to fetch the chain: %v", failed, err)
		}

		if len(node.Chain) != 3 || node.Difficulty != 2 {
			t.Fatalf("\t%s\tShould fetch every block and the difficulty: %d %d", failed, len(node.Chain), node.Difficulty)
		}
		t.Logf("\t%s\tShould fetch every block and the difficulty.", success)

		var out bytes.Buffer
		if err := commands.Validate(&out, node.Chain, node.Difficulty); err != nil {
			t.Fatalf("\t%s\tShould validate the fetched chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the fetched chain.", success)

		out.Reset()
		commands.Balances(&out, node.Chain, "")
		exp := "ID: alice  Balance: -4\nID: auditor  Balance: 2\nID: bob  Balance: 4\nID: node 1  Balance: -1\nID: node 2  Balance: -1\n"
		if out.String() != exp {
			t.Fatalf("\t%s\tShould list every balance:\n%s", failed, out.String())
		}
		t.Logf("\t%s\tShould list every balance.", success)

		out.Reset()
		commands.Transactions(&out, node.Chain, "bob")
		if strings.Count(out.String(), "\n") != 1 {
			t.Fatalf("\t%s\tShould list bob's history:\n%s", failed, out.String())
		}
		t.Logf("\t%s\tShould list bob's history.", success)

		tampered := append([]database.Block(nil), node.Chain...)
		tampered[1].Transactions = []database.Tx{{Sender: "alice", Receiver: "bob", Amount: 400}}

		if err := commands.Validate(&out, tampered, node.Difficulty); !errors.Is(err, database.ErrBrokenLink) {
			t.Fatalf("\t%s\tShould detect a tampered block, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould detect a tampered block.", success)
	}
}
