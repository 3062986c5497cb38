package cmd

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestID(t *testing.T) {
	t.Log("Given the need to keep a local id.")
	{
		path := filepath.Join(t.TempDir(), "my_id.txt")

		if _, err := loadID(path); err == nil {
			t.Fatalf("\t%s\tShould fail to load a missing id.", failed)
		}
		t.Logf("\t%s\tShould fail to load a missing id.", success)

		id, err := loadOrCreateID(path)
		if err != nil || len(id) != 32 {
			t.Fatalf("\t%s\tShould create an id without dashes: %q %v", failed, id, err)
		}
		t.Logf("\t%s\tShould create an id without dashes.", success)

		again, err := loadOrCreateID(path)
		if err != nil || again != id {
			t.Fatalf("\t%s\tShould keep the same id: %q %v", failed, again, err)
		}
		t.Logf("\t%s\tShould keep the same id.", success)

		if err := os.WriteFile(path, []byte("  \n"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := loadID(path); err == nil {
			t.Fatalf("\t%s\tShould reject an empty id file.", failed)
		}
		t.Logf("\t%s\tShould reject an empty id file.", success)
	}
}

func TestMineOnce(t *testing.T) {
	t.Log("Given the need to mine against a node.")
	{
		gen := genesis.Default()
		gen.Difficulty = 2

		st, err := state.New(state.Config{
			NodeID:  "test-node",
			Genesis: gen,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		srv := httptest.NewServer(handlers.PublicMux(handlers.MuxConfig{
			Shutdown: make(chan os.Signal, 1),
			Log:      zap.NewNop().Sugar(),
			State:    st,
			Evts:     events.New(),
		}))
		defer srv.Close()

		engine, err := pow.New(gen.Difficulty, nil)
		if err != nil {
			t.Fatal(err)
		}

		m := miner{
			client: newClient(srv.URL),
			engine: engine,
			id:     "carol",
		}

		for i := 0; i < 3; i++ {
			won, err := m.mineOnce(context.Background())
			if err != nil || !won {
				t.Fatalf("\t%s\tShould have block %d accepted: %v %v", failed, i+1, won, err)
			}
		}
		t.Logf("\t%s\tShould have every block accepted.", success)

		if st.Length() != 4 {
			t.Fatalf("\t%s\tShould have grown the chain, got %d.", failed, st.Length())
		}
		t.Logf("\t%s\tShould have grown the chain.", success)

		if bal := st.QueryBalance("carol"); bal != 3 {
			t.Fatalf("\t%s\tShould have credited the miner, got %v.", failed, bal)
		}
		t.Logf("\t%s\tShould have credited the miner.", success)

		if err := st.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould have a valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)
	}
}
