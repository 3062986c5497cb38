package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestLoad(t *testing.T) {
	t.Log("Given the need to load the chain parameters.")
	{
		gen, err := genesis.Load("")
		if err != nil {
			t.Fatalf("\t%s\tShould load the defaults: %v", failed, err)
		}

		if gen.Difficulty != pow.DefaultDifficulty || gen.MiningReward != 1 || gen.Proof != 100 {
			t.Fatalf("\t%s\tShould load the defaults, got %+v.", failed, gen)
		}
		t.Logf("\t%s\tShould load the defaults.", success)

		path := filepath.Join(t.TempDir(), "genesis.json")
		if err := os.WriteFile(path, []byte(`{"difficulty":3,"mining_reward":2.5}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
		}

		gen, err = genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould load the file: %v", failed, err)
		}

		if gen.Difficulty != 3 || gen.MiningReward != 2.5 || gen.Proof != genesis.DefaultProof {
			t.Fatalf("\t%s\tShould override only the fields in the file, got %+v.", failed, gen)
		}
		t.Logf("\t%s\tShould override only the fields in the file.", success)

		if err := os.WriteFile(path, []byte(`{"difficulty":65}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
		}

		if _, err := genesis.Load(path); err == nil {
			t.Fatalf("\t%s\tShould reject an out of range difficulty.", failed)
		}
		t.Logf("\t%s\tShould reject an out of range difficulty.", success)
	}
}
