package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const difficulty = 2

// nodeTest holds the pieces a handler test needs.
type nodeTest struct {
	st       *state.State
	evts     *events.Events
	shutdown chan os.Signal
	app      http.Handler
}

func newNodeTest(t *testing.T) nodeTest {
	gen := genesis.Default()
	gen.Difficulty = difficulty

	st, err := state.New(state.Config{
		NodeID:  "test-node",
		Genesis: gen,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	evts := events.New()
	shutdown := make(chan os.Signal, 1)

	app := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     evts,
	})

	return nodeTest{st: st, evts: evts, shutdown: shutdown, app: app}
}

func (nt nodeTest) do(method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	w := httptest.NewRecorder()
	nt.app.ServeHTTP(w, r)

	return w
}

// =============================================================================

func TestClientMining(t *testing.T) {
	nt := newNodeTest(t)

	engine, err := pow.New(difficulty, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Log("Given the need to mine blocks from a client.")
	{
		w := nt.do(http.MethodPost, "/v1/transactions/new", `{"sender":"alice","receiver":"bob","amount":10}`)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to submit a transaction: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould be able to submit a transaction.", success)

		w = nt.do(http.MethodGet, "/v1/transactions/uncommitted", "")
		var pending []database.Tx
		if err := json.NewDecoder(w.Body).Decode(&pending); err != nil || len(pending) != 1 {
			t.Fatalf("\t%s\tShould see the transaction as uncommitted: %v %v", failed, pending, err)
		}
		t.Logf("\t%s\tShould see the transaction as uncommitted.", success)

		w = nt.do(http.MethodGet, "/v1/last_block", "")
		tip, err := database.ParseBlock(w.Body.Bytes())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse the tip: %v", failed, err)
		}

		if tip.Canonical() != strings.TrimSpace(w.Body.String()) {
			t.Fatalf("\t%s\tShould serve the tip in canonical form: %s", failed, w.Body)
		}
		t.Logf("\t%s\tShould serve the tip in canonical form.", success)

		ref := tip.Canonical()

		bad := uint64(0)
		for engine.ValidProof(ref, bad) {
			bad++
		}

		w = nt.do(http.MethodPost, "/v1/mine", `{"proof":`+itoa(bad)+`,"miner":"bob"}`)
		if w.Code != http.StatusBadRequest || strings.TrimSpace(w.Body.String()) != `"Invalid Proof"` {
			t.Fatalf("\t%s\tShould reject a bad proof: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould reject a bad proof.", success)

		if nt.st.Length() != 1 {
			t.Fatalf("\t%s\tShould not change the chain on a bad proof.", failed)
		}
		t.Logf("\t%s\tShould not change the chain on a bad proof.", success)

		proof, err := engine.FindProof(context.Background(), ref)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to find a proof: %v", failed, err)
		}

		w = nt.do(http.MethodPost, "/v1/mine", `{"proof":`+itoa(proof)+`,"miner":"bob"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould accept a good proof: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould accept a good proof.", success)

		block, err := database.ParseBlock(w.Body.Bytes())
		if err != nil {
			t.Fatalf("\t%s\tShould return the sealed block: %v", failed, err)
		}

		if block.Index != 1 || block.Miner != "bob" || len(block.Transactions) != 2 {
			t.Fatalf("\t%s\tShould seal the transaction and the reward: %s", failed, block.Canonical())
		}
		t.Logf("\t%s\tShould seal the transaction and the reward.", success)

		w = nt.do(http.MethodGet, "/v1/participants/bob/balance", "")
		var bal struct {
			ID      string  `json:"id"`
			Balance float64 `json:"balance"`
		}
		if err := json.NewDecoder(w.Body).Decode(&bal); err != nil || bal.Balance != 11 {
			t.Fatalf("\t%s\tShould credit bob with the amount and reward: %+v %v", failed, bal, err)
		}
		t.Logf("\t%s\tShould credit bob with the amount and reward.", success)

		w = nt.do(http.MethodGet, "/v1/participants/alice/transactions", "")
		var history []database.Tx
		if err := json.NewDecoder(w.Body).Decode(&history); err != nil || len(history) != 1 {
			t.Fatalf("\t%s\tShould list alice's history: %v %v", failed, history, err)
		}
		t.Logf("\t%s\tShould list alice's history.", success)

		w = nt.do(http.MethodGet, "/v1/participants/nobody/transactions", "")
		if strings.TrimSpace(w.Body.String()) != "[]" {
			t.Fatalf("\t%s\tShould return an empty history for an unknown participant: %s", failed, w.Body)
		}
		t.Logf("\t%s\tShould return an empty history for an unknown participant.", success)
	}
}

func TestServerMining(t *testing.T) {
	nt := newNodeTest(t)

	t.Log("Given the need to mine blocks on the node.")
	{
		w := nt.do(http.MethodGet, "/v1/mine", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		w = nt.do(http.MethodGet, "/v1/chain", "")
		var resp struct {
			Chain  []database.Block `json:"chain"`
			Length int              `json:"length"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the chain: %v", failed, err)
		}

		if resp.Length != 2 || len(resp.Chain) != 2 || resp.Chain[1].Miner != "test-node" {
			t.Fatalf("\t%s\tShould credit the node with the new block: %+v", failed, resp)
		}
		t.Logf("\t%s\tShould credit the node with the new block.", success)

		w = nt.do(http.MethodGet, "/v1/blocks/1", "")
		block, err := database.ParseBlock(w.Body.Bytes())
		if w.Code != http.StatusOK || err != nil || block.Hash() != resp.Chain[1].Hash() {
			t.Fatalf("\t%s\tShould return a block by index: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould return a block by index.", success)

		if w = nt.do(http.MethodGet, "/v1/blocks/9", ""); w.Code != http.StatusNotFound {
			t.Fatalf("\t%s\tShould not find a block past the tip: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould not find a block past the tip.", success)

		if w = nt.do(http.MethodGet, "/v1/blocks/tip", ""); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a block number that isn't a number: %d %s", failed, w.Code, w.Body)
		}
		t.Logf("\t%s\tShould reject a block number that isn't a number.", success)

		w = nt.do(http.MethodGet, "/v1/node/status", "")
		var st struct {
			Length int  `json:"length"`
			Valid  bool `json:"valid"`
		}
		if err := json.NewDecoder(w.Body).Decode(&st); err != nil || !st.Valid || st.Length != 2 {
			t.Fatalf("\t%s\tShould report a valid chain: %+v %v", failed, st, err)
		}
		t.Logf("\t%s\tShould report a valid chain.", success)
	}
}

func TestBadRequests(t *testing.T) {
	nt := newNodeTest(t)

	t.Log("Given the need to reject bad requests.")
	{
		tt := []struct {
			name string
			path string
			body string
		}{
			{"missing receiver", "/v1/transactions/new", `{"sender":"alice","amount":1}`},
			{"missing amount", "/v1/transactions/new", `{"sender":"alice","receiver":"bob"}`},
			{"unknown field", "/v1/transactions/new", `{"sender":"alice","receiver":"bob","amount":1,"fee":1}`},
			{"missing proof", "/v1/mine", `{"miner":"bob"}`},
			{"missing miner", "/v1/mine", `{"proof":1}`},
		}

		for testID, tst := range tt {
			w := nt.do(http.MethodPost, tst.path, tst.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject %s: %d %s", failed, testID, tst.name, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould reject %s.", success, testID, tst.name)
		}

		if nt.st.Length() != 1 || nt.st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould not change anything.", failed)
		}
		t.Logf("\t%s\tShould not change anything.", success)
	}
}

func TestEventsDisconnect(t *testing.T) {
	nt := newNodeTest(t)

	srv := httptest.NewServer(nt.app)
	defer srv.Close()

	t.Log("Given the need to stream events to viewers that come and go.")
	{
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"

		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to connect: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to connect.", success)

		waitFor(t, func() bool { return nt.evts.Count() == 1 })

		nt.evts.Send("block 1")

		_, msg, err := conn.ReadMessage()
		if err != nil || string(msg) != "block 1" {
			t.Fatalf("\t%s\tShould receive the event: %q %v", failed, msg, err)
		}
		t.Logf("\t%s\tShould receive the event.", success)

		conn.Close()

		// Keep sending until the handler notices the client is gone.
		waitFor(t, func() bool {
			nt.evts.Send("block 2")
			return nt.evts.Count() == 0
		})
		t.Logf("\t%s\tShould release the viewer after it disconnects.", success)

		for i := 0; i < 50; i++ {
			nt.evts.Send("block 3")
		}

		select {
		case sig := <-nt.shutdown:
			t.Fatalf("\t%s\tShould keep the node running after a viewer disconnects, got %v.", failed, sig)
		case <-time.After(200 * time.Millisecond):
		}
		t.Logf("\t%s\tShould keep the node running after a viewer disconnects.", success)

		w := nt.do(http.MethodGet, "/v1/node/status", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould keep serving requests: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould keep serving requests.", success)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("\t%s\tShould reach the expected state within the deadline.", failed)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func itoa(n uint64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
