// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			// A failed write means the client went away.
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Chain returns every block sealed so far.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.RetrieveChain()

	resp := chain{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// LastBlock returns the tip of the chain. Mining clients search for a proof
// against the canonical form of this block.
func (h Handlers) LastBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveLatestBlock(), http.StatusOK)
}

// Block returns the block at the index given in the path.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, err := strconv.ParseUint(web.Param(r, "num"), 10, 64)
	if err != nil {
		return errs.BadRequest(fmt.Errorf("invalid block number %q", web.Param(r, "num")))
	}

	block, err := h.State.QueryBlock(num)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("query block: %w", err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// Mine searches for a proof on the node and seals a new block crediting the
// node. The search stops if the client goes away.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitProof takes a proof found by a mining client. A proof that doesn't
// solve the current tip is answered with a 400 and changes nothing.
func (h Handlers) SubmitProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sub proofSubmission
	if err := web.Decode(r, &sub); err != nil {
		return errs.BadRequest(err)
	}

	block, err := h.State.SubmitProof(sub.Proof, sub.Miner)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrProofRejected):
			h.Log.Infow("submit proof", "traceid", v.TraceID, "miner", sub.Miner, "status", "rejected")
			return web.Respond(ctx, w, invalidProof, http.StatusBadRequest)

		case errors.Is(err, state.ErrMissingProof), errors.Is(err, state.ErrMissingMiner):
			return errs.BadRequest(err)
		}

		return fmt.Errorf("submit proof: %w", err)
	}

	h.Log.Infow("submit proof", "traceid", v.TraceID, "miner", sub.Miner, "block", block.Index)

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.BadRequest(err)
	}

	tx, err := ntx.toDBTx()
	if err != nil {
		return errs.BadRequest(err)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tx.Sender, "receiver", tx.Receiver, "amount", tx.Amount)

	tx, err = h.State.SubmitTransaction(tx)
	if err != nil {
		return errs.BadRequest(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Transactions returns every sealed transaction the participant took part in.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")
	return web.Respond(ctx, w, h.State.QueryTransactions(id), http.StatusOK)
}

// Balance returns the net balance of the participant. An unknown participant
// has a balance of zero.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	resp := balance{
		ID:      id,
		Balance: h.State.QueryBalance(id),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balances returns the balance of every participant on the chain.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	all := h.State.QueryBalances()

	bals := make([]balance, 0, len(all))
	for id, amount := range all {
		bals = append(bals, balance{ID: id, Balance: amount})
	}
	sort.Slice(bals, func(i, j int) bool { return bals[i].ID < bals[j].ID })

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Uncommitted: h.State.QueryMempoolLength(),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns information about the node and the health of its chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()

	resp := status{
		NodeID:       h.State.RetrieveNodeID(),
		Length:       h.State.Length(),
		LatestBlock:  h.State.RetrieveLatestBlock().Hash(),
		Uncommitted:  h.State.QueryMempoolLength(),
		Difficulty:   gen.Difficulty,
		MiningReward: gen.MiningReward,
		Valid:        true,
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
