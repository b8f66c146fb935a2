// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gorpcoin/ledger/business/web/errs"
	"github.com/gorpcoin/ledger/foundation/blockchain/chain"
	"github.com/gorpcoin/ledger/foundation/blockchain/database"
	"github.com/gorpcoin/ledger/foundation/blockchain/state"
	"github.com/gorpcoin/ledger/foundation/events"
	"github.com/gorpcoin/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Status returns the length, tip hash and difficulty of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Status(), http.StatusOK)
}

// Difficulty returns the difficulty for the specified chain length.
func (h Handlers) Difficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	length, err := strconv.Atoi(web.Param(r, "length"))
	if err != nil || length < 0 {
		return errs.NewTrusted(errors.New("length must be a non-negative integer"), http.StatusBadRequest)
	}

	resp := difficulty{
		Length:     length,
		Difficulty: h.State.Difficulty(length),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByNumber returns all the blocks based on the specified to/from values.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "latest" || fromStr == "" {
		fromStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	toStr := web.Param(r, "to")
	if toStr == "latest" || toStr == "" {
		toStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	from, err := strconv.ParseUint(fromStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := strconv.ParseUint(toStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := h.State.QueryBlocksByNumber(from, to)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	resp := make([]block, len(blocks))
	for i, blk := range blocks {
		resp[i] = block{
			BlockData:  database.NewBlockData(blk),
			Difficulty: h.State.Difficulty(int(blk.Header.Number) - 1),
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block from a client, validates it and if that passes,
// adds the block to the local blockchain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var blockData database.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	block, err := database.ToBlock(blockData)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("propose block", "traceid", v.TraceID, "number", block.Header.Number, "trans", len(block.Trans))

	if err := h.State.ProcessProposedBlock(block); err != nil {
		switch {
		case errors.Is(err, chain.ErrIncorrectDifficulty),
			errors.Is(err, chain.ErrInvalidPreviousHash),
			errors.Is(err, state.ErrBlockNumber),
			errors.Is(err, database.ErrTransRootMismatch),
			errors.Is(err, database.ErrOutputOverflow):
			return errs.NewTrusted(err, http.StatusNotAcceptable)
		}

		return fmt.Errorf("processing block: %w", err)
	}

	return web.Respond(ctx, w, status{Status: "accepted"}, http.StatusOK)
}

// ValidateTransaction runs the balance check for a transaction without
// adding it to the mempool.
func (h Handlers) ValidateTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := tx.Validate(); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := validity{
		ID:          tx.ID,
		OutputTotal: tx.OutputTotal(),
		Valid:       h.State.ValidateTransaction(tx),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool if it passes the
// balance check.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Tx
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "tx", tx)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, status{Status: "transaction added to mempool"}, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
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

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}
