package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// ErrBlockNumber is returned when a block that passes the chain rules does
// not carry the next block number. Storage is keyed by block number.
var ErrBlockNumber = errors.New("block is not the next number")

// =============================================================================

// ProcessProposedBlock takes a block received from a client, validates it and
// if that passes, writes the block to storage and adds it to the chain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%x]: newBlk[%x]: numTrans[%d]", block.PrevHash(), block.Hash(), len(block.Trans))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%x]", block.Hash())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: ProcessProposedBlock: validate block")

	if err := s.validateBlock(block); err != nil {
		s.evHandler("state: ProcessProposedBlock: REJECTED: %s", err)
		return err
	}

	s.evHandler("state: ProcessProposedBlock: write to storage")

	if err := s.storage.Write(database.NewBlockData(block)); err != nil {
		return fmt.Errorf("writing block %d: %w", block.Header.Number, err)
	}

	// The state mutex keeps every other writer out, so the checks made
	// above still hold.
	if err := s.chain.AddBlock(block); err != nil {
		return err
	}

	s.evHandler("state: ProcessProposedBlock: remove transactions from mempool")

	for id := range block.Trans {
		s.mempool.Delete(id)
	}

	s.blockEvent(block)

	return nil
}

// =============================================================================

// validateBlock runs the chain rules first, so the caller sees the same
// errors the chain would return on its own, then checks the parts of the
// block the chain rules don't cover.
func (s *State) validateBlock(block database.Block) error {
	if err := s.chain.ValidateBlock(block); err != nil {
		return err
	}

	if exp := uint64(s.chain.Length()) + 1; block.Header.Number != exp {
		return fmt.Errorf("got %d, exp %d: %w", block.Header.Number, exp, ErrBlockNumber)
	}

	return block.Validate()
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Trans.Values())
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":"%x","header":%s,"trans":%s}`, block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
