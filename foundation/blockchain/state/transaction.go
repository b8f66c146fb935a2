package state

import (
	"errors"
	"fmt"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// ErrInsufficientInputs is returned when the outputs recorded on the chain
// for a transaction's inputs don't cover what the transaction spends.
var ErrInsufficientInputs = errors.New("transaction inputs do not cover outputs")

// =============================================================================

// ValidateTransaction runs the chain's balance check for the transaction.
// The check proves no ownership and doesn't track spent outputs.
func (s *State) ValidateTransaction(tx database.Tx) bool {
	if tx.Validate() != nil {
		return false
	}
	return s.chain.IsTransactionValid(tx)
}

// SubmitTransaction accepts a transaction into the mempool if it passes the
// balance check.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if !s.chain.IsTransactionValid(tx) {
		return fmt.Errorf("tx[%s]: %w", tx, ErrInsufficientInputs)
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, n)

	return nil
}

// RetrieveMempool returns a copy of the mempool, oldest first.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}
