// Package chain is the validation core of the ledger. It holds the ordered
// set of accepted blocks and decides whether a candidate block may extend
// the chain.
package chain

import (
	"bytes"
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorpcoin/ledger/foundation/blockchain/pow"
)

// genesisMarker is the only byte of the previous hash carried by the first
// block in the chain.
const genesisMarker byte = 0

// GenesisHash returns the sentinel used as the previous hash of the first
// block. A new slice is returned on every call so callers can't change it.
func GenesisHash() []byte {
	return []byte{genesisMarker}
}

// =============================================================================

// Spendable represents a recorded transaction that can be referenced as the
// input of a later transaction.
type Spendable interface {
	OutputTotal() uint64
}

// TxLookup represents the transaction data carried by a block.
type TxLookup interface {
	Transaction(ref string) (Spendable, bool)
}

// Block represents the behavior the chain needs from a block. How a block
// is built and mined is not a concern of this package.
type Block interface {
	Hash() []byte
	PrevHash() []byte
	Transactions() TxLookup
}

// Transaction represents the behavior the balance check needs from a
// candidate transaction.
type Transaction interface {
	Inputs() []string
	OutputTotal() uint64
}

// PrefixCheck decides if a hash satisfies the specified difficulty.
type PrefixCheck func(hash []byte, difficulty uint8) bool

// Option changes the default behavior of a Chain.
type Option func(c *Chain)

// WithPrefixCheck replaces the proof of work predicate used to accept blocks.
func WithPrefixCheck(check PrefixCheck) Option {
	return func(c *Chain) {
		c.validPrefix = check
	}
}

// =============================================================================

// Chain is an append-only sequence of blocks. AddBlock is the only way
// to change it.
type Chain struct {
	mu          sync.RWMutex
	blocks      []Block
	validPrefix PrefixCheck
}

// New constructs an empty chain.
func New(options ...Option) *Chain {
	c := Chain{
		validPrefix: pow.HasValidPrefix,
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// Blocks returns a read only view of the accepted blocks. The view is
// clipped so appending to it can't reach the chain's storage.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[:len(c.blocks):len(c.blocks)]
}

// Length returns the number of accepted blocks.
func (c *Chain) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// LastHash returns the hash of the tip or the genesis sentinel when the
// chain is empty.
func (c *Chain) LastHash() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastHash()
}

// CurrentDifficulty returns the difficulty the next block must satisfy.
func (c *Chain) CurrentDifficulty() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Difficulty(len(c.blocks))
}

// Tip returns the length, the last hash and the current difficulty read
// from the same snapshot of the chain.
func (c *Chain) Tip() (length int, lastHash []byte, difficulty uint8) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks), c.lastHash(), Difficulty(len(c.blocks))
}

// ValidateBlock runs the acceptance checks for the candidate against the
// current tip without changing the chain.
func (c *Chain) ValidateBlock(block Block) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.validate(block)
}

// AddBlock appends the candidate to the chain if its hash satisfies the
// current difficulty and it links to the current tip. On failure the chain
// is left untouched.
func (c *Chain) AddBlock(block Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validate(block); err != nil {
		return err
	}

	c.blocks = append(c.blocks, block)

	return nil
}

// IsTransactionValid reports whether the outputs recorded on the chain for
// the inputs referenced by the transaction add up to at least what the
// transaction spends.
//
// This check is knowingly incomplete. Nothing proves the transaction is
// authorized to spend the referenced outputs, an output referenced by many
// transactions counts for each of them, and a transaction spending zero is
// always valid. Every call scans the full chain. Closing these gaps needs
// signatures and a spent output index, not a change to this function.
func (c *Chain) IsTransactionValid(tx Transaction) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var inputTotal uint64
	for _, block := range c.blocks {
		trans := block.Transactions()
		if trans == nil {
			continue
		}

		for _, input := range tx.Inputs() {
			if recorded, exists := trans.Transaction(input); exists {
				inputTotal = addSaturated(inputTotal, recorded.OutputTotal())
			}
		}
	}

	return inputTotal >= tx.OutputTotal()
}

// addSaturated adds the values, holding at MaxUint64 instead of wrapping.
// An input total held at MaxUint64 covers any uint64 output total, so the
// comparison stays exact.
func addSaturated(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// =============================================================================

// validate performs the acceptance checks. The caller must hold a lock.
func (c *Chain) validate(block Block) error {
	hash := block.Hash()
	difficulty := Difficulty(len(c.blocks))

	if !c.validPrefix(hash, difficulty) {
		return fmt.Errorf("block %s, difficulty %d: %w", hexutil.Encode(hash), difficulty, ErrIncorrectDifficulty)
	}

	if expected := c.lastHash(); !bytes.Equal(block.PrevHash(), expected) {
		return fmt.Errorf("block %s, got %s, exp %s: %w", hexutil.Encode(hash), hexutil.Encode(block.PrevHash()), hexutil.Encode(expected), ErrInvalidPreviousHash)
	}

	return nil
}

// lastHash returns the tip hash. The caller must hold a lock.
func (c *Chain) lastHash() []byte {
	if len(c.blocks) == 0 {
		return GenesisHash()
	}

	return c.blocks[len(c.blocks)-1].Hash()
}
