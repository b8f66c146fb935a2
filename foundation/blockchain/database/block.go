package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorpcoin/ledger/foundation/blockchain/chain"
)

// ErrTransRootMismatch is returned when a block's transactions don't hash
// to the root recorded in its header.
var ErrTransRootMismatch = errors.New("transaction root does not match transactions")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PrevBlockHash hexutil.Bytes `json:"prev_block_hash"` // Hash of the previous block, the genesis sentinel for the first block.
	Number        uint64        `json:"number"`          // Block number in the chain, starting at 1.
	TimeStamp     uint64        `json:"timestamp"`       // Time the block was built.
	Nonce         uint64        `json:"nonce"`           // Value identified to solve the hash solution.
	TransRoot     hexutil.Bytes `json:"trans_root"`      // Hash of the transactions in this block.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  Transactions
}

// NewBlock constructs an unsolved block that extends the specified
// previous hash. Finding a nonce that solves the block is up to the caller.
func NewBlock(prevHash []byte, number uint64, trans []Tx) Block {
	txs := NewTransactions(trans)

	return Block{
		Header: BlockHeader{
			PrevBlockHash: bytes.Clone(prevHash),
			Number:        number,
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			TransRoot:     txs.Root(),
		},
		Trans: txs,
	}
}

// Hash returns the unique hash for the Block. Only the header is hashed, the
// transactions are covered through the TransRoot field.
func (b Block) Hash() []byte {
	data, err := json.Marshal(b.Header)
	if err != nil {
		return nil
	}

	hash := sha256.Sum256(data)
	return hash[:]
}

// PrevHash returns the hash of the block this block extends.
func (b Block) PrevHash() []byte {
	return b.Header.PrevBlockHash
}

// Transactions provides lookup access to the transactions in the block.
func (b Block) Transactions() chain.TxLookup {
	return b.Trans
}

// Validate checks the block's contents are consistent with its header and
// every transaction's outputs add up.
func (b Block) Validate() error {
	for _, tx := range b.Trans {
		if err := tx.Validate(); err != nil {
			return err
		}
	}

	if root := b.Trans.Root(); !bytes.Equal(root, b.Header.TransRoot) {
		return fmt.Errorf("got %s, exp %s: %w", hexutil.Encode(root), hexutil.Encode(b.Header.TransRoot), ErrTransRootMismatch)
	}

	return nil
}

// =============================================================================

// BlockData represents what is written to storage and sent over the network.
type BlockData struct {
	Hash   hexutil.Bytes `json:"hash"`
	Header BlockHeader   `json:"block"`
	Trans  []Tx          `json:"trans" validate:"dive"`
}

// NewBlockData constructs the value to serialize.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Trans:  block.Trans.Values(),
	}
}

// ToBlock converts a BlockData into a Block. The hash carried with the data
// must match the hash of the header.
func ToBlock(blockData BlockData) (Block, error) {
	block := Block{
		Header: blockData.Header,
		Trans:  NewTransactions(blockData.Trans),
	}

	if len(blockData.Hash) > 0 {
		if hash := block.Hash(); !bytes.Equal(hash, blockData.Hash) {
			return Block{}, fmt.Errorf("block hash mismatch, got %s, exp %s", hexutil.Encode(blockData.Hash), hexutil.Encode(hash))
		}
	}

	return block, nil
}
