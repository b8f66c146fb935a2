package state

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorpcoin/ledger/foundation/blockchain/chain"
	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// Status represents the current tip of the chain.
type Status struct {
	Length     int           `json:"length"`
	LastHash   hexutil.Bytes `json:"last_hash"`
	Difficulty uint8         `json:"difficulty"`
}

// =============================================================================

// Status returns the length, tip hash and difficulty from one snapshot.
func (s *State) Status() Status {
	length, lastHash, difficulty := s.chain.Tip()

	return Status{
		Length:     length,
		LastHash:   lastHash,
		Difficulty: difficulty,
	}
}

// Difficulty returns the difficulty a block must satisfy to be appended to
// a chain of the specified length.
func (s *State) Difficulty(length int) uint8 {
	return chain.Difficulty(length)
}

// QueryBlocksByNumber returns the set of blocks based on block numbers. Block
// numbers start at 1.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	blocks := s.chain.Blocks()

	latest := uint64(len(blocks))
	if from == QueryLatest {
		from = latest
		to = from
	}
	if to == QueryLatest || to > latest {
		to = latest
	}
	if from == 0 {
		from = 1
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, ok := blocks[i-1].(database.Block)
		if !ok {
			s.evHandler("state: QueryBlocksByNumber: ERROR: block %d has an unknown type %T", i, blocks[i-1])
			return nil
		}
		out = append(out, block)
	}

	return out
}
