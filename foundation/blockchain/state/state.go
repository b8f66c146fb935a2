// Package state is the core API for the node. It loads the stored chain,
// runs proposed blocks through the acceptance protocol and keeps storage
// in step with the chain.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gorpcoin/ledger/foundation/blockchain/chain"
	"github.com/gorpcoin/ledger/foundation/blockchain/database"
	"github.com/gorpcoin/ledger/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Storage     database.Serializer
	EvHandler   EventHandler
	PrefixCheck chain.PrefixCheck
}

// State manages the blockchain database.
type State struct {
	mu        sync.Mutex
	evHandler EventHandler

	chain   *chain.Chain
	storage database.Serializer
	mempool *mempool.Mempool
}

// New constructs a new blockchain for data management. Every stored block
// is replayed through the acceptance protocol, so a stored chain that breaks
// the chain rules fails startup.
func New(cfg Config) (*State, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	var options []chain.Option
	if cfg.PrefixCheck != nil {
		options = append(options, chain.WithPrefixCheck(cfg.PrefixCheck))
	}

	s := State{
		evHandler: ev,
		chain:     chain.New(options...),
		storage:   cfg.Storage,
		mempool:   mempool.New(),
	}

	ev("state: New: loading blocks from storage")

	iter := database.NewIterator(cfg.Storage)
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, fmt.Errorf("reading block: %w", err)
		}

		if err := s.validateBlock(block); err != nil {
			return nil, fmt.Errorf("loading block %d: %w", block.Header.Number, err)
		}

		if err := s.chain.AddBlock(block); err != nil {
			return nil, fmt.Errorf("loading block %d: %w", block.Header.Number, err)
		}
	}

	length, lastHash, difficulty := s.chain.Tip()
	ev("state: New: loaded: blocks[%d]: lastHash[%x]: difficulty[%d]", length, lastHash, difficulty)

	return &s, nil
}

// Shutdown cleanly brings the node down. Pending transactions are not
// persisted and are dropped.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: dropping mempool[%d]", s.mempool.Count())
	s.mempool.Truncate()

	s.evHandler("state: Shutdown: closing storage")

	return s.storage.Close()
}
