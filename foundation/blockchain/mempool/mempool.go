// Package mempool maintains the transactions that passed the balance check
// and are waiting to be included in a block.
package mempool

import (
	"sort"
	"sync"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// Mempool represents a cache of transactions keyed by transaction id.
type Mempool struct {
	pool map[string]database.Tx
	mu   sync.RWMutex
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// Copy returns the transactions in the pool, oldest first.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	txs := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx)
	}
	mp.mu.RUnlock()

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].TimeStamp == txs[j].TimeStamp {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].TimeStamp < txs[j].TimeStamp
	})

	return txs
}
