package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// ErrNotFound is returned by Bolt when the requested block isn't stored.
var ErrNotFound = errors.New("block not found")

var blocksBucket = []byte("blocks")

// Bolt represents the serialization implementation for reading and storing
// blocks in a single bolt database file. Blocks are keyed by their number
// in big endian so the bucket's key order is the chain order. This
// implements the database.Serializer interface.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens or creates the bolt database at the specified file.
func NewBolt(dbFile string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbFile, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write stores the block under its number. An existing block is never
// overwritten.
func (b *Bolt) Write(blockData database.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blocksBucket)

		key := blockKey(blockData.Header.Number)
		if bkt.Get(key) != nil {
			return fmt.Errorf("block %d already exists", blockData.Header.Number)
		}

		return bkt.Put(key, data)
	})
}

// GetBlock returns the contents of the specified block by number.
func (b *Bolt) GetBlock(num uint64) (database.BlockData, error) {
	var blockData database.BlockData

	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(blocksBucket).Get(blockKey(num))
		if data == nil {
			return fmt.Errorf("block %d: %w", num, ErrNotFound)
		}

		// The value is only valid for the life of the transaction, so it
		// is decoded here.
		if err := json.Unmarshal(data, &blockData); err != nil {
			return fmt.Errorf("decoding block %d: %w", num, err)
		}

		return nil
	})

	return blockData, err
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (b *Bolt) ForEach() database.Iterator {
	return &boltIterator{storage: b}
}

// Reset will clear out the stored blocks.
func (b *Bolt) Reset() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(blocksBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}

		_, err := tx.CreateBucket(blocksBucket)
		return err
	})
}

func blockKey(num uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, num)
	return key
}

// =============================================================================

type boltIterator struct {
	storage *Bolt
	current uint64
	eoc     bool
}

// Next retrieves the next block from the database.
func (bi *boltIterator) Next() (database.BlockData, error) {
	if bi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	bi.current++
	blockData, err := bi.storage.GetBlock(bi.current)
	if errors.Is(err, ErrNotFound) {
		bi.eoc = true
	}

	return blockData, err
}

// Done returns the end of chain value.
func (bi *boltIterator) Done() bool {
	return bi.eoc
}
