// Package database provides the concrete block and transaction values the
// node stores and exchanges, and the contracts for persisting them.
package database

// Serializer interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator walks the stored blocks converting them into blocks.
type DatabaseIterator struct {
	iterator Iterator
}

// NewIterator wraps the serializer's iterator so the caller receives blocks.
func NewIterator(serializer Serializer) *DatabaseIterator {
	return &DatabaseIterator{iterator: serializer.ForEach()}
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}
