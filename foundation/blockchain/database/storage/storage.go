// Package storage provides the serializers that persist the blockchain.
package storage

import (
	"fmt"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// Set of storage engines a node can be started with.
const (
	EngineDisk   = "disk"
	EngineBolt   = "bolt"
	EngineMemory = "memory"
)

// Open constructs the serializer for the named engine. For disk the path is
// a directory, for bolt it is the database file, and memory ignores it.
func Open(engine string, dbPath string) (database.Serializer, error) {
	switch engine {
	case EngineDisk:
		return NewDisk(dbPath)
	case EngineBolt:
		return NewBolt(dbPath)
	case EngineMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown storage engine %q", engine)
}
