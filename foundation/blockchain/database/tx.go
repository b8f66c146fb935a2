package database

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorpcoin/ledger/foundation/blockchain/chain"
)

// ErrOutputOverflow is returned when the outputs of a transaction add up
// to more than a uint64 can hold.
var ErrOutputOverflow = errors.New("transaction outputs overflow")

// Output is an amount paid to an account by a transaction.
type Output struct {
	To    string `json:"to" validate:"required"`
	Value uint64 `json:"value"`
}

// Tx spends the outputs of the transactions named in In and pays the
// amounts listed in Out.
type Tx struct {
	ID        string   `json:"id" validate:"required,uuid"`
	In        []string `json:"inputs" validate:"dive,required"`
	Out       []Output `json:"outputs" validate:"required,min=1,dive"`
	TimeStamp uint64   `json:"timestamp"`
}

// NewTx constructs a new transaction with a unique id.
func NewTx(inputs []string, outputs []Output) Tx {
	return Tx{
		ID:        uuid.NewString(),
		In:        inputs,
		Out:       outputs,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
	}
}

// Inputs returns the ids of the transactions this transaction draws from.
func (tx Tx) Inputs() []string {
	return tx.In
}

// OutputTotal returns the sum of the transaction's outputs. A sum that
// doesn't fit in a uint64 is reported as MaxUint64, use Validate to reject
// such a transaction.
func (tx Tx) OutputTotal() uint64 {
	total, ok := tx.outputSum()
	if !ok {
		return math.MaxUint64
	}
	return total
}

// Validate checks the outputs of the transaction add up without overflow.
func (tx Tx) Validate() error {
	if _, ok := tx.outputSum(); !ok {
		return fmt.Errorf("tx[%s]: %w", tx.ID, ErrOutputOverflow)
	}
	return nil
}

func (tx Tx) outputSum() (uint64, bool) {
	var total, carry uint64
	for _, out := range tx.Out {
		total, carry = bits.Add64(total, out.Value, 0)
		if carry != 0 {
			return 0, false
		}
	}
	return total, true
}

// String implements the Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%d:%d", tx.ID, len(tx.In), tx.OutputTotal())
}

// =============================================================================

// Transactions is the set of transactions carried by a block keyed by id.
type Transactions map[string]Tx

// NewTransactions constructs the set from the specified transactions. A
// transaction id listed twice keeps the last value.
func NewTransactions(trans []Tx) Transactions {
	txs := make(Transactions, len(trans))
	for _, tx := range trans {
		txs[tx.ID] = tx
	}
	return txs
}

// Transaction looks up the transaction with the specified id.
func (txs Transactions) Transaction(ref string) (chain.Spendable, bool) {
	tx, exists := txs[ref]
	if !exists {
		return nil, false
	}
	return tx, true
}

// Values returns the transactions ordered by id.
func (txs Transactions) Values() []Tx {
	values := make([]Tx, 0, len(txs))
	for _, tx := range txs {
		values = append(values, tx)
	}

	sort.Slice(values, func(i, j int) bool {
		return values[i].ID < values[j].ID
	})

	return values
}

// Root returns the hash of the transactions ordered by id.
func (txs Transactions) Root() []byte {
	data, err := json.Marshal(txs.Values())
	if err != nil {
		return nil
	}

	hash := sha256.Sum256(data)
	return hash[:]
}
