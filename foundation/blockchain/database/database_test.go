package database_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/gorpcoin/ledger/foundation/blockchain/chain"
	"github.com/gorpcoin/ledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func TestBlockData(t *testing.T) {
	t.Log("Given the need to move blocks through storage and the network.")
	{
		trans := []database.Tx{
			database.NewTx(nil, []database.Output{{To: "bill", Value: 100}}),
			database.NewTx(nil, []database.Output{{To: "ed", Value: 50}, {To: "jack", Value: 25}}),
		}

		block := database.NewBlock(chain.GenesisHash(), 1, trans)

		if err := block.Validate(); err != nil {
			t.Fatalf("\t%s\tShould be able to validate a new block : %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate a new block.", success)

		data, err := json.Marshal(database.NewBlockData(block))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the block : %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to marshal the block.", success)

		var blockData database.BlockData
		if err := json.Unmarshal(data, &blockData); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the block : %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to unmarshal the block.", success)

		got, err := database.ToBlock(blockData)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to convert the block : %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to convert the block.", success)

		if !bytes.Equal(got.Hash(), block.Hash()) {
			t.Logf("\t%s\tgot: %x", failed, got.Hash())
			t.Logf("\t%s\texp: %x", failed, block.Hash())
			t.Fatalf("\t%s\tShould get back the same hash.", failed)
		}
		t.Logf("\t%s\tShould get back the same hash.", success)

		if !bytes.Equal(got.PrevHash(), chain.GenesisHash()) {
			t.Fatalf("\t%s\tShould get back the genesis sentinel : %x", failed, got.PrevHash())
		}
		t.Logf("\t%s\tShould get back the genesis sentinel.", success)

		if err := got.Validate(); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the converted block : %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the converted block.", success)
	}
}

func TestToBlockHashMismatch(t *testing.T) {
	t.Log("Given the need to reject block data carrying the wrong hash.")
	{
		block := database.NewBlock(chain.GenesisHash(), 1, nil)

		blockData := database.NewBlockData(block)
		blockData.Header.Nonce++

		if _, err := database.ToBlock(blockData); err == nil {
			t.Fatalf("\t%s\tShould not be able to convert the block.", failed)
		}
		t.Logf("\t%s\tShould not be able to convert the block.", success)
	}
}

func TestValidateTransRoot(t *testing.T) {
	t.Log("Given the need to detect transactions changed after the block was built.")
	{
		block := database.NewBlock(chain.GenesisHash(), 1, []database.Tx{
			database.NewTx(nil, []database.Output{{To: "bill", Value: 100}}),
		})

		extra := database.NewTx(nil, []database.Output{{To: "ed", Value: 1}})
		block.Trans[extra.ID] = extra

		if err := block.Validate(); !errors.Is(err, database.ErrTransRootMismatch) {
			t.Fatalf("\t%s\tShould get a root mismatch : %v", failed, err)
		}
		t.Logf("\t%s\tShould get a root mismatch.", success)
	}
}

func TestTransactions(t *testing.T) {
	t.Log("Given the need to look up transactions in a block.")
	{
		tx1 := database.NewTx(nil, []database.Output{{To: "bill", Value: 100}, {To: "ed", Value: 20}})
		tx2 := database.NewTx([]string{tx1.ID}, []database.Output{{To: "jack", Value: 70}})

		block := database.NewBlock(chain.GenesisHash(), 1, []database.Tx{tx1, tx2})

		recorded, exists := block.Transactions().Transaction(tx1.ID)
		if !exists {
			t.Fatalf("\t%s\tShould find the transaction.", failed)
		}
		t.Logf("\t%s\tShould find the transaction.", success)

		if recorded.OutputTotal() != 120 {
			t.Fatalf("\t%s\tShould get an output total of 120 : %d", failed, recorded.OutputTotal())
		}
		t.Logf("\t%s\tShould get an output total of 120.", success)

		if _, exists := block.Transactions().Transaction("missing"); exists {
			t.Fatalf("\t%s\tShould not find a missing transaction.", failed)
		}
		t.Logf("\t%s\tShould not find a missing transaction.", success)

		values := block.Trans.Values()
		if len(values) != 2 || values[0].ID > values[1].ID {
			t.Fatalf("\t%s\tShould get the transactions ordered by id.", failed)
		}
		t.Logf("\t%s\tShould get the transactions ordered by id.", success)

		c := chain.New(chain.WithPrefixCheck(func([]byte, uint8) bool { return true }))
		if err := c.AddBlock(block); err != nil {
			t.Fatalf("\t%s\tShould be able to add the block to a chain : %v", failed, err)
		}

		if !c.IsTransactionValid(tx2) {
			t.Fatalf("\t%s\tShould find the spend covered by the chain.", failed)
		}
		t.Logf("\t%s\tShould find the spend covered by the chain.", success)
	}
}

func TestOutputTotal(t *testing.T) {
	type table struct {
		name  string
		out   []database.Output
		total uint64
		err   error
	}

	tt := []table{
		{name: "none", out: nil, total: 0},
		{name: "sum", out: []database.Output{{To: "bill", Value: 60}, {To: "ed", Value: 40}}, total: 100},
		{name: "max", out: []database.Output{{To: "bill", Value: math.MaxUint64 - 1}, {To: "ed", Value: 1}}, total: math.MaxUint64},
		{name: "overflow", out: []database.Output{{To: "bill", Value: math.MaxUint64}, {To: "ed", Value: 2}}, total: math.MaxUint64, err: database.ErrOutputOverflow},
	}

	t.Log("Given the need to total a transaction's outputs without wrapping.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s outputs.", testID, tst.name)
				{
					tx := database.NewTx(nil, tst.out)

					if got := tx.OutputTotal(); got != tst.total {
						t.Fatalf("\t%s\tTest %d:\tShould get a total of %d : %d", failed, testID, tst.total, got)
					}
					t.Logf("\t%s\tTest %d:\tShould get a total of %d.", success, testID, tst.total)

					if err := tx.Validate(); !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould get error %v : %v", failed, testID, tst.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get error %v.", success, testID, tst.err)

					block := database.NewBlock(chain.GenesisHash(), 1, []database.Tx{tx})
					if err := block.Validate(); !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould get error %v from the block : %v", failed, testID, tst.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get error %v from the block.", success, testID, tst.err)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
