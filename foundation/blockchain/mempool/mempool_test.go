package mempool_test

import (
	"testing"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
	"github.com/gorpcoin/ledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
		best []string
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				{ID: "c", TimeStamp: 30, Out: []database.Output{{To: "bill", Value: 10}}},
				{ID: "a", TimeStamp: 10, Out: []database.Output{{To: "ed", Value: 50}}},
				{ID: "d", TimeStamp: 20, Out: []database.Output{{To: "jack", Value: 100}}},
				{ID: "b", TimeStamp: 20, Out: []database.Output{{To: "ed", Value: 10}}},
			},
			best: []string{"a", "b", "d", "c"},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, tx := range tst.txs {
						mp.Upsert(tx)
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					if mp.Count() != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould have %d transactions : %d", failed, testID, len(tst.txs), mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould have %d transactions.", success, testID, len(tst.txs))

					for i, tx := range mp.Copy() {
						if tx.ID != tst.best[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.ID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.best[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the transactions oldest first.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the transactions oldest first.", success, testID)

					mp.Upsert(tst.txs[0])
					if mp.Count() != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould replace an existing transaction : %d", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould replace an existing transaction.", success, testID)

					mp.Delete(tst.txs[0].ID)
					if mp.Count() != len(tst.txs)-1 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to delete a transaction : %d", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould be able to delete a transaction.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate the pool : %d", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate the pool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
