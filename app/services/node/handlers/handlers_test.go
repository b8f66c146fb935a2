package handlers_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorpcoin/ledger/app/services/node/handlers"
	"github.com/gorpcoin/ledger/foundation/blockchain/database"
	"github.com/gorpcoin/ledger/foundation/blockchain/database/storage"
	"github.com/gorpcoin/ledger/foundation/blockchain/pow"
	"github.com/gorpcoin/ledger/foundation/blockchain/state"
	"github.com/gorpcoin/ledger/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type nodeTest struct {
	app   http.Handler
	state *state.State
}

func newNodeTest(t *testing.T) *nodeTest {
	st, err := state.New(state.Config{Storage: storage.NewMemory()})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state : %v", failed, err)
	}
	t.Cleanup(func() { st.Shutdown() })

	app := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     events.New(),
	})

	return &nodeTest{app: app, state: st}
}

func (nt *nodeTest) do(method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			json.NewEncoder(&buf).Encode(v)
		}
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	nt.app.ServeHTTP(w, r)

	return w
}

// nextBlock builds the block that extends the tip and solves it.
func (nt *nodeTest) nextBlock(trans ...database.Tx) database.Block {
	status := nt.state.Status()
	block := database.NewBlock(status.LastHash, uint64(status.Length)+1, trans)
	for !pow.HasValidPrefix(block.Hash(), status.Difficulty) {
		block.Header.Nonce++
	}
	return block
}

// =============================================================================

func TestStatus(t *testing.T) {
	nt := newNodeTest(t)

	t.Log("Given the need to report the tip of the chain.")
	{
		w := nt.do(http.MethodGet, "/v1/chain/status", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200.", success)

		var got state.Status
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response : %v", failed, err)
		}

		if got.Length != 0 || got.Difficulty != 1 || !bytes.Equal(got.LastHash, []byte{0}) {
			t.Fatalf("\t%s\tShould report an empty chain : %+v", failed, got)
		}
		t.Logf("\t%s\tShould report an empty chain.", success)
	}
}

func TestDifficulty(t *testing.T) {
	nt := newNodeTest(t)

	tt := []struct {
		name   string
		path   string
		status int
		exp    uint8
	}{
		{"empty", "/v1/chain/difficulty/0", http.StatusOK, 1},
		{"boundary", "/v1/chain/difficulty/8", http.StatusOK, 2},
		{"large", "/v1/chain/difficulty/998", http.StatusOK, 4},
		{"notanumber", "/v1/chain/difficulty/abc", http.StatusBadRequest, 0},
		{"negative", "/v1/chain/difficulty/-1", http.StatusBadRequest, 0},
	}

	t.Log("Given the need to report the difficulty for a chain length.")
	{
		for testID, test := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, test.path)
				{
					w := nt.do(http.MethodGet, test.path, nil)
					if w.Code != test.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d : %d", failed, testID, test.status, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, test.status)

					if test.status != http.StatusOK {
						return
					}

					var got struct {
						Difficulty uint8 `json:"difficulty"`
					}
					if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response : %v", failed, testID, err)
					}
					if got.Difficulty != test.exp {
						t.Fatalf("\t%s\tTest %d:\tShould get a difficulty of %d : %d", failed, testID, test.exp, got.Difficulty)
					}
					t.Logf("\t%s\tTest %d:\tShould get a difficulty of %d.", success, testID, test.exp)
				}
			}

			t.Run(test.name, f)
		}
	}
}

func TestProposeBlock(t *testing.T) {
	nt := newNodeTest(t)

	t.Log("Given the need to accept proposed blocks over the api.")
	{
		block := nt.nextBlock(database.NewTx(nil, []database.Output{{To: "bill", Value: 100}}))

		w := nt.do(http.MethodPost, "/v1/blocks/propose", database.NewBlockData(block))
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould accept the block : %d : %s", failed, w.Code, w.Body.String())
		}
		t.Logf("\t%s\tShould accept the block.", success)

		if nt.state.Status().Length != 1 {
			t.Fatalf("\t%s\tShould have a chain of length 1 : %d", failed, nt.state.Status().Length)
		}
		t.Logf("\t%s\tShould have a chain of length 1.", success)

		w = nt.do(http.MethodPost, "/v1/blocks/propose", database.NewBlockData(block))
		if w.Code != http.StatusNotAcceptable {
			t.Fatalf("\t%s\tShould reject the same block again with 406 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject the same block again with 406.", success)

		w = nt.do(http.MethodPost, "/v1/blocks/propose", "{not json")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a malformed document with 400 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject a malformed document with 400.", success)

		w = nt.do(http.MethodGet, "/v1/blocks/list/1/latest", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to list the blocks : %d", failed, w.Code)
		}

		var blocks []database.BlockData
		if err := json.NewDecoder(w.Body).Decode(&blocks); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the blocks : %v", failed, err)
		}
		if len(blocks) != 1 || !bytes.Equal(blocks[0].Hash, block.Hash()) {
			t.Fatalf("\t%s\tShould list the accepted block : %d", failed, len(blocks))
		}
		t.Logf("\t%s\tShould list the accepted block.", success)
	}
}

func TestTransactions(t *testing.T) {
	nt := newNodeTest(t)

	reward := database.NewTx(nil, []database.Output{{To: "bill", Value: 100}})
	if err := nt.state.ProcessProposedBlock(nt.nextBlock(reward)); err != nil {
		t.Fatalf("\t%s\tShould be able to add the reward block : %v", failed, err)
	}

	t.Log("Given the need to check and submit transactions over the api.")
	{
		spend := database.NewTx([]string{reward.ID}, []database.Output{{To: "ed", Value: 60}})

		w := nt.do(http.MethodPost, "/v1/tx/validate", spend)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to validate the spend : %d", failed, w.Code)
		}

		var got struct {
			Valid bool `json:"valid"`
		}
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil || !got.Valid {
			t.Fatalf("\t%s\tShould find the spend valid : %v", failed, err)
		}
		t.Logf("\t%s\tShould find the spend valid.", success)

		over := database.NewTx([]string{reward.ID}, []database.Output{{To: "ed", Value: 500}})
		if w := nt.do(http.MethodPost, "/v1/tx/submit", over); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an overspend with 400 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject an overspend with 400.", success)

		wrapping := database.NewTx([]string{reward.ID}, []database.Output{{To: "ed", Value: math.MaxUint64}, {To: "bill", Value: 2}})
		if w := nt.do(http.MethodPost, "/v1/tx/validate", wrapping); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould refuse to validate overflowing outputs with 400 : %d", failed, w.Code)
		}
		if w := nt.do(http.MethodPost, "/v1/tx/submit", wrapping); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject overflowing outputs with 400 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject overflowing outputs with 400.", success)

		noOutputs := database.NewTx(nil, nil)
		if w := nt.do(http.MethodPost, "/v1/tx/submit", noOutputs); w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a transaction without outputs with 400 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject a transaction without outputs with 400.", success)

		if w := nt.do(http.MethodPost, "/v1/tx/submit", spend); w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould accept the spend : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould accept the spend.", success)

		w = nt.do(http.MethodGet, "/v1/tx/pending", nil)

		var pending []database.Tx
		if err := json.NewDecoder(w.Body).Decode(&pending); err != nil || len(pending) != 1 || pending[0].ID != spend.ID {
			t.Fatalf("\t%s\tShould have the spend pending : %d", failed, len(pending))
		}
		t.Logf("\t%s\tShould have the spend pending.", success)
	}
}
