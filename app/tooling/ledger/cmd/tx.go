package cmd

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <tx.json>",
	Short: "Run the balance check for a transaction without submitting it.",
	Args:  cobra.ExactArgs(1),
	Run:   validateRun,
}

var submitCmd = &cobra.Command{
	Use:   "submit <tx.json>",
	Short: "Submit a transaction to the node's mempool.",
	Args:  cobra.ExactArgs(1),
	Run:   submitRun,
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print the transactions waiting in the mempool.",
	Run:   pendingRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(pendingCmd)
}

// readTx reads a transaction document. An id and timestamp are filled in
// when the document leaves them out.
func readTx(name string) database.Tx {
	var tx database.Tx
	if err := readJSON(name, &tx); err != nil {
		log.Fatal(err)
	}

	if tx.ID == "" {
		fresh := database.NewTx(tx.In, tx.Out)
		tx.ID = fresh.ID
		tx.TimeStamp = fresh.TimeStamp
	}

	return tx
}

func validateRun(cmd *cobra.Command, args []string) {
	tx := readTx(args[0])

	var resp validity
	if err := call(http.MethodPost, "/v1/tx/validate", tx, &resp); err != nil {
		log.Fatal(err)
	}

	render(resp, func() {
		if !resp.Valid {
			pterm.Error.Printfln("tx %s: inputs do not cover outputs of %d", resp.ID, resp.OutputTotal)
			return
		}
		pterm.Success.Printfln("tx %s: inputs cover outputs of %d", resp.ID, resp.OutputTotal)
	})
}

func submitRun(cmd *cobra.Command, args []string) {
	tx := readTx(args[0])

	var resp struct {
		Status string `json:"status"`
	}
	if err := call(http.MethodPost, "/v1/tx/submit", tx, &resp); err != nil {
		log.Fatal(err)
	}

	render(resp, func() {
		pterm.Success.Printfln("tx %s submitted: %s", tx.ID, resp.Status)
	})
}

func pendingRun(cmd *cobra.Command, args []string) {
	var trans []database.Tx
	if err := call(http.MethodGet, "/v1/tx/pending", nil, &trans); err != nil {
		log.Fatal(err)
	}

	render(trans, func() {
		if len(trans) == 0 {
			pterm.Info.Println("no pending transactions")
			return
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(txTable(trans)).Render(); err != nil {
			log.Fatal(err)
		}
	})
}

// validity is the balance check result returned by the node.
type validity struct {
	ID          string `json:"id"`
	OutputTotal uint64 `json:"output_total"`
	Valid       bool   `json:"valid"`
}

// txTable lays out the transactions one per row.
func txTable(trans []database.Tx) pterm.TableData {
	data := pterm.TableData{{"ID", "Inputs", "Outputs", "Total"}}
	for _, tx := range trans {
		data = append(data, []string{
			tx.ID,
			strconv.Itoa(len(tx.In)),
			strconv.Itoa(len(tx.Out)),
			strconv.FormatUint(tx.OutputTotal(), 10),
		})
	}
	return data
}
