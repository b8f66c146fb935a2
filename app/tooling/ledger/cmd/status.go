package cmd

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorpcoin/ledger/foundation/blockchain/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the length, tip hash and difficulty of the chain.",
	Run:   statusRun,
}

var difficultyCmd = &cobra.Command{
	Use:   "difficulty <length>",
	Short: "Print the difficulty for a chain of the specified length.",
	Args:  cobra.ExactArgs(1),
	Run:   difficultyRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(difficultyCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	var status state.Status
	if err := call(http.MethodGet, "/v1/chain/status", nil, &status); err != nil {
		log.Fatal(err)
	}

	render(status, func() {
		data := pterm.TableData{
			{"Length", fmt.Sprintf("%d", status.Length)},
			{"Last Hash", status.LastHash.String()},
			{"Difficulty", fmt.Sprintf("%d", status.Difficulty)},
		}
		if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
			log.Fatal(err)
		}
	})
}

func difficultyRun(cmd *cobra.Command, args []string) {
	if _, err := strconv.Atoi(args[0]); err != nil {
		log.Fatalf("length %q is not a number", args[0])
	}

	var resp struct {
		Length     int   `json:"length"`
		Difficulty uint8 `json:"difficulty"`
	}
	if err := call(http.MethodGet, "/v1/chain/difficulty/"+args[0], nil, &resp); err != nil {
		log.Fatal(err)
	}

	render(resp, func() {
		pterm.Info.Printfln("length %d needs difficulty %d", resp.Length, resp.Difficulty)
	})
}
