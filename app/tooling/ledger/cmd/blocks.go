package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorpcoin/ledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	from string
	to   string
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Print a range of blocks from the chain.",
	Run:   blocksRun,
}

var proposeCmd = &cobra.Command{
	Use:   "propose <block.json>",
	Short: "Propose a solved block read from a file, or stdin with -.",
	Args:  cobra.ExactArgs(1),
	Run:   proposeRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(proposeCmd)
	blocksCmd.Flags().StringVarP(&from, "from", "f", "1", "First block number.")
	blocksCmd.Flags().StringVarP(&to, "to", "t", "latest", "Last block number.")
}

func blocksRun(cmd *cobra.Command, args []string) {
	var blocks []database.BlockData
	if err := call(http.MethodGet, fmt.Sprintf("/v1/blocks/list/%s/%s", from, to), nil, &blocks); err != nil {
		log.Fatal(err)
	}

	render(blocks, func() {
		if len(blocks) == 0 {
			pterm.Info.Println("no blocks")
			return
		}

		data := pterm.TableData{{"Number", "Hash", "Prev Hash", "Nonce", "Trans"}}
		for _, blk := range blocks {
			data = append(data, []string{
				fmt.Sprintf("%d", blk.Header.Number),
				blk.Hash.String(),
				blk.Header.PrevBlockHash.String(),
				fmt.Sprintf("%d", blk.Header.Nonce),
				fmt.Sprintf("%d", len(blk.Trans)),
			})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			log.Fatal(err)
		}
	})
}

func proposeRun(cmd *cobra.Command, args []string) {
	var blockData database.BlockData
	if err := readJSON(args[0], &blockData); err != nil {
		log.Fatal(err)
	}

	propose(blockData)
}

func propose(blockData database.BlockData) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := call(http.MethodPost, "/v1/blocks/propose", blockData, &resp); err != nil {
		log.Fatal(err)
	}

	render(resp, func() {
		pterm.Success.Printfln("block %d %s: %s", blockData.Header.Number, resp.Status, blockData.Hash)
	})
}
