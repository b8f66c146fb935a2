package cmd

import (
	"log"
	"os"

	"github.com/gorpcoin/ledger/foundation/blockchain/database/storage"
	"github.com/gorpcoin/ledger/foundation/blockchain/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	engine  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <dbPath>",
	Short: "Replay a stored chain through the chain rules without a node.",
	Args:  cobra.ExactArgs(1),
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print replay events.")
	verifyCmd.Flags().StringVarP(&engine, "engine", "e", storage.EngineDisk, "Storage engine of the chain: disk or bolt.")
	verifyCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			pterm.EnableDebugMessages()
		}
	}
}

func verifyRun(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(args[0]); err != nil {
		log.Fatal(err)
	}

	serializer, err := storage.Open(engine, args[0])
	if err != nil {
		log.Fatal(err)
	}

	ev := func(v string, args ...any) {
		pterm.Debug.Printfln(v, args...)
	}

	st, err := state.New(state.Config{
		Storage:   serializer,
		EvHandler: ev,
	})
	if err != nil {
		pterm.Error.Printfln("chain is invalid: %s", err)
		os.Exit(1)
	}
	defer st.Shutdown()

	status := st.Status()
	render(status, func() {
		pterm.Success.Printfln("chain is valid: length[%d] lastHash[%s] difficulty[%d]", status.Length, status.LastHash, status.Difficulty)
	})
}
