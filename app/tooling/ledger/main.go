package main

import "github.com/gorpcoin/ledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
