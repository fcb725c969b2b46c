package main

import (
	"fmt"
	"os"

	"github.com/careledger/ledger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "careledger:", err)
		os.Exit(1)
	}
}
