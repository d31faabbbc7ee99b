// Command ledgerctl manages the invoice ledger from the shell: import and
// export spreadsheets, print the summary and edit single invoices.
//
//	ledgerctl import march.csv --yes
//	ledgerctl export ledger.xlsx
//	ledgerctl summary --json
//	ledgerctl add --id 42 --name "Acme" --description "flyers | cards" --amount 30
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
