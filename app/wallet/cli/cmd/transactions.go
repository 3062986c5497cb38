package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions [id]",
	Short: "Print the sealed transactions for your id or the one given",
	Args:  cobra.MaximumNArgs(1),
	Run:   transactionsRun,
}

func init() {
	rootCmd.AddCommand(transactionsCmd)
}

func transactionsRun(cmd *cobra.Command, args []string) {
	id, err := participant(args)
	if err != nil {
		log.Fatal(err)
	}

	var txs []database.Tx
	if err := newClient(nodeURL).get(context.Background(), "/v1/participants/"+id+"/transactions", &txs); err != nil {
		log.Fatal(err)
	}

	fmt.Println("For ID:", id)
	for _, tx := range txs {
		fmt.Println(tx)
	}
}
