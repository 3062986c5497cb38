package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount float64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an amount from your id",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Id of the receiver.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) {
	id, err := loadID(idFile)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.NewTx(id, to, amount)
	if err != nil {
		log.Fatal(err)
	}

	var accepted database.Tx
	status, err := newClient(nodeURL).post(context.Background(), "/v1/transactions/new", tx, &accepted)
	if err != nil {
		log.Fatal(err)
	}

	if status != http.StatusOK {
		log.Fatalf("transaction not accepted: status %d", status)
	}

	fmt.Println("Sent:", accepted)
}
