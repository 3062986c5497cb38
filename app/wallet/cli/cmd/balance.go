package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [id]",
	Short: "Print the balance for your id or the one given",
	Args:  cobra.MaximumNArgs(1),
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	id, err := participant(args)
	if err != nil {
		log.Fatal(err)
	}

	var bal struct {
		ID      string  `json:"id"`
		Balance float64 `json:"balance"`
	}

	if err := newClient(nodeURL).get(context.Background(), "/v1/participants/"+id+"/balance", &bal); err != nil {
		log.Fatal(err)
	}

	fmt.Println("For ID:", bal.ID)
	fmt.Println(bal.Balance)
}
